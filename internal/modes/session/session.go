// Package session holds the per-mode state shared by the reference modes:
// the host they report to and the context of the Enter that is current.
package session

import (
	"context"
	"sync"

	"github.com/atomicstack/piradio/internal/display"
	"github.com/atomicstack/piradio/internal/menu"
	"github.com/atomicstack/piradio/internal/mode"
)

// Session is embedded by modes. Menu actions take no context, so they
// publish through the context remembered by Begin; once the mode has been
// switched away from, that context is stale and the orchestrator drops the
// update.
type Session struct {
	mu   sync.Mutex
	host mode.Host
	ctx  context.Context
}

// Attach implements mode.Attacher.
func (s *Session) Attach(h mode.Host) {
	s.mu.Lock()
	s.host = h
	s.mu.Unlock()
}

// Begin records the context of the current Enter.
func (s *Session) Begin(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
}

// Context returns the current session context, or Background before the
// first Enter.
func (s *Session) Context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Session) hostAndContext() (mode.Host, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return s.host, ctx
}

// Show publishes a text field in the current session.
func (s *Session) Show(key display.Key, value string) {
	h, ctx := s.hostAndContext()
	if h != nil {
		h.ShowText(ctx, key, value)
	}
}

// ShowIn publishes a text field scoped to ctx.
func (s *Session) ShowIn(ctx context.Context, key display.Key, value string) {
	h, _ := s.hostAndContext()
	if h != nil {
		h.ShowText(ctx, key, value)
	}
}

// Metadata publishes now-playing metadata scoped to ctx.
func (s *Session) Metadata(ctx context.Context, meta display.Metadata) {
	h, _ := s.hostAndContext()
	if h != nil {
		h.ShowMetadata(ctx, meta)
	}
}

// OpenMenu opens a transient menu.
func (s *Session) OpenMenu(entries []menu.Entry) {
	h, _ := s.hostAndContext()
	if h != nil {
		h.OpenMenu(entries)
	}
}
