package backend

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrJoinTimeout is returned when a poller does not finish its current
// iteration within the allowed time.
var ErrJoinTimeout = errors.New("poller did not stop in time")

// Poller runs fn immediately and then once per interval until stopped or its
// parent context is cancelled. fn receives a context that is cancelled on
// Stop, so blocking calls inside it must honour ctx.
type Poller struct {
	interval time.Duration
	fn       func(context.Context)

	ctx    context.Context
	cancel context.CancelFunc

	wg   sync.WaitGroup
	done chan struct{}
}

// StartPoller launches a poller bound to parent.
func StartPoller(parent context.Context, interval time.Duration, fn func(context.Context)) *Poller {
	ctx, cancel := context.WithCancel(parent)
	p := &Poller{
		interval: interval,
		fn:       fn,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	p.wg.Add(1)
	go p.poll()
	go func() {
		p.wg.Wait()
		close(p.done)
	}()
	return p
}

// Stop signals the poller. It returns without waiting; the current iteration
// may still be running.
func (p *Poller) Stop() {
	p.cancel()
}

// Wait blocks until the poll goroutine has exited.
func (p *Poller) Wait() {
	<-p.done
}

// Done is closed once the poll goroutine has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// StopWait signals the poller and waits at most timeout for it to exit.
func (p *Poller) StopWait(timeout time.Duration) error {
	p.cancel()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-p.done:
		return nil
	case <-timer.C:
		return ErrJoinTimeout
	}
}

func (p *Poller) poll() {
	defer p.wg.Done()

	run := func() bool {
		select {
		case <-p.ctx.Done():
			return false
		default:
		}
		p.fn(p.ctx)
		return true
	}

	if !run() {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if !run() {
				return
			}
		}
	}
}
