// Package menu implements the rotary-driven menu tree.
//
// Nodes live in an arena and are addressed by NodeID; parent and root lookups
// are index walks, never pointer graphs. The tree root holds one container per
// mode. Every non-root, non-ephemeral container ends in a Back entry. Modes may
// open an ephemeral menu at any time; it becomes the active container until one
// of its items fires, after which the tree and cursor are restored exactly.
package menu

import (
	"sync"

	"github.com/atomicstack/piradio/internal/logging/events"
)

// BackLabel is the label of the entry that returns to the parent container.
const BackLabel = "Back"

// NodeID addresses a node in the arena.
type NodeID int

// NoNode is the zero reference.
const NoNode NodeID = -1

// Kind classifies a node.
type Kind uint8

const (
	KindRoot Kind = iota
	KindModeRoot
	KindSubmenu
	KindItem
	KindEphemeralSubmenu
	KindEphemeralItem
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindModeRoot:
		return "mode"
	case KindSubmenu:
		return "submenu"
	case KindItem:
		return "item"
	case KindEphemeralSubmenu:
		return "ephemeral-submenu"
	case KindEphemeralItem:
		return "ephemeral-item"
	}
	return "unknown"
}

// Entry declares one menu line. An entry with children, or one built with
// Submenu, is a container.
type Entry struct {
	Label    string
	Action   func()
	Children []Entry

	submenu bool
}

// Item declares an actionable entry.
func Item(label string, action func()) Entry {
	return Entry{Label: label, Action: action}
}

// Submenu declares a nested container.
func Submenu(label string, children ...Entry) Entry {
	return Entry{Label: label, Children: children, submenu: true}
}

func (e Entry) isContainer() bool {
	return e.submenu || len(e.Children) > 0
}

// Cursor is the highlighted position: a container and an index into it.
type Cursor struct {
	Container NodeID
	Index     int
}

// Options wires the engine to the rest of the radio.
type Options struct {
	// OnRender receives the highlighted label after each structural change.
	OnRender func(label string)
	// OnModeSelect is called when a mode root is selected.
	OnModeSelect func(name string)
}

type node struct {
	kind     Kind
	label    string
	action   func()
	back     bool
	parent   NodeID
	children []NodeID
	live     bool
}

// Engine owns the menu tree and the cursor.
type Engine struct {
	opts Options

	renderMu sync.Mutex

	mu     sync.Mutex
	nodes  []node
	free   []NodeID
	root   NodeID
	cursor Cursor

	ephemeral NodeID
	ephGen    uint64
	saved     Cursor
}

// New returns an engine holding only the tree root.
func New(opts Options) *Engine {
	e := &Engine{opts: opts, ephemeral: NoNode}
	e.root = e.alloc(node{kind: KindRoot, parent: NoNode})
	e.cursor = Cursor{Container: e.root}
	return e
}

func (e *Engine) alloc(n node) NodeID {
	n.live = true
	if len(e.free) > 0 {
		id := e.free[len(e.free)-1]
		e.free = e.free[:len(e.free)-1]
		e.nodes[id] = n
		return id
	}
	e.nodes = append(e.nodes, n)
	return NodeID(len(e.nodes) - 1)
}

func (e *Engine) attach(parent NodeID, n node) NodeID {
	n.parent = parent
	id := e.alloc(n)
	e.nodes[parent].children = append(e.nodes[parent].children, id)
	return id
}

// build appends entries under parent. Non-ephemeral containers, and nested
// ephemeral ones, get a trailing Back.
func (e *Engine) build(parent NodeID, entries []Entry, ephemeral bool) {
	for _, entry := range entries {
		switch {
		case entry.isContainer():
			kind := KindSubmenu
			if ephemeral {
				kind = KindEphemeralSubmenu
			}
			id := e.attach(parent, node{kind: kind, label: entry.Label})
			e.build(id, entry.Children, ephemeral)
			e.attach(id, node{kind: KindItem, label: BackLabel, back: true})
		case ephemeral:
			e.attach(parent, node{kind: KindEphemeralItem, label: entry.Label, action: entry.Action})
		default:
			e.attach(parent, node{kind: KindItem, label: entry.Label, action: entry.Action})
		}
	}
}

func (e *Engine) release(id NodeID) {
	n := &e.nodes[id]
	for _, child := range n.children {
		e.release(child)
	}
	*n = node{parent: NoNode}
	e.free = append(e.free, id)
}

// detach removes id and its subtree from the arena.
func (e *Engine) detach(id NodeID) {
	parent := e.nodes[id].parent
	if parent != NoNode {
		siblings := e.nodes[parent].children
		for i, c := range siblings {
			if c == id {
				e.nodes[parent].children = append(siblings[:i:i], siblings[i+1:]...)
				break
			}
		}
	}
	e.release(id)
}

// AddMode appends a mode container to the tree root.
func (e *Engine) AddMode(name string, entries []Entry) NodeID {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.attach(e.root, node{kind: KindModeRoot, label: name})
	e.build(id, entries, false)
	e.attach(id, node{kind: KindItem, label: BackLabel, back: true})
	return id
}

// Rotate moves the cursor by dir within the active container, wrapping at
// both ends.
func (e *Engine) Rotate(dir int) {
	e.mu.Lock()
	n := len(e.nodes[e.cursor.Container].children)
	if n == 0 {
		e.mu.Unlock()
		return
	}
	idx := (e.cursor.Index + dir) % n
	if idx < 0 {
		idx += n
	}
	e.cursor.Index = idx
	e.mu.Unlock()
	e.draw()
}

// Select activates the highlighted node.
func (e *Engine) Select() {
	e.mu.Lock()
	id := e.highlightedLocked()
	if id == NoNode {
		e.mu.Unlock()
		return
	}
	n := e.nodes[id]
	events.Menu.Enter(n.label)

	switch {
	case n.kind == KindModeRoot:
		before := e.cursor
		e.mu.Unlock()
		if e.opts.OnModeSelect != nil {
			e.opts.OnModeSelect(n.label)
		}
		e.mu.Lock()
		if e.cursor == before && e.nodes[id].live {
			e.cursor = Cursor{Container: id}
		}
		e.mu.Unlock()
		e.draw()

	case n.kind == KindSubmenu || n.kind == KindEphemeralSubmenu:
		e.cursor = Cursor{Container: id}
		e.mu.Unlock()
		e.draw()

	case n.back:
		container := n.parent
		if up := e.nodes[container].parent; up != NoNode {
			e.cursor = Cursor{Container: up}
		}
		e.mu.Unlock()
		e.draw()

	case n.kind == KindEphemeralItem:
		gen := e.ephGen
		e.mu.Unlock()
		if n.action != nil {
			n.action()
		}
		e.mu.Lock()
		closed := false
		if e.ephemeral != NoNode && e.ephGen == gen {
			e.closeEphemeralLocked()
			closed = true
		}
		e.mu.Unlock()
		if closed {
			e.draw()
		}

	default:
		e.mu.Unlock()
		if n.action != nil {
			n.action()
		}
	}
}

func (e *Engine) closeEphemeralLocked() {
	e.detach(e.ephemeral)
	e.ephemeral = NoNode
	e.cursor = e.saved
	events.Menu.Ephemeral(false, 0)
}

// OpenEphemeral splices a transient menu in as the active container and
// renders it. The cursor position is saved and restored once an item of the
// transient menu fires. Opening another while one is active replaces it and
// keeps the first saved position.
func (e *Engine) OpenEphemeral(entries []Entry) {
	e.mu.Lock()
	if e.ephemeral != NoNode {
		e.detach(e.ephemeral)
	} else {
		e.saved = e.cursor
	}
	id := e.attach(e.saved.Container, node{kind: KindEphemeralSubmenu})
	e.build(id, entries, true)
	e.attach(id, node{kind: KindEphemeralItem, label: BackLabel})
	e.ephemeral = id
	e.ephGen++
	e.cursor = Cursor{Container: id}
	events.Menu.Ephemeral(true, len(entries))
	e.mu.Unlock()
	e.draw()
}

// Draw renders the highlighted label.
func (e *Engine) Draw() {
	e.draw()
}

func (e *Engine) draw() {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	e.mu.Lock()
	label := e.labelLocked()
	cur := e.cursor
	e.mu.Unlock()
	events.Menu.Cursor(int(cur.Container), cur.Index, label)
	if e.opts.OnRender != nil {
		e.opts.OnRender(label)
	}
}

func (e *Engine) highlightedLocked() NodeID {
	children := e.nodes[e.cursor.Container].children
	if e.cursor.Index < 0 || e.cursor.Index >= len(children) {
		return NoNode
	}
	return children[e.cursor.Index]
}

func (e *Engine) labelLocked() string {
	id := e.highlightedLocked()
	if id == NoNode {
		return ""
	}
	return e.nodes[id].label
}

// Cursor returns the current position.
func (e *Engine) Cursor() Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Label returns the highlighted label, or "" when the active container is
// empty.
func (e *Engine) Label() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.labelLocked()
}

// Root returns the tree root.
func (e *Engine) Root() NodeID {
	return e.root
}

// EphemeralOpen reports whether a transient menu is active.
func (e *Engine) EphemeralOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ephemeral != NoNode
}

// Parent returns the parent of id, or NoNode for the root.
func (e *Engine) Parent(id NodeID) NodeID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.validLocked(id) {
		return NoNode
	}
	return e.nodes[id].parent
}

// ModeOf walks up from id to the mode container that holds it.
func (e *Engine) ModeOf(id NodeID) NodeID {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.validLocked(id) {
		if e.nodes[id].kind == KindModeRoot {
			return id
		}
		id = e.nodes[id].parent
	}
	return NoNode
}

// Kind returns the kind of id.
func (e *Engine) Kind(id NodeID) Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.validLocked(id) {
		return KindRoot
	}
	return e.nodes[id].kind
}

// Labels lists the labels of the children of container.
func (e *Engine) Labels(container NodeID) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.validLocked(container) {
		return nil
	}
	children := e.nodes[container].children
	out := make([]string, len(children))
	for i, c := range children {
		out[i] = e.nodes[c].label
	}
	return out
}

// Size reports the number of live nodes, the root included.
func (e *Engine) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.nodes) - len(e.free)
}

func (e *Engine) validLocked(id NodeID) bool {
	return id >= 0 && int(id) < len(e.nodes) && e.nodes[id].live
}
