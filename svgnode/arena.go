package svgnode

import (
	"errors"
	"fmt"
)

// Handle identifies a node inside its arena. A handle outlives the
// node: once the node is released, the generation no longer matches
// and the handle resolves to nothing.
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) String() string { return fmt.Sprintf("#%d.%d", h.index, h.gen) }

type arenaEntry struct {
	node *Node
	gen  uint32
}

// Arena owns the nodes of one or several scenes. Nodes only reference
// each other through handles, except for the children of a container,
// which are owned by it.
//
// An Arena is not safe for concurrent use.
type Arena struct {
	cfg  Config
	sync *Sync

	entries []arenaEntry
	free    []uint32
	live    int

	nextHandler HandlerID

	// mutation batching: sinks are notified once the
	// outermost mutation returns
	depth   int
	dirty   []*Node
	journal []undo
}

// undo reverts one change made to node during a batch.
type undo struct {
	node *Node
	fn   func()
}

// NewArena returns an empty arena.
func NewArena(cfg Config) *Arena {
	if cfg.Width == 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height == 0 {
		cfg.Height = DefaultHeight
	}
	sync := cfg.Switch
	if sync == nil {
		sync = NewSync(!cfg.NoSync)
	}
	return &Arena{cfg: cfg, sync: sync}
}

// Config returns the settings of the arena.
func (a *Arena) Config() Config { return a.cfg }

// Sync returns the display switch used by the arena.
func (a *Arena) Sync() *Sync { return a.sync }

// Len returns the number of live nodes.
func (a *Arena) Len() int { return a.live }

func (a *Arena) insert(n *Node) Handle {
	a.live++
	if l := len(a.free); l > 0 {
		index := a.free[l-1]
		a.free = a.free[:l-1]
		a.entries[index].node = n
		return Handle{index: index, gen: a.entries[index].gen}
	}
	a.entries = append(a.entries, arenaEntry{node: n})
	return Handle{index: uint32(len(a.entries) - 1)}
}

// Resolve returns the node identified by h, if it is still alive.
func (a *Arena) Resolve(h Handle) (*Node, bool) {
	if int(h.index) >= len(a.entries) {
		return nil, false
	}
	e := a.entries[h.index]
	if e.node == nil || e.gen != h.gen {
		return nil, false
	}
	return e.node, true
}

// Release drops n and its descendants: n is detached from its parent,
// and every handle or Ref to the released nodes becomes invalid.
func (a *Arena) Release(n *Node) error {
	if n.arena != a {
		return errors.New("node belongs to another arena")
	}
	if n.released {
		return ErrReleased
	}
	return a.batch(func() error {
		if p := n.Parent(); p != nil {
			p.detach(n)
		}
		a.drop(n)
		return nil
	})
}

func (a *Arena) drop(n *Node) {
	for _, c := range n.children {
		a.drop(c)
	}
	for i := range n.bindings {
		n.unbind(i)
	}
	n.children = nil
	e := &a.entries[n.handle.index]
	e.node = nil
	e.gen++
	a.free = append(a.free, n.handle.index)
	a.live--
	n.released = true
}

// batch runs fn as one mutation: sinks of the roots touched
// by fn are notified once, when the outermost batch returns.
// When fn fails, the changes recorded since the outermost batch
// started are reverted and the pending notifications are dropped.
func (a *Arena) batch(fn func() error) error {
	a.depth++
	err := fn()
	a.depth--
	if a.depth > 0 {
		return err
	}

	dirty, journal := a.dirty, a.journal
	a.dirty, a.journal = nil, nil
	for _, r := range dirty {
		r.pending = false
	}
	if err != nil {
		a.rollback(journal)
		return err
	}

	var errs []error
	for _, r := range dirty {
		if r.released || r.sink == nil {
			continue
		}
		if err := r.notifySink(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// record registers the inverse of a change made inside a batch.
func (a *Arena) record(n *Node, fn func()) {
	if a.depth > 0 {
		a.journal = append(a.journal, undo{node: n, fn: fn})
	}
}

// rollback reverts journal, last change first, then refreshes
// the markup and data of the nodes involved. Handlers are not called.
func (a *Arena) rollback(journal []undo) {
	seen := map[*Node]bool{}
	for i := len(journal) - 1; i >= 0; i-- {
		journal[i].fn()
		seen[journal[i].node] = true
	}
	for n := range seen {
		if n.released {
			continue
		}
		n.rebuildTemplate()
		n.refreshData()
	}
}

// touch records that a change of n must reach the
// sink of its closest root.
func (a *Arena) touch(n *Node) {
	if !a.sync.Enabled() || !n.sync {
		return
	}
	for r := n; r != nil; r = r.Parent() {
		if r.sink == nil {
			continue
		}
		if !r.pending {
			r.pending = true
			a.dirty = append(a.dirty, r)
		}
		return
	}
}

// batchAll nests the batches of several arenas.
func batchAll(arenas []*Arena, fn func() error) error {
	if len(arenas) == 0 {
		return fn()
	}
	return arenas[0].batch(func() error { return batchAll(arenas[1:], fn) })
}

// Ref is a non-owning reference to a node.
// The zero value references nothing.
type Ref struct {
	arena  *Arena
	handle Handle
}

// Get returns the referenced node, or false if it has been released.
func (r Ref) Get() (*Node, bool) {
	if r.arena == nil {
		return nil, false
	}
	return r.arena.Resolve(r.handle)
}

// Valid returns true if the referenced node is still alive.
func (r Ref) Valid() bool {
	_, ok := r.Get()
	return ok
}

// Handle returns the handle of the referenced node.
func (r Ref) Handle() Handle { return r.handle }
