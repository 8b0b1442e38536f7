package svgnode

import (
	"strconv"
	"strings"
)

// Handler is called after the value of a slot changed.
// Returning an error aborts the mutation in progress and
// is reported to its caller.
type Handler func(n *Node, name string, old, new interface{}) error

// HandlerID identifies a registered Handler.
type HandlerID uint64

type handlerEntry struct {
	id HandlerID
	fn Handler
}

// Observe registers fn for the changes of the slot. Handlers
// of a slot are called synchronously, in registration order.
func (n *Node) Observe(name string, fn Handler) (HandlerID, error) {
	i, ok := n.kind.index[name]
	if !ok {
		return 0, unknownSlot(n.kind, name)
	}
	if n.released {
		return 0, ErrReleased
	}
	return n.observe(i, fn), nil
}

func (n *Node) observe(i int, fn Handler) HandlerID {
	n.arena.nextHandler++
	id := n.arena.nextHandler
	n.handlers[i] = append(n.handlers[i], handlerEntry{id: id, fn: fn})
	return id
}

// Unobserve removes a handler registered with Observe.
func (n *Node) Unobserve(id HandlerID) bool {
	for i, hs := range n.handlers {
		for j, h := range hs {
			if h.id == id {
				n.handlers[i] = append(hs[:j:j], hs[j+1:]...)
				return true
			}
		}
	}
	return false
}

func (n *Node) fire(i int, old, new interface{}) error {
	name := n.kind.slots[i].Name
	hs := append([]handlerEntry(nil), n.handlers[i]...)
	for _, h := range hs {
		if err := h.fn(n, name, old, new); err != nil {
			return err
		}
	}
	return nil
}

// registerBuiltins wires the handlers implied by the slot metadata.
func (n *Node) registerBuiltins() {
	isGroup, isLine := n.kind.Is(KindGroup), n.kind.Is(KindLine)
	for i, def := range n.kind.slots {
		if def.Meta.IsAttr() {
			n.observe(i, func(n *Node, _ string, _, _ interface{}) error {
				n.rebuildTemplate()
				return nil
			})
		}
		if def.Meta.Data {
			n.observe(i, func(n *Node, _ string, _, _ interface{}) error {
				n.refreshData()
				return nil
			})
		}
		if def.Meta.Trans {
			n.observe(i, composeTransform)
		}
		if def.Meta.Display && isGroup {
			n.observe(i, resetDisplay)
		}
		if isLine && def.Meta.Coord != 0 {
			n.observe(i, coordsToPoints)
		}
		if isLine && def.Name == "points" {
			n.observe(i, pointsToCoords)
		}
	}
}

// resetDisplay clears the display property name on every child of
// the group g, so that the group value applies to them.
// The children slots accept none from now on.
func resetDisplay(g *Node, name string, _, _ interface{}) error {
	for _, c := range g.children {
		c := c // per-iteration copy: captured by the undo closure below
		i, ok := c.kind.index[name]
		if !ok || !c.kind.slots[i].Meta.Display {
			continue
		}
		if !c.relaxed[i] {
			c.relaxed[i] = true
			c.arena.record(c, func() { c.relaxed[i] = false })
		}
		c.unbind(i)
		if err := c.assign(i, nil); err != nil {
			return err
		}
	}
	return nil
}

// lengthValue parses a pixel length ("12px" or "12").
func lengthValue(v interface{}) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
	return f, err == nil
}

// coordsToPoints updates the points of a line after one of
// its coordinates changed. Coordinates in other units than
// pixels leave the points undefined.
func coordsToPoints(n *Node, _ string, _, _ interface{}) error {
	if n.syncing {
		return nil
	}
	var pts []Point
	for i, def := range n.kind.slots {
		c := def.Meta.Coord
		if c == 0 {
			continue
		}
		f, ok := lengthValue(n.values[i])
		if !ok {
			pts = nil
			break
		}
		if pts == nil {
			pts = make([]Point, 2)
		}
		if (c-1)%2 == 0 {
			pts[(c-1)/2].X = f
		} else {
			pts[(c-1)/2].Y = f
		}
	}
	n.syncing = true
	defer func() { n.syncing = false }()
	var v interface{}
	if pts != nil {
		v = pts
	}
	return n.assign(n.kind.index["points"], v)
}

// pointsToCoords is the converse of coordsToPoints.
func pointsToCoords(n *Node, _ string, _, new interface{}) error {
	pts, _ := new.([]Point)
	if n.syncing || len(pts) != 2 {
		return nil
	}
	n.syncing = true
	defer func() { n.syncing = false }()
	for i, def := range n.kind.slots {
		c := def.Meta.Coord
		if c == 0 {
			continue
		}
		f := pts[(c-1)/2].X
		if (c-1)%2 == 1 {
			f = pts[(c-1)/2].Y
		}
		if err := n.assign(i, formatFloat(f)+"px"); err != nil {
			return err
		}
	}
	return nil
}

// binding links a derived slot to its source.
type binding struct {
	src Ref
	id  HandlerID
}

// Derive makes the slot name follow the slot srcSlot of src: its value
// is fn applied to the source value, recomputed every time the source
// changes. A nil fn copies the source value. A later Set on the slot
// turns it back into a literal.
func (n *Node) Derive(name string, src *Node, srcSlot string, fn func(interface{}) interface{}) error {
	if n.released || src.released {
		return ErrReleased
	}
	i, ok := n.kind.index[name]
	if !ok {
		return unknownSlot(n.kind, name)
	}
	if n.kind.slots[i].ReadOnly {
		return &ValidationError{Kind: n.kind.Name, Slot: name, Reason: "read-only slot"}
	}
	si, ok := src.kind.index[srcSlot]
	if !ok {
		return unknownSlot(src.kind, srcSlot)
	}
	if src.arena != n.arena {
		return ErrUnknownSlot
	}
	if fn == nil {
		fn = func(v interface{}) interface{} { return v }
	}
	v, err := n.validate(i, fn(cloneValue(src.values[si])))
	if err != nil {
		return err
	}

	target := n.Ref()
	update := func(_ *Node, _ string, _, new interface{}) error {
		t, ok := target.Get()
		if !ok {
			return nil
		}
		v, err := t.validate(i, fn(cloneValue(new)))
		if err != nil {
			return err
		}
		return t.assign(i, v)
	}
	return n.arena.batch(func() error {
		n.unbind(i)
		b := &binding{src: src.Ref(), id: src.observe(si, update)}
		n.bindings[i] = b
		n.arena.record(n, func() {
			n.bindings[i] = nil
			src.Unobserve(b.id)
		})
		return n.assign(i, v)
	})
}

// Derived returns true if the slot currently follows another slot.
func (n *Node) Derived(name string) bool {
	i, ok := n.kind.index[name]
	return ok && n.bindings[i] != nil
}

func (n *Node) unbind(i int) {
	b := n.bindings[i]
	if b == nil {
		return
	}
	if src, ok := b.src.Get(); ok {
		saved := append([][]handlerEntry(nil), src.handlers...)
		src.Unobserve(b.id)
		n.arena.record(src, func() { copy(src.handlers, saved) })
	}
	n.bindings[i] = nil
	n.arena.record(n, func() { n.bindings[i] = b })
}
