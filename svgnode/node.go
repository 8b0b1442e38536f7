// Implements a reactive model of SVG scenes:
// nodes hold typed, validated attribute slots, render
// themselves through markup templates and propagate every change
// up to the display sink attached to their root.
//
// Nodes live in an Arena. A container owns its children,
// every other link (parent, registries, derived values) is
// a non-owning handle which tolerates the referent being released.
package svgnode

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotContainer is returned when adding children to a leaf node.
var ErrNotContainer = errors.New("node can't hold children")

// Node is an element of a scene. Its slots are described by its Kind.
type Node struct {
	arena  *Arena
	handle Handle
	kind   *Kind

	values   []interface{}
	relaxed  []bool // allow none, forced by a group display reset
	bindings []*binding
	handlers [][]handlerEntry

	children []*Node
	template string
	data     map[string]interface{}
	path     *pathState // only for path nodes

	sync     bool
	sink     Sink
	pending  bool
	released bool
	syncing  bool // line points <-> coordinates
}

// Option customizes the creation of a node.
type Option func(*nodeConfig)

type nodeConfig struct {
	names  []string
	values []interface{}
	noSync bool
}

// With sets the initial value of a slot.
func With(name string, value interface{}) Option {
	return func(c *nodeConfig) {
		c.names = append(c.names, name)
		c.values = append(c.values, value)
	}
}

// WithValues sets the initial values of several slots,
// applied in sorted name order.
func WithValues(values map[string]interface{}) Option {
	return func(c *nodeConfig) {
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c.names = append(c.names, name)
			c.values = append(c.values, values[name])
		}
	}
}

// NoSync prevents the changes of the node from reaching the sink.
func NoSync() Option { return func(c *nodeConfig) { c.noSync = true } }

// New creates a detached node of kind k.
func (a *Arena) New(k *Kind, opts ...Option) (*Node, error) {
	if k == nil || k.Abstract() {
		return nil, fmt.Errorf("%w: %v", ErrAbstractKind, k)
	}
	var cfg nodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	l := len(k.slots)
	n := &Node{
		arena:    a,
		kind:     k,
		values:   make([]interface{}, l),
		relaxed:  make([]bool, l),
		bindings: make([]*binding, l),
		handlers: make([][]handlerEntry, l),
		sync:     !cfg.noSync,
	}
	for i, def := range k.slots {
		n.values[i] = cloneValue(def.Default)
	}
	if k.Is(KindPath) {
		n.path = &pathState{}
	}
	n.handle = a.insert(n)
	n.registerBuiltins()

	for j, name := range cfg.names {
		i, ok := k.index[name]
		if !ok {
			a.drop(n)
			return nil, unknownSlot(k, name)
		}
		if k.slots[i].ReadOnly {
			a.drop(n)
			return nil, &ValidationError{Kind: k.Name, Slot: name, Value: cfg.values[j], Reason: "read-only slot"}
		}
		v, err := n.validate(i, cfg.values[j])
		if err == nil {
			err = n.assign(i, v)
		}
		if err != nil {
			a.drop(n)
			return nil, err
		}
	}
	n.rebuildTemplate()
	n.refreshData()
	return n, nil
}

func (n *Node) String() string { return fmt.Sprintf("%s%s", n.kind.Name, n.handle) }

// Kind returns the schema of the node.
func (n *Node) Kind() *Kind { return n.kind }

// Tag returns the markup tag of the node.
func (n *Node) Tag() string { return n.kind.Tag }

// Arena returns the arena owning the node.
func (n *Node) Arena() *Arena { return n.arena }

// Handle returns the identifier of the node in its arena.
func (n *Node) Handle() Handle { return n.handle }

// Ref returns a non-owning reference to n.
func (n *Node) Ref() Ref { return Ref{arena: n.arena, handle: n.handle} }

// Released returns true once the node has been dropped from its arena.
func (n *Node) Released() bool { return n.released }

// HasSlot returns true if the kind of n declares the slot.
func (n *Node) HasSlot(name string) bool {
	_, ok := n.kind.index[name]
	return ok
}

// Get returns the current value of the slot.
// Slices are copied.
func (n *Node) Get(name string) (interface{}, error) {
	i, ok := n.kind.index[name]
	if !ok {
		return nil, unknownSlot(n.kind, name)
	}
	return cloneValue(n.values[i]), nil
}

// Value is like Get but returns nil for unknown slots.
func (n *Node) Value(name string) interface{} {
	v, _ := n.Get(name)
	return v
}

// Set validates value and stores it in the slot. On failure, a
// *ValidationError is returned and the slot is unchanged. Handlers are
// only called when the stored value actually changes.
// A derived slot (see Derive) becomes a literal again.
func (n *Node) Set(name string, value interface{}) error {
	if n.released {
		return ErrReleased
	}
	i, ok := n.kind.index[name]
	if !ok {
		return unknownSlot(n.kind, name)
	}
	if n.kind.slots[i].ReadOnly {
		return &ValidationError{Kind: n.kind.Name, Slot: name, Value: value, Reason: "read-only slot"}
	}
	v, err := n.validate(i, value)
	if err != nil {
		return err
	}
	return n.arena.batch(func() error {
		n.unbind(i)
		return n.assign(i, v)
	})
}

// Declare sets several slots at once. All the values are validated
// before any of them is stored.
func (n *Node) Declare(values map[string]interface{}) error {
	if n.released {
		return ErrReleased
	}
	indices, normalized, err := n.validateAll(values, nil)
	if err != nil {
		return err
	}
	return n.commit(indices, normalized)
}

// commit stores validated values as one mutation.
func (n *Node) commit(indices []int, values []interface{}) error {
	return n.arena.batch(func() error {
		for j, i := range indices {
			n.unbind(i)
			if err := n.assign(i, values[j]); err != nil {
				return err
			}
		}
		return nil
	})
}

// validateAll checks values in slot order, restricted
// to the slots accepted by filter, if given.
func (n *Node) validateAll(values map[string]interface{}, filter func(SlotDef) bool) ([]int, []interface{}, error) {
	var indices []int
	for name := range values {
		i, ok := n.kind.index[name]
		if !ok || (filter != nil && !filter(n.kind.slots[i])) {
			return nil, nil, unknownSlot(n.kind, name)
		}
		if n.kind.slots[i].ReadOnly {
			return nil, nil, &ValidationError{Kind: n.kind.Name, Slot: name, Value: values[name], Reason: "read-only slot"}
		}
		indices = append(indices, i)
	}
	sort.Ints(indices)
	normalized := make([]interface{}, len(indices))
	for j, i := range indices {
		v, err := n.validate(i, values[n.kind.slots[i].Name])
		if err != nil {
			return nil, nil, err
		}
		normalized[j] = v
	}
	return indices, normalized, nil
}

func (n *Node) validate(i int, value interface{}) (interface{}, error) {
	def := n.kind.slots[i]
	if value == nil {
		if def.AllowNone || n.relaxed[i] {
			return nil, nil
		}
		return nil, &ValidationError{Kind: n.kind.Name, Slot: def.Name, Reason: errNoneNotAllowed.Error()}
	}
	v, err := def.Validator.Validate(n, value)
	if err != nil {
		return nil, &ValidationError{Kind: n.kind.Name, Slot: def.Name, Value: value, Reason: err.Error()}
	}
	return v, nil
}

// assign stores an already validated value and dispatches the change.
func (n *Node) assign(i int, v interface{}) error {
	old := n.values[i]
	if valuesEqual(old, v) {
		return nil
	}
	n.values[i] = v
	n.arena.record(n, func() { n.values[i] = old })
	n.arena.touch(n)
	return n.fire(i, old, v)
}

// AllowsNone returns true if nil is currently accepted by the slot,
// either by declaration or after a group display reset.
func (n *Node) AllowsNone(name string) bool {
	i, ok := n.kind.index[name]
	return ok && (n.kind.slots[i].AllowNone || n.relaxed[i])
}

// Parent returns the container holding n, or nil.
func (n *Node) Parent() *Node {
	i, ok := n.kind.index["parent"]
	if !ok {
		return nil
	}
	ref, _ := n.values[i].(Ref)
	p, _ := ref.Get()
	return p
}

// Children returns a copy of the children list.
func (n *Node) Children() []*Node { return append([]*Node(nil), n.children...) }

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// Index returns the position of child in n, or -1.
func (n *Node) Index(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Append adds child at the end of the children of n.
// A child already attached elsewhere is moved.
func (n *Node) Append(child *Node) error { return n.Insert(len(n.children), child) }

// Extend appends several children, checked before any is added.
func (n *Node) Extend(children ...*Node) error {
	for _, c := range children {
		if err := n.checkChild(c); err != nil {
			return err
		}
	}
	return n.arena.batch(func() error {
		for _, c := range children {
			n.attach(len(n.children), c)
		}
		return nil
	})
}

// Insert adds child at position i.
func (n *Node) Insert(i int, child *Node) error {
	if err := n.checkChild(child); err != nil {
		return err
	}
	if i < 0 || i > len(n.children) {
		return fmt.Errorf("insert index %d out of range [0, %d]", i, len(n.children))
	}
	return n.arena.batch(func() error {
		n.attach(i, child)
		return nil
	})
}

// Remove detaches child from n. The child stays alive in the arena.
func (n *Node) Remove(child *Node) error {
	if n.released {
		return ErrReleased
	}
	if n.Index(child) < 0 {
		return fmt.Errorf("%s is not a child of %s", child, n)
	}
	return n.arena.batch(func() error {
		n.detach(child)
		return nil
	})
}

func (n *Node) checkChild(child *Node) error {
	if n.released {
		return ErrReleased
	}
	if !n.kind.Container {
		return fmt.Errorf("%w: %s", ErrNotContainer, n.kind.Name)
	}
	if child == nil {
		return errors.New("nil child")
	}
	if child.released {
		return ErrReleased
	}
	if child.arena != n.arena {
		return errors.New("child belongs to another arena")
	}
	for a := n; a != nil; a = a.Parent() {
		if a == child {
			return fmt.Errorf("%s can't contain itself", child)
		}
	}
	return nil
}

// attach must be called inside a batch.
func (n *Node) attach(i int, child *Node) {
	if p := child.Parent(); p != nil {
		if p == n && n.Index(child) < i {
			i--
		}
		p.detach(child)
	}
	n.saveChildren()
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.setParent(n.Ref())
	n.arena.touch(n)
}

// detach must be called inside a batch.
func (n *Node) detach(child *Node) {
	i := n.Index(child)
	if i < 0 {
		return
	}
	n.saveChildren()
	n.children = append(n.children[:i], n.children[i+1:]...)
	n.arena.touch(n)
	child.setParent(Ref{})
}

func (n *Node) saveChildren() {
	saved := append([]*Node(nil), n.children...)
	n.arena.record(n, func() { n.children = saved })
}

func (n *Node) setParent(ref Ref) {
	i, ok := n.kind.index["parent"]
	if !ok {
		return
	}
	var v interface{}
	if ref.arena != nil {
		v = ref
	}
	_ = n.assign(i, v) // no handler is registered on parent
}

func (n *Node) add(k *Kind, opts []Option) (*Node, error) {
	if !n.kind.Container {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, n.kind.Name)
	}
	c, err := n.arena.New(k, opts...)
	if err != nil {
		return nil, err
	}
	if err = n.Append(c); err != nil {
		n.arena.drop(c)
		return nil, err
	}
	return c, nil
}

// Circle creates a circle and appends it to n.
func (n *Node) Circle(opts ...Option) (*Node, error) { return n.add(KindCircle, opts) }

// Ellipse creates an ellipse and appends it to n.
func (n *Node) Ellipse(opts ...Option) (*Node, error) { return n.add(KindEllipse, opts) }

// Rect creates a rectangle and appends it to n.
func (n *Node) Rect(opts ...Option) (*Node, error) { return n.add(KindRect, opts) }

// Line creates a line and appends it to n.
func (n *Node) Line(opts ...Option) (*Node, error) { return n.add(KindLine, opts) }

// Polyline creates a polyline and appends it to n.
func (n *Node) Polyline(opts ...Option) (*Node, error) { return n.add(KindPolyline, opts) }

// Polygon creates a polygon and appends it to n.
func (n *Node) Polygon(opts ...Option) (*Node, error) { return n.add(KindPolygon, opts) }

// Text creates a text and appends it to n.
func (n *Node) Text(opts ...Option) (*Node, error) { return n.add(KindText, opts) }

// Group creates a group and appends it to n.
func (n *Node) Group(opts ...Option) (*Node, error) { return n.add(KindGroup, opts) }

// Path creates a path and appends it to n.
func (n *Node) Path(opts ...Option) (*Path, error) {
	c, err := n.add(KindPath, opts)
	if err != nil {
		return nil, err
	}
	return &Path{c}, nil
}

// AppendCollection appends the live members of r to n.
func (n *Node) AppendCollection(r Registry) error { return n.Extend(r.Children()...) }

func cloneValue(v interface{}) interface{} {
	switch v := v.(type) {
	case []float64:
		return append([]float64{}, v...)
	case []Point:
		return append([]Point{}, v...)
	}
	return v
}
