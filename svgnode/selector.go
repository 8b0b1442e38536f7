package svgnode

// Matcher is a predicate over nodes.
type Matcher interface {
	Match(n *Node) bool
}

// Selector matches the nodes having a slot, optionally holding
// a given value. The slot must also carry the metadata in Meta.
type Selector struct {
	Name string
	// Value is compared to the slot value when HasValue is true.
	// A Matcher value is applied to the node referenced by the slot.
	Value    interface{}
	HasValue bool
	Meta     Metadata
}

// Exists returns a selector matching the nodes with the slot name.
func Exists(name string) *Selector { return &Selector{Name: name} }

// Equals returns a selector matching the nodes whose slot name holds value.
func Equals(name string, value interface{}) *Selector {
	return &Selector{Name: name, Value: value, HasValue: true}
}

// WithMeta sets the metadata requirement of s and returns it.
func (s *Selector) WithMeta(meta Metadata) *Selector {
	s.Meta = meta
	return s
}

// Match implements Matcher.
//
// With a Matcher as value, the node referenced by the slot is tested. If it
// does not match but has a slot of the same name, the test goes on with the
// node referenced there, walking up the chain (typically the parent chain).
func (s *Selector) Match(n *Node) bool {
	if n == nil || n.released {
		return false
	}
	i, ok := n.kind.index[s.Name]
	if !ok || !n.kind.slots[i].Meta.Matches(s.Meta) {
		return false
	}
	if !s.HasValue {
		return true
	}
	if nested, ok := s.Value.(Matcher); ok {
		seen := map[*Node]bool{}
		for target := refValue(n.values[i]); target != nil && !seen[target]; {
			if nested.Match(target) {
				return true
			}
			seen[target] = true
			j, ok := target.kind.index[s.Name]
			if !ok {
				return false
			}
			target = refValue(target.values[j])
		}
		return false
	}
	v, err := n.validate(i, s.Value)
	return err == nil && valuesEqual(v, n.values[i])
}

// refValue resolves a node reference stored in a slot.
func refValue(v interface{}) *Node {
	ref, _ := v.(Ref)
	n, _ := ref.Get()
	return n
}

// CompositeSelector is the conjunction of its selectors.
// An empty composite matches every node.
type CompositeSelector struct {
	// Meta, when not nil, is given to every appended selector.
	Meta      Metadata
	selectors []*Selector
}

// NewCompositeSelector returns a composite with the given selectors.
func NewCompositeSelector(meta Metadata, selectors ...*Selector) *CompositeSelector {
	cs := &CompositeSelector{Meta: meta}
	cs.Extend(selectors...)
	return cs
}

// Append adds s to the composite.
func (cs *CompositeSelector) Append(s *Selector) {
	if cs.Meta != nil {
		s.Meta = cs.Meta
	}
	cs.selectors = append(cs.selectors, s)
}

// Extend adds several selectors.
func (cs *CompositeSelector) Extend(selectors ...*Selector) {
	for _, s := range selectors {
		cs.Append(s)
	}
}

// Selectors returns a copy of the selector list.
func (cs *CompositeSelector) Selectors() []*Selector {
	return append([]*Selector(nil), cs.selectors...)
}

// Len returns the number of selectors.
func (cs *CompositeSelector) Len() int { return len(cs.selectors) }

// Match implements Matcher.
func (cs *CompositeSelector) Match(n *Node) bool {
	for _, s := range cs.selectors {
		if !s.Match(n) {
			return false
		}
	}
	return true
}

// Collect returns the first node under root matched by m, in depth
// first order. Containers are walked into, never matched themselves.
// A match found in a group receives the display values of the group
// it does not define itself (see CopyDisplay).
func Collect(root *Node, m Matcher) (*Node, error) {
	var found *Node
	err := root.arena.batch(func() error {
		var err error
		found, err = collect(root, root.children, m)
		return err
	})
	return found, err
}

// CollectAll is like Collect, but returns every match.
func CollectAll(root *Node, m Matcher) ([]*Node, error) {
	var found []*Node
	err := root.arena.batch(func() error {
		return collectAll(root, root.children, m, &found)
	})
	return found, err
}

// collect walks children, whose container is parent (nil for registries).
func collect(parent *Node, children []*Node, m Matcher) (*Node, error) {
	for _, c := range children {
		if c.released {
			continue
		}
		if c.kind.Container {
			found, err := collect(c, c.children, m)
			if found != nil || err != nil {
				return found, err
			}
			continue
		}
		if m.Match(c) {
			return c, inheritDisplay(parent, c)
		}
	}
	return nil, nil
}

func collectAll(parent *Node, children []*Node, m Matcher, out *[]*Node) error {
	for _, c := range children {
		if c.released {
			continue
		}
		if c.kind.Container {
			if err := collectAll(c, c.children, m, out); err != nil {
				return err
			}
			continue
		}
		if m.Match(c) {
			if err := inheritDisplay(parent, c); err != nil {
				return err
			}
			*out = append(*out, c)
		}
	}
	return nil
}

func inheritDisplay(parent, child *Node) error {
	if parent == nil || !parent.kind.Is(KindGroup) {
		return nil
	}
	return CopyDisplay(parent, child)
}

// CopyDisplay copies to to the display values of from, except the
// excluded names, for the slots to leaves undefined.
func CopyDisplay(from, to *Node, exclude ...string) error {
	if from.released || to.released {
		return ErrReleased
	}
	skip := map[string]bool{}
	for _, name := range exclude {
		skip[name] = true
	}
	return to.arena.batch(func() error {
		for i, def := range from.kind.slots {
			if !def.Meta.Display || skip[def.Name] || from.values[i] == nil {
				continue
			}
			j, ok := to.kind.index[def.Name]
			if !ok || to.values[j] != nil {
				continue
			}
			v, err := to.validate(j, cloneValue(from.values[i]))
			if err != nil {
				return err
			}
			if err := to.assign(j, v); err != nil {
				return err
			}
		}
		return nil
	})
}
