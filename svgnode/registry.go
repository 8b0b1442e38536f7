package svgnode

import "fmt"

// Registry is a set of non-owning references to nodes, checked
// against a kind. Released members are silently skipped.
type Registry interface {
	// Kind returns the required kind, nil if any node is accepted.
	Kind() *Kind
	// Verify returns true if all the nodes may be added.
	Verify(nodes ...*Node) bool
	Append(n *Node) error
	Extend(nodes ...*Node) error
	// Children returns the live members.
	Children() []*Node
	Len() int

	// HasSlot returns true if every member has the slot.
	HasSlot(name string) bool
	// Set writes the slot of every member.
	Set(name string, value interface{}) error
	Declare(values map[string]interface{}) error
	Data() []map[string]interface{}

	Select(opts ...SelectOption) (*Node, error)
	SelectAll(opts ...SelectOption) (Registry, error)
}

type registry struct {
	kind     *Kind
	subclass bool
	refs     []Ref
}

// Collection is a registry whose members are exactly of a kind.
type Collection struct{ registry }

// Composite is a registry whose members inherit from a kind.
type Composite struct{ registry }

// NewCollection returns a collection of nodes of kind k,
// initialized with nodes. A nil kind accepts any node.
// The nodes of the wrong kind are ignored.
func NewCollection(k *Kind, nodes ...*Node) *Collection {
	c := &Collection{registry{kind: k}}
	c.addValid(nodes)
	return c
}

// NewComposite returns a composite of nodes whose kind inherits from k,
// initialized with nodes. A nil kind accepts any node.
// The nodes of the wrong kind are ignored.
func NewComposite(k *Kind, nodes ...*Node) *Composite {
	c := &Composite{registry{kind: k, subclass: true}}
	c.addValid(nodes)
	return c
}

func (r *registry) addValid(nodes []*Node) {
	for _, n := range nodes {
		if r.accepts(n) {
			r.refs = append(r.refs, n.Ref())
		}
	}
}

func (r *registry) Kind() *Kind { return r.kind }

func (r *registry) accepts(n *Node) bool {
	if n == nil || n.released {
		return false
	}
	switch {
	case r.kind == nil:
		return true
	case r.subclass:
		return n.kind.Is(r.kind)
	default:
		return n.kind == r.kind
	}
}

func (r *registry) Verify(nodes ...*Node) bool {
	for _, n := range nodes {
		if !r.accepts(n) {
			return false
		}
	}
	return true
}

func (r *registry) rejection(nodes []*Node) error {
	got := "nil"
	for _, n := range nodes {
		if !r.accepts(n) {
			if n != nil {
				got = n.kind.Name
			}
			break
		}
	}
	want := "any kind"
	if r.kind != nil {
		want = r.kind.Name
	}
	return &RegistryError{Want: want, Got: got, Subclass: r.subclass}
}

func (r *registry) Append(n *Node) error { return r.Extend(n) }

func (r *registry) Extend(nodes ...*Node) error {
	if !r.Verify(nodes...) {
		return r.rejection(nodes)
	}
	for _, n := range nodes {
		r.refs = append(r.refs, n.Ref())
	}
	return nil
}

func (r *registry) Children() []*Node {
	out := make([]*Node, 0, len(r.refs))
	for _, ref := range r.refs {
		if n, ok := ref.Get(); ok {
			out = append(out, n)
		}
	}
	return out
}

func (r *registry) Len() int { return len(r.Children()) }

func (r *registry) HasSlot(name string) bool {
	for _, n := range r.Children() {
		if !n.HasSlot(name) {
			return false
		}
	}
	return true
}

func (r *registry) Set(name string, value interface{}) error {
	return r.Declare(map[string]interface{}{name: value})
}

// Declare checks every value against every member before
// modifying any of them.
func (r *registry) Declare(values map[string]interface{}) error {
	members := r.Children()
	for name := range values {
		for _, n := range members {
			if !n.HasSlot(name) {
				return fmt.Errorf("%w: %s is not a slot of %s", ErrUnknownSlot, name, n)
			}
		}
	}
	type update struct {
		n       *Node
		indices []int
		values  []interface{}
	}
	updates := make([]update, len(members))
	for j, n := range members {
		indices, normalized, err := n.validateAll(values, nil)
		if err != nil {
			return err
		}
		updates[j] = update{n, indices, normalized}
	}
	return batchAll(r.arenas(members), func() error {
		for _, u := range updates {
			for k, i := range u.indices {
				u.n.unbind(i)
				if err := u.n.assign(i, u.values[k]); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *registry) Data() []map[string]interface{} {
	members := r.Children()
	out := make([]map[string]interface{}, len(members))
	for i, n := range members {
		out[i] = n.Data()
	}
	return out
}

func (r *registry) arenas(members []*Node) []*Arena {
	var out []*Arena
	seen := map[*Arena]bool{}
	for _, n := range members {
		if !seen[n.arena] {
			seen[n.arena] = true
			out = append(out, n.arena)
		}
	}
	return out
}

// Select returns the first match among the members (and the
// descendants of container members).
func (r *registry) Select(opts ...SelectOption) (*Node, error) {
	q, err := newQuery(opts)
	if err != nil {
		return nil, err
	}
	members := r.Children()
	var found *Node
	err = batchAll(r.arenas(members), func() error {
		found, err = collect(nil, members, q.matcher())
		return err
	})
	return found, err
}

// SelectAll returns all the matches among the members.
func (r *registry) SelectAll(opts ...SelectOption) (Registry, error) {
	q, err := newQuery(opts)
	if err != nil {
		return nil, err
	}
	members := r.Children()
	var found []*Node
	err = batchAll(r.arenas(members), func() error {
		return collectAll(nil, members, q.matcher(), &found)
	})
	if err != nil {
		return nil, err
	}
	out := q.registry()
	return out, out.Extend(found...)
}
