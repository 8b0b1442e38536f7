package svgnode

import "errors"

// SelectOption builds the query of Select and SelectAll.
type SelectOption func(*query)

type query struct {
	selectors []*Selector
	meta      Metadata // nil means the default {"attr": true}

	kind     *Kind
	subclass bool
	kindOpts int
}

// Has requires the slots to exist.
func Has(names ...string) SelectOption {
	return func(q *query) {
		for _, name := range names {
			q.selectors = append(q.selectors, Exists(name))
		}
	}
}

// Eq requires the slot name to hold value. value may also be
// a Matcher, applied to the node referenced by the slot.
func Eq(name string, value interface{}) SelectOption {
	return func(q *query) { q.selectors = append(q.selectors, Equals(name, value)) }
}

// WithMeta requires the selected slots to carry the metadata key
// with the given value. It replaces the default requirement that
// slots are rendered attributes.
func WithMeta(key string, value interface{}) SelectOption {
	return func(q *query) {
		if q.meta == nil {
			q.meta = Metadata{}
		}
		q.meta[key] = value
	}
}

// AnyMeta removes any metadata requirement.
func AnyMeta() SelectOption {
	return func(q *query) {
		if q.meta == nil {
			q.meta = Metadata{}
		}
	}
}

// OfKind restricts the matches to the nodes of kind k
// and makes SelectAll return a *Collection of that kind.
func OfKind(k *Kind) SelectOption {
	return func(q *query) {
		q.kind, q.subclass = k, false
		q.kindOpts++
	}
}

// OfClass restricts the matches to the kinds inheriting from k
// and makes SelectAll return a *Composite.
func OfClass(k *Kind) SelectOption {
	return func(q *query) {
		q.kind, q.subclass = k, true
		q.kindOpts++
	}
}

var errKindOptions = errors.New("OfKind and OfClass are exclusive")

func newQuery(opts []SelectOption) (*query, error) {
	var q query
	for _, opt := range opts {
		opt(&q)
	}
	if q.kindOpts > 1 {
		return nil, errKindOptions
	}
	if q.meta == nil {
		q.meta = Metadata{"attr": true}
	}
	return &q, nil
}

func (q *query) matcher() Matcher {
	cs := NewCompositeSelector(q.meta, q.selectors...)
	if q.kind == nil {
		return cs
	}
	return kindMatcher{cs: cs, kind: q.kind, subclass: q.subclass}
}

// registry returns an empty registry for the results.
func (q *query) registry() Registry {
	if q.subclass {
		return NewComposite(q.kind)
	}
	return NewCollection(q.kind)
}

type kindMatcher struct {
	cs       *CompositeSelector
	kind     *Kind
	subclass bool
}

func (m kindMatcher) Match(n *Node) bool {
	if m.subclass {
		if !n.kind.Is(m.kind) {
			return false
		}
	} else if n.kind != m.kind {
		return false
	}
	return m.cs.Match(n)
}

// Select returns the first descendant of n matching the options,
// or nil. See Collect for the traversal.
func (n *Node) Select(opts ...SelectOption) (*Node, error) {
	q, err := newQuery(opts)
	if err != nil {
		return nil, err
	}
	return Collect(n, q.matcher())
}

// SelectAll returns all the descendants of n matching the options.
func (n *Node) SelectAll(opts ...SelectOption) (Registry, error) {
	q, err := newQuery(opts)
	if err != nil {
		return nil, err
	}
	found, err := CollectAll(n, q.matcher())
	if err != nil {
		return nil, err
	}
	out := q.registry()
	return out, out.Extend(found...)
}
