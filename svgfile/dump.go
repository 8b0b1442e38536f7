package svgfile

import (
	"fmt"
	"sort"

	"github.com/benoitkugler/svgscene/svgnode"
)

var transformFuncs = [...]string{"translate", "rotate", "scale", "skewX", "skewY", "matrix"}

// FromNode returns the document of the tree rooted at root,
// which must be an svg node.
func FromNode(root *svgnode.Node) (*Scene, error) {
	if root.Released() {
		return nil, svgnode.ErrReleased
	}
	if root.Kind() != svgnode.KindSVG {
		return nil, fmt.Errorf("expected an svg root, got %s", root.Kind())
	}
	s := &Scene{
		Width:  root.Value("width"),
		Height: root.Value("height"),
		Attrs:  slotValues(root, "width", "height"),
	}
	for _, c := range root.Children() {
		e, err := fromNode(c)
		if err != nil {
			return nil, err
		}
		s.Children = append(s.Children, e)
	}
	return s, nil
}

func fromNode(n *svgnode.Node) (Element, error) {
	name, ok := kindName(n.Kind())
	if !ok {
		return Element{}, fmt.Errorf("%s: %w", n, ErrUnknownKind)
	}
	e := Element{Kind: name}
	skip := []string{}
	if p, ok := svgnode.AsPath(n); ok && len(p.Segments()) > 0 {
		skip = append(skip, "d")
		for _, seg := range p.Segments() {
			e.Segments = append(e.Segments, Segment{
				Command: string(seg.Command()),
				Coords:  seg.Coords(),
				Close:   seg.Closed(),
			})
		}
	}
	if n.Kind().Is(svgnode.KindLine) {
		skip = append(skip, "points") // follows the coordinates
	}
	e.Attrs = slotValues(n, skip...)
	for _, op := range transformFuncs {
		if args, _ := n.Value("_" + op).([]float64); len(args) > 0 {
			if e.Transform == nil {
				e.Transform = map[string][]float64{}
			}
			e.Transform[op] = args
		}
	}
	for _, c := range n.Children() {
		ce, err := fromNode(c)
		if err != nil {
			return Element{}, err
		}
		e.Children = append(e.Children, ce)
	}
	return e, nil
}

// slotValues returns the values set on the attribute and data slots of n.
func slotValues(n *svgnode.Node, skip ...string) map[string]interface{} {
	skipped := map[string]bool{}
	for _, name := range skip {
		skipped[name] = true
	}
	out := map[string]interface{}{}
	for _, def := range n.Kind().Slots() {
		if skipped[def.Name] || def.Meta.Trans || def.ReadOnly {
			continue
		}
		if !def.Meta.IsAttr() && !def.Meta.Data {
			continue
		}
		if v := n.Value(def.Name); v != nil {
			out[def.Name] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// kindName returns the document name of k, preferring its tag.
func kindName(k *svgnode.Kind) (string, bool) {
	if found, ok := lookupKind(k.Tag); ok && found == k {
		return k.Tag, true
	}
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	names := make([]string, 0, len(kinds))
	for name, found := range kinds {
		if found == k {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return names[0], true
}

// Dump writes the document of the tree rooted at root to the named
// file, its format being chosen by extension.
func Dump(filename string, root *svgnode.Node) error {
	s, err := FromNode(root)
	if err != nil {
		return err
	}
	return Save(filename, s)
}
