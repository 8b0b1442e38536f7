package svgfile

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/benoitkugler/svgscene/svgnode"
)

// ErrorMode sets how Build reacts to unknown kinds and slots.
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unknown kinds and slots silently
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs a warning for each unknown kind or slot
	WarnErrorMode
	// StrictErrorMode fails on the first unknown kind or slot
	StrictErrorMode
)

// ErrUnknownKind is returned in StrictErrorMode for an element
// whose kind is not registered.
var ErrUnknownKind = errors.New("unknown element kind")

var (
	kindsMu sync.RWMutex
	kinds   = map[string]*svgnode.Kind{
		"g":        svgnode.KindGroup,
		"group":    svgnode.KindGroup,
		"circle":   svgnode.KindCircle,
		"ellipse":  svgnode.KindEllipse,
		"rect":     svgnode.KindRect,
		"line":     svgnode.KindLine,
		"polyline": svgnode.KindPolyline,
		"polygon":  svgnode.KindPolygon,
		"path":     svgnode.KindPath,
		"text":     svgnode.KindText,
	}
)

// RegisterKind makes a custom kind available to documents under name.
func RegisterKind(name string, k *svgnode.Kind) error {
	if k == nil || k.Abstract() {
		return svgnode.ErrAbstractKind
	}
	kindsMu.Lock()
	defer kindsMu.Unlock()
	kinds[strings.ToLower(name)] = k
	return nil
}

func lookupKind(name string) (*svgnode.Kind, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	k, ok := kinds[strings.ToLower(name)]
	return k, ok
}

type builder struct {
	arena *svgnode.Arena
	mode  ErrorMode
}

func (b builder) unknown(err error) error {
	if b.mode == StrictErrorMode {
		return err
	} else if b.mode == WarnErrorMode {
		log.Println("svgfile:", err)
	}
	return nil
}

// values normalizes the attributes, dropping the slots k does not have.
func (b builder) values(where string, k *svgnode.Kind, attrs map[string]interface{}) (map[string]interface{}, error) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(map[string]interface{}, len(attrs))
	for _, name := range names {
		if _, ok := k.Slot(name); !ok {
			err := fmt.Errorf("%s: slot %q: %w", where, name, svgnode.ErrUnknownSlot)
			if err = b.unknown(err); err != nil {
				return nil, err
			}
			continue
		}
		out[name] = normalize(attrs[name])
	}
	return out, nil
}

// splitDisplay moves the display values of vals to a new map.
func splitDisplay(k *svgnode.Kind, vals map[string]interface{}) map[string]interface{} {
	display := map[string]interface{}{}
	for name, v := range vals {
		if def, _ := k.Slot(name); def.Meta.Display {
			display[name] = v
			delete(vals, name)
		}
	}
	return display
}

// Build creates the scene in a, displayed by sink. The sink is
// notified once, when the whole tree is built.
func (s *Scene) Build(a *svgnode.Arena, sink svgnode.Sink, mode ErrorMode) (*svgnode.Node, error) {
	b := builder{arena: a, mode: mode}
	vals, err := b.values("svg", svgnode.KindSVG, s.Attrs)
	if err != nil {
		return nil, err
	}
	opts := []svgnode.Option{svgnode.WithValues(vals)}
	if s.Width != nil {
		opts = append(opts, svgnode.With("width", normalize(s.Width)))
	}
	if s.Height != nil {
		opts = append(opts, svgnode.With("height", normalize(s.Height)))
	}

	sw := a.Sync()
	enabled := sw.Enabled()
	sw.Set(false)
	root, err := a.NewSVG(sink, opts...)
	if err != nil {
		sw.Set(enabled)
		return nil, err
	}
	err = func() error {
		for i, e := range s.Children {
			t, err := b.build(root, fmt.Sprintf("svg/%d", i), e)
			if err != nil {
				return err
			}
			if t.node == nil {
				continue
			}
			if err := t.restoreDisplay(); err != nil {
				return err
			}
		}
		return nil
	}()
	if err != nil {
		_ = a.Release(root)
		sw.Set(enabled)
		return nil, err
	}
	sw.Set(enabled)
	if enabled {
		if err := root.Refresh(); err != nil {
			return root, err
		}
	}
	return root, nil
}

// built is a created node with the display values of its element.
type built struct {
	node     *svgnode.Node
	display  map[string]interface{}
	children []built
}

// restoreDisplay writes the display values top down, since a group
// resets the display values of its children.
func (t built) restoreDisplay() error {
	if len(t.display) > 0 {
		if err := t.node.Declare(t.display); err != nil {
			return fmt.Errorf("%s: %w", t.node, err)
		}
	}
	for _, c := range t.children {
		if err := c.restoreDisplay(); err != nil {
			return err
		}
	}
	return nil
}

// build creates the node of e and its subtree. Groups get their display
// values later, with restoreDisplay. A skipped element yields a nil node.
func (b builder) build(parent *svgnode.Node, where string, e Element) (built, error) {
	where += ":" + e.Kind
	k, ok := lookupKind(e.Kind)
	if !ok {
		return built{}, b.unknown(fmt.Errorf("%s: %w", where, ErrUnknownKind))
	}
	vals, err := b.values(where, k, e.Attrs)
	if err != nil {
		return built{}, err
	}
	display := splitDisplay(k, vals)
	if !k.Is(svgnode.KindGroup) {
		for name, v := range display {
			vals[name] = v
		}
	}
	n, err := b.create(k, vals, e)
	if err != nil {
		return built{}, fmt.Errorf("%s: %w", where, err)
	}
	if err := parent.Append(n); err != nil {
		_ = b.arena.Release(n)
		return built{}, fmt.Errorf("%s: %w", where, err)
	}
	t := built{node: n, display: display}
	for i, child := range e.Children {
		c, err := b.build(n, fmt.Sprintf("%s/%d", where, i), child)
		if err != nil {
			return built{}, err
		}
		if c.node != nil {
			t.children = append(t.children, c)
		}
	}
	return t, nil
}

// create returns the detached node of e.
func (b builder) create(k *svgnode.Kind, vals map[string]interface{}, e Element) (*svgnode.Node, error) {
	var n *svgnode.Node
	if k.Is(svgnode.KindPath) {
		p, err := b.arena.NewPath(svgnode.WithValues(vals))
		if err != nil {
			return nil, err
		}
		n = p.Node
		if err := extendPath(p, e.Segments); err != nil {
			_ = b.arena.Release(n)
			return nil, err
		}
	} else {
		var err error
		n, err = b.arena.New(k, svgnode.WithValues(vals))
		if err != nil {
			return nil, err
		}
	}
	if len(e.Transform) > 0 {
		if err := n.Transformation(e.Transform); err != nil {
			_ = b.arena.Release(n)
			return nil, err
		}
	}
	return n, nil
}

func extendPath(p *svgnode.Path, segments []Segment) error {
	if len(segments) == 0 {
		return nil
	}
	segs := make([]*svgnode.PathSegment, 0, len(segments))
	for _, s := range segments {
		seg, err := buildSegment(s)
		if err != nil {
			return err
		}
		segs = append(segs, seg)
	}
	return p.Extend(segs...)
}

func buildSegment(s Segment) (*svgnode.PathSegment, error) {
	if len(s.Command) != 1 {
		return nil, fmt.Errorf("invalid path command %q", s.Command)
	}
	var (
		seg *svgnode.PathSegment
		err error
	)
	switch strings.ToUpper(s.Command) {
	case "M":
		seg, err = svgnode.NewMoveTo(s.Coords...)
	case "A":
		seg, err = svgnode.NewArc(s.Coords...)
	case "L":
		seg, err = svgnode.NewLineTo(s.Coords...)
	default:
		return nil, fmt.Errorf("unsupported path command %q", s.Command)
	}
	if err != nil {
		return nil, err
	}
	if s.Command != strings.ToUpper(s.Command) {
		if err := seg.Rel(); err != nil {
			return nil, err
		}
	}
	if err := seg.SetClose(s.Close); err != nil {
		return nil, err
	}
	return seg, nil
}

// normalize maps decoded values to the types accepted by svgnode
// validators: whole numbers become ints and lists of pairs become points.
func normalize(v interface{}) interface{} {
	switch v := v.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int(v)
		}
		return v
	case []interface{}:
		if pts, ok := toPoints(v); ok {
			return pts
		}
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	}
	return v
}

func toPoints(list []interface{}) ([]svgnode.Point, bool) {
	if len(list) == 0 {
		return nil, false
	}
	out := make([]svgnode.Point, len(list))
	for i, item := range list {
		switch item := item.(type) {
		case []interface{}:
			if len(item) != 2 {
				return nil, false
			}
			x, okX := toFloat(item[0])
			y, okY := toFloat(item[1])
			if !okX || !okY {
				return nil, false
			}
			out[i] = svgnode.Point{X: x, Y: y}
		case map[string]interface{}:
			if len(item) != 2 {
				return nil, false
			}
			x, okX := toFloat(item["x"])
			y, okY := toFloat(item["y"])
			if !okX || !okY {
				return nil, false
			}
			out[i] = svgnode.Point{X: x, Y: y}
		default:
			return nil, false
		}
	}
	return out, true
}

func toFloat(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// Open loads the named document and builds it in a.
func Open(filename string, a *svgnode.Arena, sink svgnode.Sink, mode ErrorMode) (*svgnode.Node, error) {
	s, err := Load(filename)
	if err != nil {
		return nil, err
	}
	return s.Build(a, sink, mode)
}
