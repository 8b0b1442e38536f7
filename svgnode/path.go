package svgnode

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

type segmentLayout struct {
	op       string
	names    []string // empty for variadic pairs
	defaults []float64
}

var segmentLayouts = map[byte]segmentLayout{
	'M': {op: "MoveTo", names: []string{"x", "y"}, defaults: []float64{0, 0}},
	'A': {op: "EllipticalArc", names: []string{"rx", "ry", "x_rot", "arc_flag", "sweep_flag", "x", "y"}, defaults: []float64{20, 20, 0, 0, 0, 0, 0}},
	'L': {op: "LineTo", defaults: []float64{10, 10}},
}

// completeCoords checks the arity of coords and fills the
// missing trailing coordinates with the defaults of the command.
func (sp segmentLayout) completeCoords(coords []float64) ([]float64, error) {
	if sp.names == nil {
		if len(coords) == 0 {
			return append([]float64{}, sp.defaults...), nil
		}
		if len(coords)%2 != 0 {
			return nil, &StructuralError{Op: sp.op, Got: len(coords), Want: "an even number of"}
		}
		return append([]float64{}, coords...), nil
	}
	if len(coords) > len(sp.names) {
		return nil, &StructuralError{Op: sp.op, Got: len(coords), Want: fmt.Sprintf("at most %d", len(sp.names))}
	}
	out := append([]float64{}, sp.defaults...)
	copy(out, coords)
	return out, nil
}

// PathSegment is one command of a path data string.
// A segment belongs to at most one path at a time; changing it
// re-renders the path it belongs to.
type PathSegment struct {
	command byte // upper case when absolute
	close   bool
	coords  []float64
	owner   Ref
}

func newSegment(command byte, coords []float64) (*PathSegment, error) {
	coords, err := segmentLayouts[command].completeCoords(coords)
	if err != nil {
		return nil, err
	}
	return &PathSegment{command: command, coords: coords}, nil
}

// NewMoveTo returns an absolute "M x y" segment.
func NewMoveTo(coords ...float64) (*PathSegment, error) { return newSegment('M', coords) }

// NewArc returns an absolute "A rx ry x_rot arc_flag sweep_flag x y" segment.
func NewArc(coords ...float64) (*PathSegment, error) { return newSegment('A', coords) }

// NewLineTo returns an absolute "L x y [x y ...]" segment.
// coords holds pairs of coordinates.
func NewLineTo(coords ...float64) (*PathSegment, error) { return newSegment('L', coords) }

// Command returns the command letter, lower case for relative segments.
func (s *PathSegment) Command() byte { return s.command }

// Absolute returns true if the coordinates are absolute.
func (s *PathSegment) Absolute() bool { return unicode.IsUpper(rune(s.command)) }

// Closed returns true if the segment closes the current subpath.
func (s *PathSegment) Closed() bool { return s.close }

// Coords returns a copy of the coordinates, in command order.
func (s *PathSegment) Coords() []float64 { return append([]float64{}, s.coords...) }

func (s *PathSegment) layout() segmentLayout { return segmentLayouts[byte(unicode.ToUpper(rune(s.command)))] }

// CoordNames returns the names of the coordinates, or nil
// for line segments, whose coordinates are unnamed pairs.
func (s *PathSegment) CoordNames() []string { return append([]string(nil), s.layout().names...) }

// Coord returns the named coordinate.
func (s *PathSegment) Coord(name string) (float64, bool) {
	for i, n := range s.layout().names {
		if n == name {
			return s.coords[i], true
		}
	}
	return 0, false
}

// SetCoord changes the named coordinate.
func (s *PathSegment) SetCoord(name string, v float64) error {
	for i, n := range s.layout().names {
		if n == name {
			s.coords[i] = v
			return s.changed()
		}
	}
	return fmt.Errorf("%s segment has no coordinate %q", s.layout().op, name)
}

// SetCoords replaces all the coordinates, with the same rules
// as the segment constructors.
func (s *PathSegment) SetCoords(coords ...float64) error {
	coords, err := s.layout().completeCoords(coords)
	if err != nil {
		return err
	}
	s.coords = coords
	return s.changed()
}

// Points returns the coordinates of a line segment as points.
func (s *PathSegment) Points() []Point {
	out := make([]Point, len(s.coords)/2)
	for i := range out {
		out[i] = Point{X: s.coords[2*i], Y: s.coords[2*i+1]}
	}
	return out
}

// SetPoints replaces the coordinates of a line segment.
func (s *PathSegment) SetPoints(pts []Point) error {
	if s.layout().names != nil {
		return fmt.Errorf("%s segment coordinates are not points", s.layout().op)
	}
	coords := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		coords = append(coords, p.X, p.Y)
	}
	return s.SetCoords(coords...)
}

// Abs makes the segment absolute.
func (s *PathSegment) Abs() error {
	s.command = byte(unicode.ToUpper(rune(s.command)))
	return s.changed()
}

// Rel makes the segment relative. Coordinates are kept as is.
func (s *PathSegment) Rel() error {
	s.command = byte(unicode.ToLower(rune(s.command)))
	return s.changed()
}

// SetClose adds or removes the trailing Z command.
func (s *PathSegment) SetClose(close bool) error {
	s.close = close
	return s.changed()
}

// Render returns the path data of the segment alone.
func (s *PathSegment) Render() string {
	chunks := make([]string, 0, len(s.coords)+1)
	chunks = append(chunks, string(s.command))
	for _, c := range s.coords {
		chunks = append(chunks, formatFloat(c))
	}
	out := strings.Join(chunks, " ")
	if s.close {
		out += " Z"
	}
	return out
}

// Prepend inserts the segment at the start of p.
func (s *PathSegment) Prepend(p *Path) error { return p.Insert(0, s) }

// Clone returns a detached copy of s.
func (s *PathSegment) Clone() *PathSegment {
	return &PathSegment{command: s.command, close: s.close, coords: s.Coords()}
}

// Path returns the path holding s, or nil.
func (s *PathSegment) Path() *Path {
	n, ok := s.owner.Get()
	if !ok || n.path == nil {
		return nil
	}
	return &Path{n}
}

func (s *PathSegment) changed() error {
	if p := s.Path(); p != nil {
		return p.Render()
	}
	return nil
}

// pathState is the segment list of a path node.
type pathState struct {
	segments []*PathSegment
	err      error // first error of a fluent call chain
}

// Path is a node of kind path, with its segment list.
// The d attribute is rendered from the segments.
type Path struct {
	*Node
}

var errSegmentOwned = errors.New("segment already belongs to a path")

// AsPath returns n as a Path, if it is of kind path.
func AsPath(n *Node) (*Path, bool) {
	if n == nil || n.path == nil {
		return nil, false
	}
	return &Path{n}, true
}

// NewPath creates a detached path node.
func (a *Arena) NewPath(opts ...Option) (*Path, error) {
	n, err := a.New(KindPath, opts...)
	if err != nil {
		return nil, err
	}
	return &Path{n}, nil
}

// Render writes the path data of the segments to the d slot.
func (p *Path) Render() error {
	chunks := make([]string, len(p.path.segments))
	for i, s := range p.path.segments {
		chunks[i] = s.Render()
	}
	return p.Set("d", strings.Join(chunks, " "))
}

// Segments returns a copy of the segment list.
func (p *Path) Segments() []*PathSegment {
	return append([]*PathSegment(nil), p.path.segments...)
}

func (p *Path) checkSegment(s *PathSegment) error {
	if p.released {
		return ErrReleased
	}
	if s == nil {
		return errors.New("nil segment")
	}
	if s.owner.Valid() {
		return errSegmentOwned
	}
	return nil
}

// Append adds s at the end of the path.
func (p *Path) Append(s *PathSegment) error { return p.Insert(len(p.path.segments), s) }

// Insert adds s at position i.
func (p *Path) Insert(i int, s *PathSegment) error {
	if err := p.checkSegment(s); err != nil {
		return err
	}
	segs := p.path.segments
	if i < 0 || i > len(segs) {
		return fmt.Errorf("insert index %d out of range [0, %d]", i, len(segs))
	}
	segs = append(segs, nil)
	copy(segs[i+1:], segs[i:])
	segs[i] = s
	p.path.segments = segs
	s.owner = p.Ref()
	return p.Render()
}

// Extend appends several segments, checked before any is added.
func (p *Path) Extend(segs ...*PathSegment) error {
	for i, s := range segs {
		if err := p.checkSegment(s); err != nil {
			return err
		}
		for _, other := range segs[:i] {
			if other == s {
				return errSegmentOwned
			}
		}
	}
	for _, s := range segs {
		s.owner = p.Ref()
	}
	p.path.segments = append(p.path.segments, segs...)
	return p.Render()
}

// Pop removes and returns the segment at index i.
// A negative index counts from the end.
func (p *Path) Pop(i int) (*PathSegment, error) {
	segs := p.path.segments
	if i < 0 {
		i += len(segs)
	}
	if i < 0 || i >= len(segs) {
		return nil, fmt.Errorf("pop index %d out of range", i)
	}
	s := segs[i]
	p.path.segments = append(segs[:i], segs[i+1:]...)
	s.owner = Ref{}
	return s, p.Render()
}

// Join appends copies of the segments of other to p.
func (p *Path) Join(other *Path) error {
	segs := make([]*PathSegment, len(other.path.segments))
	for i, s := range other.path.segments {
		segs[i] = s.Clone()
	}
	return p.Extend(segs...)
}

// Err returns the first error met by the fluent methods.
func (p *Path) Err() error { return p.path.err }

func (p *Path) chain(command byte, relative bool, coords []float64) *Path {
	if p.path.err != nil {
		return p
	}
	s, err := newSegment(command, coords)
	if err == nil {
		if relative {
			s.command = byte(unicode.ToLower(rune(command)))
		}
		err = p.Append(s)
	}
	p.path.err = err
	return p
}

// M appends an absolute move to.
func (p *Path) M(coords ...float64) *Path { return p.chain('M', false, coords) }

// MRel appends a relative move to (the "m" command).
func (p *Path) MRel(coords ...float64) *Path { return p.chain('M', true, coords) }

// A appends an absolute elliptical arc.
func (p *Path) A(coords ...float64) *Path { return p.chain('A', false, coords) }

// ARel appends a relative elliptical arc (the "a" command).
func (p *Path) ARel(coords ...float64) *Path { return p.chain('A', true, coords) }

// L appends an absolute line to.
func (p *Path) L(coords ...float64) *Path { return p.chain('L', false, coords) }

// LRel appends a relative line to (the "l" command).
func (p *Path) LRel(coords ...float64) *Path { return p.chain('L', true, coords) }
