package svgnode

import (
	"errors"
	"testing"
)

func newArena() *Arena { return NewArena(DefaultConfig()) }

func TestLengthNormalization(t *testing.T) {
	a := newArena()
	c, err := a.New(KindCircle)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		in       interface{}
		expected string
	}{
		{0, "0px"},
		{12, "12px"},
		{-4, "-4px"},
		{int64(1 << 40), "1099511627776px"},
		{"3em", "3em"},
		{"", ""},
	} {
		if err := c.Set("r", test.in); err != nil {
			t.Fatal(err)
		}
		if got := c.Value("r"); got != test.expected {
			t.Errorf("expected %s, got %v", test.expected, got)
		}
	}

	err = c.Set("r", nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if c.Value("r") != "" {
		t.Errorf("rejected value must leave the slot unchanged, got %v", c.Value("r"))
	}
	if err := c.Set("r", 2.5); !errors.As(err, &verr) {
		t.Errorf("expected a validation error for a float length, got %v", err)
	}
}

func TestUnknownAndReadOnlySlots(t *testing.T) {
	a := newArena()
	c, _ := a.New(KindCircle)
	if err := c.Set("nope", 1); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("expected ErrUnknownSlot, got %v", err)
	}
	var verr *ValidationError
	if err := c.Set("parent", nil); !errors.As(err, &verr) {
		t.Errorf("parent must be read-only, got %v", err)
	}
	if _, err := a.New(KindShape); !errors.Is(err, ErrAbstractKind) {
		t.Errorf("expected ErrAbstractKind, got %v", err)
	}
	if _, err := a.New(KindCircle, With("cx", true)); !errors.As(err, &verr) {
		t.Errorf("expected a validation error, got %v", err)
	}
	if a.Len() != 1 {
		t.Errorf("failed creations must not leak nodes, got %d", a.Len())
	}
}

func TestDeclareIsAtomic(t *testing.T) {
	a := newArena()
	c, _ := a.New(KindCircle)
	err := c.Declare(map[string]interface{}{"cx": 1, "cy": 2, "r": false})
	if err == nil {
		t.Fatal("expected an error")
	}
	if c.Value("cx") != "12px" || c.Value("cy") != "12px" {
		t.Errorf("no value must be stored on failure: %v %v", c.Value("cx"), c.Value("cy"))
	}
	if err := c.Declare(map[string]interface{}{"cx": 1, "cy": 2}); err != nil {
		t.Fatal(err)
	}
	if c.Value("cx") != "1px" || c.Value("cy") != "2px" {
		t.Errorf("unexpected values %v %v", c.Value("cx"), c.Value("cy"))
	}
}

func TestTree(t *testing.T) {
	a := newArena()
	root, err := a.NewSVG(nil)
	if err != nil {
		t.Fatal(err)
	}
	g, _ := root.Group()
	c, _ := g.Circle()
	if c.Parent() != g || g.Parent() != root {
		t.Fatal("invalid parents")
	}
	if err := c.Append(g); !errors.Is(err, ErrNotContainer) {
		t.Errorf("expected ErrNotContainer, got %v", err)
	}
	if err := g.Append(root); err == nil {
		t.Error("a node can't contain its ancestor")
	}

	// move semantics
	if err := root.Append(c); err != nil {
		t.Fatal(err)
	}
	if g.Len() != 0 || root.Len() != 2 || c.Parent() != root {
		t.Errorf("unexpected tree after move: %d %d", g.Len(), root.Len())
	}
	if err := root.Insert(0, c); err != nil {
		t.Fatal(err)
	}
	if root.Index(c) != 0 || root.Len() != 2 {
		t.Errorf("unexpected position %d", root.Index(c))
	}

	if err := root.Remove(c); err != nil {
		t.Fatal(err)
	}
	if c.Parent() != nil || c.Released() {
		t.Error("removed node must be detached but alive")
	}

	ref := g.Ref()
	gc, _ := g.Circle()
	if err := a.Release(g); err != nil {
		t.Fatal(err)
	}
	if ref.Valid() || !gc.Released() || root.Len() != 0 {
		t.Error("release must drop the whole subtree")
	}
	if err := g.Set("fill", "red"); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}
	if a.Len() != 2 {
		t.Errorf("expected 2 live nodes, got %d", a.Len())
	}

	// handles are recycled with a new generation
	n, _ := a.New(KindRect)
	if n.Handle() == ref.Handle() {
		t.Error("recycled handle must differ")
	}
}

func TestLinePointsSync(t *testing.T) {
	a := newArena()
	l, err := a.New(KindLine, With("x1", 5))
	if err != nil {
		t.Fatal(err)
	}
	pts := l.Value("points").([]Point)
	if pts[0] != (Point{5, 2}) || pts[1] != (Point{12, 12}) {
		t.Errorf("unexpected points %v", pts)
	}
	if err := l.Set("points", [][2]float64{{1, 2}, {3, 4}}); err != nil {
		t.Fatal(err)
	}
	for name, exp := range map[string]string{"x1": "1px", "y1": "2px", "x2": "3px", "y2": "4px"} {
		if got := l.Value(name); got != exp {
			t.Errorf("%s: expected %s, got %v", name, exp, got)
		}
	}
	if err := l.Set("y2", "1em"); err != nil {
		t.Fatal(err)
	}
	if l.Value("points") != nil {
		t.Errorf("points must be undefined with non pixel coordinates, got %v", l.Value("points"))
	}
	var verr *ValidationError
	if err := l.Set("points", []Point{{1, 1}}); !errors.As(err, &verr) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestData(t *testing.T) {
	a := newArena()
	c, _ := a.New(KindCircle)
	if err := c.SetData(map[string]interface{}{"fill": "red", "r": 4}); err != nil {
		t.Fatal(err)
	}
	data := c.Data()
	if data["fill"] != "red" || data["r"] != "4px" {
		t.Errorf("unexpected data %v", data)
	}
	if _, ok := data["transform"]; ok {
		t.Error("transform is not a data slot")
	}
	if err := c.SetData(map[string]interface{}{"transform": `"x"`}); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("expected ErrUnknownSlot, got %v", err)
	}
	b, err := c.DataJSON()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 || b[0] != '{' {
		t.Errorf("unexpected json %s", b)
	}
}

type tagsValidator struct{}

func (tagsValidator) String() string { return "Tags" }

func (tagsValidator) Validate(_ *Node, v interface{}) (interface{}, error) {
	tags, ok := v.(map[string]string)
	if !ok {
		return nil, errors.New("expected tags")
	}
	out := make(map[string]string, len(tags))
	for k, t := range tags {
		out[k] = t
	}
	return out, nil
}

func TestUncomparableValues(t *testing.T) {
	tagged, err := Define("Tagged", "tagged", KindShape, "",
		SlotDef{Name: "tags", Validator: tagsValidator{}, Default: map[string]string{}, Meta: Meta{Data: true}})
	if err != nil {
		t.Fatal(err)
	}
	n, err := newArena().New(tagged)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	_, _ = n.Observe("tags", func(*Node, string, interface{}, interface{}) error {
		calls++
		return nil
	})
	for _, tags := range []map[string]string{{"a": "1"}, {"a": "1"}, {"a": "2"}} {
		if err := n.Set("tags", tags); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 {
		t.Errorf("expected 2 changes, got %d", calls)
	}
	if tags, _ := n.Value("tags").(map[string]string); tags["a"] != "2" {
		t.Errorf("unexpected tags %v", n.Value("tags"))
	}
}
