package svgnode

import (
	"errors"
	"testing"
)

func TestRegistryVerify(t *testing.T) {
	a := newArena()
	c, _ := a.New(KindCircle)
	r, _ := a.New(KindRect)
	pg, _ := a.New(KindPolygon)

	col := NewCollection(KindCircle, c)
	if !col.Verify(c) || col.Verify(c, r) {
		t.Error("unexpected verify result")
	}
	var rerr *RegistryError
	if err := col.Append(r); !errors.As(err, &rerr) || rerr.Subclass || rerr.Want != "Circle" || rerr.Got != "Rect" {
		t.Errorf("expected a registry error, got %v", err)
	}
	if col.Len() != 1 {
		t.Error("a rejected node must not be added")
	}

	polylines := NewCollection(KindPolyline)
	if err := polylines.Append(pg); !errors.As(err, &rerr) {
		t.Errorf("collections check the exact kind, got %v", err)
	}
	comp := NewComposite(KindPolyline)
	if err := comp.Append(pg); err != nil {
		t.Error(err)
	}
	if err := comp.Extend(c, pg); !errors.As(err, &rerr) || !rerr.Subclass {
		t.Errorf("expected a registry error, got %v", err)
	}

	mixedKinds := NewComposite(nil, c, r, pg)
	if mixedKinds.Len() != 3 || mixedKinds.Kind() != nil {
		t.Errorf("expected 3 members, got %d", mixedKinds.Len())
	}
}

func TestRegistryDeadReferences(t *testing.T) {
	a := newArena()
	var nodes []*Node
	for i := 0; i < 4; i++ {
		n, _ := a.New(KindCircle, With("r", i))
		nodes = append(nodes, n)
	}
	col := NewCollection(KindCircle, nodes...)
	if err := a.Release(nodes[1]); err != nil {
		t.Fatal(err)
	}
	if err := a.Release(nodes[3]); err != nil {
		t.Fatal(err)
	}
	children := col.Children()
	if len(children) != 2 || children[0] != nodes[0] || children[1] != nodes[2] {
		t.Errorf("released members must be skipped, got %v", children)
	}
	// a new node reusing the slot of a released one is not a member
	if _, err := a.New(KindCircle); err != nil {
		t.Fatal(err)
	}
	if col.Len() != 2 {
		t.Errorf("expected 2 members, got %d", col.Len())
	}
	if err := col.Set("fill", "red"); err != nil {
		t.Fatal(err)
	}
	if len(col.Data()) != 2 || col.Data()[1]["fill"] != "red" {
		t.Errorf("unexpected data %v", col.Data())
	}
}

func TestRegistryBroadcast(t *testing.T) {
	a := newArena()
	root, _ := a.NewSVG(nil)
	c, _ := root.Circle()
	r, _ := root.Rect()
	t1, _ := root.Text()

	shapes := NewComposite(KindShape, c, r)
	if !shapes.HasSlot("fill") || shapes.HasSlot("cx") {
		t.Error("unexpected HasSlot result")
	}
	if err := shapes.Set("cx", 1); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("expected ErrUnknownSlot, got %v", err)
	}
	if err := shapes.Declare(map[string]interface{}{"fill": "blue", "stroke_width": "nope"}); err != nil {
		t.Fatal(err)
	}
	if c.Value("fill") != "blue" || r.Value("stroke_width") != "nope" {
		t.Error("values not broadcast")
	}
	if err := shapes.Set("stroke", 3); err == nil {
		t.Error("expected a validation error")
	}
	if c.Value("stroke") != "gray" {
		t.Error("failed broadcast must not modify the members")
	}

	mixed := NewComposite(nil, root, t1)
	found, err := mixed.Select(Has("cx"))
	if err != nil {
		t.Fatal(err)
	}
	if found != c {
		t.Errorf("expected the circle, got %v", found)
	}
	all, err := mixed.SelectAll(Has("fill"))
	if err != nil {
		t.Fatal(err)
	}
	// the text is both a member and a descendant of the root
	if all.Len() != 4 {
		t.Errorf("expected 4 matches, got %d", all.Len())
	}

	g, _ := root.Group()
	if err := g.AppendCollection(shapes); err != nil {
		t.Fatal(err)
	}
	if g.Len() != 2 || c.Parent() != g {
		t.Error("collection not moved into the group")
	}
}
