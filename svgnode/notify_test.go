package svgnode

import (
	"errors"
	"strings"
	"testing"
)

func TestObserve(t *testing.T) {
	a := newArena()
	c, _ := a.New(KindCircle)
	var calls []string
	id, err := c.Observe("r", func(n *Node, name string, old, new interface{}) error {
		calls = append(calls, name+":"+old.(string)+"->"+new.(string))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set("r", 1)
	_ = c.Set("r", 1)
	_ = c.Set("r", 2)
	if len(calls) != 2 || calls[0] != "r:10px->1px" || calls[1] != "r:1px->2px" {
		t.Errorf("unexpected calls %v", calls)
	}
	if !c.Unobserve(id) || c.Unobserve(id) {
		t.Error("unexpected unobserve result")
	}
	_ = c.Set("r", 3)
	if len(calls) != 2 {
		t.Error("handler still called")
	}

	failure := errors.New("rejected")
	_, _ = c.Observe("cx", func(*Node, string, interface{}, interface{}) error { return failure })
	if err := c.Set("cx", 0); !errors.Is(err, failure) {
		t.Errorf("handler errors must reach the caller, got %v", err)
	}
	if _, err := c.Observe("nope", nil); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("expected ErrUnknownSlot, got %v", err)
	}
}

func TestDisplayCascade(t *testing.T) {
	a := newArena()
	root, _ := a.NewSVG(nil)
	g, _ := root.Group()
	c, _ := g.Circle(With("fill", "blue"))
	txt, _ := g.Text(With("fill", "green"))

	if c.AllowsNone("fill") {
		t.Fatal("fill is required on shapes")
	}
	if err := g.Set("fill", "red"); err != nil {
		t.Fatal(err)
	}
	for _, n := range []*Node{c, txt} {
		if n.Value("fill") != nil || !n.AllowsNone("fill") {
			t.Errorf("%s: fill must be reset", n)
		}
		markup, _ := n.Markup()
		if strings.Contains(markup, "fill=") {
			t.Errorf("%s: fill must not be rendered: %s", n, markup)
		}
	}
	markup, _ := g.Markup()
	if !strings.Contains(markup, `<g fill="red"`) {
		t.Errorf("unexpected group markup %s", markup)
	}

	// one way: the child may set its own value again, or none
	if err := c.Set("fill", "blue"); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("fill", nil); err != nil {
		t.Errorf("relaxed slot must accept none: %v", err)
	}

	// other display slots are untouched
	if c.Value("stroke") != "gray" {
		t.Errorf("unexpected stroke %v", c.Value("stroke"))
	}
}

func TestDerive(t *testing.T) {
	a := newArena()
	src, _ := a.New(KindCircle, With("r", 4))
	dst, _ := a.New(KindRect)

	double := func(v interface{}) interface{} {
		f, _ := lengthValue(v)
		return int(2 * f)
	}
	if err := dst.Derive("width", src, "r", double); err != nil {
		t.Fatal(err)
	}
	if dst.Value("width") != "8px" || !dst.Derived("width") {
		t.Errorf("unexpected derived value %v", dst.Value("width"))
	}
	_ = src.Set("r", 10)
	if dst.Value("width") != "20px" {
		t.Errorf("derived value not updated: %v", dst.Value("width"))
	}

	if err := dst.Derive("height", src, "cx", nil); err != nil {
		t.Fatal(err)
	}
	_ = src.Set("cx", "3em")
	if dst.Value("height") != "3em" {
		t.Errorf("unexpected copy %v", dst.Value("height"))
	}

	// a literal write breaks the link
	_ = dst.Set("width", 1)
	_ = src.Set("r", 50)
	if dst.Value("width") != "1px" || dst.Derived("width") {
		t.Errorf("unexpected value %v", dst.Value("width"))
	}

	// released targets and sources are tolerated
	if err := a.Release(dst); err != nil {
		t.Fatal(err)
	}
	if err := src.Set("cx", 1); err != nil {
		t.Errorf("released target must be ignored: %v", err)
	}

	var verr *ValidationError
	other, _ := a.New(KindRect)
	if err := other.Derive("width", src, "fill", func(interface{}) interface{} { return 1.5 }); !errors.As(err, &verr) {
		t.Errorf("expected a validation error, got %v", err)
	}
	if other.Derived("width") {
		t.Error("failed derivation must not bind")
	}
}

func TestFailedMutationRollback(t *testing.T) {
	a := newArena()
	sink := &recordingSink{}
	root, _ := a.NewSVG(sink)
	src, _ := root.Circle()
	dst, _ := root.Circle()

	half := func(v interface{}) interface{} {
		if v == "12px" {
			return 6
		}
		return 3.5 // rejected by Length
	}
	if err := dst.Derive("r", src, "cx", half); err != nil {
		t.Fatal(err)
	}
	before, _ := root.Markup()
	count := len(sink.markups)

	check := func(step string) {
		t.Helper()
		if src.Value("cx") != "12px" || src.Value("cy") != "12px" || src.Value("r") != "10px" {
			t.Errorf("%s: source changed: %v", step, src.Data())
		}
		if src.Data()["cx"] != "12px" {
			t.Errorf("%s: stale data %v", step, src.Data())
		}
		if dst.Value("r") != "6px" || !dst.Derived("r") {
			t.Errorf("%s: unexpected target %v", step, dst.Value("r"))
		}
		if markup, _ := root.Markup(); markup != before {
			t.Errorf("%s: markup changed:\n%s", step, markup)
		}
		if len(sink.markups) != count || sink.markups[count-1] != before {
			t.Errorf("%s: the sink must keep the last valid markup", step)
		}
	}

	var verr *ValidationError
	if err := src.Set("cx", 40); !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	check("derived update")

	failure := errors.New("rejected")
	reject := func(*Node, string, interface{}, interface{}) error { return failure }
	_, _ = src.Observe("r", reject)
	if err := src.Declare(map[string]interface{}{"cy": 30, "r": 1}); !errors.Is(err, failure) {
		t.Fatalf("expected the handler error, got %v", err)
	}
	check("declare")

	_, _ = dst.Observe("r", reject)
	if err := dst.Set("r", 2); !errors.Is(err, failure) {
		t.Fatalf("expected the handler error, got %v", err)
	}
	check("literal write")
}
