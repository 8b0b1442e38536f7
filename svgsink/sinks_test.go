package svgsink

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/svgscene/svgnode"
)

func newRoot(t *testing.T, sink svgnode.Sink) *svgnode.Node {
	t.Helper()
	a := svgnode.NewArena(svgnode.DefaultConfig())
	root, err := a.NewSVG(sink)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestMemory(t *testing.T) {
	m := &Memory{}
	root := newRoot(t, m)
	if m.Root() != root || m.Count() != 1 {
		t.Fatalf("expected the initial markup, got %d", m.Count())
	}
	c, _ := root.Circle()
	_ = c.Set("r", 4)
	if m.Count() != 3 {
		t.Errorf("expected 3 markups, got %d", m.Count())
	}
	if !strings.Contains(m.Last(), `r="4px"`) {
		t.Errorf("unexpected last markup %s", m.Last())
	}
	if h := m.History(); strings.Contains(h[0], "circle") {
		t.Errorf("unexpected first markup %s", h[0])
	}

	m.Limit = 2
	_ = c.Set("r", 5)
	if m.Count() != 2 || !strings.Contains(m.History()[1], `r="5px"`) {
		t.Errorf("unexpected history %v", m.History())
	}
}

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	root := newRoot(t, NewStream(&buf))
	if _, err := root.Rect(); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	records, err := ReadRecords(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Seq != 1 || records[1].Seq != 2 {
		t.Fatalf("unexpected records %v", records)
	}
	markup, _ := root.Markup()
	if records[1].SVG != markup {
		t.Errorf("expected %s, got %s", markup, records[1].SVG)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.svg")
	root := newRoot(t, &File{Path: path})
	g, _ := root.Group()
	if _, err := g.Ellipse(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	markup, _ := root.Markup()
	if string(b) != markup {
		t.Errorf("expected %s, got %s", markup, b)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left: %v", entries)
	}

	a := svgnode.NewArena(svgnode.DefaultConfig())
	if _, err := a.NewSVG(&File{Path: filepath.Join(path, "nope", "x.svg")}); err == nil {
		t.Error("expected an attach error")
	}
}

func TestRaster(t *testing.T) {
	r := &Raster{}
	if err := r.WritePNG(&bytes.Buffer{}); err != errNoImage {
		t.Errorf("expected errNoImage, got %v", err)
	}
	root := newRoot(t, r)
	if r.Image() == nil || r.Image().Bounds().Dx() != 100 {
		t.Fatal("expected the initial image")
	}
	_, err := root.Rect(svgnode.With("width", 100), svgnode.With("height", 50), svgnode.With("fill", "blue"))
	if err != nil {
		t.Fatal(err)
	}
	img := r.Image()
	if c := img.RGBAAt(50, 25); c.B != 0xff || c.A != 0xff {
		t.Errorf("unexpected color %v", c)
	}
	if c := img.RGBAAt(50, 75); c.A != 0 {
		t.Errorf("unexpected color %v", c)
	}

	var buf bytes.Buffer
	if err := r.WritePNG(&buf); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("unexpected bounds %v", decoded.Bounds())
	}

	sized := &Raster{Width: 20, Height: 10}
	newRoot(t, sized)
	if b := sized.Image().Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("unexpected bounds %v", b)
	}
}

type failingSink struct{ err error }

func (f failingSink) Attach(*svgnode.Node) error { return nil }
func (f failingSink) Notify(string) error { return f.err }

func TestMulti(t *testing.T) {
	failure := errors.New("disconnected")
	m1, m2 := &Memory{}, &Memory{}
	multi := Multi{m1, failingSink{failure}, m2}

	a := svgnode.NewArena(svgnode.DefaultConfig())
	root, err := a.NewSVG(multi)
	if !errors.Is(err, failure) {
		t.Errorf("expected the failure, got %v", err)
	}
	if root == nil || m1.Count() != 1 || m2.Count() != 1 {
		t.Fatal("every sink must be notified")
	}
	if m1.Root() != root || m2.Root() != root {
		t.Error("every sink must be attached")
	}
}
