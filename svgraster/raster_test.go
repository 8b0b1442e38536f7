package svgraster

import (
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/svgscene/svgnode"
)

func isColor(img *image.RGBA, x, y int, r, g, b uint8) bool {
	c := img.RGBAAt(x, y)
	near := func(u, v uint8) bool { return u-v < 8 || v-u < 8 }
	return c.A > 0xf0 && near(c.R, r) && near(c.G, g) && near(c.B, b)
}

func isEmpty(img *image.RGBA, x, y int) bool {
	return img.RGBAAt(x, y).A == 0
}

func render(t *testing.T, markup string) *image.RGBA {
	t.Helper()
	scene, err := ReadString(markup, StrictErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	return Rasterize(scene, 100, 100)
}

func TestRasterShapes(t *testing.T) {
	img := render(t, `<svg width="100px" height="100px">
<circle cx="50px" cy="50px" r="20px" fill="red" stroke="none"/>
<rect x="0" y="0" width="10" height="10" fill="#00f" transform="translate(80,80)"/>
<g fill="lime" transform="translate(0, 80)">
<rect x="0" y="0" width="10" height="10"/>
</g>
</svg>`)

	for _, test := range []struct {
		x, y    int
		r, g, b uint8
	}{
		{50, 50, 0xff, 0, 0},
		{85, 85, 0, 0, 0xff},
		{5, 85, 0, 0xff, 0},
	} {
		if !isColor(img, test.x, test.y, test.r, test.g, test.b) {
			t.Errorf("(%d, %d): unexpected color %v", test.x, test.y, img.RGBAAt(test.x, test.y))
		}
	}
	for _, p := range [][2]int{{5, 5}, {50, 20}, {95, 5}} {
		if !isEmpty(img, p[0], p[1]) {
			t.Errorf("%v: expected background, got %v", p, img.RGBAAt(p[0], p[1]))
		}
	}
}

func TestRasterViewBox(t *testing.T) {
	scene, err := ReadString(`<svg width="100" height="100" viewBox="0 0 10 10">
<rect width="5" height="5" fill="black"/>
</svg>`, StrictErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	if scene.ViewBox.W != 10 || scene.Width != 100 {
		t.Fatalf("unexpected view box %v", scene.ViewBox)
	}
	img := Rasterize(scene, 100, 100)
	if !isColor(img, 25, 25, 0, 0, 0) || !isEmpty(img, 75, 75) {
		t.Error("view box not stretched to the image")
	}
}

func TestRasterPath(t *testing.T) {
	for _, d := range []string{
		"M 10 10 L 90 10 L 90 90 Z",
		"m10,10 l80,0 l0,80 z",
		"M10 10H90V90z",
		"M 10 10 h 80 v 80 Z",
	} {
		img := render(t, `<svg width="100" height="100"><path d="`+d+`" fill="black" stroke="none"/></svg>`)
		if !isColor(img, 80, 20, 0, 0, 0) || !isEmpty(img, 20, 80) {
			t.Errorf("%s: unexpected triangle", d)
		}
	}

	img := render(t, `<svg width="100" height="100">
<path d="M 30 50 A 20 20 0 1 0 70 50 A 20 20 0 1 0 30 50 Z" fill="black"/></svg>`)
	if !isColor(img, 50, 40, 0, 0, 0) || !isColor(img, 50, 60, 0, 0, 0) || !isEmpty(img, 50, 25) {
		t.Error("unexpected arc rendering")
	}
}

func TestPathErrors(t *testing.T) {
	for _, test := range []struct {
		d   string
		err error
	}{
		{"M 10", errParamMismatch},
		{"X 1 2", errCommandUnknown},
		{"10 10", errParamMismatch},
		{"M 0 0 Z 1", errParamMismatch},
		{"M 0 0 A 1 1 0 0 0 1", errParamMismatch},
	} {
		var c pathCursor
		if err := c.compilePath(test.d); !errors.Is(err, test.err) {
			t.Errorf("%s: expected %v, got %v", test.d, test.err, err)
		}
	}
}

func TestGetPoints(t *testing.T) {
	var c pathCursor
	if err := c.getPoints("1-2.5.5e1, 3 ,-4e-1"); err != nil {
		t.Fatal(err)
	}
	expected := []float64{1, -2.5, 5, 3, -0.4}
	if len(c.points) != len(expected) {
		t.Fatalf("unexpected points %v", c.points)
	}
	for i, f := range expected {
		if c.points[i] != f {
			t.Errorf("point %d: expected %v, got %v", i, f, c.points[i])
		}
	}
	if err := c.getPoints("1 a"); err == nil {
		t.Error("expected an error")
	}
}

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		v        string
		expected color.Color
	}{
		{"#f00", color.NRGBA{0xff, 0, 0, 0xff}},
		{"#00ff80", color.NRGBA{0, 0xff, 0x80, 0xff}},
		{"rgb(0, 128, 100%)", color.NRGBA{0, 128, 0xff, 0xff}},
		{"Gray", color.RGBA{0x80, 0x80, 0x80, 0xff}},
		{"none", nil},
	} {
		c, err := parseColor(test.v)
		if err != nil {
			t.Fatal(err)
		}
		if c != test.expected {
			t.Errorf("%s: expected %v, got %v", test.v, test.expected, c)
		}
	}
	for _, v := range []string{"bogus", "#12", "rgb(1,2)"} {
		if _, err := parseColor(v); err == nil {
			t.Errorf("%s: expected an error", v)
		}
	}
}

func TestTransformAttr(t *testing.T) {
	c := &sceneCursor{styleStack: []Style{DefaultStyle}}
	m, err := c.parseTransform("translate(10,5) scale(2)")
	if err != nil {
		t.Fatal(err)
	}
	if x, y := m.Transform(1, 1); x != 12 || y != 7 {
		t.Errorf("unexpected transform (%v, %v)", x, y)
	}
	for _, test := range []struct {
		transform    string
		x, y, tx, ty float64
	}{
		{"rotate(90 5 5)", 10, 5, 5, 10},
		{"scale(2, 3)", 1, 1, 2, 3},
		{"matrix(1 0 0 1 4 -4)", 1, 1, 5, -3},
		{"translate(3) skewX(45)", 0, 2, 5, 2},
	} {
		m, err := c.parseTransform(test.transform)
		if err != nil {
			t.Fatal(err)
		}
		if x, y := m.Transform(test.x, test.y); math.Abs(x-test.tx) > 1e-9 || math.Abs(y-test.ty) > 1e-9 {
			t.Errorf("%s: unexpected point (%v, %v)", test.transform, x, y)
		}
	}
	for _, v := range []string{"translate(1,2,3)", "shear(1)", "rotate", "matrix(1 2 3)", "scale()"} {
		if _, err := c.parseTransform(v); err == nil {
			t.Errorf("%s: expected an error", v)
		}
	}
}

func TestErrorModes(t *testing.T) {
	markup := `<svg width="10" height="10"><text x="1" y="1"><tspan>a</tspan></text><rect width="2" height="2"/></svg>`
	if _, err := ReadString(markup, StrictErrorMode); err == nil {
		t.Error("expected an error for text")
	}
	for _, mode := range []ErrorMode{IgnoreErrorMode, WarnErrorMode} {
		scene, err := ReadString(markup, mode)
		if err != nil {
			t.Fatal(err)
		}
		if len(scene.Skipped) != 1 || scene.Skipped[0] != "text" || len(scene.Shapes) != 1 {
			t.Errorf("unexpected scene: skipped %v, %d shapes", scene.Skipped, len(scene.Shapes))
		}
	}
	if _, err := ReadString("", IgnoreErrorMode); err != errNoTag {
		t.Errorf("expected errNoTag, got %v", err)
	}
	if _, err := ReadString(`<svg><rect`, IgnoreErrorMode); err == nil {
		t.Error("expected a syntax error")
	}
}

func TestNodeMarkup(t *testing.T) {
	a := svgnode.NewArena(svgnode.DefaultConfig())
	root, err := a.NewSVG(nil)
	if err != nil {
		t.Fatal(err)
	}
	sun, err := root.Circle(svgnode.With("label", "sun"), svgnode.With("fill", "yellow"),
		svgnode.With("cx", 50), svgnode.With("cy", 50), svgnode.With("r", 20))
	if err != nil {
		t.Fatal(err)
	}
	if err := sun.Translate(-30, -30); err != nil {
		t.Fatal(err)
	}
	if _, err := root.Text(svgnode.With("string", "hello")); err != nil {
		t.Fatal(err)
	}
	markup, err := root.Markup()
	if err != nil {
		t.Fatal(err)
	}

	scene, err := ReadString(markup, IgnoreErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	shape := scene.Lookup("sun")
	if shape == nil || shape.Tag != "circle" || shape.Style.LineWidth != 1 {
		t.Fatalf("circle not found in %s", markup)
	}
	img := Rasterize(scene, 100, 100)
	if !isColor(img, 20, 20, 0xff, 0xff, 0) || !isEmpty(img, 50, 50) {
		t.Errorf("unexpected rendering of %s", markup)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "scene.svg")
	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path, IgnoreErrorMode); err != nil {
		t.Error(err)
	}
}
