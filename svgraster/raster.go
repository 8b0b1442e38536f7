package svgraster

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Renderer draws the shapes of a scene.
type Renderer struct {
	dasher *rasterx.Dasher // to avoid shared state
	filler *rasterx.Filler // we use separated instance
	adder  rasterx.MatrixAdder

	// MiterLimit, LineJoin and caps apply to every stroke.
	MiterLimit float64
	LineJoin   rasterx.JoinMode
	LineCap    rasterx.CapFunc
	LineGap    rasterx.GapFunc
}

// NewRenderer returns a renderer with default values, drawing into scanner.
func NewRenderer(width, height int, scanner rasterx.Scanner) *Renderer {
	return &Renderer{
		dasher:     rasterx.NewDasher(width, height, scanner),
		filler:     rasterx.NewFiller(width, height, scanner),
		MiterLimit: 4,
		LineJoin:   rasterx.Bevel,
		LineCap:    rasterx.ButtCap,
		LineGap:    rasterx.FlatGap,
	}
}

// Clear resets the accumulated path of the renderer
func (rd *Renderer) Clear() {
	rd.dasher.Clear()
	rd.filler.Clear()
}

// Draw renders every shape of the scene, with the additional transform
// m applied on top of the shapes ones.
func (rd *Renderer) Draw(scene *Scene, m rasterx.Matrix2D, opacity float64) {
	for _, shape := range scene.Shapes {
		rd.DrawShape(shape, m, opacity)
	}
}

// DrawShape fills then strokes the shape.
func (rd *Renderer) DrawShape(shape Shape, m rasterx.Matrix2D, opacity float64) {
	t := m.Mult(shape.Style.Transform)
	if shape.Style.Fill != nil {
		rd.Clear()
		rd.filler.SetWinding(true)
		rd.adder.Adder = rd.filler
		rd.adder.M = t
		shape.Path.AddTo(&rd.adder)
		rd.filler.SetColor(rasterx.ApplyOpacity(shape.Style.Fill, shape.Style.FillOpacity*opacity))
		rd.filler.Draw()
	}
	if shape.Style.Stroke != nil && shape.Style.LineWidth > 0 {
		rd.Clear()
		rd.setStrokeOptions(shape.Style.LineWidth * scaleFactor(t))
		rd.adder.Adder = rd.dasher
		rd.adder.M = t
		shape.Path.AddTo(&rd.adder)
		rd.dasher.SetColor(rasterx.ApplyOpacity(shape.Style.Stroke, shape.Style.LineOpacity*opacity))
		rd.dasher.Draw()
	}
}

func (rd *Renderer) setStrokeOptions(width float64) {
	rd.dasher.SetStroke(
		fixed.Int26_6(width*64), fixed.Int26_6(rd.MiterLimit*64),
		rd.LineCap, rd.LineCap, rd.LineGap, rd.LineJoin, nil, 0,
	)
}

// scaleFactor is the mean scaling of the matrix, applied to stroke widths.
func scaleFactor(m rasterx.Matrix2D) float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

// Rasterize renders the scene into a new w x h image, the view box of the
// scene being stretched to the image bounds. The background is transparent.
func Rasterize(scene *Scene, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	RasterizeInto(scene, img)
	return img
}

// RasterizeInto renders the scene on top of img.
func RasterizeInto(scene *Scene, img *image.RGBA) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	renderer := NewRenderer(w, h, scanner)
	renderer.Draw(scene, scene.target(w, h), 1.0)
}

// RasterMarkup parses the markup and renders it with its own size,
// falling back to 100 x 100 when the markup has none.
func RasterMarkup(markup io.Reader, errMode ErrorMode) (*image.RGBA, error) {
	scene, err := ReadScene(markup, errMode)
	if err != nil {
		return nil, err
	}
	w, h := int(scene.Width), int(scene.Height)
	if w <= 0 {
		w = 100
	}
	if h <= 0 {
		h = 100
	}
	return Rasterize(scene, w, h), nil
}

// Background fills img with c, as a convenience before RasterizeInto.
func Background(img *image.RGBA, c color.Color) {
	r, g, b, a := c.RGBA()
	fill := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = fill.R, fill.G, fill.B, fill.A
	}
}
