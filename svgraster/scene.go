// Package svgraster reads the markup produced by svgnode trees and
// rasterizes it with rasterx. Only the subset of SVG emitted by svgnode
// is supported: shapes, paths, groups, solid colors and transforms.
package svgraster

import (
	"errors"
	"image/color"

	"github.com/srwiley/rasterx"
)

// ErrorMode sets how the parser reacts to unsupported elements
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unsupported elements silently
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs a warning for each unsupported element
	WarnErrorMode
	// StrictErrorMode returns an error on the first unsupported element
	StrictErrorMode
)

var (
	errParamMismatch  = errors.New("svgraster: param mismatch")
	errCommandUnknown = errors.New("svgraster: unknown path command")
	errNoTag          = errors.New("svgraster: invalid svg xml scene")
)

type (
	// Style holds the painting state inherited through the element tree.
	// A nil color means none.
	Style struct {
		Fill, Stroke             color.Color
		FillOpacity, LineOpacity float64
		LineWidth                float64
		Transform                rasterx.Matrix2D
	}

	// Shape binds a style to a compiled path
	Shape struct {
		Tag, ID string
		Path    rasterx.Path
		Style   Style
	}

	// Scene holds data from parsed markup
	Scene struct {
		ViewBox       struct{ X, Y, W, H float64 }
		Width, Height float64
		Shapes        []Shape
		Skipped       []string // tags of the elements not drawn
	}
)

// DefaultStyle fills black, with no stroke and full opacity.
var DefaultStyle = Style{
	Fill:        color.Black,
	FillOpacity: 1,
	LineOpacity: 1,
	LineWidth:   1,
	Transform:   rasterx.Identity,
}

// Lookup returns the first shape with the given id, or nil.
func (s *Scene) Lookup(id string) *Shape {
	for i := range s.Shapes {
		if s.Shapes[i].ID == id {
			return &s.Shapes[i]
		}
	}
	return nil
}

// target returns the matrix mapping the view box into a w x h image.
func (s *Scene) target(w, h int) rasterx.Matrix2D {
	vw, vh := s.ViewBox.W, s.ViewBox.H
	if vw == 0 {
		vw = s.Width
	}
	if vh == 0 {
		vh = s.Height
	}
	if vw == 0 || vh == 0 {
		return rasterx.Identity
	}
	return rasterx.Identity.Scale(float64(w)/vw, float64(h)/vh).Translate(-s.ViewBox.X, -s.ViewBox.Y)
}
