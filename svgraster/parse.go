package svgraster

import (
	"encoding/xml"
	"errors"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/net/html/charset"
)

// sceneCursor is used while parsing markup
type sceneCursor struct {
	pathCursor
	scene      *Scene
	styleStack []Style
	errorMode  ErrorMode
	depth      int // > 0 inside an element which is not drawn
}

func degrees(a float64) float64 { return a * math.Pi / 180 }

// transformFunc applies one transform function to m.
// Its arguments have been checked against arities.
type transformFunc struct {
	arities []int
	apply   func(m rasterx.Matrix2D, args []float64) rasterx.Matrix2D
}

var transformFuncs = map[string]transformFunc{
	"matrix": {[]int{6}, func(m rasterx.Matrix2D, a []float64) rasterx.Matrix2D {
		return m.Mult(rasterx.Matrix2D{A: a[0], B: a[1], C: a[2], D: a[3], E: a[4], F: a[5]})
	}},
	"translate": {[]int{1, 2}, func(m rasterx.Matrix2D, a []float64) rasterx.Matrix2D {
		if len(a) == 1 {
			return m.Translate(a[0], 0)
		}
		return m.Translate(a[0], a[1])
	}},
	"scale": {[]int{1, 2}, func(m rasterx.Matrix2D, a []float64) rasterx.Matrix2D {
		if len(a) == 1 {
			return m.Scale(a[0], a[0])
		}
		return m.Scale(a[0], a[1])
	}},
	"rotate": {[]int{1, 3}, func(m rasterx.Matrix2D, a []float64) rasterx.Matrix2D {
		if len(a) == 1 {
			return m.Rotate(degrees(a[0]))
		}
		// rotation around (a[1], a[2])
		return m.Translate(a[1], a[2]).Rotate(degrees(a[0])).Translate(-a[1], -a[2])
	}},
	"skewx": {[]int{1}, func(m rasterx.Matrix2D, a []float64) rasterx.Matrix2D { return m.SkewX(degrees(a[0])) }},
	"skewy": {[]int{1}, func(m rasterx.Matrix2D, a []float64) rasterx.Matrix2D { return m.SkewY(degrees(a[0])) }},
}

func (f transformFunc) accepts(count int) bool {
	for _, n := range f.arities {
		if n == count {
			return true
		}
	}
	return false
}

// parseTransform composes the transform functions of v, left to right,
// onto the inherited matrix.
func (c *sceneCursor) parseTransform(v string) (rasterx.Matrix2D, error) {
	m := c.styleStack[len(c.styleStack)-1].Transform
	for _, call := range strings.Split(v, ")") {
		call = strings.TrimSpace(call)
		if call == "" {
			continue
		}
		name, args, ok := strings.Cut(call, "(")
		if !ok || args == "" || strings.Contains(args, "(") {
			return m, errParamMismatch
		}
		f, ok := transformFuncs[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return m, errParamMismatch
		}
		if err := c.getPoints(args); err != nil {
			return m, err
		}
		if !f.accepts(len(c.points)) {
			return m, errParamMismatch
		}
		m = f.apply(m, c.points)
	}
	return m, nil
}

func (c *sceneCursor) readStyleAttr(curStyle *Style, k, v string) error {
	switch k {
	case "fill":
		col, err := parseColor(v)
		if err != nil {
			return err
		}
		curStyle.Fill = col
	case "stroke":
		col, err := parseColor(v)
		if err != nil {
			return err
		}
		curStyle.Stroke = col
	case "stroke-width":
		width, err := parseLength(v)
		if err != nil {
			return err
		}
		curStyle.LineWidth = width
	case "opacity", "stroke-opacity", "fill-opacity":
		op, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		if k != "stroke-opacity" {
			curStyle.FillOpacity *= op
		}
		if k != "fill-opacity" {
			curStyle.LineOpacity *= op
		}
	case "transform":
		m, err := c.parseTransform(v)
		if err != nil {
			return err
		}
		curStyle.Transform = m
	}
	return nil
}

// pushStyle reads the style attributes of an element, plus the content of
// its style attribute, and pushes the result on the style stack.
func (c *sceneCursor) pushStyle(attrs []xml.Attr) error {
	var pairs []string
	for _, attr := range attrs {
		switch strings.ToLower(attr.Name.Local) {
		case "style":
			pairs = append(pairs, strings.Split(attr.Value, ";")...)
		default:
			pairs = append(pairs, attr.Name.Local+":"+attr.Value)
		}
	}
	curStyle := c.styleStack[len(c.styleStack)-1]
	for _, pair := range pairs {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) < 2 {
			continue
		}
		k := strings.TrimSpace(strings.ToLower(kv[0]))
		if err := c.readStyleAttr(&curStyle, k, strings.TrimSpace(kv[1])); err != nil {
			return err
		}
	}
	c.styleStack = append(c.styleStack, curStyle)
	return nil
}

// parseLength reads a length in user units. Unit suffixes are dropped,
// so "12px" and "12em" both read as 12.
func parseLength(v string) (float64, error) {
	v = strings.TrimRightFunc(strings.TrimSpace(v), func(r rune) bool {
		return r == '%' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
	return strconv.ParseFloat(v, 64)
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func (c *sceneCursor) skip(tag string) error {
	c.scene.Skipped = append(c.scene.Skipped, tag)
	errStr := "Cannot process svg element " + tag
	if c.errorMode == StrictErrorMode {
		return errors.New(errStr)
	} else if c.errorMode == WarnErrorMode {
		log.Println(errStr)
	}
	return nil
}

func (c *sceneCursor) readStartElement(se xml.StartElement) error {
	if c.depth > 0 {
		c.depth++
		return nil
	}
	df, ok := drawFuncs[se.Name.Local]
	if !ok {
		c.depth = 1
		return c.skip(se.Name.Local)
	}
	c.reset()
	if err := df(c, se.Attr); err != nil {
		return err
	}
	if len(c.path) > 0 {
		// the cursor parsed a path from the xml element
		c.scene.Shapes = append(c.scene.Shapes, Shape{
			Tag:   se.Name.Local,
			ID:    attrValue(se.Attr, "id"),
			Path:  append(rasterx.Path{}, c.path...),
			Style: c.styleStack[len(c.styleStack)-1],
		})
	}
	return nil
}

// ReadScene reads the markup from the given io.Reader. errMode determines
// if the scene ignores, errors out, or logs a warning when it does not
// handle an element. The content of unsupported elements is never drawn.
func ReadScene(stream io.Reader, errMode ErrorMode) (*Scene, error) {
	scene := &Scene{}
	cursor := &sceneCursor{styleStack: []Style{DefaultStyle}, scene: scene, errorMode: errMode}
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	seenTag := false
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return scene, err
		}
		switch se := t.(type) {
		case xml.StartElement:
			seenTag = true
			if err = cursor.pushStyle(se.Attr); err != nil {
				return scene, err
			}
			if err = cursor.readStartElement(se); err != nil {
				return scene, err
			}
		case xml.EndElement:
			cursor.styleStack = cursor.styleStack[:len(cursor.styleStack)-1]
			if cursor.depth > 0 {
				cursor.depth--
			}
		}
	}
	if !seenTag {
		return scene, errNoTag
	}
	return scene, nil
}

// ReadString is a convenience wrapper of ReadScene for in memory markup.
func ReadString(markup string, errMode ErrorMode) (*Scene, error) {
	return ReadScene(strings.NewReader(markup), errMode)
}

// ReadFile reads the scene from the named file
func ReadFile(filename string, errMode ErrorMode) (*Scene, error) {
	fin, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return ReadScene(fin, errMode)
}

type svgFunc func(c *sceneCursor, attrs []xml.Attr) error

var drawFuncs = map[string]svgFunc{
	"svg":      svgF,
	"g":        gF,
	"line":     lineF,
	"rect":     rectF,
	"circle":   circleF,
	"ellipse":  circleF, // circleF handles ellipse also
	"polyline": polylineF,
	"polygon":  polygonF,
	"path":     pathF,
}

// readLengths parses the named attributes, missing ones being 0.
func readLengths(attrs []xml.Attr, names ...string) (map[string]float64, error) {
	out := make(map[string]float64, len(names))
	for _, attr := range attrs {
		for _, name := range names {
			if attr.Name.Local != name {
				continue
			}
			f, err := parseLength(attr.Value)
			if err != nil {
				return nil, err
			}
			out[name] = f
		}
	}
	return out, nil
}

func svgF(c *sceneCursor, attrs []xml.Attr) error {
	vals, err := readLengths(attrs, "width", "height")
	if err != nil {
		return err
	}
	c.scene.Width, c.scene.Height = vals["width"], vals["height"]
	if vb := attrValue(attrs, "viewBox"); vb != "" {
		if err := c.getPoints(vb); err != nil {
			return err
		}
		if len(c.points) != 4 {
			return errParamMismatch
		}
		c.scene.ViewBox.X = c.points[0]
		c.scene.ViewBox.Y = c.points[1]
		c.scene.ViewBox.W = c.points[2]
		c.scene.ViewBox.H = c.points[3]
	}
	if c.scene.ViewBox.W == 0 {
		c.scene.ViewBox.W = c.scene.Width
	}
	if c.scene.ViewBox.H == 0 {
		c.scene.ViewBox.H = c.scene.Height
	}
	return nil
}

func gF(*sceneCursor, []xml.Attr) error { return nil } // g does nothing but push the style

func rectF(c *sceneCursor, attrs []xml.Attr) error {
	v, err := readLengths(attrs, "x", "y", "width", "height", "rx", "ry")
	if err != nil {
		return err
	}
	x, y, w, h := v["x"], v["y"], v["width"], v["height"]
	if w == 0 || h == 0 {
		return nil
	}
	rx, ry := v["rx"], v["ry"]
	if rx == 0 {
		rx = ry
	} else if ry == 0 {
		ry = rx
	}
	if rx == 0 {
		rasterx.AddRect(x, y, x+w, y+h, 0, &c.path)
	} else {
		rasterx.AddRoundRect(x, y, x+w, y+h, rx, ry, 0, rasterx.RoundGap, &c.path)
	}
	return nil
}

func circleF(c *sceneCursor, attrs []xml.Attr) error {
	v, err := readLengths(attrs, "cx", "cy", "r", "rx", "ry")
	if err != nil {
		return err
	}
	rx, ry := v["rx"], v["ry"]
	if r, ok := v["r"]; ok {
		rx, ry = r, r
	}
	if rx == 0 || ry == 0 { // not drawn, but not an error
		return nil
	}
	rasterx.AddEllipse(v["cx"], v["cy"], rx, ry, 0, &c.path)
	return nil
}

func lineF(c *sceneCursor, attrs []xml.Attr) error {
	v, err := readLengths(attrs, "x1", "y1", "x2", "y2")
	if err != nil {
		return err
	}
	c.moveTo(v["x1"], v["y1"])
	c.lineTo(v["x2"], v["y2"])
	return nil
}

func polylineF(c *sceneCursor, attrs []xml.Attr) error {
	if err := c.getPoints(attrValue(attrs, "points")); err != nil {
		return err
	}
	if len(c.points)%2 != 0 {
		return errors.New("svgraster: polygon has odd number of points")
	}
	if len(c.points) >= 4 {
		c.moveTo(c.points[0], c.points[1])
		for i := 2; i < len(c.points)-1; i += 2 {
			c.lineTo(c.points[i], c.points[i+1])
		}
	}
	return nil
}

func polygonF(c *sceneCursor, attrs []xml.Attr) error {
	if err := polylineF(c, attrs); err != nil {
		return err
	}
	c.closePath()
	return nil
}

func pathF(c *sceneCursor, attrs []xml.Attr) error {
	return c.compilePath(attrValue(attrs, "d"))
}
