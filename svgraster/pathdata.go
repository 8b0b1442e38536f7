package svgraster

import (
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
)

// pathCursor accumulates the geometry of one element.
type pathCursor struct {
	path           rasterx.Path
	points         []float64
	placeX, placeY float64
	startX, startY float64
	inPath         bool
}

func (c *pathCursor) reset() {
	c.path = c.path[:0]
	c.placeX, c.placeY = 0, 0
	c.startX, c.startY = 0, 0
	c.inPath = false
}

func (c *pathCursor) moveTo(x, y float64) {
	if c.inPath {
		c.path.Stop(false)
	}
	c.path.Start(rasterx.ToFixedP(x, y))
	c.placeX, c.placeY = x, y
	c.startX, c.startY = x, y
	c.inPath = true
}

func (c *pathCursor) lineTo(x, y float64) {
	if !c.inPath {
		c.moveTo(c.placeX, c.placeY)
	}
	c.path.Line(rasterx.ToFixedP(x, y))
	c.placeX, c.placeY = x, y
}

func (c *pathCursor) closePath() {
	if !c.inPath {
		return
	}
	c.path.Stop(true)
	c.placeX, c.placeY = c.startX, c.startY
	c.inPath = false
}

// getPoints reads the numbers of v into c.points
func (c *pathCursor) getPoints(v string) error {
	c.points = c.points[:0]
	for i := 0; i < len(v); {
		switch v[i] {
		case ' ', ',', '\t', '\n', '\r':
			i++
			continue
		}
		end := scanNumber(v, i)
		if end == i {
			return errParamMismatch
		}
		f, err := strconv.ParseFloat(v[i:end], 64)
		if err != nil {
			return err
		}
		c.points = append(c.points, f)
		i = end
	}
	return nil
}

// scanNumber returns the end of the number starting at i. Signs and
// second dots start a new number, so "1-2" and ".5.5" hold two numbers.
func scanNumber(s string, i int) int {
	j := i
	if j < len(s) && (s[j] == '-' || s[j] == '+') {
		j++
	}
	var dot, exp, digits bool
	for ; j < len(s); j++ {
		ch := s[j]
		switch {
		case ch >= '0' && ch <= '9':
			digits = true
		case ch == '.' && !dot && !exp:
			dot = true
		case (ch == 'e' || ch == 'E') && digits && !exp:
			exp = true
			if j+1 < len(s) && (s[j+1] == '-' || s[j+1] == '+') {
				j++
			}
		default:
			if !digits {
				return i
			}
			return j
		}
	}
	if !digits {
		return i
	}
	return j
}

func isPathCommand(r rune) bool {
	return strings.ContainsRune("MmLlHhVvAaZzCcQq", r)
}

// compilePath translates the path data d into c.path.
func (c *pathCursor) compilePath(d string) error {
	d = strings.TrimSpace(d)
	start := -1
	for i, r := range d {
		if r == 'e' || r == 'E' {
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			if !isPathCommand(r) {
				return errCommandUnknown
			}
			if start >= 0 {
				if err := c.addSeg(d[start:i]); err != nil {
					return err
				}
			}
			start = i
		} else if start < 0 && r != ' ' && r != ',' {
			return errParamMismatch
		}
	}
	if start >= 0 {
		return c.addSeg(d[start:])
	}
	return nil
}

func (c *pathCursor) addSeg(segString string) error {
	k := segString[0]
	if err := c.getPoints(segString[1:]); err != nil {
		return err
	}
	l := len(c.points)
	rel := k >= 'a' && k <= 'z'
	offX, offY := 0.0, 0.0
	if rel {
		offX, offY = c.placeX, c.placeY
	}
	switch k {
	case 'Z', 'z':
		if l != 0 {
			return errParamMismatch
		}
		c.closePath()
	case 'M', 'm':
		if l == 0 || l%2 != 0 {
			return errParamMismatch
		}
		c.moveTo(c.points[0]+offX, c.points[1]+offY)
		for i := 2; i < l-1; i += 2 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.lineTo(c.points[i]+offX, c.points[i+1]+offY)
		}
	case 'L', 'l':
		if l == 0 || l%2 != 0 {
			return errParamMismatch
		}
		for i := 0; i < l-1; i += 2 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			c.lineTo(c.points[i]+offX, c.points[i+1]+offY)
		}
	case 'H', 'h':
		if l == 0 {
			return errParamMismatch
		}
		for _, x := range c.points {
			if rel {
				offX = c.placeX
			}
			c.lineTo(x+offX, c.placeY)
		}
	case 'V', 'v':
		if l == 0 {
			return errParamMismatch
		}
		for _, y := range c.points {
			if rel {
				offY = c.placeY
			}
			c.lineTo(c.placeX, y+offY)
		}
	case 'Q', 'q':
		if l == 0 || l%4 != 0 {
			return errParamMismatch
		}
		for i := 0; i < l-3; i += 4 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			if !c.inPath {
				c.moveTo(c.placeX, c.placeY)
			}
			x, y := c.points[i+2]+offX, c.points[i+3]+offY
			c.path.QuadBezier(rasterx.ToFixedP(c.points[i]+offX, c.points[i+1]+offY), rasterx.ToFixedP(x, y))
			c.placeX, c.placeY = x, y
		}
	case 'C', 'c':
		if l == 0 || l%6 != 0 {
			return errParamMismatch
		}
		for i := 0; i < l-5; i += 6 {
			if rel {
				offX, offY = c.placeX, c.placeY
			}
			if !c.inPath {
				c.moveTo(c.placeX, c.placeY)
			}
			x, y := c.points[i+4]+offX, c.points[i+5]+offY
			c.path.CubeBezier(rasterx.ToFixedP(c.points[i]+offX, c.points[i+1]+offY),
				rasterx.ToFixedP(c.points[i+2]+offX, c.points[i+3]+offY), rasterx.ToFixedP(x, y))
			c.placeX, c.placeY = x, y
		}
	case 'A', 'a':
		if l == 0 || l%7 != 0 {
			return errParamMismatch
		}
		for i := 0; i < l-6; i += 7 {
			if rel {
				c.points[i+5] += c.placeX
				c.points[i+6] += c.placeY
			}
			c.addArc(c.points[i : i+7])
		}
	default:
		return errCommandUnknown
	}
	return nil
}

// addArc draws the elliptical arc described by the seven arc parameters,
// starting at the current point.
func (c *pathCursor) addArc(points []float64) {
	endX, endY := points[5], points[6]
	if endX == c.placeX && endY == c.placeY {
		return
	}
	ra, rb := math.Abs(points[0]), math.Abs(points[1])
	if ra == 0 || rb == 0 {
		c.lineTo(endX, endY)
		return
	}
	if !c.inPath {
		c.moveTo(c.placeX, c.placeY)
	}
	rotX := points[2] * math.Pi / 180
	cx, cy := rasterx.FindEllipseCenter(&ra, &rb, rotX, c.placeX, c.placeY, endX, endY,
		points[4] == 0, points[3] == 0)
	arc := []float64{ra, rb, points[2], points[3], points[4], endX, endY}
	c.placeX, c.placeY = rasterx.AddArc(arc, cx, cy, c.placeX, c.placeY, &c.path)
}
