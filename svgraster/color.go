package svgraster

import (
	"errors"
	"image/color"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/image/colornames"
)

func isListSeparator(r rune) bool { return r == ',' || unicode.IsSpace(r) }

// parseColor returns nil for "none".
func parseColor(v string) (color.Color, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case v == "none" || v == "":
		return nil, nil
	case v == "currentcolor":
		return color.Black, nil
	case strings.HasPrefix(v, "#"):
		return parseHexColor(v[1:])
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		vals := strings.FieldsFunc(v[4:len(v)-1], isListSeparator)
		if len(vals) != 3 {
			return nil, errParamMismatch
		}
		var c [3]uint8
		for i, s := range vals {
			f, err := readChannel(s)
			if err != nil {
				return nil, err
			}
			c[i] = f
		}
		return color.NRGBA{c[0], c[1], c[2], 0xff}, nil
	}
	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}
	return nil, errors.New("svgraster: invalid color " + v)
}

func parseHexColor(v string) (color.Color, error) {
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return nil, errors.New("svgraster: invalid hex color #" + v)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return nil, err
	}
	return color.NRGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 0xff}, nil
}

// readChannel accepts 0-255 integers and percentages.
func readChannel(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 255.0 / 100
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	f *= scale
	if f < 0 {
		f = 0
	} else if f > 255 {
		f = 255
	}
	return uint8(f + 0.5), nil
}
