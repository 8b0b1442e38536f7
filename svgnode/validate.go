package svgnode

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Validator checks and normalizes a value written to a slot.
// A nil value never reaches a validator: the node applies
// the allow-none policy of the slot first.
type Validator interface {
	Validate(n *Node, v interface{}) (interface{}, error)
	String() string
}

// Point is a 2D coordinate, as used by polylines and polygons.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) String() string { return formatFloat(p.X) + "," + formatFloat(p.Y) }

var (
	// String accepts Go strings only.
	String Validator = stringValidator{}
	// Length accepts integers, converted to "<n>px", and strings,
	// kept unchanged.
	Length Validator = lengthValidator{}
	// Number accepts any Go numeric value, stored as float64.
	Number Validator = numberValidator{}
	// Bool accepts booleans.
	Bool Validator = boolValidator{}
	// Points accepts []Point or [][2]float64, stored as []Point.
	Points Validator = pointsValidator{}
	// NodeRef accepts *Node or Ref values, stored as a non-owning Ref.
	NodeRef Validator = nodeRefValidator{}
)

type stringValidator struct{}

func (stringValidator) String() string { return "String" }

func (stringValidator) Validate(_ *Node, v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}

type lengthValidator struct{}

func (lengthValidator) String() string { return "Length" }

func (lengthValidator) Validate(_ *Node, v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%dpx", v), nil
	}
	return nil, fmt.Errorf("expected an integer or a string, got %T", v)
}

type numberValidator struct{}

func (numberValidator) String() string { return "Number" }

func (numberValidator) Validate(_ *Node, v interface{}) (interface{}, error) {
	f, ok := toFloat(v)
	if !ok {
		return nil, fmt.Errorf("expected a number, got %T", v)
	}
	return f, nil
}

type boolValidator struct{}

func (boolValidator) String() string { return "Bool" }

func (boolValidator) Validate(_ *Node, v interface{}) (interface{}, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("expected a boolean, got %T", v)
	}
	return b, nil
}

type tupleValidator struct {
	arities []int // empty means any length
}

// Tuple accepts a list of numbers ([]float64, []int or []interface{})
// whose length is one of arities. No arity means any length.
// Values are stored as a fresh []float64.
func Tuple(arities ...int) Validator { return tupleValidator{arities: arities} }

func (t tupleValidator) String() string { return fmt.Sprintf("Tuple%v", t.arities) }

func (t tupleValidator) Validate(_ *Node, v interface{}) (interface{}, error) {
	fs, ok := toFloats(v)
	if !ok {
		return nil, fmt.Errorf("expected a list of numbers, got %T", v)
	}
	if len(t.arities) == 0 {
		return fs, nil
	}
	for _, a := range t.arities {
		if a == len(fs) {
			return fs, nil
		}
	}
	return nil, fmt.Errorf("expected %s numbers, got %d", joinArities(t.arities), len(fs))
}

type pointsValidator struct {
	count int // 0 means any
}

// PointsN is like Points, but requires exactly count points.
func PointsN(count int) Validator { return pointsValidator{count: count} }

func (p pointsValidator) String() string {
	if p.count != 0 {
		return fmt.Sprintf("Points[%d]", p.count)
	}
	return "Points"
}

func (p pointsValidator) Validate(_ *Node, v interface{}) (interface{}, error) {
	var out []Point
	switch v := v.(type) {
	case []Point:
		out = append([]Point{}, v...)
	case [][2]float64:
		out = make([]Point, len(v))
		for i, p := range v {
			out[i] = Point{X: p[0], Y: p[1]}
		}
	default:
		return nil, fmt.Errorf("expected a list of points, got %T", v)
	}
	if p.count != 0 && len(out) != p.count {
		return nil, fmt.Errorf("expected %d points, got %d", p.count, len(out))
	}
	return out, nil
}

type nodeRefValidator struct{}

func (nodeRefValidator) String() string { return "NodeRef" }

func (nodeRefValidator) Validate(_ *Node, v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case *Node:
		if v == nil {
			return nil, errors.New("nil node")
		}
		return v.Ref(), nil
	case Ref:
		return v, nil
	}
	return nil, fmt.Errorf("expected a node, got %T", v)
}

func toFloat(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func toFloats(v interface{}) ([]float64, bool) {
	switch v := v.(type) {
	case []float64:
		return append([]float64{}, v...), true
	case []int:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	case []interface{}:
		out := make([]float64, len(v))
		for i, x := range v {
			f, ok := toFloat(x)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

func joinArities(arities []int) string {
	chunks := make([]string, len(arities))
	for i, a := range arities {
		chunks[i] = strconv.Itoa(a)
	}
	return strings.Join(chunks, " or ")
}

// valuesEqual compares two normalized slot values.
func valuesEqual(a, b interface{}) bool {
	switch a := a.(type) {
	case []float64:
		b, ok := b.([]float64)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case []Point:
		b, ok := b.([]Point)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}
	switch b.(type) {
	case []float64, []Point:
		return false
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	// custom validators may normalize to maps or other slices
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// formatValue returns the markup representation of a normalized value.
func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatFloat(v)
	case bool:
		return strconv.FormatBool(v)
	case []float64:
		chunks := make([]string, len(v))
		for i, f := range v {
			chunks[i] = formatFloat(f)
		}
		return strings.Join(chunks, ",")
	case []Point:
		chunks := make([]string, len(v))
		for i, p := range v {
			chunks[i] = p.String()
		}
		return strings.Join(chunks, " ")
	case Ref:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
