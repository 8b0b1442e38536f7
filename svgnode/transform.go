package svgnode

import (
	"fmt"
	"sort"
	"strings"
)

// transformSlots lists the transform functions, in rendering order.
var transformSlots = [...]string{"_translate", "_rotate", "_scale", "_skewX", "_skewY", "_matrix"}

// normalizeTransform completes the arguments of a transform function
// call the way SVG does, and checks their count.
func normalizeTransform(op string, args []float64) ([]float64, error) {
	errArity := func(want string) error {
		return &StructuralError{Op: op, Got: len(args), Want: want}
	}
	switch op {
	case "translate":
		switch len(args) {
		case 0, 2:
			return args, nil
		case 1:
			return []float64{args[0], 0}, nil
		}
		return nil, errArity("0 to 2")
	case "rotate":
		switch len(args) {
		case 0, 1, 3:
			return args, nil
		}
		return nil, errArity("0, 1 or 3")
	case "scale":
		if len(args) > 2 {
			return nil, errArity("0 to 2")
		}
	case "skewX", "skewY":
		if len(args) > 1 {
			return nil, errArity("0 or 1")
		}
	case "matrix":
		if len(args) != 0 && len(args) != 6 {
			return nil, errArity("0 or 6")
		}
	default:
		return nil, fmt.Errorf("unknown transform function %q", op)
	}
	return args, nil
}

// setTransform replaces the arguments of the transform function op.
// No argument removes the function from the transform attribute.
func (n *Node) setTransform(op string, args []float64) error {
	if !n.HasSlot("_" + op) {
		return unknownSlot(n.kind, "_"+op)
	}
	args, err := normalizeTransform(op, args)
	if err != nil {
		return err
	}
	return n.Set("_"+op, append([]float64{}, args...))
}

// Translate sets the translate(x y) transform. A single argument
// is a horizontal translation.
func (n *Node) Translate(args ...float64) error { return n.setTransform("translate", args) }

// Rotate sets the rotate(a [x y]) transform.
func (n *Node) Rotate(args ...float64) error { return n.setTransform("rotate", args) }

// Scale sets the scale(x [y]) transform.
func (n *Node) Scale(args ...float64) error { return n.setTransform("scale", args) }

// SkewX sets the skewX(a) transform.
func (n *Node) SkewX(args ...float64) error { return n.setTransform("skewX", args) }

// SkewY sets the skewY(a) transform.
func (n *Node) SkewY(args ...float64) error { return n.setTransform("skewY", args) }

// Matrix sets the matrix(a b c d e f) transform.
func (n *Node) Matrix(args ...float64) error { return n.setTransform("matrix", args) }

// Skew dispatches to SkewX or SkewY, according to axis ("x" or "y").
func (n *Node) Skew(axis string, args ...float64) error {
	switch strings.ToLower(axis) {
	case "x":
		return n.SkewX(args...)
	case "y":
		return n.SkewY(args...)
	}
	return fmt.Errorf("invalid skew axis %q", axis)
}

// Transformation sets several transform functions at once, keyed
// by function name ("translate", "rotate", ...). Every call is
// checked before the node is modified.
func (n *Node) Transformation(ops map[string][]float64) error {
	if n.released {
		return ErrReleased
	}
	names := make([]string, 0, len(ops))
	for op := range ops {
		names = append(names, op)
	}
	sort.Strings(names)
	values := make(map[string]interface{}, len(ops))
	for _, op := range names {
		args, err := normalizeTransform(op, ops[op])
		if err != nil {
			return err
		}
		values["_"+op] = append([]float64{}, args...)
	}
	return n.Declare(values)
}

// composeTransform rebuilds the transform attribute from
// the transform function slots.
func composeTransform(n *Node, _ string, _, _ interface{}) error {
	var funcs []string
	for _, name := range transformSlots {
		i, ok := n.kind.index[name]
		if !ok {
			continue
		}
		args, _ := n.values[i].([]float64)
		if len(args) == 0 {
			continue
		}
		funcs = append(funcs, name[1:]+"("+formatValue(args)+")")
	}
	i, ok := n.kind.index["transform"]
	if !ok {
		return nil
	}
	return n.assign(i, `"`+strings.Join(funcs, " ")+`"`)
}

// TransformAttr returns the composed transform functions, without quotes.
func (n *Node) TransformAttr() string {
	s, _ := n.Value("transform").(string)
	return strings.Trim(s, `"`)
}
