package svgnode

const (
	containerForm = "<{tag} {attrs}>\n{children}\n</{tag}>"
	voidForm      = "<{tag} {attrs}/>"
	textForm      = "<{tag} {attrs}>{string}</{tag}>"
)

// emptyTransform is the value of the transform attribute
// when no transform function is set.
const emptyTransform = `""`

func lengthSlot(name string, def interface{}) SlotDef {
	return SlotDef{Name: name, Validator: Length, Default: def, Meta: Meta{Attr: true, Data: true}}
}

func coordSlot(name string, def interface{}, order int) SlotDef {
	return SlotDef{Name: name, Validator: Length, Default: def, Meta: Meta{Attr: true, Data: true, Coord: order}}
}

// displaySlots returns the styling and transform slots shared by
// groups, shapes and texts. A nil default makes the slots optional.
func displaySlots(fill, stroke, strokeWidth interface{}) []SlotDef {
	allowNone := fill == nil
	display := Meta{Attr: true, Display: true, Data: true}
	return []SlotDef{
		{Name: "fill", Validator: String, Default: fill, AllowNone: allowNone, Meta: display},
		{Name: "stroke", Validator: String, Default: stroke, AllowNone: allowNone, Meta: display},
		{Name: "stroke_width", Validator: Length, Default: strokeWidth, AllowNone: allowNone, Meta: display},
		{Name: "transform", Validator: String, Default: emptyTransform, ReadOnly: true, Meta: Meta{Attr: true, Raw: true}},
		{Name: "_translate", Validator: Tuple(0, 2), Default: []float64{}, Meta: Meta{Trans: true}},
		{Name: "_rotate", Validator: Tuple(0, 1, 3), Default: []float64{}, Meta: Meta{Trans: true}},
		{Name: "_scale", Validator: Tuple(0, 1, 2), Default: []float64{}, Meta: Meta{Trans: true}},
		{Name: "_skewX", Validator: Tuple(0, 1), Default: []float64{}, Meta: Meta{Trans: true}},
		{Name: "_skewY", Validator: Tuple(0, 1), Default: []float64{}, Meta: Meta{Trans: true}},
		{Name: "_matrix", Validator: Tuple(0, 6), Default: []float64{}, Meta: Meta{Trans: true}},
	}
}

// Built-in kinds. Abstract kinds (empty tag) are only used
// as subclass roots.
var (
	KindBase = mustDefine("Base", "", nil, voidForm,
		SlotDef{Name: "parent", Validator: NodeRef, AllowNone: true, ReadOnly: true},
		SlotDef{Name: "label", Validator: String, AllowNone: true, Meta: Meta{AttrName: "id"}},
		SlotDef{Name: "kind", Validator: String, AllowNone: true, Meta: Meta{AttrName: "class"}},
	)

	KindContainer = mustDefine("Container", "", KindBase, containerForm)

	KindSVG = mustDefine("SVG", "svg", KindContainer, "",
		lengthSlot("width", 100),
		lengthSlot("height", 100),
		SlotDef{Name: "view_box", Validator: String, AllowNone: true, Meta: Meta{AttrName: "viewBox", Data: true}},
	)

	KindGroup = mustDefine("Group", "g", KindContainer, "", displaySlots(nil, nil, nil)...)

	KindShape = mustDefine("Shape", "", KindBase, voidForm, displaySlots("none", "gray", 1)...)

	KindCircle = mustDefine("Circle", "circle", KindShape, "",
		lengthSlot("cx", 12), lengthSlot("cy", 12), lengthSlot("r", 10))

	KindEllipse = mustDefine("Ellipse", "ellipse", KindShape, "",
		lengthSlot("cx", 12), lengthSlot("cy", 12), lengthSlot("rx", 10), lengthSlot("ry", 5))

	KindRect = mustDefine("Rect", "rect", KindShape, "",
		lengthSlot("x", 0), lengthSlot("y", 0), lengthSlot("width", 20), lengthSlot("height", 10),
		SlotDef{Name: "rx", Validator: Length, AllowNone: true, Meta: Meta{Attr: true, Data: true}},
		SlotDef{Name: "ry", Validator: Length, AllowNone: true, Meta: Meta{Attr: true, Data: true}},
	)

	KindLine = mustDefine("Line", "line", KindShape, "",
		coordSlot("x1", 2, 1), coordSlot("y1", 2, 2), coordSlot("x2", 12, 3), coordSlot("y2", 12, 4),
		SlotDef{Name: "points", Validator: PointsN(2), AllowNone: true,
			Default: []Point{{2, 2}, {12, 12}}, Meta: Meta{Data: true}},
	)

	KindPolyline = mustDefine("Polyline", "polyline", KindShape, "",
		SlotDef{Name: "points", Validator: Points, Default: []Point{{2, 2}, {12, 12}}, Meta: Meta{Attr: true, Data: true}})

	KindPolygon = mustDefine("Polygon", "polygon", KindPolyline, "",
		SlotDef{Name: "points", Validator: Points, Default: []Point{{2, 30}, {12, 10}, {22, 30}}, Meta: Meta{Attr: true, Data: true}})

	KindPath = mustDefine("Path", "path", KindShape, "",
		SlotDef{Name: "d", Validator: String, Default: "", Meta: Meta{Attr: true, Data: true}})

	KindText = mustDefine("Text", "text", KindBase, textForm,
		append(displaySlots("black", "none", 0),
			SlotDef{Name: "string", Validator: String, Default: "", Meta: Meta{Data: true}},
			lengthSlot("x", 3),
			lengthSlot("y", 15),
		)...,
	)
)
