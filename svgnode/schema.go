package svgnode

import (
	"errors"
	"fmt"
	"strings"
)

// Meta tags a slot with its role in rendering and selection.
type Meta struct {
	Attr     bool   // rendered as a markup attribute
	AttrName string // markup name override, implies Attr
	Display  bool   // cascaded from groups to their children
	Raw      bool   // rendered without quotes
	Coord    int    // 1-based coordinate order, 0 for none
	Trans    bool   // argument of a transform function
	Data     bool   // part of the data snapshot
}

// IsAttr returns true if the slot is rendered as an attribute.
func (m Meta) IsAttr() bool { return m.Attr || m.AttrName != "" }

// Lookup returns the value of the metadata key, as seen by selectors.
// Unset tags are reported as missing.
// The "attr" key yields the override name when there is one.
func (m Meta) Lookup(key string) (interface{}, bool) {
	switch key {
	case "attr":
		if m.AttrName != "" {
			return m.AttrName, true
		}
		return true, m.Attr
	case "display":
		return true, m.Display
	case "raw":
		return true, m.Raw
	case "coord":
		return m.Coord, m.Coord != 0
	case "trans":
		return true, m.Trans
	case "data":
		return true, m.Data
	}
	return nil, false
}

// Metadata is a metadata requirement used by selectors:
// every key must be present on the slot with an equal value.
type Metadata map[string]interface{}

// Matches returns true if every key of req is present in m
// with an equal value.
func (m Meta) Matches(req Metadata) bool {
	for key, want := range req {
		got, ok := m.Lookup(key)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// SlotDef declares a typed attribute slot of a node kind.
type SlotDef struct {
	Name      string
	Validator Validator
	Default   interface{}
	AllowNone bool
	ReadOnly  bool // only written internally
	Meta      Meta
}

var reservedNames = map[string]bool{"tag": true, "attrs": true, "children": true}

// Kind is the static schema shared by all nodes of the same sort.
// Kinds form a single inheritance chain through Parent, which is
// used for subclass checks.
type Kind struct {
	Name      string // Go facing name, used in errors
	Tag       string // markup tag, empty for abstract kinds
	Parent    *Kind
	Form      string // markup skeleton with {tag}, {attrs} and slot placeholders
	Container bool

	slots []SlotDef
	index map[string]int
}

// Define resolves a new kind. Slots of the parent come first, in their
// declaration order; a slot redeclared with the same name replaces the
// parent one in place. An empty form is inherited from the parent.
func Define(name, tag string, parent *Kind, form string, slots ...SlotDef) (*Kind, error) {
	k := &Kind{Name: name, Tag: tag, Parent: parent, Form: form, index: map[string]int{}}
	if parent != nil {
		k.slots = append(k.slots, parent.slots...)
		for n, i := range parent.index {
			k.index[n] = i
		}
		if form == "" {
			k.Form = parent.Form
		}
	}
	if k.Form == "" {
		return nil, fmt.Errorf("kind %s: missing markup form", name)
	}
	k.Container = strings.Contains(k.Form, "{children}")

	seen := map[string]bool{}
	for _, def := range slots {
		if def.Name == "" {
			return nil, fmt.Errorf("kind %s: empty slot name", name)
		}
		if reservedNames[def.Name] {
			return nil, fmt.Errorf("kind %s: slot name %q is reserved", name, def.Name)
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("kind %s: duplicate slot %q", name, def.Name)
		}
		seen[def.Name] = true
		if def.Validator == nil {
			return nil, fmt.Errorf("kind %s: slot %q has no validator", name, def.Name)
		}
		if def.Default == nil {
			if !def.AllowNone {
				return nil, fmt.Errorf("kind %s: slot %q has no default and does not allow none", name, def.Name)
			}
		} else {
			v, err := def.Validator.Validate(nil, def.Default)
			if err != nil {
				return nil, &ValidationError{Kind: name, Slot: def.Name, Value: def.Default, Reason: "default rejected: " + err.Error()}
			}
			def.Default = v
		}
		if i, ok := k.index[def.Name]; ok {
			k.slots[i] = def
			continue
		}
		k.index[def.Name] = len(k.slots)
		k.slots = append(k.slots, def)
	}
	return k, nil
}

func mustDefine(name, tag string, parent *Kind, form string, slots ...SlotDef) *Kind {
	k, err := Define(name, tag, parent, form, slots...)
	if err != nil {
		panic(err)
	}
	return k
}

func (k *Kind) String() string { return k.Name }

// Abstract returns true for kinds without tag, which can't be instantiated.
func (k *Kind) Abstract() bool { return k.Tag == "" }

// Is returns true if k is other or inherits from it.
func (k *Kind) Is(other *Kind) bool {
	for c := k; c != nil; c = c.Parent {
		if c == other {
			return true
		}
	}
	return false
}

// Slots returns a copy of the resolved slot definitions.
func (k *Kind) Slots() []SlotDef { return append([]SlotDef(nil), k.slots...) }

// Slot returns the definition of the named slot.
func (k *Kind) Slot(name string) (SlotDef, bool) {
	i, ok := k.index[name]
	if !ok {
		return SlotDef{}, false
	}
	return k.slots[i], true
}

// SlotNames returns the names of the slots whose metadata match req,
// in declaration order.
func (k *Kind) SlotNames(req Metadata) []string {
	var out []string
	for _, def := range k.slots {
		if def.Meta.Matches(req) {
			out = append(out, def.Name)
		}
	}
	return out
}

var errNoneNotAllowed = errors.New("none is not allowed")
