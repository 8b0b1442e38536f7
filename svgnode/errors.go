package svgnode

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSlot is returned when a slot name is not declared
	// by the kind of a node.
	ErrUnknownSlot = errors.New("unknown slot")

	// ErrReleased is returned when operating on a node
	// whose arena entry has been released.
	ErrReleased = errors.New("node released")

	// ErrAbstractKind is returned when instantiating a kind without tag.
	ErrAbstractKind = errors.New("abstract kind")
)

// ValidationError is returned when a value is rejected by
// the validator of a slot. The stored value is left unchanged.
type ValidationError struct {
	Kind   string // name of the node kind
	Slot   string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %#v for %s.%s: %s", e.Value, e.Kind, e.Slot, e.Reason)
}

// RegistryError is returned when a node of the wrong kind
// is added to a Collection or a Composite.
type RegistryError struct {
	Want     string // required kind
	Got      string // offending kind
	Subclass bool   // true for Composite (subclass check)
}

func (e *RegistryError) Error() string {
	if e.Subclass {
		return fmt.Sprintf("registry elements must be subclasses of %s (got %s)", e.Want, e.Got)
	}
	return fmt.Sprintf("registry elements must be instances of %s (got %s)", e.Want, e.Got)
}

// RenderError is returned when a template references
// a placeholder without value.
type RenderError struct {
	Kind        string
	Placeholder string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s: no value for placeholder {%s}", e.Kind, e.Placeholder)
}

// StructuralError is returned for a wrong number of arguments
// given to a transform or a path segment constructor.
type StructuralError struct {
	Op   string
	Got  int
	Want string // human readable accepted arities
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s() takes %s arguments (%d given)", e.Op, e.Want, e.Got)
}

func unknownSlot(k *Kind, name string) error {
	return fmt.Errorf("%w: %s has no slot %q", ErrUnknownSlot, k.Name, name)
}
