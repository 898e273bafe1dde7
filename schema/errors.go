package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownGroup is returned when a group is not declared.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrInvalidElement is wrapped by every ValidationError.
	ErrInvalidElement = errors.New("invalid element")
)

// UnknownPropertyError reports a property that the schema cannot resolve.
// Type is set when the property exists but references an undeclared type.
type UnknownPropertyError struct {
	Group    string
	Property string
	Type     string
}

func (e *UnknownPropertyError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema: group %q property %q references unknown type %q", e.Group, e.Property, e.Type)
	}
	return fmt.Sprintf("schema: group %q has no property %q", e.Group, e.Property)
}

// DefinitionError reports any other problem found while building a schema.
type DefinitionError struct {
	Subject string
	Reason  string
	Err     error
}

func (e *DefinitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema: %s: %s: %v", e.Subject, e.Reason, e.Err)
	}
	return fmt.Sprintf("schema: %s: %s", e.Subject, e.Reason)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// ValidationError reports an element that does not satisfy the schema.
type ValidationError struct {
	Group  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: invalid %q element: %s", e.Group, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidElement }
