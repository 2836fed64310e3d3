// Package errs defines the closed set of error kinds surfaced by the
// templating engine.
//
// Each kind has its own struct type. Positioned errors (from parsing and
// rendering) wrap one of these types in a [diag.Error]; use [KindOf] to find
// the kind of any error returned by the engine.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error kinds.
type Kind int

// Possible values of Kind.
const (
	KindUnknown Kind = iota
	KindTransport
	KindUnknownResponseMethod
	KindDecode
	KindNoRootElement
	KindMultipleRootElements
	KindUnclosedElement
	KindUnterminatedAttribute
	KindUnknownPlaceholderKind
	KindMissingPlaceholderValue
	KindUnbalancedRegion
	KindDuplicateDirective
	KindTemplateNotFound
	KindConflictingPlaceholder
)

var kindNames = [...]string{
	KindUnknown:                 "UnknownError",
	KindTransport:               "TransportError",
	KindUnknownResponseMethod:   "UnknownResponseMethod",
	KindDecode:                  "DecodeError",
	KindNoRootElement:           "NoRootElement",
	KindMultipleRootElements:    "MultipleRootElements",
	KindUnclosedElement:         "UnclosedElement",
	KindUnterminatedAttribute:   "UnterminatedAttribute",
	KindUnknownPlaceholderKind:  "UnknownPlaceholderKind",
	KindMissingPlaceholderValue: "MissingPlaceholderValue",
	KindUnbalancedRegion:        "UnbalancedRegion",
	KindDuplicateDirective:      "DuplicateDirective",
	KindTemplateNotFound:        "TemplateNotFound",
	KindConflictingPlaceholder:  "ConflictingPlaceholder",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is implemented by all the error types in this package.
type Error interface {
	error
	Kind() Kind
}

// KindOf returns the kind of the first Error in the chain of err, or
// KindUnknown if there is none.
func KindOf(err error) Kind {
	var e Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return KindUnknown
}

// Subject returns the placeholder, field, tag or method name that err is
// about, or "" if err carries none.
func Subject(err error) string {
	var s interface{ subject() string }
	if errors.As(err, &s) {
		return s.subject()
	}
	return ""
}

// Transport is returned when the backend cannot be reached or returns a
// malformed envelope.
type Transport struct {
	Err error
}

func (e Transport) Error() string { return "transport error: " + e.Err.Error() }
func (e Transport) Unwrap() error { return e.Err }
func (e Transport) Kind() Kind { return KindTransport }

// UnknownResponseMethod is returned when the response method has no route.
type UnknownResponseMethod struct {
	Method string
}

func (e UnknownResponseMethod) Error() string {
	return fmt.Sprintf("unknown response method %q", e.Method)
}
func (e UnknownResponseMethod) Kind() Kind { return KindUnknownResponseMethod }
func (e UnknownResponseMethod) subject() string { return e.Method }

// Decode is returned when response data does not match the record shape a
// template expects.
type Decode struct {
	Field  string
	Reason string
}

func (e Decode) Error() string {
	return fmt.Sprintf("cannot decode field %s: %s", e.Field, e.Reason)
}
func (e Decode) Kind() Kind { return KindDecode }
func (e Decode) subject() string { return e.Field }

// NoRootElement is returned when a template has no top-level element.
type NoRootElement struct{}

func (NoRootElement) Error() string { return "template has no root element" }
func (NoRootElement) Kind() Kind { return KindNoRootElement }

// MultipleRootElements is returned when a template has more than one
// top-level node that is not whitespace.
type MultipleRootElements struct{}

func (MultipleRootElements) Error() string { return "template has more than one root node" }
func (MultipleRootElements) Kind() Kind { return KindMultipleRootElements }

// UnclosedElement is returned for mismatched or missing end tags, and for
// unterminated comments (with Tag "!--").
type UnclosedElement struct {
	Tag string
	// Found is the end tag found instead of the expected one, if any.
	Found string
}

func (e UnclosedElement) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("unexpected end tag </%s>", e.Found)
	}
	if e.Found != "" {
		return fmt.Sprintf("unclosed element <%s>, found </%s>", e.Tag, e.Found)
	}
	return fmt.Sprintf("unclosed element <%s>", e.Tag)
}
func (e UnclosedElement) Kind() Kind { return KindUnclosedElement }
func (e UnclosedElement) subject() string { return e.Tag }

// UnterminatedAttribute is returned when a quoted attribute value has no
// closing quote.
type UnterminatedAttribute struct {
	Name string
}

func (e UnterminatedAttribute) Error() string {
	return fmt.Sprintf("unterminated value of attribute %s", e.Name)
}
func (e UnterminatedAttribute) Kind() Kind { return KindUnterminatedAttribute }
func (e UnterminatedAttribute) subject() string { return e.Name }

// UnknownPlaceholderKind is returned when a placeholder-shaped name matches
// no known prefix for its position.
type UnknownPlaceholderKind struct {
	Name string
}

func (e UnknownPlaceholderKind) Error() string {
	return fmt.Sprintf("unknown placeholder kind %q", e.Name)
}
func (e UnknownPlaceholderKind) Kind() Kind { return KindUnknownPlaceholderKind }
func (e UnknownPlaceholderKind) subject() string { return e.Name }

// MissingPlaceholderValue is returned when render data lacks a name that a
// placeholder requires.
type MissingPlaceholderValue struct {
	Name string
}

func (e MissingPlaceholderValue) Error() string {
	return fmt.Sprintf("missing value for placeholder %q", e.Name)
}
func (e MissingPlaceholderValue) Kind() Kind { return KindMissingPlaceholderValue }
func (e MissingPlaceholderValue) subject() string { return e.Name }

// UnbalancedRegion is returned when region markers are mismatched.
type UnbalancedRegion struct {
	Label string
}

func (e UnbalancedRegion) Error() string {
	return fmt.Sprintf("unbalanced region %q", e.Label)
}
func (e UnbalancedRegion) Kind() Kind { return KindUnbalancedRegion }
func (e UnbalancedRegion) subject() string { return e.Label }

// DuplicateDirective is returned when two directive attributes on one
// element target the same attribute.
type DuplicateDirective struct {
	Target string
}

func (e DuplicateDirective) Error() string {
	return fmt.Sprintf("more than one directive targets attribute %s", e.Target)
}
func (e DuplicateDirective) Kind() Kind { return KindDuplicateDirective }
func (e DuplicateDirective) subject() string { return e.Target }

// TemplateNotFound is returned when a template name cannot be resolved.
type TemplateNotFound struct {
	Name string
}

func (e TemplateNotFound) Error() string {
	return fmt.Sprintf("template %q not found", e.Name)
}
func (e TemplateNotFound) Kind() Kind { return KindTemplateNotFound }
func (e TemplateNotFound) subject() string { return e.Name }

// ConflictingPlaceholder is returned when one template uses a label with
// incompatible kinds, for example both as text and as a boolean.
type ConflictingPlaceholder struct {
	Name string
}

func (e ConflictingPlaceholder) Error() string {
	return fmt.Sprintf("placeholder %q is used with conflicting kinds", e.Name)
}
func (e ConflictingPlaceholder) Kind() Kind { return KindConflictingPlaceholder }
func (e ConflictingPlaceholder) subject() string { return e.Name }
