package diag

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ErrorTag is used to parameterize [Error] into different concrete types.
// The ErrorTag method is called with a zero receiver, and its return value is
// used in [Error.Error] and [Error.Show].
type ErrorTag interface {
	ErrorTag() string
}

// Error represents an error with context that can be showed. The Cause, when
// not nil, is the underlying error value and is returned by Unwrap.
type Error[T ErrorTag] struct {
	Message string
	Context Context
	Cause   error
}

// Variables controlling the style of the message.
var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Error returns a plain text representation of the error.
func (e *Error[T]) Error() string {
	return fmt.Sprintf("%s: %s: %s", errorTag[T](), e.Context.Describe(), e.Message)
}

// Unwrap returns the cause of the error.
func (e *Error[T]) Unwrap() error { return e.Cause }

// Range returns the range of the error.
func (e *Error[T]) Range() Ranging {
	return e.Context.Range()
}

// Show shows the error.
func (e *Error[T]) Show(indent string) string {
	header := fmt.Sprintf("%s: %s%s%s\n", title(errorTag[T]()), messageStart, e.Message, messageEnd)
	return header + indent + "  " + e.Context.Show(indent+"  ")
}

func errorTag[T ErrorTag]() string {
	var t T
	return t.ErrorTag()
}

// NewError creates an Error whose message is taken from cause.
func NewError[T ErrorTag](name, source string, r Ranger, cause error) *Error[T] {
	return &Error[T]{Message: cause.Error(), Context: *NewContext(name, source, r), Cause: cause}
}

// AsError finds the first [Error] with tag T in the chain of err.
func AsError[T ErrorTag](err error) (*Error[T], bool) {
	var e *Error[T]
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func title(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size == 0 {
		return s
	}
	return string(unicode.ToTitle(r)) + s[size:]
}
