package catalog

import (
	"github.com/go-faster/errors"
)

// Failure kinds. Every error returned by Service matches exactly one of them.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateName = errors.New("duplicate product name")
	ErrDuplicateSlug = errors.New("duplicate channel name")
	ErrInvalidInput  = errors.New("invalid input")
	ErrPersistence   = errors.New("persistence failure")
	ErrExternal      = errors.New("external resource failure")
)

// Error ties a failure kind to the operation and underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func fail(op string, kind, cause error) error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// Kind returns the failure kind of err, or nil when err is not a catalog error.
func Kind(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
