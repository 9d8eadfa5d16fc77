package redcoll

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/redcoll/container"
)

var (
	// ErrEmptyKey is returned when a typed list is built without a key.
	ErrEmptyKey = errors.New("redcoll: key is required")

	// ErrEmptyID is returned when an entity without an id is written to a list.
	ErrEmptyID = errors.New("entity has empty id")

	// ErrIndexOutOfRange matches every *IndexError.
	ErrIndexOutOfRange = container.ErrIndexOutOfRange
)

// IndexError reports an index outside the list's current bounds.
type IndexError = container.IndexError

// UnknownTypeError is returned at construction when an element type
// descriptor cannot be resolved.
type UnknownTypeError struct {
	Name   string
	Reason string
}

func (e *UnknownTypeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("redcoll: unknown element type %q", e.Name)
	}
	return fmt.Sprintf("redcoll: unknown element type %q: %s", e.Name, e.Reason)
}

// TypeCastError wraps a failure to convert a stored raw value into the
// list's element type. Index is -1 when the value was not read by position.
type TypeCastError struct {
	Key   string
	Index int64
	Raw   string
	Err   error
}

func (e *TypeCastError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("redcoll: list %q: cast %q: %v", e.Key, e.Raw, e.Err)
	}
	return fmt.Sprintf("redcoll: list %q[%d]: cast %q: %v", e.Key, e.Index, e.Raw, e.Err)
}

func (e *TypeCastError) Unwrap() error { return e.Err }

// InvalidateError is returned by CachedRepository.Invalidate when the
// revision bump or the entry delete failed.
type InvalidateError struct {
	ID      string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("invalidate %q failed: revision bump and delete failed: bump=%v; delete=%v",
			e.ID, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("invalidate %q: revision bump failed: %v", e.ID, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("invalidate %q: delete failed: %v", e.ID, e.DelErr)
	default:
		return fmt.Sprintf("invalidate %q: unknown error", e.ID)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
