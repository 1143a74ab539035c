package fence

import (
	"errors"
	"fmt"
)

// Fence errors.
var (
	ErrInvalidRegionID = errors.New("invalid region id")
	ErrInvalidMajor    = errors.New("major out of range (0-65535)")
	ErrInvalidMinor    = errors.New("minor out of range (0-65535)")
	ErrCorruptData     = errors.New("corrupt identity data")
)

// CorruptDataError reports a persisted identity that could not be decoded.
type CorruptDataError struct {
	// Field names the offending field, empty when the payload as a whole is unreadable.
	Field string

	// Cause is the underlying decode error, if any.
	Cause error
}

func (e *CorruptDataError) Error() string {
	msg := ErrCorruptData.Error()
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the decode cause.
func (e *CorruptDataError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrCorruptData) succeed for any CorruptDataError.
func (e *CorruptDataError) Is(target error) bool {
	return target == ErrCorruptData
}
