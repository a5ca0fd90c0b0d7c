package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument     = errors.New("protocol: invalid argument")
	ErrOverflow            = errors.New("protocol: frame overflow")
	ErrFull                = errors.New("protocol: light pattern full")
	ErrTruncated           = errors.New("protocol: truncated frame")
	ErrLengthMismatch      = errors.New("protocol: length mismatch")
	ErrPayloadSizeMismatch = errors.New("protocol: payload size mismatch")
	ErrUnknownTag          = errors.New("protocol: unknown tag")
)

// ArgumentError reports a caller-supplied field outside its declared range.
type ArgumentError struct {
	Field string
	Value int
	Max   int
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("protocol: invalid argument: %s=%d (max %d)", e.Field, e.Value, e.Max)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// CheckRange returns an *ArgumentError when v is outside [0, max].
func CheckRange(field string, v, max int) error {
	if v < 0 || v > max {
		return &ArgumentError{Field: field, Value: v, Max: max}
	}
	return nil
}
