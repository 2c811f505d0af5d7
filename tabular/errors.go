package tabular

import (
	"errors"
	"fmt"
)

// Error codes carried by the typed load errors.
const (
	CodeUnreadableInput = "UNREADABLE_INPUT"
	CodeEmptyDataset    = "EMPTY_DATASET"
	CodeUnknown         = "UNKNOWN"
)

// UnreadableInputError means the source could not be opened or decoded at all.
type UnreadableInputError struct {
	Source string
	Cause  error
}

func (e *UnreadableInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unreadable input %q: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("unreadable input %q", e.Source)
}

func (e *UnreadableInputError) Unwrap() error { return e.Cause }

// Code returns CodeUnreadableInput.
func (e *UnreadableInputError) Code() string { return CodeUnreadableInput }

// EmptyDatasetError means the source was readable but yielded no header row or
// no usable records.
type EmptyDatasetError struct {
	Source string
	Reason string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("empty dataset %q: %s", e.Source, e.Reason)
}

// Code returns CodeEmptyDataset.
func (e *EmptyDatasetError) Code() string { return CodeEmptyDataset }

// IsUnreadable reports whether err wraps an UnreadableInputError.
func IsUnreadable(err error) bool {
	var target *UnreadableInputError
	return errors.As(err, &target)
}

// IsEmptyDataset reports whether err wraps an EmptyDatasetError.
func IsEmptyDataset(err error) bool {
	var target *EmptyDatasetError
	return errors.As(err, &target)
}

// ErrorCode returns the code of the first coded error in err's chain,
// or CodeUnknown.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return CodeUnknown
}
