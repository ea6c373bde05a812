package chat

import (
	"errors"
	"fmt"
)

// ModelCallError reports a transport or model failure during a
// completion call. The turn that hit it left history untouched.
type ModelCallError struct {
	Err error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("model call: %v", e.Err)
}

func (e *ModelCallError) Unwrap() error { return e.Err }

// IsModelCallError reports whether err is (or wraps) a ModelCallError.
func IsModelCallError(err error) bool {
	var me *ModelCallError
	return errors.As(err, &me)
}

// InvalidInputError reports missing or malformed turn input.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// IsInvalidInputError reports whether err is (or wraps) an
// InvalidInputError.
func IsInvalidInputError(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}
