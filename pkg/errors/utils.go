package errors

import (
	"errors"
)

// Is is errors.Is, except that two nil errors do not match.
func Is(err, target error) bool {
	if err == nil && target == nil {
		return false
	}
	return errors.Is(err, target)
}

func As[T error](err error, target *T) bool {
	if err == nil {
		return false
	}
	return errors.As(err, target)
}

// GetErrorCode returns the code of the first *Error in err's chain, or "".
func GetErrorCode(err error) Code {
	var e *Error
	if As(err, &e) {
		return e.Code
	}
	return ""
}
