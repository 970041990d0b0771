package errors

import (
	stderrors "errors"

	"github.com/tdhoang/evdealer-client/constant"
)

// CustomError carries an error classification and, for domain rejections,
// the verbatim message returned by the dealer backend.
type CustomError struct {
	errType constant.ErrorType
	message string
}

func (c CustomError) Error() string {
	if c.message != "" {
		return c.message
	}
	return constant.ErrorTypeMessage[c.errType]
}

func (c CustomError) Type() constant.ErrorType {
	return c.errType
}

func (c CustomError) ErrorCode() string {
	return constant.ErrorTypeCode[c.errType]
}

func SetCustomError(errorType constant.ErrorType) CustomError {
	return CustomError{
		errType: errorType,
	}
}

// SetCustomErrorMessage builds a CustomError whose Error() text is the given
// message instead of the generic table entry. Used to pass backend domain
// messages through verbatim.
func SetCustomErrorMessage(errorType constant.ErrorType, message string) CustomError {
	return CustomError{
		errType: errorType,
		message: message,
	}
}

// TypeOf extracts the classification from err. Non-CustomError values map to
// ErrInternal; nil maps to Successful.
func TypeOf(err error) constant.ErrorType {
	if err == nil {
		return constant.Successful
	}
	var c CustomError
	if stderrors.As(err, &c) {
		return c.errType
	}
	return constant.ErrInternal
}

// IsType reports whether err carries the given classification.
func IsType(err error, errorType constant.ErrorType) bool {
	if err == nil {
		return false
	}
	var c CustomError
	return stderrors.As(err, &c) && c.errType == errorType
}
