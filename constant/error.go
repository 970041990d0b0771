package constant

import "net/http"

type ErrorType int

const (
	Successful ErrorType = iota
	ErrInternal
	ErrNetwork
	ErrTimeout
	ErrUnauthorized
	ErrNotFound
	ErrDomain
	ErrInvalidRequest
	ErrIllegalTransition
)

var ErrorTypeMessage = map[ErrorType]string{
	Successful:           "success",
	ErrInternal:          "error internal",
	ErrNetwork:           "network error, please try again",
	ErrTimeout:           "request timed out",
	ErrUnauthorized:      "unauthorize request",
	ErrNotFound:          "data not found",
	ErrDomain:            "request rejected",
	ErrInvalidRequest:    "invalid request",
	ErrIllegalTransition: "status transition not allowed",
}

var ErrorTypeCode = map[ErrorType]string{
	Successful:           "0000",
	ErrInternal:          "0001",
	ErrNetwork:           "0002",
	ErrTimeout:           "0003",
	ErrUnauthorized:      "0004",
	ErrNotFound:          "0005",
	ErrDomain:            "0006",
	ErrInvalidRequest:    "0007",
	ErrIllegalTransition: "0008",
}

// ErrorTypeForStatus classifies a non-2xx HTTP status from the dealer backend.
// 4xx bodies carry a domain message that is surfaced verbatim; 5xx is opaque.
func ErrorTypeForStatus(code int) ErrorType {
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 400 && code < 500:
		return ErrDomain
	default:
		return ErrInternal
	}
}
