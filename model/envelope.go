package model

import "encoding/json"

// Envelope is the response wrapper used by the dealer backend:
// {data: ..., paginationInfo?: ...} on success, {error|message: ...} on
// rejection. Some list endpoints answer with a bare JSON array instead; the
// gateway normalizes both shapes.
type Envelope struct {
	Data           json.RawMessage `json:"data,omitempty"`
	PaginationInfo *PaginationInfo `json:"paginationInfo,omitempty"`
	Error          string          `json:"error,omitempty"`
	Message        string          `json:"message,omitempty"`
}

// ErrorText returns the backend-supplied message of a rejection, preferring
// the error field over message.
func (e *Envelope) ErrorText() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
