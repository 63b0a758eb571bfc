package dto

// Envelope wraps every successful response body.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// ErrorEnvelope wraps every error response body.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a DomainError across the wire.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
