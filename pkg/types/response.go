package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// DataEnvelope is the typed form of SuccessEnvelope used when decoding responses.
type DataEnvelope[T any] struct {
	Data T `json:"data"`
}
