// Package types holds the wire envelopes shared by every endpoint. Success
// bodies nest the payload under "data"; failures carry a typed error object.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Details is populated only for
// codes that allow it, such as validation failures.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
