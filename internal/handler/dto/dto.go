// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse represents an API error. Details carries the underlying
// error text outside production.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is returned by mutations with no payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}
