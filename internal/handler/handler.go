// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/envis/envis/internal/handler/dto"
	"github.com/envis/envis/internal/middleware"
)

// Handler serves the fallback API responses.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found", Code: "NOT_FOUND"})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "Method not allowed", Code: "METHOD_NOT_ALLOWED"})
}

// Options are shared by the API handlers.
type Options struct {
	Logger    *slog.Logger
	Validator *middleware.Validator
	// ExposeErrors adds the underlying error text to 500 responses. It is
	// off in production.
	ExposeErrors bool
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Validator == nil {
		o.Validator = middleware.NewValidator()
	}
	return o
}

// responder writes error responses and decodes request bodies.
type responder struct {
	logger       *slog.Logger
	validator    *middleware.Validator
	exposeErrors bool
}

func newResponder(o Options) responder {
	o = o.withDefaults()
	return responder{logger: o.Logger, validator: o.Validator, exposeErrors: o.ExposeErrors}
}

func (rs responder) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}

// writeInternalError logs err and answers 500 with message.
func (rs responder) writeInternalError(w http.ResponseWriter, r *http.Request, code, message string, err error) {
	rs.logger.Error("internal_error",
		slog.String("code", code),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	resp := dto.ErrorResponse{Error: message, Code: code}
	if rs.exposeErrors {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// decode reads a JSON body into dst and validates it. On failure the
// response has been written and false is returned; a *ValidationError is
// reported through invalid when set.
func (rs responder) decode(w http.ResponseWriter, r *http.Request, dst any, invalid func()) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rs.writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return false
		}
		rs.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}

	if err := rs.validator.Struct(dst); err != nil {
		if invalid != nil {
			invalid()
		}
		var verr *middleware.ValidationError
		if errors.As(err, &verr) {
			rs.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
			return false
		}
		rs.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation error: "+err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}
