package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nbbang/internal/core"
	"nbbang/internal/services"
)

// JSONResponseBuilder provides a fluent API for building JSON responses so
// handlers stay focused on domain flow.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewJSONResponse creates a builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Payload sets the body to marshal.
func (b *JSONResponseBuilder) Payload(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.payload != nil {
		if err := json.NewEncoder(w).Encode(b.payload); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Payload(errorBody{Error: message})
}

// writeDomainError maps domain errors onto status codes. Anything unmapped is
// a 500 with a generic body; the real cause goes to the log only.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrMeetingNotFound):
		ErrorResponse(http.StatusNotFound, "meeting not found").Write(w)
	case errors.Is(err, core.ErrPersonNotFound):
		ErrorResponse(http.StatusNotFound, "person not found").Write(w)
	case errors.Is(err, core.ErrPlaceNotFound):
		ErrorResponse(http.StatusNotFound, "place not found").Write(w)
	case errors.Is(err, core.ErrAllExcluded):
		ErrorResponse(http.StatusUnprocessableEntity, "exclusion would leave no participants").Write(w)
	case errors.Is(err, services.ErrSaveInProgress):
		ErrorResponse(http.StatusConflict, "save already in progress").Write(w)
	default:
		slog.ErrorContext(ctx, "Request failed", "error", err)
		ErrorResponse(http.StatusInternalServerError, "internal error").Write(w)
	}
}
