// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses.

package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"accountant/internal/locale"
)

// Error codes returned in the "error" field of failed responses.
const (
	CodeBadRequest       = "bad_request"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeDataUnavailable  = "data_unavailable"
	CodeNotImplemented   = "not_implemented"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal_error"
)

// envelope is the body of every successful API response.
type envelope struct {
	Data    any             `json:"data"`
	Context *locale.Context `json:"context,omitempty"`
}

// errorBody is the body of every failed API response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Param   string `json:"param,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewJSONResponse creates a new response builder with default 200 status.
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

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data wraps v in the success envelope together with the presentation context.
func (b *JSONResponseBuilder) Data(v any, pc *locale.Context) *JSONResponseBuilder {
	if pc != nil {
		b.headers["Content-Language"] = string(pc.Locale)
	}
	b.payload = envelope{Data: v, Context: pc}
	return b
}

// Raw sets v as the whole body, without the envelope.
func (b *JSONResponseBuilder) Raw(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	body, err := json.Marshal(b.payload)
	if err != nil {
		body, _ = json.Marshal(errorBody{Error: CodeInternal})
		b.statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Raw(errorBody{Error: code, Message: message})
}

// BadRequestError creates a 400 response naming the offending parameter.
func BadRequestError(err error) *JSONResponseBuilder {
	body := errorBody{Error: CodeBadRequest, Message: err.Error()}
	var pe *ParamError
	if errors.As(err, &pe) {
		body.Param = pe.Param
	}
	return NewJSONResponse().Status(http.StatusBadRequest).Raw(body)
}

// DataUnavailableError creates the 503 response for failed fetches. The
// cause is logged, never returned to the client.
func DataUnavailableError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, CodeDataUnavailable, "")
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, "")
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, "")
}

// TooManyRequestsError creates a 429 response. Retry-After is retryAfter
// rounded up to whole seconds, at least one.
func TooManyRequestsError(retryAfter time.Duration) *JSONResponseBuilder {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "").
		Header("Retry-After", strconv.Itoa(secs))
}
