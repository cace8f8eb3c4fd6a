package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"accountant/internal/locale"
)

func TestJSONResponseBuilder_Data(t *testing.T) {
	w := httptest.NewRecorder()
	pc := locale.NewContext(locale.English, locale.Dark)

	NewJSONResponse().
		Header("X-Test", "1").
		Data(map[string]int{"count": 2}, &pc).
		Write(w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "en", w.Header().Get("Content-Language"))
	assert.Equal(t, "1", w.Header().Get("X-Test"))
	assert.JSONEq(t, `{
		"data": {"count": 2},
		"context": {"locale": "en", "direction": "ltr", "theme": "dark", "currency": "AED", "timezone": "Asia/Dubai"}
	}`, w.Body.String())
}

func TestJSONResponseBuilder_Unencodable(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Raw(make(chan int)).Write(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		b      *JSONResponseBuilder
		status int
		body   string
	}{
		{"data unavailable", DataUnavailableError(), http.StatusServiceUnavailable, `{"error":"data_unavailable"}`},
		{"not found", NotFoundError(), http.StatusNotFound, `{"error":"not_found"}`},
		{"internal", InternalServerError(), http.StatusInternalServerError, `{"error":"internal_error"}`},
		{"rate limited", TooManyRequestsError(time.Minute), http.StatusTooManyRequests, `{"error":"rate_limited"}`},
		{
			"bad param",
			BadRequestError(&ParamError{Param: "as_of", Value: "x", Reason: "expected YYYY-MM-DD"}),
			http.StatusBadRequest,
			`{"error":"bad_request","param":"as_of","message":"invalid as_of \"x\": expected YYYY-MM-DD"}`,
		},
		{"bad request", BadRequestError(errors.New("nope")), http.StatusBadRequest, `{"error":"bad_request","message":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.b.Write(w)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestTooManyRequestsError_RetryAfter(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Minute, "60"},
		{500 * time.Millisecond, "1"},
		{1500 * time.Millisecond, "2"},
		{0, "1"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		TooManyRequestsError(tt.in).Write(w)
		assert.Equal(t, tt.want, w.Header().Get("Retry-After"), "retry after %v", tt.in)
	}
}
