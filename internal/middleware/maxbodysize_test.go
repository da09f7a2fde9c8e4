package middleware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/travel-planner/internal/middleware"
)

// drainBody reads the whole body the way a JSON decoder would and answers
// 413 when the read trips the limit.
var drainBody = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, err := io.ReadAll(r.Body)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	case err != nil:
		w.WriteHeader(http.StatusBadRequest)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
})

func TestMaxBodySizeHandler(t *testing.T) {
	const limit = 64

	tests := map[string]struct {
		size          int
		contentLength int64 // -1 streams the body without a length
		want          int
	}{
		"under limit":                {size: 32, contentLength: 32, want: http.StatusNoContent},
		"exactly at limit":           {size: limit, contentLength: limit, want: http.StatusNoContent},
		"declared length over limit": {size: 128, contentLength: 128, want: http.StatusRequestEntityTooLarge},
		"streamed body over limit":   {size: 128, contentLength: -1, want: http.StatusRequestEntityTooLarge},
		"streamed body under limit":  {size: 10, contentLength: -1, want: http.StatusNoContent},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h := middleware.NewMaxBodySizeHandler(limit)(drainBody)
			req := httptest.NewRequest(http.MethodPut, "/bins/abc", strings.NewReader(strings.Repeat("x", tc.size)))
			req.ContentLength = tc.contentLength
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestMaxBodySizeHandler_RejectsBeforeHandlerRuns(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
	h := middleware.NewMaxBodySizeHandler(8)(next)

	req := httptest.NewRequest(http.MethodPost, "/bins", strings.NewReader(strings.Repeat("x", 9)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, called)
}
