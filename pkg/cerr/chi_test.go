package cerr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	NewJSONResponseChiMiddleware()(h).ServeHTTP(rec, req)
	return rec
}

func TestJSONResponseMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name: "response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				SetJSONResponse(r.Context(), map[string]any{"success": true})
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"success": true},
		},
		{
			name: "coded error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				SetNewJSONError(r.Context(), InvalidArgument, "userId is required", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"success": false, "code": "invalid_argument", "error": "userId is required"},
		},
		{
			name: "reason overrides code name",
			handler: func(w http.ResponseWriter, r *http.Request) {
				SetJSONError(r.Context(), NewError(NotFound, "user is not subscribed", nil).WithReason("not_subscribed"))
			},
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]any{"success": false, "code": "not_subscribed", "error": "user is not subscribed"},
		},
		{
			name: "plain error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				SetJSONError(r.Context(), errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"success": false, "code": "unknown", "error": "unknown error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.handler)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestIsCode(t *testing.T) {
	err := WrapStorageWriteError("subscriptions", errors.New("disk full"))
	assert.True(t, IsCode(err, Internal))
	assert.False(t, IsCode(err, NotFound))
	assert.False(t, IsCode(errors.New("plain"), Internal))
}

func TestCodeHTTPCode(t *testing.T) {
	tests := []struct {
		code Code
		want int
		name string
	}{
		{code: InvalidArgument, want: http.StatusBadRequest, name: "invalid_argument"},
		{code: NotFound, want: http.StatusNotFound, name: "not_found"},
		{code: Unauthenticated, want: http.StatusUnauthorized, name: "unauthenticated"},
		{code: MethodNotAllowed, want: http.StatusMethodNotAllowed, name: "method_not_allowed"},
		{code: Unavailable, want: http.StatusServiceUnavailable, name: "unavailable"},
		{code: Internal, want: http.StatusInternalServerError, name: "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPCode())
			assert.Equal(t, tt.name, tt.code.String())
		})
	}
}
