package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fitsync/internal/server/handlers"
	"github.com/iudanet/fitsync/pkg/api"
)

func TestAuthMiddleware_Success(t *testing.T) {
	token, _, err := handlers.IssueToken(testJWTConfig, "user-1")
	require.NoError(t, err)

	var gotOwner string
	handler := AuthMiddleware(setupTestLogger(), testJWTConfig)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := handlers.GetOwnerID(r.Context())
		require.True(t, ok, "owner_id should be in context")
		gotOwner = ownerID
		w.WriteHeader(http.StatusOK)
	}))

	for _, scheme := range []string{"Bearer", "bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("Authorization", scheme+" "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", gotOwner)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expiredCfg := testJWTConfig
	expiredCfg.TokenTTL = -time.Minute
	expired, _, err := handlers.IssueToken(expiredCfg, "user-1")
	require.NoError(t, err)

	foreign, _, err := handlers.IssueToken(handlers.JWTConfig{Secret: []byte("other"), TokenTTL: time.Hour}, "user-1")
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantMessage string
	}{
		{name: "missing header", header: "", wantMessage: "missing token"},
		{name: "no scheme", header: "token-only", wantMessage: "invalid token format"},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantMessage: "invalid token format"},
		{name: "empty bearer", header: "Bearer ", wantMessage: "invalid token format"},
		{name: "garbage token", header: "Bearer not-a-jwt", wantMessage: "invalid token"},
		{name: "expired token", header: "Bearer " + expired, wantMessage: "invalid token"},
		{name: "wrong secret", header: "Bearer " + foreign, wantMessage: "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := AuthMiddleware(setupTestLogger(), testJWTConfig)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/records/program", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.False(t, called, "next handler must not run")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}
