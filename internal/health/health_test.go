package health

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		wantCode int
	}{
		{
			name:     "connected",
			status:   Status{Configured: true, Connected: true},
			wantCode: http.StatusOK,
		},
		{
			name:     "configured but unreachable",
			status:   Status{Configured: true, Error: "timeout after 5s"},
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "not configured",
			status:   Status{Error: "sync is not configured"},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(CheckerFunc(func(context.Context) Status { return tt.status }), logger)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			resp := w.Result()
			defer func() {
				err := resp.Body.Close()
				assert.NoError(t, err)
			}()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var got Status
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.status, got)
		})
	}
}
