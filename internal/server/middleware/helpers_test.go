package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/iudanet/fitsync/internal/server/handlers"
)

var testJWTConfig = handlers.JWTConfig{
	Secret:   []byte("test-secret-key"),
	TokenTTL: 15 * time.Minute,
}

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// bufferLogger пишет все записи в буфер
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
