package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/fitsync/pkg/api"
)

// writeJSON отправляет ответ в формате JSON
func writeJSON(w http.ResponseWriter, logger *slog.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// WriteError отправляет ошибку в формате api.ErrorResponse
func WriteError(w http.ResponseWriter, logger *slog.Logger, code int, message string) {
	writeJSON(w, logger, code, api.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}
