// Package health отдает состояние подключения к удаленному хранилищу
// в формате, удобном для внешнего мониторинга.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Status результат проверки доступности удаленного хранилища
type Status struct {
	Error      string `json:"error,omitempty"`
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
}

// Checker возвращает текущее состояние
type Checker interface {
	Status(ctx context.Context) Status
}

// CheckerFunc адаптер функции к Checker
type CheckerFunc func(ctx context.Context) Status

// Status вызывает f(ctx).
func (f CheckerFunc) Status(ctx context.Context) Status { return f(ctx) }

// Handler обрабатывает health check запросы
type Handler struct {
	checker Checker
	logger  *slog.Logger
}

// NewHandler создает новый handler для health check
func NewHandler(checker Checker, logger *slog.Logger) *Handler {
	return &Handler{
		checker: checker,
		logger:  logger,
	}
}

// Health обрабатывает GET /api/v1/health.
// 200 если хранилище доступно, 503 иначе.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.checker.Status(r.Context())

	code := http.StatusOK
	if !status.Connected {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}

// ServeHTTP позволяет регистрировать Handler напрямую.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}
