package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/server/storage"
	"github.com/iudanet/fitsync/internal/timex"
	"github.com/iudanet/fitsync/pkg/api"
)

// Ограничения запроса на запись
const (
	MaxBatchSize = 500
	MaxBodyBytes = 8 << 20
)

// RecordsHandler handles remote record store requests
type RecordsHandler struct {
	logger  *slog.Logger
	storage storage.RecordStorage
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(logger *slog.Logger, storage storage.RecordStorage) *RecordsHandler {
	return &RecordsHandler{
		logger:  logger,
		storage: storage,
	}
}

// HandlePing обрабатывает GET /api/v1/ping.
// Отвечает 200, если токен действителен и база данных доступна.
func (h *RecordsHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, h.logger, http.StatusMethodNotAllowed, "")
		return
	}

	if err := h.storage.Ping(r.Context()); err != nil {
		h.logger.Error("Storage ping failed", "error", err)
		WriteError(w, h.logger, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.PingResponse{
		Status: "ok",
		Time:   timex.Now().UnixMilli(),
	})
}

// HandleRecords обрабатывает GET и POST запросы /api/v1/records/{type}
func (h *RecordsHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	// Получаем owner_id из контекста (установлен AuthMiddleware)
	ownerID, ok := GetOwnerID(r.Context())
	if !ok {
		h.logger.Error("Owner ID not found in context")
		WriteError(w, h.logger, http.StatusUnauthorized, "")
		return
	}

	entityType := models.EntityType(r.PathValue("type"))
	if !entityType.Valid() {
		h.logger.Warn("Unknown entity type", "type", entityType)
		WriteError(w, h.logger, http.StatusNotFound, "unknown entity type "+strconv.Quote(string(entityType)))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleReadSince(w, r, ownerID, entityType)
	case http.MethodPost:
		h.handleWriteBatch(w, r, ownerID, entityType)
	default:
		WriteError(w, h.logger, http.StatusMethodNotAllowed, "")
	}
}

// handleReadSince обрабатывает GET /api/v1/records/{type}?since=N&owner_id=ID.
// Возвращает записи с server_seq > since, включая удаленные, и голову
// последовательности сервера как новый водяной знак.
func (h *RecordsHandler) handleReadSince(w http.ResponseWriter, r *http.Request, ownerID string, t models.EntityType) {
	query := r.URL.Query()

	var since int64
	if sinceStr := query.Get("since"); sinceStr != "" {
		var err error
		since, err = strconv.ParseInt(sinceStr, 10, 64)
		if err != nil || since < 0 {
			h.logger.Warn("Invalid since parameter", "since", sinceStr)
			WriteError(w, h.logger, http.StatusBadRequest, "invalid since parameter")
			return
		}
	}

	if requested := query.Get("owner_id"); requested != "" && requested != ownerID {
		h.logger.Warn("Owner mismatch on read", "owner_id", ownerID, "requested", requested)
		WriteError(w, h.logger, http.StatusForbidden, "owner mismatch")
		return
	}

	resp, err := h.storage.ReadSince(r.Context(), ownerID, t, since)
	if err != nil {
		h.storageError(w, err, "Failed to read records", ownerID, t)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, resp)

	h.logger.Debug("Records read",
		"owner_id", ownerID,
		"type", t,
		"since", since,
		"count", len(resp.Records),
		"watermark", resp.Watermark)
}

// handleWriteBatch обрабатывает POST /api/v1/records/{type}
func (h *RecordsHandler) handleWriteBatch(w http.ResponseWriter, r *http.Request, ownerID string, t models.EntityType) {
	var req api.WriteRequest

	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode write request", "error", err)

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, h.logger, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Records) > MaxBatchSize {
		WriteError(w, h.logger, http.StatusRequestEntityTooLarge,
			"batch exceeds "+strconv.Itoa(MaxBatchSize)+" records")
		return
	}

	res, err := h.storage.WriteBatch(r.Context(), ownerID, t, req.Records)
	if err != nil {
		h.storageError(w, err, "Failed to write records", ownerID, t)
		return
	}

	for _, rej := range res.Rejected {
		h.logger.Info("Record rejected",
			"owner_id", ownerID,
			"type", t,
			"id", rej.ID,
			"reason", rej.Reason,
			"detail", rej.Detail)
	}

	writeJSON(w, h.logger, http.StatusOK, res)

	h.logger.Info("Records written",
		"owner_id", ownerID,
		"type", t,
		"accepted", len(res.Accepted),
		"stale", len(res.Stale),
		"rejected", len(res.Rejected))
}

func (h *RecordsHandler) storageError(w http.ResponseWriter, err error, msg, ownerID string, t models.EntityType) {
	if errors.Is(err, storage.ErrInvalidEntityType) {
		WriteError(w, h.logger, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error(msg, "error", err, "owner_id", ownerID, "type", t)
	WriteError(w, h.logger, http.StatusInternalServerError, "internal server error")
}
