// Package api описывает представление записей в удаленном хранилище
// и формат обмена между клиентом синхронизации и сервером.
package api

import (
	"encoding/json"
	"time"
)

// Record строка удаленного хранилища. Общие колонки типизированы,
// поля конкретной сущности лежат в структурированной колонке Data.
type Record struct {
	CreatedAt  time.Time       `json:"created_at"`
	DeletedAt  *time.Time      `json:"deleted_at,omitempty"`
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	EntityType string          `json:"entity_type"`
	DeviceID   string          `json:"device_id"`
	ParentID   string          `json:"parent_id,omitempty"`  // ссылка на родителя (program, training day)
	UniqueKey  string          `json:"unique_key,omitempty"` // ключ уникальности удаленной схемы
	Data       json.RawMessage `json:"data"`
	UpdatedAt  int64           `json:"updated_at"`
	ServerSeq  int64           `json:"server_seq,omitempty"` // порядковый номер применения на сервере, только при чтении
}

// Rejection reasons returned by the remote store.
const (
	ReasonConstraint = "constraint" // нарушено ограничение уникальности
	ReasonForbidden  = "forbidden"  // запись принадлежит другому владельцу
	ReasonInvalid    = "invalid"    // запись не прошла валидацию
)

// WriteRequest тело POST /api/v1/records/{type}
type WriteRequest struct {
	Records []Record `json:"records"`
}

// Rejection описывает отклоненную запись
type Rejection struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// WriteResult ответ на запись пакета. Accepted включает устаревшие записи (Stale):
// они приняты, но не применены, так как в хранилище уже есть более новая версия.
type WriteResult struct {
	Accepted []string    `json:"accepted"`
	Stale    []string    `json:"stale,omitempty"`
	Rejected []Rejection `json:"rejected,omitempty"`
}

// ReadResponse ответ GET /api/v1/records/{type}?since=N
type ReadResponse struct {
	Records   []Record `json:"records"`
	Watermark int64    `json:"watermark"` // server_seq, до которого включительно ответ полон
}

// PingResponse ответ GET /api/v1/ping
type PingResponse struct {
	Status string `json:"status"`
	Time   int64  `json:"time"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
