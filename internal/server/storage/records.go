package storage

import (
	"context"
	"fmt"

	"github.com/iudanet/fitsync/internal/crdt"
	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/pkg/api"
)

//go:generate moq -out records_mock.go . RecordStorage

// RecordStorage defines interface for remote record persistence
type RecordStorage interface {
	// Ping checks that the database is reachable
	Ping(ctx context.Context) error

	// ReadSince returns records of the owner with server_seq > since,
	// tombstones included, ordered by server_seq ascending.
	// Watermark is the server sequence head read before the records:
	// every record applied at or below it is in the response.
	ReadSince(ctx context.Context, ownerID string, t models.EntityType, since int64) (*api.ReadResponse, error)

	// WriteBatch applies records of one type on behalf of ownerID.
	// Each record is accepted, accepted as stale or rejected independently.
	// Every applied record gets the next server sequence number.
	WriteBatch(ctx context.Context, ownerID string, t models.EntityType, records []api.Record) (*api.WriteResult, error)
}

// Supersedes сообщает, заменяет ли входящая запись сохраненную.
// Порядок тот же, что у клиента (crdt.Compare): больший updated_at,
// затем живая запись против tombstone, затем больший device_id.
func Supersedes(incoming, existing api.Record) bool {
	return crdt.Compare(recordVersion(incoming), recordVersion(existing)) > 0
}

func recordVersion(rec api.Record) crdt.Version {
	return crdt.Version{
		DeviceID:  rec.DeviceID,
		UpdatedAt: rec.UpdatedAt,
		Deleted:   rec.DeletedAt != nil,
	}
}

// Validate проверяет запись перед записью от имени ownerID.
// Возвращает nil, если запись можно применять.
func Validate(ownerID string, t models.EntityType, rec api.Record) *api.Rejection {
	switch {
	case rec.ID == "":
		return &api.Rejection{Reason: api.ReasonInvalid, Detail: "id is required"}
	case rec.EntityType != "" && rec.EntityType != string(t):
		return &api.Rejection{
			ID:     rec.ID,
			Reason: api.ReasonInvalid,
			Detail: fmt.Sprintf("entity type %q does not match %q", rec.EntityType, t),
		}
	case rec.OwnerID != ownerID:
		return &api.Rejection{ID: rec.ID, Reason: api.ReasonForbidden, Detail: "owner mismatch"}
	case rec.UpdatedAt <= 0:
		return &api.Rejection{ID: rec.ID, Reason: api.ReasonInvalid, Detail: "updated_at is required"}
	case rec.CreatedAt.IsZero():
		return &api.Rejection{ID: rec.ID, Reason: api.ReasonInvalid, Detail: "created_at is required"}
	case len(rec.Data) == 0:
		return &api.Rejection{ID: rec.ID, Reason: api.ReasonInvalid, Detail: "data is required"}
	}
	return nil
}

// UniqueConflict описывает отказ по ограничению уникальности
func UniqueConflict(rec api.Record) api.Rejection {
	return api.Rejection{
		ID:     rec.ID,
		Reason: api.ReasonConstraint,
		Detail: "unique key " + rec.UniqueKey + " already taken",
	}
}

// ClaimsUniqueKey сообщает, занимает ли запись ключ уникальности
func ClaimsUniqueKey(rec api.Record) bool {
	return rec.UniqueKey != "" && rec.DeletedAt == nil
}
