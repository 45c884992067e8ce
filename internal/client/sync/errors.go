package sync

import (
	"errors"
	"fmt"

	"github.com/iudanet/fitsync/internal/models"
)

// ErrPassInFlight проход синхронизации уже выполняется; повтор запланирован
var ErrPassInFlight = errors.New("sync pass already in flight")

// ConstraintRejection удаленное хранилище отклонило конкретную запись
// (нарушение уникальности, чужой владелец). Запись остается в журнале.
type ConstraintRejection struct {
	EntityType models.EntityType
	EntityID   string
	Reason     string
	Detail     string
	Seqs       []uint64
}

func (r *ConstraintRejection) Error() string {
	if r.Detail != "" {
		return fmt.Sprintf("%s %q rejected (%s): %s", r.EntityType, r.EntityID, r.Reason, r.Detail)
	}
	return fmt.Sprintf("%s %q rejected (%s)", r.EntityType, r.EntityID, r.Reason)
}

// CursorInconsistencyError курсор ссылается на номер, которого в журнале нет.
// Курсор сбрасывается на самую старую хранимую запись, водяной знак обнуляется.
type CursorInconsistencyError struct {
	LastPushedSeq uint64
	Head          uint64
	ResetTo       uint64
}

func (e *CursorInconsistencyError) Error() string {
	return fmt.Sprintf("cursor inconsistency: last pushed seq %d is beyond log head %d, reset to %d",
		e.LastPushedSeq, e.Head, e.ResetTo)
}
