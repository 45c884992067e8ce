// Package schema maps every synchronized entity between its local-store shape
// (text timestamps, camelCase fields, embedded blocks) and the remote-store
// shape (native timestamps, typed columns, structured data column).
package schema

import (
	"fmt"

	"github.com/iudanet/fitsync/internal/models"
)

// SchemaMismatchError сообщает о записи, которую нельзя отобразить между схемами:
// отсутствует обязательное поле без значения по умолчанию или данные не разбираются.
// Означает расхождение версий локальной схемы и адаптера, поэтому не подменяется
// значением по умолчанию.
type SchemaMismatchError struct {
	EntityType models.EntityType
	EntityID   string
	Field      string
	Reason     string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %s %q field %q: %s", e.EntityType, e.EntityID, e.Field, e.Reason)
}

func mismatch(t models.EntityType, id, field, reason string) *SchemaMismatchError {
	return &SchemaMismatchError{EntityType: t, EntityID: id, Field: field, Reason: reason}
}
