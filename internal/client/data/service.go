package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/fitsync/internal/client/oplog"
	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/crdt"
	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/schema"
	"github.com/iudanet/fitsync/internal/timex"
	"github.com/iudanet/fitsync/internal/validation"
)

var (
	// ErrEntityDeleted запись удалена и не может быть изменена
	ErrEntityDeleted = errors.New("entity is deleted")
	// ErrOwnerMismatch запись принадлежит другому пользователю
	ErrOwnerMismatch = errors.New("entity belongs to another owner")
)

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс для локальных изменений данных пользователя.
// Каждое изменение сохраняется вместе с записью журнала в одной транзакции.
type Service interface {
	Save(ctx context.Context, e models.Entity) (models.Entity, error)
	Delete(ctx context.Context, t models.EntityType, id string) error
	Get(ctx context.Context, t models.EntityType, id string) (models.Entity, error)
	List(ctx context.Context, t models.EntityType) ([]models.Entity, error)
}

// service handles client-side writes of fitness data
type service struct {
	store   storage.LocalStore
	log     *oplog.Log
	clock   *crdt.HybridClock
	ownerID string
}

// NewService creates a new data service for the owner
func NewService(store storage.LocalStore, log *oplog.Log, clock *crdt.HybridClock, ownerID string) Service {
	return &service{
		store:   store,
		log:     log,
		clock:   clock,
		ownerID: ownerID,
	}
}

// Save создает или обновляет запись.
// Пустой ID заменяется новым UUID. Запись получает новую метку часов устройства.
func (s *service) Save(ctx context.Context, e models.Entity) (models.Entity, error) {
	if e == nil {
		return nil, errors.New("entity is nil")
	}
	if err := validation.ValidateEntity(e); err != nil {
		return nil, err
	}

	entity := models.Clone(e)
	fields := entity.Sync()

	op := models.OpCreate
	if fields.ID == "" {
		fields.ID = uuid.New().String()
	} else {
		existing, err := s.store.Get(ctx, entity.Kind(), fields.ID)
		switch {
		case errors.Is(err, storage.ErrEntityNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to load %s: %w", entity.Kind(), err)
		case existing.Sync().IsDeleted():
			return nil, fmt.Errorf("%s %q: %w", entity.Kind(), fields.ID, ErrEntityDeleted)
		default:
			op = models.OpUpdate
			fields.CreatedAt = existing.Sync().CreatedAt
			fields.OwnerID = existing.Sync().OwnerID
			fields.Orphaned = existing.Sync().Orphaned
		}
	}

	if fields.OwnerID == "" {
		fields.OwnerID = s.ownerID
	}
	if fields.OwnerID != s.ownerID {
		return nil, ErrOwnerMismatch
	}
	if fields.CreatedAt == "" {
		fields.CreatedAt = timex.Format(timex.Now())
	}
	fields.DeletedAt = ""
	fields.NeedsReview = false
	fields.DeviceID = s.clock.NodeID()
	fields.UpdatedAt = s.clock.Now()

	normalized, err := normalize(entity)
	if err != nil {
		return nil, err
	}

	entry := s.log.NewEntry(normalized.Kind(), fields.ID, op, normalized)
	if _, err := s.store.WriteWithLog(ctx, normalized, entry); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", normalized.Kind(), err)
	}

	return normalized, nil
}

// normalize проверяет, что запись можно отправить в удаленное хранилище,
// и приводит ее к тому виду, в котором она вернется при следующем чтении.
func normalize(e models.Entity) (models.Entity, error) {
	rec, err := schema.ToRemote(e)
	if err != nil {
		return nil, err
	}
	out, err := schema.ToLocal(rec)
	if err != nil {
		return nil, err
	}
	out.Sync().Orphaned = e.Sync().Orphaned
	out.Sync().NeedsReview = e.Sync().NeedsReview
	return out, nil
}

// Delete помечает запись удаленной (soft delete).
// Удаление программы удаляет и ее тренировочные дни; журналы тренировок сохраняются.
func (s *service) Delete(ctx context.Context, t models.EntityType, id string) error {
	existing, err := s.store.Get(ctx, t, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t, err)
	}
	if existing.Sync().IsDeleted() {
		return nil
	}
	if existing.Sync().OwnerID != s.ownerID {
		return ErrOwnerMismatch
	}

	batch := &storage.CommitBatch{}
	s.stageDelete(batch, existing)

	if t == models.EntityProgram {
		days, err := s.store.ReadAll(ctx, models.EntityTrainingDay)
		if err != nil {
			return fmt.Errorf("failed to load training days: %w", err)
		}
		for _, d := range days {
			day := d.(*models.TrainingDay)
			if day.ProgramID == id && !day.IsDeleted() {
				s.stageDelete(batch, day)
			}
		}
	}

	if err := s.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("failed to delete %s: %w", t, err)
	}
	return nil
}

func (s *service) stageDelete(batch *storage.CommitBatch, e models.Entity) {
	tomb := models.Clone(e)
	fields := tomb.Sync()
	fields.DeletedAt = timex.Format(timex.Now())
	fields.DeviceID = s.clock.NodeID()
	fields.UpdatedAt = s.clock.Now()
	fields.NeedsReview = false

	batch.Upserts = append(batch.Upserts, tomb)
	batch.Log = append(batch.Log, s.log.NewEntry(tomb.Kind(), fields.ID, models.OpDelete, tomb))
}

// Get возвращает запись по ID. Удаленные записи не возвращаются.
func (s *service) Get(ctx context.Context, t models.EntityType, id string) (models.Entity, error) {
	e, err := s.store.Get(ctx, t, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", t, err)
	}
	if e.Sync().IsDeleted() {
		return nil, fmt.Errorf("%s %q: %w", t, id, ErrEntityDeleted)
	}
	return e, nil
}

// List возвращает все неудаленные записи типа
func (s *service) List(ctx context.Context, t models.EntityType) ([]models.Entity, error) {
	all, err := s.store.ReadAll(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t, err)
	}

	live := make([]models.Entity, 0, len(all))
	for _, e := range all {
		if !e.Sync().IsDeleted() {
			live = append(live, e)
		}
	}
	return live, nil
}
