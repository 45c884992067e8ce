package models

import (
	"encoding/json"
	"fmt"
)

// EntityType тип синхронизируемой доменной записи
type EntityType string

const (
	EntityUser             EntityType = "user"
	EntitySocialProfile    EntityType = "social_profile"
	EntityProgram          EntityType = "program"
	EntityTrainingDay      EntityType = "training_day"
	EntityWorkoutLog       EntityType = "workout_log"
	EntityFocusSession     EntityType = "focus_session"
	EntityAchievement      EntityType = "achievement"
	EntityGamification     EntityType = "gamification"
	EntityXPEvent          EntityType = "xp_event"
	EntityPersonalRecord   EntityType = "personal_record"
	EntityCustomMeal       EntityType = "custom_meal"
	EntityCustomSupplement EntityType = "custom_supplement"
	EntityFollow           EntityType = "follow"
	EntityGroupMembership  EntityType = "group_membership"
)

// EntityTypes перечисляет все синхронизируемые типы в порядке зависимостей:
// родительские записи (user, program, training_day) отправляются раньше дочерних.
var EntityTypes = []EntityType{
	EntityUser,
	EntitySocialProfile,
	EntityProgram,
	EntityTrainingDay,
	EntityWorkoutLog,
	EntityFocusSession,
	EntityAchievement,
	EntityGamification,
	EntityXPEvent,
	EntityPersonalRecord,
	EntityCustomMeal,
	EntityCustomSupplement,
	EntityFollow,
	EntityGroupMembership,
}

// Valid reports whether t is one of the supported entity types.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PushOrder возвращает позицию типа в порядке отправки (-1 для неизвестных типов).
func (t EntityType) PushOrder() int {
	for i, known := range EntityTypes {
		if t == known {
			return i
		}
	}
	return -1
}

// SyncFields общие поля любой синхронизируемой записи в локальном представлении.
// Даты хранятся текстом; UpdatedAt - гибридная логическая метка времени,
// монотонно растущая для каждого ID.
type SyncFields struct {
	ID          string `json:"id"`
	OwnerID     string `json:"ownerId"`
	DeviceID    string `json:"deviceId"`
	CreatedAt   string `json:"createdAt"`
	DeletedAt   string `json:"deletedAt,omitempty"` // пустая строка = запись не удалена
	UpdatedAt   int64  `json:"updatedAt"`
	Orphaned    bool   `json:"orphaned,omitempty"`    // родительская запись удалена (только локально)
	NeedsReview bool   `json:"needsReview,omitempty"` // конфликт удаления и правки (только локально)
}

// Sync возвращает общие поля записи.
func (s *SyncFields) Sync() *SyncFields { return s }

// IsDeleted reports whether the record is a tombstone.
func (s *SyncFields) IsDeleted() bool { return s.DeletedAt != "" }

func (s *SyncFields) sealed() {}

// Entity - закрытое объединение всех доменных записей, участвующих в синхронизации.
// Каждому EntityType соответствует ровно один тип, реализующий Entity.
type Entity interface {
	Kind() EntityType
	Sync() *SyncFields
	sealed()
}

// NewEntity создает пустой экземпляр записи заданного типа.
func NewEntity(t EntityType) (Entity, error) {
	switch t {
	case EntityUser:
		return &User{}, nil
	case EntitySocialProfile:
		return &SocialProfile{}, nil
	case EntityProgram:
		return &Program{}, nil
	case EntityTrainingDay:
		return &TrainingDay{}, nil
	case EntityWorkoutLog:
		return &WorkoutLog{}, nil
	case EntityFocusSession:
		return &FocusSession{}, nil
	case EntityAchievement:
		return &Achievement{}, nil
	case EntityGamification:
		return &Gamification{}, nil
	case EntityXPEvent:
		return &XPEvent{}, nil
	case EntityPersonalRecord:
		return &PersonalRecord{}, nil
	case EntityCustomMeal:
		return &CustomMeal{}, nil
	case EntityCustomSupplement:
		return &CustomSupplement{}, nil
	case EntityFollow:
		return &Follow{}, nil
	case EntityGroupMembership:
		return &GroupMembership{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, string(t))
	}
}

// DecodeEntity десериализует локальное JSON представление записи заданного типа.
func DecodeEntity(t EntityType, raw []byte) (Entity, error) {
	e, err := NewEntity(t)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", t, err)
	}
	return e, nil
}

// Clone возвращает глубокую копию записи.
func Clone(e Entity) Entity {
	if e == nil {
		return nil
	}
	raw, err := json.Marshal(e)
	if err != nil {
		panic(fmt.Sprintf("models: marshal %s: %v", e.Kind(), err))
	}
	cp, err := DecodeEntity(e.Kind(), raw)
	if err != nil {
		panic(fmt.Sprintf("models: clone %s: %v", e.Kind(), err))
	}
	return cp
}

// Tombstone строит минимальную удаленную запись, когда полный снимок недоступен.
func Tombstone(t EntityType, id, ownerID, deviceID string, updatedAt int64, deletedAt string) (Entity, error) {
	e, err := NewEntity(t)
	if err != nil {
		return nil, err
	}
	*e.Sync() = SyncFields{
		ID:        id,
		OwnerID:   ownerID,
		DeviceID:  deviceID,
		CreatedAt: deletedAt,
		DeletedAt: deletedAt,
		UpdatedAt: updatedAt,
	}
	return e, nil
}
