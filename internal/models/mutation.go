package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation вид локального изменения
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// MutationLogEntry запись журнала локальных изменений.
// Создается при каждой локальной записи и удаляется только после того,
// как удаленное хранилище подтвердило прием. Payload - снимок записи
// на момент изменения (nil для delete).
type MutationLogEntry struct {
	Payload    Entity     `json:"-"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Operation  Operation  `json:"operation"`
	DeviceID   string     `json:"device_id"`
	Seq        uint64     `json:"seq"`
	RecordedAt int64      `json:"recorded_at"` // гибридная логическая метка устройства
}

type mutationEnvelope struct {
	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Operation  Operation       `json:"operation"`
	DeviceID   string          `json:"device_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Seq        uint64          `json:"seq"`
	RecordedAt int64           `json:"recorded_at"`
}

// MarshalJSON сериализует запись вместе с типизированным payload.
func (m MutationLogEntry) MarshalJSON() ([]byte, error) {
	env := mutationEnvelope{
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Operation:  m.Operation,
		DeviceID:   m.DeviceID,
		Seq:        m.Seq,
		RecordedAt: m.RecordedAt,
	}
	if m.Payload != nil {
		raw, err := json.Marshal(m.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// UnmarshalJSON восстанавливает payload по entity_type.
func (m *MutationLogEntry) UnmarshalJSON(data []byte) error {
	var env mutationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*m = MutationLogEntry{
		EntityType: env.EntityType,
		EntityID:   env.EntityID,
		Operation:  env.Operation,
		DeviceID:   env.DeviceID,
		Seq:        env.Seq,
		RecordedAt: env.RecordedAt,
	}
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return nil
	}
	payload, err := DecodeEntity(env.EntityType, env.Payload)
	if err != nil {
		return err
	}
	m.Payload = payload
	return nil
}

// SyncCursor состояние синхронизации пары (пользователь, устройство).
type SyncCursor struct {
	LastSuccessAt time.Time `json:"last_success_at"`
	LastPushedSeq uint64    `json:"last_pushed_seq"` // максимальный подтвержденный номер журнала
	LastPulledAt  int64     `json:"last_pulled_at"`  // server_seq, до которого слиты удаленные изменения
}
