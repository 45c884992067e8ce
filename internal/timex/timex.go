// Package timex converts between the textual timestamps kept in the local store
// and native time.Time values used by the remote store and domain logic.
package timex

import (
	"strings"
	"time"
)

// Now возвращает текущее время; переопределяется в тестах.
var Now = func() time.Time { return time.Now().UTC() }

// layouts перечисляет форматы, которые встречаются в локальном хранилище
// и в ответах удаленного хранилища (SQLite, Postgres, JSON).
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05 -0700 -0700",
	"2006-01-02",
}

// ToOptionalTime приводит значение к времени.
// Принимает string, time.Time, *time.Time или nil. Для пустых, нулевых
// и неразбираемых значений возвращает nil и никогда не паникует.
func ToOptionalTime(v any) *time.Time {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		if val.IsZero() {
			return nil
		}
		t := val.UTC()
		return &t
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		t := val.UTC()
		return &t
	case string:
		return parse(val)
	case *string:
		if val == nil {
			return nil
		}
		return parse(*val)
	default:
		return nil
	}
}

// ToRequiredTime работает как ToOptionalTime, но подставляет текущее время,
// если значение отсутствует или не разбирается. Используется для полей,
// которые удаленная схема не допускает пустыми (например, created_at).
func ToRequiredTime(v any) time.Time {
	if t := ToOptionalTime(v); t != nil {
		return *t
	}
	return Now()
}

// Format возвращает каноническое текстовое представление времени (RFC3339Nano, UTC).
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatOptional форматирует nil как пустую строку.
func FormatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

func parse(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.IsZero() {
				return nil
			}
			t = t.UTC()
			return &t
		}
	}
	return nil
}
