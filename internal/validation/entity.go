package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/fitsync/internal/models"
)

// ErrInvalidEntity запись не прошла проверку перед сохранением
var ErrInvalidEntity = errors.New("invalid entity")

// Допустимые системы единиц пользователя
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// ValidateEntity проверяет предметные поля записи.
// Обязательные поля схемы проверяются отдельно при отображении в удаленный формат.
func ValidateEntity(e models.Entity) error {
	switch v := e.(type) {
	case *models.SocialProfile:
		return ValidateHandle(v.Handle)
	case *models.User:
		if v.Email != "" && !strings.Contains(v.Email, "@") {
			return fmt.Errorf("%w: email %q has no @", ErrInvalidEntity, v.Email)
		}
		if v.Units != "" && v.Units != UnitsMetric && v.Units != UnitsImperial {
			return fmt.Errorf("%w: unknown units %q", ErrInvalidEntity, v.Units)
		}
	case *models.TrainingDay:
		for i, b := range v.Blocks {
			if b.Sets < 0 || b.Reps < 0 || b.RestSec < 0 || b.WeightKg < 0 {
				return fmt.Errorf("%w: block %d has negative values", ErrInvalidEntity, i)
			}
		}
	case *models.WorkoutLog:
		if v.DurationSec < 0 {
			return fmt.Errorf("%w: negative duration", ErrInvalidEntity)
		}
		for i, s := range v.Sets {
			if s.Reps < 0 || s.WeightKg < 0 {
				return fmt.Errorf("%w: set %d has negative values", ErrInvalidEntity, i)
			}
		}
	case *models.FocusSession:
		if v.DurationSec < 0 {
			return fmt.Errorf("%w: negative duration", ErrInvalidEntity)
		}
	}
	return nil
}
