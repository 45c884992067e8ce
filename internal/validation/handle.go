package validation

import (
	"fmt"
	"regexp"
)

// HandlePattern определяет допустимый формат публичного handle
// Только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
var HandlePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

const (
	// MinHandleLen минимальная длина handle
	MinHandleLen = 3
	// MaxHandleLen максимальная длина handle
	MaxHandleLen = 32
)

// ValidateHandle проверяет, что handle соответствует требованиям.
// Регистр не учитывается при проверке уникальности, но сохраняется как есть.
func ValidateHandle(handle string) error {
	if handle == "" {
		return fmt.Errorf("%w: handle cannot be empty", ErrInvalidEntity)
	}

	if len(handle) < MinHandleLen {
		return fmt.Errorf("%w: handle must be at least %d characters long", ErrInvalidEntity, MinHandleLen)
	}

	if len(handle) > MaxHandleLen {
		return fmt.Errorf("%w: handle must not exceed %d characters", ErrInvalidEntity, MaxHandleLen)
	}

	if !HandlePattern.MatchString(handle) {
		return fmt.Errorf("%w: handle can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)", ErrInvalidEntity)
	}

	return nil
}
