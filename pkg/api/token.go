package api

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims JWT claims токена доступа к удаленному хранилищу
type TokenClaims struct {
	OwnerID string `json:"owner_id"`
	jwt.RegisteredClaims
}

// OwnerFromToken извлекает владельца из токена без проверки подписи.
// Подпись проверяет сервер; клиенту нужен только идентификатор владельца.
func OwnerFromToken(token string) (string, error) {
	var claims TokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	owner := claims.OwnerID
	if owner == "" {
		owner = claims.Subject
	}
	if owner == "" {
		return "", errors.New("token has no owner")
	}
	return owner, nil
}
