package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/fitsync/internal/timex"
	"github.com/iudanet/fitsync/pkg/api"
)

// DefaultIssuer издатель токенов, выпускаемых сервером
const DefaultIssuer = "fitsync"

// JWTConfig содержит конфигурацию для JWT
type JWTConfig struct {
	Issuer   string
	Secret   []byte
	TokenTTL time.Duration
}

// IssueToken создает новый JWT токен доступа для владельца.
// Токены обычно выпускает внешний провайдер; сервер умеет выпускать их для разработки.
func IssueToken(cfg JWTConfig, ownerID string) (string, time.Time, error) {
	if ownerID == "" {
		return "", time.Time{}, errors.New("owner id is required")
	}

	now := timex.Now()
	expiresAt := now.Add(cfg.TokenTTL)

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	claims := api.TokenClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken валидирует JWT токен и возвращает владельца.
// Владелец берется из owner_id, а при его отсутствии из sub.
func ValidateToken(cfg JWTConfig, tokenString string) (string, error) {
	var claims api.TokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	}, jwt.WithTimeFunc(timex.Now))

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	ownerID := claims.OwnerID
	if ownerID == "" {
		ownerID = claims.Subject
	}
	if ownerID == "" {
		return "", errors.New("token has no owner")
	}

	return ownerID, nil
}
