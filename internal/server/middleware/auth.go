package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/fitsync/internal/server/handlers"
)

// AuthMiddleware создает middleware для проверки JWT токена.
// Владелец из токена кладется в контекст запроса.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				handlers.WriteError(w, logger, http.StatusUnauthorized, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
				logger.Warn("Invalid Authorization header format", "path", r.URL.Path)
				handlers.WriteError(w, logger, http.StatusUnauthorized, "invalid token format")
				return
			}

			ownerID, err := handlers.ValidateToken(jwtConfig, strings.TrimSpace(tokenString))
			if err != nil {
				logger.Warn("Invalid access token", "error", err)
				handlers.WriteError(w, logger, http.StatusUnauthorized, "invalid token")
				return
			}

			setRequestOwner(r.Context(), ownerID)
			logger.Debug("Owner authenticated", "owner_id", ownerID)

			next.ServeHTTP(w, r.WithContext(handlers.WithOwnerID(r.Context(), ownerID)))
		})
	}
}
