package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/deltasync/internal/server/handlers"
	"github.com/iudanet/deltasync/pkg/api"
)

// AuthMiddleware создает middleware для проверки JWT токена клиента
// client_id из токена кладется в контекст запроса
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				logger.Warn("Invalid Authorization header format")
				writeError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid token format")
				return
			}

			claims, err := handlers.ValidateClientToken(jwtConfig, token)
			if err != nil {
				logger.Warn("Invalid access token", "error", err)
				writeError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), handlers.ClientIDKey, claims.ClientID)
			ctx = context.WithValue(ctx, handlers.AdminKey, claims.Admin)

			logger.Debug("Client authenticated", "client_id", claims.ClientID, "admin", claims.Admin)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdminMiddleware пропускает только запросы с административным токеном.
// Должен стоять после AuthMiddleware.
func RequireAdminMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !handlers.IsAdmin(r.Context()) {
				clientID, _ := handlers.GetClientID(r.Context())
				logger.Warn("Admin access denied", "client_id", clientID, "path", r.URL.Path)
				writeError(w, http.StatusForbidden, api.CodeForbidden, "admin token required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
