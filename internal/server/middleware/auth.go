package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/blogapi/internal/server/auth"
)

// bearerPrefix префикс значения заголовка Authorization. Сравнение регистрозависимое.
const bearerPrefix = "Bearer "

// TokenValidator проверяет access token и возвращает личность его владельца.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (auth.Identity, error)
}

// IdentityMiddleware создает middleware, которое извлекает Bearer токен
// и кладет личность пользователя в контекст запроса.
//
// Middleware никогда не отвечает клиенту само: при отсутствии или ошибке
// токена запрос передается дальше без личности, а решение о доступе
// принимает AuthorizeMiddleware.
func IdentityMiddleware(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(authHeader, bearerPrefix)

			id, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				// сам токен в лог не пишем
				logger.DebugContext(r.Context(), "Bearer token rejected",
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
				next.ServeHTTP(w, r)
				return
			}

			logger.DebugContext(r.Context(), "User authenticated", slog.String("user_id", id.UserID()))

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
