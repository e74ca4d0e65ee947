package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/pkg/respond"
)

type ctxKey struct{}

// Middleware извлекает bearer-токен, проверяет его и кладет Identity
// в контекст запроса. Без валидного токена до хэндлера не доходим:
// 401 если токена нет, 403 если провайдер его отверг.
func Middleware(verifier Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respond.Error(w, r, http.StatusUnauthorized, "no token provided")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrMissingCredential) {
					respond.Error(w, r, http.StatusUnauthorized, "no token provided")
					return
				}
				if !errors.Is(err, ErrInvalidCredential) {
					logger.Error("token verification failed", zap.Error(err))
				}
				respond.Error(w, r, http.StatusForbidden, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
		})
	}
}

// IdentityFrom возвращает идентичность, положенную Middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
