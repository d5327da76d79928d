package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-app-api/internal/service"
	"github.com/BuzzLyutic/todo-app-api/pkg/respond"
)

type ctxKey int

const userIDKey ctxKey = iota

// ContextWithUserID кладет id аутентифицированного пользователя в контекст запроса
func ContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// Authenticator проверяет bearer-токен и резолвит личность один раз на запрос.
// Дальше она передается явно через контекст - никакого глобального "текущего пользователя".
func Authenticator(auth *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := auth.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				respond.Error(w, r, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}
