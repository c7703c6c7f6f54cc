package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"go.uber.org/zap"
)

type actionByKey struct{}

// Attribution достаёт автора действия из Bearer токена. Подпись не проверяется,
// аутентификация на стороне внешнего слоя.
func Attribution(logger *zap.Logger) func(next http.Handler) http.Handler {
	parser := jwt.NewParser()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims := jwt.MapClaims{}
			if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
				logger.Debug("attribution token ignored", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			by := actionByFromClaims(claims)
			if by == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actionByKey{}, by)))
		})
	}
}

func actionByFromClaims(claims jwt.MapClaims) *domain.ActionBy {
	email, _ := claims["email"].(string)
	if email == "" {
		return nil
	}

	by := &domain.ActionBy{Email: email}
	if v, ok := claims["given_name"].(string); ok && v != "" {
		by.FirstName = &v
	}
	if v, ok := claims["family_name"].(string); ok && v != "" {
		by.LastName = &v
	}
	return by
}

// ActionByFromContext nil, если токена не было
func ActionByFromContext(ctx context.Context) *domain.ActionBy {
	by, _ := ctx.Value(actionByKey{}).(*domain.ActionBy)
	return by
}
