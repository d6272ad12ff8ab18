package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/firesight-ai/firesight-backend/api/responses"
	"github.com/google/uuid"

	pkgAuth "github.com/firesight-ai/firesight-backend/pkg/auth"
	"github.com/firesight-ai/firesight-backend/pkg/config"
	"github.com/firesight-ai/firesight-backend/pkg/db/models"
	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
	"github.com/firesight-ai/firesight-backend/pkg/logger"
)

// TokenHeader is the header clients attach their token to. The web client
// predates this service and does not use the Authorization scheme.
const TokenHeader = "x-auth-token"

// UserResolver looks up the live user record a token points at.
type UserResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth validates the token header, resolves the encoded user against the
// store, and seeds the request context. A token naming a deleted user is
// rejected the same as an invalid one.
func Auth(cfg config.JWTConfig, resolver UserResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(TokenHeader))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "No token, authorization denied"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Token is not valid"))
				return
			}

			user, err := resolver.FindByID(r.Context(), claims.User.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "User not found"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve user"))
				return
			}

			ctx := WithUser(r.Context(), user)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    user.ID.String(),
					"actor_role": string(user.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
