package middleware

import (
	"net/http"

	"github.com/firesight-ai/firesight-backend/api/responses"
	"github.com/firesight-ai/firesight-backend/pkg/enums"
	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
	"github.com/firesight-ai/firesight-backend/pkg/logger"
)

// RequireRole gates a route on the live role resolved by Auth. It must be
// mounted after Auth; without a resolved user every request is refused.
func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil || user.Role != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Access denied: Admin only"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
