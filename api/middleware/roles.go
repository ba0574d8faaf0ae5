package middleware

import (
	"context"
	"net/http"

	"github.com/mobihub/mobihub-server/api/responses"
	"github.com/mobihub/mobihub-server/pkg/enums"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
	"github.com/mobihub/mobihub-server/pkg/logger"
)

// RolePolicy is the single gate for role checks. Implementations deny with a
// uniform FORBIDDEN so the response never reveals whether the principal is
// unknown or merely under-privileged.
type RolePolicy interface {
	Require(ctx context.Context, email string, role enums.UserRole) error
}

func RequireRole(role enums.UserRole, policy RolePolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := UserEmailFromContext(r.Context())
			if email == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}

			if policy == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "role policy not configured"))
				return
			}

			if err := policy.Require(r.Context(), email, role); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithRole(r.Context(), role.String())
			if logg != nil {
				ctx = logg.WithActorRole(ctx, role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
