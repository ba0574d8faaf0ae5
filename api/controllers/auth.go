package controllers

import (
	"net/http"
	"time"

	"github.com/mobihub/mobihub-server/api/responses"
	"github.com/mobihub/mobihub-server/api/validators"
	"github.com/mobihub/mobihub-server/internal/identity"
	"github.com/mobihub/mobihub-server/pkg/auth"
	"github.com/mobihub/mobihub-server/pkg/config"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
	"github.com/mobihub/mobihub-server/pkg/logger"
)

type issueTokenPayload struct {
	Email string `json:"email" validate:"required,email"`
}

type issueTokenResponse struct {
	Token string           `json:"token"`
	User  identity.UserDTO `json:"user"`
}

// AuthToken exchanges a registered email for a bearer token. The token only
// proves identity; roles are resolved per request on the server.
func AuthToken(svc identity.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		var payload issueTokenPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.Authenticate(ctx, payload.Email)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		token, err := auth.MintAccessToken(cfg, time.Now().UTC(), user.Email)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token"))
			return
		}

		responses.WriteSuccess(w, issueTokenResponse{Token: token, User: user})
	}
}
