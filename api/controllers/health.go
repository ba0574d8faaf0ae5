package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/mobihub/mobihub-server/api/responses"
	"github.com/mobihub/mobihub-server/pkg/config"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
	"github.com/mobihub/mobihub-server/pkg/db"
	"github.com/mobihub/mobihub-server/pkg/logger"
	"github.com/mobihub/mobihub-server/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MobiHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing store and aggregates the failures, so one
// probe reports everything that is down.
func HealthReady(cfg *config.Config, database db.Pinger, cache redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-MobiHub-Env", cfg.App.Env)

		var errs error
		if database != nil {
			if err := database.Ping(ctx); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if errs != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "readiness check failed"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
