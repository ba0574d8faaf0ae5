package controllers

import (
	"net/http"

	"github.com/mobihub/mobihub-server/api/responses"
	"github.com/mobihub/mobihub-server/internal/categories"
	"github.com/mobihub/mobihub-server/internal/listings"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
	"github.com/mobihub/mobihub-server/pkg/logger"
)

// CategoriesList returns the category catalog.
func CategoriesList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		list, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CategoryProducts returns the available listings in a category, newest first.
func CategoryProducts(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		categoryID, err := parseIDParam(r, "categoryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListByCategory(ctx, categoryID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
