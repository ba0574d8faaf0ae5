package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mobihub/mobihub-server/api/middleware"
	"github.com/mobihub/mobihub-server/api/responses"
	"github.com/mobihub/mobihub-server/api/validators"
	"github.com/mobihub/mobihub-server/internal/settlement"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
	"github.com/mobihub/mobihub-server/pkg/logger"
)

type paymentIntentPayload struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type paymentConfirmPayload struct {
	BookingID    string `json:"booking_id" validate:"required,uuid"`
	Amount       string `json:"amount" validate:"required"`
	ProcessorRef string `json:"processor_ref" validate:"required"`
}

// PaymentIntentCreate asks the processor for a client secret covering the
// buyer's pending booking.
func PaymentIntentCreate(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		var payload paymentIntentPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		bookingID, err := uuid.Parse(payload.BookingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id"))
			return
		}

		intent, err := svc.CreateIntent(ctx, middleware.UserEmailFromContext(ctx), bookingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}

// PaymentConfirm settles the buyer's booking.
func PaymentConfirm(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		var payload paymentConfirmPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		bookingID, err := uuid.Parse(payload.BookingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id"))
			return
		}

		payment, err := svc.Confirm(ctx, middleware.UserEmailFromContext(ctx), bookingID, payload.Amount, payload.ProcessorRef)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}
