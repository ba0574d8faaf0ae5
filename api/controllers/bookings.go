package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mobihub/mobihub-server/api/middleware"
	"github.com/mobihub/mobihub-server/api/responses"
	"github.com/mobihub/mobihub-server/api/validators"
	"github.com/mobihub/mobihub-server/internal/bookings"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
	"github.com/mobihub/mobihub-server/pkg/logger"
)

type createBookingPayload struct {
	ProductID       string  `json:"product_id" validate:"required,uuid"`
	BuyerName       string  `json:"buyer_name" validate:"required"`
	MeetingLocation *string `json:"meeting_location"`
	Phone           *string `json:"phone"`
}

// BookingCreate claims a listing for the authenticated buyer.
func BookingCreate(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		var payload createBookingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		dto, err := svc.Book(ctx, middleware.UserEmailFromContext(ctx), bookings.BookInput{
			ProductID:       productID,
			BuyerName:       payload.BuyerName,
			MeetingLocation: payload.MeetingLocation,
			Phone:           payload.Phone,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// BookingsList returns the authenticated buyer's bookings, most recent first.
func BookingsList(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		list, err := svc.ListByBuyer(ctx, middleware.UserEmailFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// BookingGet returns a single booking owned by the authenticated buyer.
func BookingGet(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		bookingID, err := parseIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.GetByID(ctx, middleware.UserEmailFromContext(ctx), bookingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
