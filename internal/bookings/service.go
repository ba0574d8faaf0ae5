package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/internal/identity"
	"github.com/mobihub/mobihub-server/internal/listings"
	"github.com/mobihub/mobihub-server/internal/wishlist"
	"github.com/mobihub/mobihub-server/pkg/db"
	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
)

// BookInput carries the buyer-provided booking details.
type BookInput struct {
	ProductID       uuid.UUID
	BuyerName       string
	MeetingLocation *string
	Phone           *string
}

// BookingDTO is the outward-facing booking shape.
type BookingDTO struct {
	ID              uuid.UUID           `json:"id"`
	BuyerEmail      string              `json:"buyer_email"`
	BuyerName       string              `json:"buyer_name"`
	ProductID       uuid.UUID           `json:"product_id"`
	MeetingLocation *string             `json:"meeting_location,omitempty"`
	Phone           *string             `json:"phone,omitempty"`
	Status          enums.BookingStatus `json:"status"`
	BookedAt        time.Time           `json:"booked_at"`
}

// ServiceParams groups dependencies for the booking service.
type ServiceParams struct {
	DB           *db.Client
	Repo         *Repository
	ListingRepo  *listings.Repository
	WishlistRepo *wishlist.Repository
}

// Service exposes the booking ledger.
type Service interface {
	Book(ctx context.Context, buyerEmail string, input BookInput) (BookingDTO, error)
	ListByBuyer(ctx context.Context, buyerEmail string) ([]BookingDTO, error)
	GetByID(ctx context.Context, buyerEmail string, id uuid.UUID) (BookingDTO, error)
}

type service struct {
	db           *db.Client
	repo         *Repository
	listingRepo  *listings.Repository
	wishlistRepo *wishlist.Repository
}

// NewService builds a booking service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking repo is required")
	}
	if params.ListingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	return &service{
		db:           params.DB,
		repo:         params.Repo,
		listingRepo:  params.ListingRepo,
		wishlistRepo: params.WishlistRepo,
	}, nil
}

// Book claims a listing for the buyer. The booking and the buyer's wishlist
// cleanup commit together.
func (s *service) Book(ctx context.Context, buyerEmail string, input BookInput) (BookingDTO, error) {
	buyer := identity.NormalizeEmail(buyerEmail)
	if input.ProductID == uuid.Nil {
		return BookingDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	listing, err := s.listingRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BookingDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return BookingDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.Status != enums.ListingStatusAvailable {
		return BookingDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is no longer available")
	}

	exists, err := s.repo.HasActiveForBuyerProduct(ctx, buyer, input.ProductID)
	if err != nil {
		return BookingDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing booking")
	}
	if exists {
		return BookingDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "product already booked")
	}

	booking := &models.Booking{
		BuyerEmail:      buyer,
		BuyerName:       input.BuyerName,
		ProductID:       input.ProductID,
		MeetingLocation: input.MeetingLocation,
		Phone:           input.Phone,
		Status:          enums.BookingStatusPending,
		BookedAt:        time.Now().UTC(),
	}

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, booking); err != nil {
			return err
		}
		if _, err := s.wishlistRepo.WithTx(tx).Remove(ctx, buyer, input.ProductID); err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		// the partial unique index catches the race two requests can win
		if db.IsUniqueViolation(txErr) {
			return BookingDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "product already booked")
		}
		return BookingDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "create booking")
	}

	return toDTO(booking), nil
}

// ListByBuyer returns the buyer's booking history.
func (s *service) ListByBuyer(ctx context.Context, buyerEmail string) ([]BookingDTO, error) {
	list, err := s.repo.ListByBuyer(ctx, identity.NormalizeEmail(buyerEmail))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	dtos := make([]BookingDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, toDTO(&list[i]))
	}
	return dtos, nil
}

// GetByID returns one booking; buyers may only read their own.
func (s *service) GetByID(ctx context.Context, buyerEmail string, id uuid.UUID) (BookingDTO, error) {
	if id == uuid.Nil {
		return BookingDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "booking id is required")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BookingDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return BookingDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.BuyerEmail != identity.NormalizeEmail(buyerEmail) {
		return BookingDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return toDTO(booking), nil
}

func toDTO(b *models.Booking) BookingDTO {
	return BookingDTO{
		ID:              b.ID,
		BuyerEmail:      b.BuyerEmail,
		BuyerName:       b.BuyerName,
		ProductID:       b.ProductID,
		MeetingLocation: b.MeetingLocation,
		Phone:           b.Phone,
		Status:          b.Status,
		BookedAt:        b.BookedAt,
	}
}
