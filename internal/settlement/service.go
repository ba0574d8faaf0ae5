package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/internal/bookings"
	"github.com/mobihub/mobihub-server/internal/identity"
	"github.com/mobihub/mobihub-server/internal/listings"
	"github.com/mobihub/mobihub-server/internal/wishlist"
	"github.com/mobihub/mobihub-server/pkg/db"
	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
	"github.com/mobihub/mobihub-server/pkg/metrics"
	"github.com/mobihub/mobihub-server/pkg/stripe"
)

// IntentDTO carries what the client needs to run the payment sheet.
type IntentDTO struct {
	BookingID    uuid.UUID `json:"booking_id"`
	Amount       string    `json:"amount"`
	ProcessorRef string    `json:"processor_ref"`
	ClientSecret string    `json:"client_secret"`
}

// PaymentDTO is the outward-facing settlement record.
type PaymentDTO struct {
	ID           uuid.UUID `json:"id"`
	BookingID    uuid.UUID `json:"booking_id"`
	ProductID    uuid.UUID `json:"product_id"`
	Amount       string    `json:"amount"`
	ProcessorRef string    `json:"processor_ref"`
	CreatedAt    time.Time `json:"created_at"`
}

// ServiceParams groups dependencies for the settlement coordinator.
type ServiceParams struct {
	DB           *db.Client
	Repo         *Repository
	BookingRepo  *bookings.Repository
	ListingRepo  *listings.Repository
	WishlistRepo *wishlist.Repository
	Processor    stripe.PaymentIntentCreator
	Metrics      *metrics.SettlementMetrics
}

// Service coordinates payment settlement. Confirm is the only place a listing
// transitions to sold, and it admits exactly one winner per listing.
type Service interface {
	CreateIntent(ctx context.Context, buyerEmail string, bookingID uuid.UUID) (IntentDTO, error)
	Confirm(ctx context.Context, buyerEmail string, bookingID uuid.UUID, amount, processorRef string) (PaymentDTO, error)
}

type service struct {
	db           *db.Client
	repo         *Repository
	bookingRepo  *bookings.Repository
	listingRepo  *listings.Repository
	wishlistRepo *wishlist.Repository
	processor    stripe.PaymentIntentCreator
	metrics      *metrics.SettlementMetrics
}

// NewService builds the settlement coordinator.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement repo is required")
	}
	if params.BookingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking repo is required")
	}
	if params.ListingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.Processor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment processor is required")
	}
	return &service{
		db:           params.DB,
		repo:         params.Repo,
		bookingRepo:  params.BookingRepo,
		listingRepo:  params.ListingRepo,
		wishlistRepo: params.WishlistRepo,
		processor:    params.Processor,
		metrics:      params.Metrics,
	}, nil
}

// CreateIntent asks the processor for a client secret covering the listing
// price of the buyer's pending booking.
func (s *service) CreateIntent(ctx context.Context, buyerEmail string, bookingID uuid.UUID) (IntentDTO, error) {
	booking, err := s.loadOwnedBooking(ctx, buyerEmail, bookingID)
	if err != nil {
		return IntentDTO{}, err
	}
	if booking.Status != enums.BookingStatusPending {
		return IntentDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "booking is no longer pending")
	}

	listing, err := s.listingRepo.FindByID(ctx, booking.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// the seller deleted the listing out from under the booking
			return IntentDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "listing no longer exists")
		}
		return IntentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.Status != enums.ListingStatusAvailable {
		return IntentDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is no longer available")
	}

	intent, err := s.processor.CreatePaymentIntent(ctx, listing.PriceCents, booking.ID.String())
	if err != nil {
		return IntentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	return IntentDTO{
		BookingID:    booking.ID,
		Amount:       listings.FormatCents(listing.PriceCents),
		ProcessorRef: intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// errSettlementLost aborts the transaction when the compare-and-swap finds the
// listing already sold.
var errSettlementLost = errors.New("settlement lost")

// Confirm settles the buyer's booking. Exactly one confirmation per listing
// wins the compare-and-swap; every other pending booking is superseded in the
// same transaction, so a collision is always reported, never absorbed.
func (s *service) Confirm(ctx context.Context, buyerEmail string, bookingID uuid.UUID, amount, processorRef string) (PaymentDTO, error) {
	started := time.Now()

	booking, err := s.loadOwnedBooking(ctx, buyerEmail, bookingID)
	if err != nil {
		return PaymentDTO{}, err
	}
	switch booking.Status {
	case enums.BookingStatusPaid:
		return PaymentDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "booking already paid")
	case enums.BookingStatusSuperseded:
		return PaymentDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "payment collision")
	}

	amountCents, err := listings.ParsePriceCents(amount)
	if err != nil {
		return PaymentDTO{}, err
	}
	if processorRef == "" {
		return PaymentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "processor reference is required")
	}

	payment := &models.Payment{
		BookingID:    booking.ID,
		ProductID:    booking.ProductID,
		BuyerEmail:   booking.BuyerEmail,
		AmountCents:  amountCents,
		ProcessorRef: processorRef,
	}

	var superseded int64
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		listing, err := s.listingRepo.WithTx(tx).FindByID(ctx, booking.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "listing no longer exists")
			}
			return err
		}
		if amountCents != listing.PriceCents {
			return pkgerrors.New(pkgerrors.CodeValidation, "amount does not match listing price")
		}

		rows, err := s.repo.WithTx(tx).MarkListingSold(ctx, booking.ProductID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errSettlementLost
		}

		// supersede first so the winner's paid status is never overwritten
		superseded, err = s.repo.WithTx(tx).SupersedeOtherPending(ctx, booking.ProductID, booking.ID)
		if err != nil {
			return err
		}
		if rows, err := s.repo.WithTx(tx).MarkBookingPaid(ctx, booking.ID); err != nil {
			return err
		} else if rows == 0 {
			return errSettlementLost
		}

		if err := s.repo.WithTx(tx).CreatePayment(ctx, payment); err != nil {
			return err
		}
		_, err = s.wishlistRepo.WithTx(tx).RemoveAllForProduct(ctx, booking.ProductID)
		return err
	})
	if txErr != nil {
		if errors.Is(txErr, errSettlementLost) {
			// record the loss outside the rolled-back transaction
			if _, err := s.repo.MarkBookingSuperseded(ctx, booking.ID); err != nil {
				return PaymentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "supersede losing booking")
			}
			s.metrics.IncCollision()
			s.metrics.ObserveDuration("collision", time.Since(started))
			return PaymentDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "payment collision")
		}
		if db.IsUniqueViolation(txErr) {
			return PaymentDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "booking already paid")
		}
		if typed := pkgerrors.As(txErr); typed != nil {
			return PaymentDTO{}, typed
		}
		return PaymentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "confirm payment")
	}

	s.metrics.IncSettled()
	s.metrics.AddSuperseded(superseded)
	s.metrics.ObserveDuration("settled", time.Since(started))

	return toPaymentDTO(payment), nil
}

func (s *service) loadOwnedBooking(ctx context.Context, buyerEmail string, bookingID uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id is required")
	}
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.BuyerEmail != identity.NormalizeEmail(buyerEmail) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return booking, nil
}

func toPaymentDTO(p *models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:           p.ID,
		BookingID:    p.BookingID,
		ProductID:    p.ProductID,
		Amount:       listings.FormatCents(p.AmountCents),
		ProcessorRef: p.ProcessorRef,
		CreatedAt:    p.CreatedAt,
	}
}
