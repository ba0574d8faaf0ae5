package settlement

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
)

// Repository holds the settlement-only writes: the listing compare-and-swap,
// booking state transitions, and the append-only payment ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a settlement repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// MarkListingSold performs the single-winner compare-and-swap. Zero rows
// affected means the listing was already sold (or gone) and the caller lost.
func (r *Repository) MarkListingSold(ctx context.Context, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND status = ?", productID, enums.ListingStatusAvailable).
		Update("status", enums.ListingStatusSold)
	return res.RowsAffected, res.Error
}

// SupersedeOtherPending moves every pending booking for the product except
// the winner to superseded.
func (r *Repository) SupersedeOtherPending(ctx context.Context, productID, winnerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("product_id = ? AND id <> ? AND status = ?", productID, winnerID, enums.BookingStatusPending).
		Update("status", enums.BookingStatusSuperseded)
	return res.RowsAffected, res.Error
}

// MarkBookingPaid moves the winning booking to paid. Guarded on pending so a
// replay can never double-pay.
func (r *Repository) MarkBookingPaid(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, enums.BookingStatusPending).
		Update("status", enums.BookingStatusPaid)
	return res.RowsAffected, res.Error
}

// MarkBookingSuperseded records that the booking lost the settlement race.
func (r *Repository) MarkBookingSuperseded(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, enums.BookingStatusPending).
		Update("status", enums.BookingStatusSuperseded)
	return res.RowsAffected, res.Error
}

// CreatePayment appends the settlement record. The unique booking_id index
// blocks a second payment for the same booking.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(payment).Error
}
