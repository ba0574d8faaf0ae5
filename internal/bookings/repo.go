package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
)

// Repository encapsulates booking persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a booking repository bound to the provided DB.
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

// Create inserts a booking row. The partial unique index on pending
// buyer/product pairs stops concurrent duplicates.
func (r *Repository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(booking).Error
}

// FindByID loads one booking.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListByBuyer returns the buyer's bookings, most recent first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.WithContext(ctx).
		Where("buyer_email = ?", buyerEmail).
		Order("booked_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// HasActiveForBuyerProduct reports whether the buyer already holds a pending
// or paid booking for the product.
func (r *Repository) HasActiveForBuyerProduct(ctx context.Context, buyerEmail string, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("buyer_email = ? AND product_id = ? AND status IN ?",
			buyerEmail, productID,
			[]enums.BookingStatus{enums.BookingStatusPending, enums.BookingStatusPaid}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
