package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/pkg/db/models"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a wishlist repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle so the settlement
// coordinator can clear entries inside its transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Add inserts a wishlist entry. The unique buyer/product index rejects
// duplicates; callers translate that violation.
func (r *Repository) Add(ctx context.Context, entry *models.WishlistEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByBuyer returns the buyer's saved products, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerEmail string) ([]models.WishlistEntry, error) {
	var entries []models.WishlistEntry
	err := r.db.WithContext(ctx).
		Where("buyer_email = ?", buyerEmail).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Remove deletes the buyer's entry for a product if it exists.
func (r *Repository) Remove(ctx context.Context, buyerEmail string, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("buyer_email = ? AND product_id = ?", buyerEmail, productID).
		Delete(&models.WishlistEntry{})
	return res.RowsAffected, res.Error
}

// RemoveAllForProduct clears every buyer's entry for a product. Used when the
// product sells or a booking claims it.
func (r *Repository) RemoveAllForProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.WishlistEntry{})
	return res.RowsAffected, res.Error
}
