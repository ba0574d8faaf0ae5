package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
)

// Listing order for browse surfaces: newest posting first with a stable
// tie-break so pagination never flickers.
const browseOrder = "posted_at DESC, created_at DESC, id DESC"

// Repository encapsulates listing persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a listing repository bound to the provided DB.
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

// Create inserts a listing row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads one listing.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByCategory returns available listings for a category, newest first.
func (r *Repository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND status = ?", categoryID, enums.ListingStatusAvailable).
		Order(browseOrder).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListAdvertised returns available listings flagged for promotion.
func (r *Repository) ListAdvertised(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("advertised = ? AND status = ?", true, enums.ListingStatusAvailable).
		Order(browseOrder).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListBySeller returns every listing the seller owns, regardless of status.
func (r *Repository) ListBySeller(ctx context.Context, sellerEmail string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("seller_email = ?", sellerEmail).
		Order(browseOrder).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListReported returns listings flagged by buyers, for the admin review queue.
func (r *Repository) ListReported(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("reported = ?", true).
		Order(browseOrder).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// SetAdvertised flips the promotion flag. Rows affected lets callers detect
// a missing id; re-setting an already-set flag still reports one row.
func (r *Repository) SetAdvertised(ctx context.Context, id uuid.UUID, advertised bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("advertised", advertised)
	return res.RowsAffected, res.Error
}

// SetReported flips the report flag.
func (r *Repository) SetReported(ctx context.Context, id uuid.UUID, reported bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("reported", reported)
	return res.RowsAffected, res.Error
}

// Delete removes the listing row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}
