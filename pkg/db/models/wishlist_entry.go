package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistEntry links a buyer to a saved product.
type WishlistEntry struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerEmail string    `gorm:"column:buyer_email;not null;index:wishlist_entries_buyer_idx;uniqueIndex:wishlist_entries_buyer_product_key"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:wishlist_entries_product_idx;uniqueIndex:wishlist_entries_buyer_product_key"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
