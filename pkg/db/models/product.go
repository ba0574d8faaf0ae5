package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mobihub/mobihub-server/pkg/enums"
)

// Product represents a seller's listing. Status is mutated only by the
// settlement coordinator (available -> sold) or removed by seller delete.
type Product struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerEmail        string              `gorm:"column:seller_email;not null;index"`
	CategoryID         uuid.UUID           `gorm:"column:category_id;type:uuid;not null;index"`
	Title              string              `gorm:"column:title;not null"`
	Description        *string             `gorm:"column:description"`
	Location           *string             `gorm:"column:location"`
	Condition          *string             `gorm:"column:condition"`
	PriceCents         int64               `gorm:"column:price_cents;not null"`
	OriginalPriceCents *int64              `gorm:"column:original_price_cents"`
	YearsUsed          *int                `gorm:"column:years_used"`
	Phone              *string             `gorm:"column:phone"`
	ImageURL           *string             `gorm:"column:image_url"`
	Status             enums.ListingStatus `gorm:"column:status;not null;default:'available';index"`
	Advertised         bool                `gorm:"column:advertised;not null;default:false"`
	Reported           bool                `gorm:"column:reported;not null;default:false"`
	PostedAt           time.Time           `gorm:"column:posted_at;not null"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
