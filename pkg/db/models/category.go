package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups listings for the public browse surface.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	ImageURL  *string   `gorm:"column:image_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the collection name used by the original data set.
func (Category) TableName() string {
	return "product_categories"
}
