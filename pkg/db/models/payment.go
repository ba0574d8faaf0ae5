package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is the append-only settlement record. The unique booking_id index
// enforces exactly one payment per winning booking.
type Payment struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID    uuid.UUID `gorm:"column:booking_id;type:uuid;not null;uniqueIndex"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	BuyerEmail   string    `gorm:"column:buyer_email;not null"`
	AmountCents  int64     `gorm:"column:amount_cents;not null"`
	ProcessorRef string    `gorm:"column:processor_ref;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
