package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mobihub/mobihub-server/pkg/enums"
)

// Booking records a buyer's claim of intent to purchase a listing.
// The partial unique index blocks a second pending booking for the same
// buyer/product pair under concurrent requests.
type Booking struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerEmail      string              `gorm:"column:buyer_email;not null;index;uniqueIndex:bookings_buyer_product_pending_key,where:status = 'pending'"`
	BuyerName       string              `gorm:"column:buyer_name;not null"`
	ProductID       uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index;uniqueIndex:bookings_buyer_product_pending_key,where:status = 'pending'"`
	MeetingLocation *string             `gorm:"column:meeting_location"`
	Phone           *string             `gorm:"column:phone"`
	Status          enums.BookingStatus `gorm:"column:status;not null;default:'pending'"`
	BookedAt        time.Time           `gorm:"column:booked_at;not null"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
