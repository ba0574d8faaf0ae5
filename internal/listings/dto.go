package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
)

// CreateListingInput is the seller-provided listing payload. Prices arrive as
// decimal strings and are stored as integer cents.
type CreateListingInput struct {
	CategoryID    uuid.UUID
	Title         string
	Description   *string
	Location      *string
	Condition     *string
	Price         string
	OriginalPrice *string
	YearsUsed     *int
	Phone         *string
	ImageURL      *string
}

// ListingDTO is the outward-facing listing shape.
type ListingDTO struct {
	ID            uuid.UUID           `json:"id"`
	SellerEmail   string              `json:"seller_email"`
	CategoryID    uuid.UUID           `json:"category_id"`
	Title         string              `json:"title"`
	Description   *string             `json:"description,omitempty"`
	Location      *string             `json:"location,omitempty"`
	Condition     *string             `json:"condition,omitempty"`
	Price         string              `json:"price"`
	OriginalPrice *string             `json:"original_price,omitempty"`
	YearsUsed     *int                `json:"years_used,omitempty"`
	Phone         *string             `json:"phone,omitempty"`
	ImageURL      *string             `json:"image_url,omitempty"`
	Status        enums.ListingStatus `json:"status"`
	Advertised    bool                `json:"advertised"`
	Reported      bool                `json:"reported"`
	PostedAt      time.Time           `json:"posted_at"`
	CreatedAt     time.Time           `json:"created_at"`
}

var centsPerUnit = decimal.NewFromInt(100)

// ParsePriceCents converts a decimal money string into integer cents.
func ParsePriceCents(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if d.IsNegative() || d.IsZero() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	cents := d.Mul(centsPerUnit)
	if !cents.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price precision is limited to cents")
	}
	return cents.IntPart(), nil
}

// FormatCents renders integer cents as a decimal money string.
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(centsPerUnit).StringFixed(2)
}

func toDTO(p *models.Product) ListingDTO {
	dto := ListingDTO{
		ID:          p.ID,
		SellerEmail: p.SellerEmail,
		CategoryID:  p.CategoryID,
		Title:       p.Title,
		Description: p.Description,
		Location:    p.Location,
		Condition:   p.Condition,
		Price:       FormatCents(p.PriceCents),
		YearsUsed:   p.YearsUsed,
		Phone:       p.Phone,
		ImageURL:    p.ImageURL,
		Status:      p.Status,
		Advertised:  p.Advertised,
		Reported:    p.Reported,
		PostedAt:    p.PostedAt,
		CreatedAt:   p.CreatedAt,
	}
	if p.OriginalPriceCents != nil {
		formatted := FormatCents(*p.OriginalPriceCents)
		dto.OriginalPrice = &formatted
	}
	return dto
}

func toDTOs(products []models.Product) []ListingDTO {
	dtos := make([]ListingDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, toDTO(&products[i]))
	}
	return dtos
}
