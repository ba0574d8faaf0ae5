package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/internal/identity"
	"github.com/mobihub/mobihub-server/internal/listings"
	"github.com/mobihub/mobihub-server/pkg/db"
	"github.com/mobihub/mobihub-server/pkg/db/models"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
)

// EntryDTO is the outward-facing wishlist row.
type EntryDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo        *Repository
	ListingRepo *listings.Repository
}

// Service exposes business rules for wishlist management.
type Service interface {
	Add(ctx context.Context, buyerEmail string, productID uuid.UUID) error
	List(ctx context.Context, buyerEmail string) ([]EntryDTO, error)
	Remove(ctx context.Context, buyerEmail string, productID uuid.UUID) error
}

type service struct {
	repo        *Repository
	listingRepo *listings.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.ListingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	return &service{repo: params.Repo, listingRepo: params.ListingRepo}, nil
}

// Add saves a product for the buyer. Duplicates are a CONFLICT.
func (s *service) Add(ctx context.Context, buyerEmail string, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.listingRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	entry := &models.WishlistEntry{
		BuyerEmail: identity.NormalizeEmail(buyerEmail),
		ProductID:  productID,
	}
	if err := s.repo.Add(ctx, entry); err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "already in wishlist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist entry")
	}
	return nil
}

// List returns the buyer's saved products.
func (s *service) List(ctx context.Context, buyerEmail string) ([]EntryDTO, error) {
	entries, err := s.repo.ListByBuyer(ctx, identity.NormalizeEmail(buyerEmail))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, EntryDTO{ProductID: entry.ProductID, AddedAt: entry.CreatedAt})
	}
	return dtos, nil
}

// Remove drops the entry regardless of prior state.
func (s *service) Remove(ctx context.Context, buyerEmail string, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.repo.Remove(ctx, identity.NormalizeEmail(buyerEmail), productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist entry")
	}
	return nil
}
