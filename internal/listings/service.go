package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/internal/categories"
	"github.com/mobihub/mobihub-server/internal/identity"
	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
)

// ServiceParams groups dependencies for the listing service.
type ServiceParams struct {
	Repo       *Repository
	Identity   identity.Service
	Categories categories.Service
}

// Service exposes the listing lifecycle short of settlement; only the
// settlement coordinator may move a listing to sold.
type Service interface {
	Create(ctx context.Context, sellerEmail string, input CreateListingInput) (ListingDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (ListingDTO, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]ListingDTO, error)
	ListAdvertised(ctx context.Context) ([]ListingDTO, error)
	ListMine(ctx context.Context, sellerEmail string) ([]ListingDTO, error)
	ListReported(ctx context.Context) ([]ListingDTO, error)
	MarkAdvertised(ctx context.Context, id uuid.UUID, sellerEmail string) error
	MarkReported(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID, sellerEmail string) error
	AdminDelete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo       *Repository
	identity   identity.Service
	categories categories.Service
}

// NewService builds a listing service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	if params.Identity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identity service is required")
	}
	if params.Categories == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category service is required")
	}
	return &service{
		repo:       params.Repo,
		identity:   params.Identity,
		categories: params.Categories,
	}, nil
}

// Create posts a new listing. Only verified sellers may post.
func (s *service) Create(ctx context.Context, sellerEmail string, input CreateListingInput) (ListingDTO, error) {
	info, err := s.identity.ResolveRole(ctx, sellerEmail)
	if err != nil {
		return ListingDTO{}, err
	}
	if info.Role != enums.UserRoleSeller {
		return ListingDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	if !info.Verified {
		return ListingDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "seller is not verified")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ListingDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if err := s.categories.Exists(ctx, input.CategoryID); err != nil {
		return ListingDTO{}, err
	}

	priceCents, err := ParsePriceCents(input.Price)
	if err != nil {
		return ListingDTO{}, err
	}
	var originalCents *int64
	if input.OriginalPrice != nil {
		parsed, parseErr := ParsePriceCents(*input.OriginalPrice)
		if parseErr != nil {
			return ListingDTO{}, parseErr
		}
		originalCents = &parsed
	}

	product := &models.Product{
		SellerEmail:        identity.NormalizeEmail(sellerEmail),
		CategoryID:         input.CategoryID,
		Title:              title,
		Description:        input.Description,
		Location:           input.Location,
		Condition:          input.Condition,
		PriceCents:         priceCents,
		OriginalPriceCents: originalCents,
		YearsUsed:          input.YearsUsed,
		Phone:              input.Phone,
		ImageURL:           input.ImageURL,
		Status:             enums.ListingStatusAvailable,
		PostedAt:           time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return ListingDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return toDTO(product), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (ListingDTO, error) {
	product, err := s.loadListing(ctx, id)
	if err != nil {
		return ListingDTO{}, err
	}
	return toDTO(product), nil
}

func (s *service) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]ListingDTO, error) {
	if err := s.categories.Exists(ctx, categoryID); err != nil {
		return nil, err
	}
	products, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	return toDTOs(products), nil
}

func (s *service) ListAdvertised(ctx context.Context) ([]ListingDTO, error) {
	products, err := s.repo.ListAdvertised(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list advertised listings")
	}
	return toDTOs(products), nil
}

func (s *service) ListMine(ctx context.Context, sellerEmail string) ([]ListingDTO, error) {
	products, err := s.repo.ListBySeller(ctx, identity.NormalizeEmail(sellerEmail))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller listings")
	}
	return toDTOs(products), nil
}

func (s *service) ListReported(ctx context.Context) ([]ListingDTO, error) {
	products, err := s.repo.ListReported(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reported listings")
	}
	return toDTOs(products), nil
}

// MarkAdvertised flags the seller's own listing for promotion. A missing id
// is NOT_FOUND; the flag update itself is idempotent.
func (s *service) MarkAdvertised(ctx context.Context, id uuid.UUID, sellerEmail string) error {
	product, err := s.loadListing(ctx, id)
	if err != nil {
		return err
	}
	if product.SellerEmail != identity.NormalizeEmail(sellerEmail) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	if _, err := s.repo.SetAdvertised(ctx, id, true); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark advertised")
	}
	return nil
}

// MarkReported flags the listing for admin review. Any authenticated buyer
// may report; a missing id is NOT_FOUND.
func (s *service) MarkReported(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	affected, err := s.repo.SetReported(ctx, id, true)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark reported")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return nil
}

// Delete removes the seller's own listing. Pending bookings are allowed to
// orphan; settlement rejects them later.
func (s *service) Delete(ctx context.Context, id uuid.UUID, sellerEmail string) error {
	product, err := s.loadListing(ctx, id)
	if err != nil {
		return err
	}
	if product.SellerEmail != identity.NormalizeEmail(sellerEmail) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
	}
	return nil
}

// AdminDelete removes any listing, typically from the reported queue.
func (s *service) AdminDelete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return nil
}

func (s *service) loadListing(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return product, nil
}
