package categories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/pkg/db/models"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
)

// CategoryDTO is the outward-facing category shape.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceParams groups dependencies for the category service.
type ServiceParams struct {
	Repo *Repository
}

// Service exposes the public browse surface for categories.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Exists(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService builds a category service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(cats))
	for i := range cats {
		dtos = append(dtos, toDTO(&cats[i]))
	}
	return dtos, nil
}

// Exists confirms the category id is known.
func (s *service) Exists(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return nil
}

func toDTO(cat *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:        cat.ID,
		Name:      cat.Name,
		ImageURL:  cat.ImageURL,
		CreatedAt: cat.CreatedAt,
	}
}
