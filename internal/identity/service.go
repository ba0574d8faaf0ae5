package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/pkg/db"
	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
)

// ServiceParams groups dependencies for the identity service.
type ServiceParams struct {
	Repo *Repository
}

// Service is the single authority for who a principal is and what they may do.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (RegisterResult, error)
	Authenticate(ctx context.Context, email string) (UserDTO, error)
	ResolveRole(ctx context.Context, email string) (RoleInfo, error)
	Require(ctx context.Context, email string, role enums.UserRole) error
	ListByRole(ctx context.Context, role enums.UserRole) ([]UserDTO, error)
	VerifySeller(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService builds the identity service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identity repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// Register creates the user if the email is unseen. Re-registering a known
// email is a no-op success so clients can retry safely.
func (s *service) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return RegisterResult{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	role := input.Role
	if role == enums.UserRoleUnset {
		role = enums.UserRoleBuyer
	}
	if !role.IsValid() {
		return RegisterResult{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return RegisterResult{User: toUserDTO(existing), Existed: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return RegisterResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	user := &models.User{
		Email: email,
		Name:  input.Name,
		Role:  role,
	}
	if createErr := s.repo.Create(ctx, user); createErr != nil {
		// a concurrent registration of the same email wins the race
		if db.IsUniqueViolation(createErr) {
			won, loadErr := s.repo.FindByEmail(ctx, email)
			if loadErr != nil {
				return RegisterResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, loadErr, "load user")
			}
			return RegisterResult{User: toUserDTO(won), Existed: true}, nil
		}
		return RegisterResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create user")
	}

	return RegisterResult{User: toUserDTO(user)}, nil
}

// Authenticate confirms the email belongs to a registered user.
func (s *service) Authenticate(ctx context.Context, email string) (UserDTO, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "email is not registered")
		}
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return toUserDTO(user), nil
}

// ResolveRole reports the principal's role. An unknown email is not an
// error; it resolves to the zero RoleInfo.
func (s *service) ResolveRole(ctx context.Context, email string) (RoleInfo, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleInfo{}, nil
		}
		return RoleInfo{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return RoleInfo{Role: user.Role, Verified: user.Verified}, nil
}

// Require denies with a uniform FORBIDDEN for both unknown principals and
// wrong roles; the response must not reveal which.
func (s *service) Require(ctx context.Context, email string, role enums.UserRole) error {
	info, err := s.ResolveRole(ctx, email)
	if err != nil {
		return err
	}
	if info.Role != role {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return nil
}

// ListByRole returns the management view of users holding the role.
func (s *service) ListByRole(ctx context.Context, role enums.UserRole) ([]UserDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	dtos := make([]UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, toUserDTO(&users[i]))
	}
	return dtos, nil
}

// VerifySeller marks a seller account as verified. Verifying an already
// verified seller succeeds.
func (s *service) VerifySeller(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.Role != enums.UserRoleSeller {
		return pkgerrors.New(pkgerrors.CodeValidation, "only sellers can be verified")
	}
	if _, err := s.repo.SetVerified(ctx, id, true); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify user")
	}
	return nil
}

// DeleteUser removes the account.
func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}
