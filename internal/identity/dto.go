package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
)

// RegisterInput is the payload for user registration.
type RegisterInput struct {
	Email string
	Name  string
	Role  enums.UserRole
}

// RegisterResult reports the registration outcome. Registering a known email
// is not an error; Existed lets the caller phrase the response.
type RegisterResult struct {
	User    UserDTO
	Existed bool
}

// RoleInfo is the resolved authority for a principal. The zero value means
// the email is not registered.
type RoleInfo struct {
	Role     enums.UserRole
	Verified bool
}

// UserDTO is the outward-facing user shape.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      enums.UserRole `json:"role"`
	Verified  bool           `json:"verified"`
	CreatedAt time.Time      `json:"created_at"`
}

func toUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
	}
}
