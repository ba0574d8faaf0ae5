package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:identity_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate users: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(db)})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, db
}

func TestRegisterCreatesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{Email: "Seller@Example.com", Name: "Sam", Role: enums.UserRoleSeller})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if first.Existed {
		t.Fatal("first registration must not report existed")
	}
	if first.User.Email != "seller@example.com" {
		t.Fatalf("expected normalized email, got %q", first.User.Email)
	}

	second, err := svc.Register(ctx, RegisterInput{Email: "seller@example.com", Name: "Sam", Role: enums.UserRoleSeller})
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if !second.Existed {
		t.Fatal("re-registering a known email must report existed")
	}
	if second.User.ID != first.User.ID {
		t.Fatal("re-registration must not create a second account")
	}
}

func TestRegisterDefaultsToBuyer(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	result, err := svc.Register(context.Background(), RegisterInput{Email: "buyer@example.com", Name: "Billie"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User.Role != enums.UserRoleBuyer {
		t.Fatalf("expected buyer default, got %s", result.User.Role)
	}
}

func TestAuthenticateUnknownEmailIsUnauthorized(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Authenticate(context.Background(), "ghost@example.com")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestResolveRoleUnknownEmailIsZero(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	info, err := svc.ResolveRole(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if info.Role != enums.UserRoleUnset || info.Verified {
		t.Fatalf("expected zero RoleInfo, got %+v", info)
	}
}

func TestRequireUniformDeny(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "buyer@example.com", Name: "Billie", Role: enums.UserRoleBuyer}); err != nil {
		t.Fatalf("seed buyer: %v", err)
	}

	unknownErr := svc.Require(ctx, "ghost@example.com", enums.UserRoleSeller)
	wrongRoleErr := svc.Require(ctx, "buyer@example.com", enums.UserRoleSeller)

	for _, err := range []error{unknownErr, wrongRoleErr} {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
			t.Fatalf("expected FORBIDDEN, got %v", err)
		}
		if typed.Message() != "access denied" {
			t.Fatalf("deny message must be uniform, got %q", typed.Message())
		}
	}

	if err := svc.Require(ctx, "buyer@example.com", enums.UserRoleBuyer); err != nil {
		t.Fatalf("matching role must pass: %v", err)
	}
}

func TestVerifySeller(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	seller, err := svc.Register(ctx, RegisterInput{Email: "seller@example.com", Name: "Sam", Role: enums.UserRoleSeller})
	if err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	buyer, err := svc.Register(ctx, RegisterInput{Email: "buyer@example.com", Name: "Billie", Role: enums.UserRoleBuyer})
	if err != nil {
		t.Fatalf("seed buyer: %v", err)
	}

	if err := svc.VerifySeller(ctx, seller.User.ID); err != nil {
		t.Fatalf("verify seller: %v", err)
	}
	// verifying twice still succeeds
	if err := svc.VerifySeller(ctx, seller.User.ID); err != nil {
		t.Fatalf("re-verify seller: %v", err)
	}

	var stored models.User
	if err := db.First(&stored, "id = ?", seller.User.ID).Error; err != nil {
		t.Fatalf("load seller: %v", err)
	}
	if !stored.Verified {
		t.Fatal("seller should be verified")
	}

	if err := svc.VerifySeller(ctx, buyer.User.ID); err == nil {
		t.Fatal("verifying a buyer must fail")
	}
	if err := svc.VerifySeller(ctx, uuid.New()); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for missing id, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	seller, err := svc.Register(ctx, RegisterInput{Email: "seller@example.com", Name: "Sam", Role: enums.UserRoleSeller})
	if err != nil {
		t.Fatalf("seed seller: %v", err)
	}

	if err := svc.DeleteUser(ctx, seller.User.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteUser(ctx, seller.User.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND on second delete, got %v", err)
	}

	info, err := svc.ResolveRole(ctx, "seller@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if info.Role != enums.UserRoleUnset {
		t.Fatal("deleted user must resolve to zero RoleInfo")
	}
}

func TestListByRole(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, in := range []RegisterInput{
		{Email: "s1@example.com", Name: "S1", Role: enums.UserRoleSeller},
		{Email: "s2@example.com", Name: "S2", Role: enums.UserRoleSeller},
		{Email: "b1@example.com", Name: "B1", Role: enums.UserRoleBuyer},
	} {
		if _, err := svc.Register(ctx, in); err != nil {
			t.Fatalf("seed %s: %v", in.Email, err)
		}
	}

	sellers, err := svc.ListByRole(ctx, enums.UserRoleSeller)
	if err != nil {
		t.Fatalf("list sellers: %v", err)
	}
	if len(sellers) != 2 {
		t.Fatalf("expected 2 sellers, got %d", len(sellers))
	}
	buyers, err := svc.ListByRole(ctx, enums.UserRoleBuyer)
	if err != nil {
		t.Fatalf("list buyers: %v", err)
	}
	if len(buyers) != 1 {
		t.Fatalf("expected 1 buyer, got %d", len(buyers))
	}
}
