package listings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/internal/categories"
	"github.com/mobihub/mobihub-server/internal/identity"
	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
)

type fixture struct {
	db       *gorm.DB
	svc      Service
	category models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:listings_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	identitySvc, err := identity.NewService(identity.ServiceParams{Repo: identity.NewRepository(db)})
	if err != nil {
		t.Fatalf("identity service: %v", err)
	}
	categorySvc, err := categories.NewService(categories.ServiceParams{Repo: categories.NewRepository(db)})
	if err != nil {
		t.Fatalf("category service: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Repo:       NewRepository(db),
		Identity:   identitySvc,
		Categories: categorySvc,
	})
	if err != nil {
		t.Fatalf("listing service: %v", err)
	}

	category := models.Category{ID: uuid.New(), Name: "Phones"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	return &fixture{db: db, svc: svc, category: category}
}

func (f *fixture) seedUser(t *testing.T, email string, role enums.UserRole, verified bool) {
	t.Helper()
	user := models.User{ID: uuid.New(), Email: email, Name: "Test", Role: role, Verified: verified}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
}

func (f *fixture) seedListing(t *testing.T, seller string, postedAt time.Time, status enums.ListingStatus) models.Product {
	t.Helper()
	product := models.Product{
		ID:          uuid.New(),
		SellerEmail: seller,
		CategoryID:  f.category.ID,
		Title:       "Used phone",
		PriceCents:  12500,
		Status:      status,
		PostedAt:    postedAt,
	}
	if err := f.db.Create(&product).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return product
}

func TestCreateRequiresVerifiedSeller(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "buyer@example.com", enums.UserRoleBuyer, true)
	f.seedUser(t, "unverified@example.com", enums.UserRoleSeller, false)
	f.seedUser(t, "seller@example.com", enums.UserRoleSeller, true)

	input := CreateListingInput{CategoryID: f.category.ID, Title: "Used phone", Price: "125.00"}

	_, err := f.svc.Create(ctx, "buyer@example.com", input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("buyer create should be forbidden, got %v", err)
	}
	_, err = f.svc.Create(ctx, "ghost@example.com", input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unknown create should be forbidden, got %v", err)
	}
	_, err = f.svc.Create(ctx, "unverified@example.com", input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unverified seller should be forbidden, got %v", err)
	}

	dto, err := f.svc.Create(ctx, "seller@example.com", input)
	if err != nil {
		t.Fatalf("verified seller create: %v", err)
	}
	if dto.Status != enums.ListingStatusAvailable {
		t.Fatalf("new listing must be available, got %s", dto.Status)
	}
	if dto.Price != "125.00" {
		t.Fatalf("unexpected price %q", dto.Price)
	}
	if dto.PostedAt.IsZero() {
		t.Fatal("posted_at must be stamped")
	}
}

func TestCreateRejectsBadPrice(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedUser(t, "seller@example.com", enums.UserRoleSeller, true)
	ctx := context.Background()

	for _, price := range []string{"", "abc", "-10", "0", "1.999"} {
		_, err := f.svc.Create(ctx, "seller@example.com", CreateListingInput{
			CategoryID: f.category.ID, Title: "Phone", Price: price,
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("price %q should fail validation, got %v", price, err)
		}
	}
}

func TestListByCategoryFiltersAndOrders(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	older := f.seedListing(t, "seller@example.com", base.Add(-2*time.Hour), enums.ListingStatusAvailable)
	newest := f.seedListing(t, "seller@example.com", base, enums.ListingStatusAvailable)
	f.seedListing(t, "seller@example.com", base.Add(-time.Hour), enums.ListingStatusSold)

	dtos, err := f.svc.ListByCategory(ctx, f.category.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("sold listings must be hidden, got %d rows", len(dtos))
	}
	if dtos[0].ID != newest.ID || dtos[1].ID != older.ID {
		t.Fatalf("expected newest first, got %v then %v", dtos[0].ID, dtos[1].ID)
	}

	_, err = f.svc.ListByCategory(ctx, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown category should be NOT_FOUND, got %v", err)
	}
}

func TestListAdvertised(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	base := time.Now().UTC()

	f.seedListing(t, "seller@example.com", base, enums.ListingStatusAvailable)
	promoted := f.seedListing(t, "seller@example.com", base, enums.ListingStatusAvailable)
	soldPromoted := f.seedListing(t, "seller@example.com", base, enums.ListingStatusSold)
	for _, id := range []uuid.UUID{promoted.ID, soldPromoted.ID} {
		if err := f.db.Model(&models.Product{}).Where("id = ?", id).Update("advertised", true).Error; err != nil {
			t.Fatalf("flag listing: %v", err)
		}
	}

	dtos, err := f.svc.ListAdvertised(ctx)
	if err != nil {
		t.Fatalf("list advertised: %v", err)
	}
	if len(dtos) != 1 || dtos[0].ID != promoted.ID {
		t.Fatalf("expected only the available promoted listing, got %v", dtos)
	}
}

func TestMarkAdvertisedOwnerGated(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	listing := f.seedListing(t, "seller@example.com", time.Now().UTC(), enums.ListingStatusAvailable)

	err := f.svc.MarkAdvertised(ctx, listing.ID, "other@example.com")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("non-owner should be forbidden, got %v", err)
	}

	if err := f.svc.MarkAdvertised(ctx, listing.ID, "seller@example.com"); err != nil {
		t.Fatalf("owner advertise: %v", err)
	}
	// setting an already-set flag succeeds
	if err := f.svc.MarkAdvertised(ctx, listing.ID, "seller@example.com"); err != nil {
		t.Fatalf("repeat advertise: %v", err)
	}

	err = f.svc.MarkAdvertised(ctx, uuid.New(), "seller@example.com")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("missing id should be NOT_FOUND, got %v", err)
	}
}

func TestMarkReported(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	listing := f.seedListing(t, "seller@example.com", time.Now().UTC(), enums.ListingStatusAvailable)

	if err := f.svc.MarkReported(ctx, listing.ID); err != nil {
		t.Fatalf("report: %v", err)
	}
	if err := f.svc.MarkReported(ctx, listing.ID); err != nil {
		t.Fatalf("repeat report: %v", err)
	}

	reported, err := f.svc.ListReported(ctx)
	if err != nil {
		t.Fatalf("list reported: %v", err)
	}
	if len(reported) != 1 || reported[0].ID != listing.ID {
		t.Fatalf("unexpected reported queue %v", reported)
	}

	err = f.svc.MarkReported(ctx, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("missing id should be NOT_FOUND, got %v", err)
	}
}

func TestDeleteOwnerGated(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	listing := f.seedListing(t, "seller@example.com", time.Now().UTC(), enums.ListingStatusAvailable)

	err := f.svc.Delete(ctx, listing.ID, "other@example.com")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("non-owner delete should be forbidden, got %v", err)
	}

	if err := f.svc.Delete(ctx, listing.ID, "seller@example.com"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	err = f.svc.Delete(ctx, listing.ID, "seller@example.com")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("second delete should be NOT_FOUND, got %v", err)
	}
}

func TestAdminDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	listing := f.seedListing(t, "seller@example.com", time.Now().UTC(), enums.ListingStatusAvailable)

	if err := f.svc.AdminDelete(ctx, listing.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	err := f.svc.AdminDelete(ctx, listing.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("missing id should be NOT_FOUND, got %v", err)
	}
}

func TestParsePriceCents(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "125.00", want: 12500},
		{in: "0.01", want: 1},
		{in: "99", want: 9900},
		{in: "1.999", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "0", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParsePriceCents(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParsePriceCents(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePriceCents(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePriceCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
