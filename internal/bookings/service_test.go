package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/internal/listings"
	"github.com/mobihub/mobihub-server/internal/wishlist"
	"github.com/mobihub/mobihub-server/pkg/db"
	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
	pkgerrors "github.com/mobihub/mobihub-server/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:bookings_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Booking{}, &models.WishlistEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(ServiceParams{
		DB:           db.NewWithConn(conn),
		Repo:         NewRepository(conn),
		ListingRepo:  listings.NewRepository(conn),
		WishlistRepo: wishlist.NewRepository(conn),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, conn
}

func seedListing(t *testing.T, conn *gorm.DB, status enums.ListingStatus) models.Product {
	t.Helper()
	product := models.Product{
		ID:          uuid.New(),
		SellerEmail: "seller@example.com",
		CategoryID:  uuid.New(),
		Title:       "Used phone",
		PriceCents:  9900,
		Status:      status,
		PostedAt:    time.Now().UTC(),
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return product
}

func TestBookCreatesPendingAndClearsWishlist(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	listing := seedListing(t, conn, enums.ListingStatusAvailable)

	entry := models.WishlistEntry{ID: uuid.New(), BuyerEmail: "buyer@example.com", ProductID: listing.ID}
	if err := conn.Create(&entry).Error; err != nil {
		t.Fatalf("seed wishlist: %v", err)
	}

	dto, err := svc.Book(ctx, "Buyer@Example.com", BookInput{ProductID: listing.ID, BuyerName: "Billie"})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if dto.Status != enums.BookingStatusPending {
		t.Fatalf("expected pending, got %s", dto.Status)
	}
	if dto.BuyerEmail != "buyer@example.com" {
		t.Fatalf("expected normalized email, got %q", dto.BuyerEmail)
	}
	if dto.BookedAt.IsZero() {
		t.Fatal("booked_at must be stamped")
	}

	var wishCount int64
	if err := conn.Model(&models.WishlistEntry{}).Where("buyer_email = ? AND product_id = ?", "buyer@example.com", listing.ID).Count(&wishCount).Error; err != nil {
		t.Fatalf("count wishlist: %v", err)
	}
	if wishCount != 0 {
		t.Fatal("booking must clear the buyer's wishlist entry")
	}
}

func TestBookDuplicateIsConflict(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	listing := seedListing(t, conn, enums.ListingStatusAvailable)

	if _, err := svc.Book(ctx, "buyer@example.com", BookInput{ProductID: listing.ID, BuyerName: "Billie"}); err != nil {
		t.Fatalf("first book: %v", err)
	}

	_, err := svc.Book(ctx, "buyer@example.com", BookInput{ProductID: listing.ID, BuyerName: "Billie"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if typed.Message() != "product already booked" {
		t.Fatalf("unexpected message %q", typed.Message())
	}

	// another buyer can still book the same product
	if _, err := svc.Book(ctx, "other@example.com", BookInput{ProductID: listing.ID, BuyerName: "Ona"}); err != nil {
		t.Fatalf("second buyer book: %v", err)
	}
}

func TestBookUnavailableListing(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	sold := seedListing(t, conn, enums.ListingStatusSold)

	_, err := svc.Book(ctx, "buyer@example.com", BookInput{ProductID: sold.ID, BuyerName: "Billie"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}

	_, err = svc.Book(ctx, "buyer@example.com", BookInput{ProductID: uuid.New(), BuyerName: "Billie"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestListByBuyerOrdersByBookedAt(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	first := models.Booking{ID: uuid.New(), BuyerEmail: "buyer@example.com", BuyerName: "B", ProductID: uuid.New(), Status: enums.BookingStatusPending, BookedAt: base.Add(-time.Hour)}
	second := models.Booking{ID: uuid.New(), BuyerEmail: "buyer@example.com", BuyerName: "B", ProductID: uuid.New(), Status: enums.BookingStatusPaid, BookedAt: base}
	other := models.Booking{ID: uuid.New(), BuyerEmail: "other@example.com", BuyerName: "O", ProductID: uuid.New(), Status: enums.BookingStatusPending, BookedAt: base}
	for _, b := range []models.Booking{first, second, other} {
		if err := conn.Create(&b).Error; err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}

	list, err := svc.ListByBuyer(ctx, "buyer@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected most recent first, got %v then %v", list[0].ID, list[1].ID)
	}
}

func TestGetByIDOwnerOnly(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	booking := models.Booking{ID: uuid.New(), BuyerEmail: "buyer@example.com", BuyerName: "B", ProductID: uuid.New(), Status: enums.BookingStatusPending, BookedAt: time.Now().UTC()}
	if err := conn.Create(&booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	got, err := svc.GetByID(ctx, "buyer@example.com", booking.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != booking.ID {
		t.Fatalf("unexpected booking %v", got.ID)
	}

	_, err = svc.GetByID(ctx, "other@example.com", booking.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}

	_, err = svc.GetByID(ctx, "buyer@example.com", uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
