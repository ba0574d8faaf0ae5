package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mobihub/mobihub-server/pkg/db/models"
	"github.com/mobihub/mobihub-server/pkg/enums"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:settlement_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.Booking{}, &models.Payment{}))
	return conn
}

func TestMarkListingSoldIsSingleWinner(t *testing.T) {
	t.Parallel()

	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := models.Product{
		ID:          uuid.New(),
		SellerEmail: "seller@example.com",
		CategoryID:  uuid.New(),
		Title:       "Camera",
		PriceCents:  20000,
		Status:      enums.ListingStatusAvailable,
		PostedAt:    time.Now().UTC(),
	}
	require.NoError(t, conn.Create(&product).Error)

	rows, err := repo.MarkListingSold(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// the second swap finds the listing already sold
	rows, err = repo.MarkListingSold(ctx, product.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)

	// and a missing listing swaps zero rows too
	rows, err = repo.MarkListingSold(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestSupersedeOtherPendingSparesWinnerAndTerminals(t *testing.T) {
	t.Parallel()

	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	productID := uuid.New()

	winner := models.Booking{ID: uuid.New(), BuyerEmail: "a@example.com", BuyerName: "A", ProductID: productID, Status: enums.BookingStatusPending, BookedAt: time.Now().UTC()}
	pending := models.Booking{ID: uuid.New(), BuyerEmail: "b@example.com", BuyerName: "B", ProductID: productID, Status: enums.BookingStatusPending, BookedAt: time.Now().UTC()}
	paid := models.Booking{ID: uuid.New(), BuyerEmail: "c@example.com", BuyerName: "C", ProductID: uuid.New(), Status: enums.BookingStatusPaid, BookedAt: time.Now().UTC()}
	for _, b := range []models.Booking{winner, pending, paid} {
		require.NoError(t, conn.Create(&b).Error)
	}

	count, err := repo.SupersedeOtherPending(ctx, productID, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var reloaded models.Booking
	require.NoError(t, conn.First(&reloaded, "id = ?", winner.ID).Error)
	assert.Equal(t, enums.BookingStatusPending, reloaded.Status)

	require.NoError(t, conn.First(&reloaded, "id = ?", pending.ID).Error)
	assert.Equal(t, enums.BookingStatusSuperseded, reloaded.Status)
}

func TestMarkBookingPaidGuardsOnPending(t *testing.T) {
	t.Parallel()

	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	booking := models.Booking{ID: uuid.New(), BuyerEmail: "a@example.com", BuyerName: "A", ProductID: uuid.New(), Status: enums.BookingStatusPending, BookedAt: time.Now().UTC()}
	require.NoError(t, conn.Create(&booking).Error)

	rows, err := repo.MarkBookingPaid(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.MarkBookingPaid(ctx, booking.ID)
	require.NoError(t, err)
	assert.Zero(t, rows, "a paid booking must not transition again")
}

func TestCreatePaymentEnforcesUniqueBooking(t *testing.T) {
	t.Parallel()

	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	bookingID := uuid.New()

	first := &models.Payment{BookingID: bookingID, ProductID: uuid.New(), BuyerEmail: "a@example.com", AmountCents: 5000, ProcessorRef: "pi_1"}
	require.NoError(t, repo.CreatePayment(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)

	dup := &models.Payment{BookingID: bookingID, ProductID: first.ProductID, BuyerEmail: "a@example.com", AmountCents: 5000, ProcessorRef: "pi_2"}
	assert.Error(t, repo.CreatePayment(ctx, dup))
}
