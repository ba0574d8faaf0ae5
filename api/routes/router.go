package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mobihub/mobihub-server/api/controllers"
	"github.com/mobihub/mobihub-server/api/middleware"
	"github.com/mobihub/mobihub-server/internal/bookings"
	"github.com/mobihub/mobihub-server/internal/categories"
	"github.com/mobihub/mobihub-server/internal/identity"
	"github.com/mobihub/mobihub-server/internal/listings"
	"github.com/mobihub/mobihub-server/internal/settlement"
	"github.com/mobihub/mobihub-server/internal/wishlist"
	"github.com/mobihub/mobihub-server/pkg/config"
	"github.com/mobihub/mobihub-server/pkg/db"
	"github.com/mobihub/mobihub-server/pkg/enums"
	"github.com/mobihub/mobihub-server/pkg/logger"
	"github.com/mobihub/mobihub-server/pkg/redis"
)

// NewRouter wires the HTTP surface. Roles are resolved per request through the
// identity service; the token only carries the principal's email.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database db.Pinger,
	cache *redis.Client,
	registry *prometheus.Registry,
	identityService identity.Service,
	categoryService categories.Service,
	listingService listings.Service,
	bookingService bookings.Service,
	wishlistService wishlist.Service,
	settlementService settlement.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var idemStore redis.IdempotencyStore
	var cachePinger redis.Pinger
	if cache != nil {
		idemStore = cache
		cachePinger = cache
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, cachePinger, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", controllers.AuthToken(identityService, cfg.JWT, logg))
		r.Post("/users", controllers.UserRegister(identityService, logg))
		r.Get("/categories", controllers.CategoriesList(categoryService, logg))
		r.Get("/categories/{categoryId}/products", controllers.CategoryProducts(listingService, logg))
		r.Get("/products/advertised", controllers.ProductsAdvertised(listingService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/users/role/{email}", controllers.UserRole(identityService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleBuyer, identityService, logg))
				r.Use(middleware.Idempotency(idemStore, logg))

				r.Post("/bookings", controllers.BookingCreate(bookingService, logg))
				r.Get("/bookings", controllers.BookingsList(bookingService, logg))
				r.Get("/bookings/{bookingId}", controllers.BookingGet(bookingService, logg))

				r.Post("/payments/intent", controllers.PaymentIntentCreate(settlementService, logg))
				r.Post("/payments/confirm", controllers.PaymentConfirm(settlementService, logg))

				r.Put("/products/{productId}/report", controllers.ProductReport(listingService, logg))

				r.Post("/wishlist", controllers.WishlistAdd(wishlistService, logg))
				r.Get("/wishlist", controllers.WishlistList(wishlistService, logg))
				r.Delete("/wishlist/{productId}", controllers.WishlistRemove(wishlistService, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleSeller, identityService, logg))

				r.Post("/products", controllers.ProductCreate(listingService, logg))
				r.Get("/products/mine", controllers.ProductsMine(listingService, logg))
				r.Put("/products/{productId}/advertise", controllers.ProductAdvertise(listingService, logg))
				r.Delete("/products/{productId}", controllers.ProductDelete(listingService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, identityService, logg))

		r.Get("/users/sellers", controllers.AdminListUsers(identityService, enums.UserRoleSeller, logg))
		r.Get("/users/buyers", controllers.AdminListUsers(identityService, enums.UserRoleBuyer, logg))
		r.Put("/users/{userId}/verify", controllers.AdminVerifySeller(identityService, logg))
		r.Delete("/users/{userId}", controllers.AdminDeleteUser(identityService, logg))

		r.Get("/products/reported", controllers.AdminReportedProducts(listingService, logg))
		r.Delete("/products/{productId}", controllers.AdminProductDelete(listingService, logg))
	})

	return r
}
