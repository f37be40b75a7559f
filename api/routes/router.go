package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/luxehome-backend/api/controllers"
	"github.com/angelmondragon/luxehome-backend/api/middleware"
	"github.com/angelmondragon/luxehome-backend/internal/auth"
	"github.com/angelmondragon/luxehome-backend/internal/checkout"
	"github.com/angelmondragon/luxehome-backend/internal/favorites"
	"github.com/angelmondragon/luxehome-backend/internal/orders"
	product "github.com/angelmondragon/luxehome-backend/internal/products"
	"github.com/angelmondragon/luxehome-backend/internal/users"
	"github.com/angelmondragon/luxehome-backend/pkg/auth/session"
	"github.com/angelmondragon/luxehome-backend/pkg/config"
	"github.com/angelmondragon/luxehome-backend/pkg/db"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/luxehome-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer needs.
type RedisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    RedisStore
	Sessions session.Resolver
	Gatherer prometheus.Gatherer

	Auth      auth.Service
	Register  auth.RegisterService
	Users     users.Service
	Catalog   product.Service
	Cart      controllers.CartService
	Checkout  checkout.Service
	Orders    orders.Service
	Favorites favorites.Service

	// AdminRegister is only set in dev with the admin-register flag on.
	AdminRegister auth.RegisterService
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Session.Header, cfg.App.CORSOrigins...),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var (
		idempotencyStore pkgredis.IdempotencyStore
		readiness        = map[string]controllers.Pinger{}
	)
	if d.Redis != nil {
		idempotencyStore = d.Redis
		readiness["redis"] = d.Redis
	}
	if d.DB != nil {
		readiness["db"] = d.DB
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
			r.With(
				rateLimit(registerPolicy, d.Redis, logg),
				middleware.Idempotency(idempotencyStore, logg),
			).Post("/register", controllers.AuthRegister(d.Register, logg))
			if d.AdminRegister != nil {
				r.With(rateLimit(registerPolicy, d.Redis, logg)).Post("/admin/register", controllers.AuthRegister(d.AdminRegister, logg))
			}
		})

		// storefront: anonymous shoppers allowed, signed-in shoppers recognized
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))

			r.Get("/home", controllers.CatalogHome(d.Catalog, logg))
			r.Get("/categories", controllers.CatalogCategories(d.Catalog, logg))
			r.Get("/products", controllers.ProductList(d.Catalog, logg))
			r.Get("/products/{slug}", controllers.ProductDetail(d.Catalog, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Session(d.Sessions, cfg.Session, logg))
				r.Use(middleware.Idempotency(idempotencyStore, logg))

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", controllers.CartView(d.Cart, logg))
					r.Get("/count", controllers.CartCount(d.Cart, logg))
					r.Post("/items", controllers.CartAdd(d.Cart, logg))
					r.Patch("/items/{productId}", controllers.CartUpdate(d.Cart, logg))
					r.Delete("/items/{productId}", controllers.CartRemove(d.Cart, logg))
				})
				r.Get("/checkout", controllers.CheckoutReview(d.Checkout, logg))
				r.Post("/checkout", controllers.CheckoutPlace(d.Checkout, logg))
				r.Get("/orders/{orderId}/success", controllers.OrderSuccess(d.Orders, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/me", controllers.Me(d.Users, logg))
			r.Put("/me/profile", controllers.UpdateProfile(d.Users, logg))
			r.Get("/orders", controllers.OrderHistory(d.Orders, logg))
			r.Get("/favorites", controllers.FavoritesList(d.Favorites, logg))
			r.Post("/favorites/{productId}/toggle", controllers.FavoriteToggle(d.Favorites, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Get("/orders", controllers.AdminOrders(d.Orders, logg))
			r.Patch("/orders/{orderId}/status", controllers.AdminOrderStatus(d.Orders, logg))
			r.Patch("/products/{productId}", controllers.AdminProductUpdate(d.Catalog, logg))
		})
	})

	return r
}

func rateLimit(policy middleware.AuthRateLimitPolicy, store RedisStore, logg *logger.Logger) func(http.Handler) http.Handler {
	if store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, store, logg)
}
