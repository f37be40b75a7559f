package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/luxehome-backend/api/routes"
	"github.com/angelmondragon/luxehome-backend/internal/auth"
	"github.com/angelmondragon/luxehome-backend/internal/cart"
	"github.com/angelmondragon/luxehome-backend/internal/checkout"
	"github.com/angelmondragon/luxehome-backend/internal/favorites"
	"github.com/angelmondragon/luxehome-backend/internal/notifications"
	"github.com/angelmondragon/luxehome-backend/internal/orders"
	product "github.com/angelmondragon/luxehome-backend/internal/products"
	"github.com/angelmondragon/luxehome-backend/internal/users"
	"github.com/angelmondragon/luxehome-backend/pkg/auth/session"
	"github.com/angelmondragon/luxehome-backend/pkg/config"
	"github.com/angelmondragon/luxehome-backend/pkg/db"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	"github.com/angelmondragon/luxehome-backend/pkg/instance"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
	"github.com/angelmondragon/luxehome-backend/pkg/metrics"
	"github.com/angelmondragon/luxehome-backend/pkg/migrate"
	"github.com/angelmondragon/luxehome-backend/pkg/outbox"
	"github.com/angelmondragon/luxehome-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(registry)

	deps, err := buildDeps(cfg, logg, dbClient, redisClient, storefrontMetrics)
	if err != nil {
		return err
	}
	deps.Gatherer = registry

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"dialect":  dbClient.Dialect(),
		"telegram": cfg.Telegram.Enabled(),
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildDeps(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, m *metrics.Storefront) (routes.Deps, error) {
	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)
	productRepo := product.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)

	sessions, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		return routes.Deps{}, err
	}

	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	registerSvc, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	var adminRegisterSvc auth.RegisterService
	if cfg.App.IsDev() && cfg.FeatureFlags.AdminRegister {
		adminRegisterSvc, err = auth.NewRegisterService(auth.RegisterServiceParams{
			DB:             dbClient,
			PasswordConfig: cfg.Password,
			JWTConfig:      cfg.JWT,
			Role:           enums.UserRoleAdmin,
		})
		if err != nil {
			return routes.Deps{}, err
		}
	}

	usersSvc, err := users.NewService(usersRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	favoritesSvc, err := favorites.NewService(favorites.NewRepository(conn), productRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	catalogSvc, err := product.NewService(productRepo, favoritesSvc, logg)
	if err != nil {
		return routes.Deps{}, err
	}

	cartSvc, err := cart.NewService(cart.ServiceParams{
		Store:    cart.NewRedisStore(redisClient, cfg.Session.TTL),
		Products: productRepo,
		MaxLines: cfg.Cart.MaxLines,
		Metrics:  m,
		Logger:   logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Tx:         dbClient,
		Cart:       cartSvc,
		Products:   productRepo,
		Orders:     ordersRepo,
		Users:      usersRepo,
		Sessions:   redisClient,
		Outbox:     outboxSvc,
		Notifier:   notifications.NewTelegramNotifier(cfg.Telegram, m, logg),
		SessionTTL: cfg.Session.TTL,
		Metrics:    m,
		Logger:     logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Tx:       dbClient,
		Repo:     ordersRepo,
		Sessions: redisClient,
		Outbox:   outboxSvc,
		Metrics:  m,
		Logger:   logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Sessions:      sessions,
		Auth:          authSvc,
		Register:      registerSvc,
		AdminRegister: adminRegisterSvc,
		Users:         usersSvc,
		Catalog:       catalogSvc,
		Cart:          cartSvc,
		Checkout:      checkoutSvc,
		Orders:        ordersSvc,
		Favorites:     favoritesSvc,
	}, nil
}
