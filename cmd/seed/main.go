package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/luxehome-backend/pkg/config"
	"github.com/angelmondragon/luxehome-backend/pkg/db"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
	"github.com/angelmondragon/luxehome-backend/pkg/migrate"
)

func main() {
	adminEmail := flag.String("admin-email", "admin@luxehome.com", "bootstrap admin email, empty to skip")
	adminPassword := flag.String("admin-password", os.Getenv("LUXEHOME_SEED_ADMIN_PASSWORD"), "bootstrap admin password, generated when empty")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "seed"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logg, AdminSeed{Email: *adminEmail, Password: *adminPassword}); err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, admin AdminSeed) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	res, err := Seeder{DB: dbClient, Passwords: cfg.Password}.Run(ctx, admin)
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"categories":    res.Categories,
		"products":      res.Products,
		"banners":       res.Banners,
		"admin_created": res.AdminCreated,
	})
	logg.Info(ctx, "seed complete")
	if res.GeneratedAdmin != "" {
		logg.Warn(logg.WithField(ctx, "admin_password", res.GeneratedAdmin), "generated admin password, change it after first login")
	}
	return nil
}
