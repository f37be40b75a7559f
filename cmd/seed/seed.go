package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/luxehome-backend/pkg/config"
	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	"github.com/angelmondragon/luxehome-backend/pkg/security"
)

const tempPasswordLength = 16

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AdminSeed describes the bootstrap admin account. An empty password is
// replaced by a generated one reported in Result.
type AdminSeed struct {
	Email    string
	Password string
}

// Result counts what a run inserted; rows that already existed are skipped.
type Result struct {
	Categories     int
	Products       int
	Banners        int
	AdminCreated   bool
	GeneratedAdmin string
}

// Seeder loads the demo catalog. Every step looks rows up by natural key
// first, so reruns only fill in what is missing.
type Seeder struct {
	DB        txRunner
	Passwords config.PasswordConfig
}

func (s Seeder) Run(ctx context.Context, admin AdminSeed) (Result, error) {
	var res Result
	err := s.DB.WithTx(ctx, func(tx *gorm.DB) error {
		ids := make(map[string]uuid.UUID, len(rootCategories)+len(subCategories))
		for _, group := range [][]categorySeed{rootCategories, subCategories} {
			for _, seed := range group {
				id, created, err := ensureCategory(tx, seed, ids)
				if err != nil {
					return err
				}
				ids[seed.Slug] = id
				if created {
					res.Categories++
				}
			}
		}

		for _, seed := range demoProducts {
			created, err := ensureProduct(tx, seed, ids)
			if err != nil {
				return err
			}
			if created {
				res.Products++
			}
		}

		for i, seed := range demoBanners {
			created, err := ensureBanner(tx, seed, i+1)
			if err != nil {
				return err
			}
			if created {
				res.Banners++
			}
		}

		created, generated, err := s.ensureAdmin(tx, admin)
		if err != nil {
			return err
		}
		res.AdminCreated = created
		res.GeneratedAdmin = generated
		return nil
	})
	return res, err
}

func ensureCategory(tx *gorm.DB, seed categorySeed, ids map[string]uuid.UUID) (uuid.UUID, bool, error) {
	var existing models.Category
	err := tx.Where("slug = ?", seed.Slug).First(&existing).Error
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, fmt.Errorf("lookup category %s: %w", seed.Slug, err)
	}

	cat := models.Category{Name: seed.Name, Slug: seed.Slug}
	if seed.Parent != "" {
		parentID, ok := ids[seed.Parent]
		if !ok {
			return uuid.Nil, false, fmt.Errorf("category %s references unknown parent %s", seed.Slug, seed.Parent)
		}
		cat.ParentID = &parentID
	}
	if err := tx.Create(&cat).Error; err != nil {
		return uuid.Nil, false, fmt.Errorf("create category %s: %w", seed.Slug, err)
	}
	return cat.ID, true, nil
}

func ensureProduct(tx *gorm.DB, seed productSeed, categories map[string]uuid.UUID) (bool, error) {
	var count int64
	if err := tx.Model(&models.Product{}).Where("slug = ?", seed.Slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup product %s: %w", seed.Slug, err)
	}
	if count > 0 {
		return false, nil
	}

	categoryID, ok := categories[seed.Category]
	if !ok {
		return false, fmt.Errorf("product %s references unknown category %s", seed.Slug, seed.Category)
	}
	price, err := decimal.NewFromString(seed.Price)
	if err != nil {
		return false, fmt.Errorf("product %s price: %w", seed.Slug, err)
	}

	product := models.Product{
		Name:        seed.Name,
		Slug:        seed.Slug,
		CategoryID:  categoryID,
		Description: seed.Description,
		Price:       price,
		OldPrice:    optionalDecimal(seed.OldPrice),
		Material:    seed.Material,
		Color:       seed.Color,
		Dimensions:  seed.Dimensions,
		Weight:      optionalDecimal(seed.Weight),
		Stock:       seed.Stock,
		IsFeatured:  seed.IsFeatured,
		Images: []models.ProductImage{
			{URL: "/media/products/" + seed.Slug + ".jpg", IsPrimary: true},
		},
	}
	if err := tx.Create(&product).Error; err != nil {
		return false, fmt.Errorf("create product %s: %w", seed.Slug, err)
	}
	return true, nil
}

func ensureBanner(tx *gorm.DB, seed bannerSeed, n int) (bool, error) {
	var count int64
	if err := tx.Model(&models.Banner{}).Where("title = ?", seed.Title).Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup banner %q: %w", seed.Title, err)
	}
	if count > 0 {
		return false, nil
	}
	subtitle := seed.Subtitle
	banner := models.Banner{
		Title:     seed.Title,
		Subtitle:  &subtitle,
		ImageURL:  fmt.Sprintf("/media/banners/banner-%d.jpg", n),
		IsActive:  true,
		SortOrder: seed.Order,
	}
	if err := tx.Create(&banner).Error; err != nil {
		return false, fmt.Errorf("create banner %q: %w", seed.Title, err)
	}
	return true, nil
}

func (s Seeder) ensureAdmin(tx *gorm.DB, admin AdminSeed) (bool, string, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" {
		return false, "", nil
	}

	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, "", fmt.Errorf("lookup admin: %w", err)
	}
	if count > 0 {
		return false, "", nil
	}

	password := admin.Password
	generated := ""
	if password == "" {
		temp, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return false, "", fmt.Errorf("generate admin password: %w", err)
		}
		password, generated = temp, temp
	}
	hash, err := security.HashPassword(password, s.Passwords)
	if err != nil {
		return false, "", fmt.Errorf("hash admin password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Store",
		LastName:     "Admin",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	if err := tx.Create(&user).Error; err != nil {
		return false, "", fmt.Errorf("create admin: %w", err)
	}
	return true, generated, nil
}

func optionalDecimal(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}
