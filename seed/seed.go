// Package seed loads the development catalog and the initial admin account.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"water-delivery-api/auth"
	"water-delivery-api/models"
	"water-delivery-api/store"

	"github.com/sirupsen/logrus"
)

const (
	AdminUserID   = "0"
	AdminEmail    = "admin@opeva.com"
	AdminPassword = "admin123"

	productImageURL = "https://raw.githubusercontent.com/Pilestin/OpevaGetir/refs/heads/master/assets/images/OpevaSuPNG.png"
	productType     = "OPEVA"
)

type Result struct {
	Skipped      bool `json:"skipped"`
	Products     int  `json:"products"`
	AdminCreated bool `json:"admin_created"`
}

func cm(v float64) models.Measure { return models.Measure{Value: v, Unit: "cm"} }
func kg(v float64) models.Measure { return models.Measure{Value: v, Unit: "kg"} }

// Products returns the seed catalog with timestamps set to now.
func Products(now time.Time) []models.Product {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	small := models.Dimensions{Length: cm(20), Width: cm(6), Height: cm(6)}
	return []models.Product{
		{
			ProductID:   "SU_0",
			Name:        "OPEVA Doğal Kaynak Suyu",
			Description: "19L Damacana",
			Price:       100,
			Stock:       120,
			Weight:      kg(19),
			Dimensions:  small,
			Category:    "Damacana",
			ImageURL:    productImageURL,
			ProductType: productType,
			CreatedAt:   created,
			UpdatedAt:   now,
		},
		{
			ProductID:   "SU_1",
			Name:        "OPEVA Pet Şişe Su",
			Description: "0.5L Pet Şişe",
			Price:       5,
			Stock:       500,
			Weight:      kg(0.5),
			Dimensions:  small,
			Category:    "Pet Şişe",
			ImageURL:    productImageURL,
			ProductType: productType,
			CreatedAt:   created,
			UpdatedAt:   now,
		},
		{
			ProductID:   "SU_2",
			Name:        "OPEVA Pet Şişe Su",
			Description: "1.5L Pet Şişe",
			Price:       10,
			Stock:       300,
			Weight:      kg(1.5),
			Dimensions:  models.Dimensions{Length: cm(30), Width: cm(8), Height: cm(8)},
			Category:    "Pet Şişe",
			ImageURL:    productImageURL,
			ProductType: productType,
			CreatedAt:   created,
			UpdatedAt:   now,
		},
	}
}

// Run inserts the catalog and admin account unless products already exist.
func Run(ctx context.Context, s store.Store, bcryptCost int, log logrus.FieldLogger) (*Result, error) {
	count, err := s.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		log.WithField("products", count).Info("seed data already present, skipping")
		return &Result{Skipped: true}, nil
	}

	now := time.Now()
	res := &Result{}
	for _, p := range Products(now) {
		if err := s.CreateProduct(ctx, &p); err != nil {
			return nil, fmt.Errorf("create product %s: %w", p.ProductID, err)
		}
		res.Products++
	}

	hash, err := auth.HashPassword(AdminPassword, bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	lat, lon := 39.75250570103818, 30.490999148931902
	admin := &models.User{
		UserID:       AdminUserID,
		FullName:     "Admin User",
		Email:        AdminEmail,
		PasswordHash: hash,
		PhoneNumber:  "+90 555 000 00 00",
		Address:      "Admin Adresi",
		Latitude:     &lat,
		Longitude:    &lon,
		IsActive:     true,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLogin:    now,
	}
	switch err := s.CreateUser(ctx, admin); {
	case err == nil:
		res.AdminCreated = true
	case errors.Is(err, store.ErrDuplicate):
		log.Warn("admin account already exists")
	default:
		return nil, fmt.Errorf("create admin: %w", err)
	}

	log.WithFields(logrus.Fields{
		"products":      res.Products,
		"admin_created": res.AdminCreated,
	}).Info("seed data created")
	return res, nil
}
