package gormstore

import (
	"context"

	"water-delivery-api/models"
)

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	return wrapError(s.db.WithContext(ctx).Create(product).Error)
}

func (s *Store) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "product_id = ?", productID).Error; err != nil {
		return nil, wrapError(err)
	}
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := s.db.WithContext(ctx).Order("product_id asc").Find(&products).Error; err != nil {
		return nil, wrapError(err)
	}
	return products, nil
}

func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, wrapError(err)
}
