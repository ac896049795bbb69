package services

import (
	"context"
	"errors"

	"water-delivery-api/apperr"
	"water-delivery-api/models"
	"water-delivery-api/store"
)

// CatalogService is read-only; stock changes only through order placement.
type CatalogService struct {
	products store.ProductStore
}

func NewCatalogService(products store.ProductStore) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to load products", err)
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, apperr.Internal("Failed to load product", err)
	}
	return product, nil
}
