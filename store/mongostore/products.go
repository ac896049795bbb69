package mongostore

import (
	"context"

	"water-delivery-api/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.col(ColProducts).InsertOne(ctx, product)
	return wrapError(err)
}

func (s *Store) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	return findOne[models.Product](ctx, s.col(ColProducts), bson.D{{Key: "product_id", Value: productID}})
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "product_id", Value: 1}})
	return findMany[models.Product](ctx, s.col(ColProducts), bson.D{}, opts)
}

func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	n, err := s.col(ColProducts).CountDocuments(ctx, bson.D{})
	return n, wrapError(err)
}
