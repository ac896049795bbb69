package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"water-delivery-api/models"
	"water-delivery-api/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PlaceOrder reserves stock with a conditional $inc and then inserts the
// order. Standalone servers have no multi-document transactions, so a failed
// insert is compensated by returning the reserved quantity.
func (s *Store) PlaceOrder(ctx context.Context, order *models.Order) error {
	if order.ChangeLog == nil {
		order.ChangeLog = []models.ChangeLogEntry{}
	}
	productID := order.Request.ProductID
	qty := order.Request.Quantity

	res := s.col(ColProducts).FindOneAndUpdate(ctx,
		bson.D{
			{Key: "product_id", Value: productID},
			{Key: "stock", Value: bson.D{{Key: "$gte", Value: qty}}},
		},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "stock", Value: -qty}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
		},
	)
	if err := res.Err(); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return wrapError(err)
		}
		n, err := s.col(ColProducts).CountDocuments(ctx, bson.D{{Key: "product_id", Value: productID}})
		if err != nil {
			return wrapError(err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return store.ErrInsufficientStock
	}

	if _, err := s.col(ColOrders).InsertOne(ctx, order); err != nil {
		// context may already be cancelled; the release must still land
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_, relErr := s.col(ColProducts).UpdateOne(releaseCtx,
			bson.D{{Key: "product_id", Value: productID}},
			bson.D{{Key: "$inc", Value: bson.D{{Key: "stock", Value: qty}}}},
		)
		if relErr != nil {
			return fmt.Errorf("mongostore: insert order: %w (stock release failed: %v)", wrapError(err), relErr)
		}
		return wrapError(err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := findOne[models.Order](ctx, s.col(ColOrders), bson.D{{Key: "order_id", Value: orderID}})
	if err != nil {
		return nil, err
	}
	if order.ChangeLog == nil {
		order.ChangeLog = []models.ChangeLogEntry{}
	}
	return order, nil
}

func (s *Store) ListOrders(ctx context.Context, customerID string) ([]models.Order, error) {
	filter := bson.D{}
	if customerID != "" {
		filter = bson.D{{Key: "customer_id", Value: customerID}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	orders, err := findMany[models.Order](ctx, s.col(ColOrders), filter, opts)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ChangeLog == nil {
			orders[i].ChangeLog = []models.ChangeLogEntry{}
		}
	}
	return orders, nil
}

// AppendStatusChange uses a single update so the status and its log entry
// are written together.
func (s *Store) AppendStatusChange(ctx context.Context, orderID string, status models.OrderStatus, entry models.ChangeLogEntry) error {
	return updateOne(ctx, s.col(ColOrders),
		bson.D{{Key: "order_id", Value: orderID}},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "status", Value: status},
				{Key: "updated_at", Value: entry.ChangedAt},
			}},
			{Key: "$push", Value: bson.D{{Key: "change_log", Value: entry}}},
		},
	)
}
