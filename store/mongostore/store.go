// Package mongostore implements store.Store on MongoDB with mongo-driver v2.
// Collection names and indexes live in ensureIndexes.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"water-delivery-api/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	ColUsers    = "users"
	ColProducts = "products"
	ColOrders   = "orders"
	ColCounters = "counters"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// NewStore connects and pings.
//
// uri: e.g. "mongodb://localhost:27017"
// dbName: e.g. "water_delivery"
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// Migrate creates the unique and lookup indexes. Collections are created
// implicitly on first insert.
func (s *Store) Migrate(ctx context.Context) error {
	return s.ensureIndexes(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},
		{ColUsers, bson.D{{Key: "user_id", Value: 1}}, true},
		{ColProducts, bson.D{{Key: "product_id", Value: 1}}, true},
		{ColOrders, bson.D{{Key: "order_id", Value: 1}}, true},
		{ColOrders, bson.D{{Key: "customer_id", Value: 1}}, false},
		{ColOrders, bson.D{{Key: "created_at", Value: -1}}, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("mongostore: create index on %s: %w", i.col, err)
		}
	}
	return nil
}

// nextSequence atomically increments the named counter document.
func (s *Store) nextSequence(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.col(ColCounters).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, wrapError(err)
	}
	return doc.Seq, nil
}
