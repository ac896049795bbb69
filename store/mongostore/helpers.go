package mongostore

import (
	"context"
	"errors"
	"fmt"

	"water-delivery-api/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// wrapError converts driver errors into store sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

// findOne returns store.ErrNotFound when nothing matches.
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts ...options.Lister[options.FindOneOptions]) (*T, error) {
	var result T
	if err := col.FindOne(ctx, filter, opts...).Decode(&result); err != nil {
		return nil, wrapError(err)
	}
	return &result, nil
}

// findMany never returns a nil slice.
func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// updateOne applies update to the single document matching filter and
// reports store.ErrNotFound when nothing matched.
func updateOne(ctx context.Context, col *mongo.Collection, filter, update bson.D) error {
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
