package mongostore

import (
	"context"
	"strconv"
	"time"

	"water-delivery-api/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const userSequence = "user_id"

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	assigned := false
	if user.UserID == "" {
		n, err := s.nextSequence(ctx, userSequence)
		if err != nil {
			return err
		}
		user.UserID = strconv.FormatInt(n, 10)
		assigned = true
	}
	if _, err := s.col(ColUsers).InsertOne(ctx, user); err != nil {
		if assigned {
			user.UserID = ""
		}
		return wrapError(err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return findOne[models.User](ctx, s.col(ColUsers), bson.D{{Key: "user_id", Value: userID}})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findMany[models.User](ctx, s.col(ColUsers), bson.D{}, opts)
}

func (s *Store) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return updateOne(ctx, s.col(ColUsers),
		bson.D{{Key: "user_id", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "last_login", Value: at}}}},
	)
}

func (s *Store) SetUserActive(ctx context.Context, userID string, active bool) error {
	return updateOne(ctx, s.col(ColUsers),
		bson.D{{Key: "user_id", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "is_active", Value: active},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
}

func (s *Store) SetUserRole(ctx context.Context, userID string, role models.UserRole) error {
	return updateOne(ctx, s.col(ColUsers),
		bson.D{{Key: "user_id", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "role", Value: role},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
}
