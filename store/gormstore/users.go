package gormstore

import (
	"context"
	"strconv"
	"time"

	"water-delivery-api/models"
	"water-delivery-api/store"

	"gorm.io/gorm"
)

const userSequence = "users"

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	assigned := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.UserID == "" {
			n, err := nextSequence(tx, userSequence)
			if err != nil {
				return err
			}
			user.UserID = strconv.FormatInt(n, 10)
			assigned = true
		}
		return tx.Create(user).Error
	})
	if err != nil && assigned {
		user.UserID = ""
	}
	return wrapError(err)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, wrapError(err)
	}
	return users, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		UpdateColumn("last_login", at)
	if res.Error != nil {
		return wrapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetUserActive(ctx context.Context, userID string, active bool) error {
	return s.updateUser(ctx, userID, map[string]interface{}{"is_active": active})
}

func (s *Store) SetUserRole(ctx context.Context, userID string, role models.UserRole) error {
	return s.updateUser(ctx, userID, map[string]interface{}{"role": role})
}

func (s *Store) updateUser(ctx context.Context, userID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Updates(fields)
	if res.Error != nil {
		return wrapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
