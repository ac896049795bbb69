package services

import (
	"context"
	"errors"

	"water-delivery-api/apperr"
	"water-delivery-api/models"
	"water-delivery-api/store"

	"github.com/sirupsen/logrus"
)

// AdminService manages account approval and roles. Callers must already
// have passed the admin role check.
type AdminService struct {
	users store.UserStore
	log   logrus.FieldLogger
}

func NewAdminService(users store.UserStore, log logrus.FieldLogger) *AdminService {
	return &AdminService{users: users, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to load users", err)
	}
	return users, nil
}

// SetApproval flips the gate that controls whether the user may order.
func (s *AdminService) SetApproval(ctx context.Context, actorID, userID string, active bool) error {
	if err := s.users.SetUserActive(ctx, userID, active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("Failed to update user", err)
	}
	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"is_active": active,
		"admin_id":  actorID,
	}).Info("user approval changed")
	return nil
}

func (s *AdminService) SetRole(ctx context.Context, actorID, userID string, role models.UserRole) error {
	if role != models.RoleCustomer && role != models.RoleAdmin {
		return apperr.BadRequest("Invalid role. Must be: customer or admin")
	}
	if err := s.users.SetUserRole(ctx, userID, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("Failed to update user", err)
	}
	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"role":     role,
		"admin_id": actorID,
	}).Info("user role changed")
	return nil
}
