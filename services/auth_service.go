package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"water-delivery-api/apperr"
	"water-delivery-api/auth"
	"water-delivery-api/models"
	"water-delivery-api/store"

	"github.com/sirupsen/logrus"
)

// Same message for unknown email and wrong password so callers cannot probe
// which emails are registered.
const msgInvalidCredentials = "Invalid email or password"

type RegisterInput struct {
	FullName    string
	Email       string
	Password    string
	PhoneNumber string
	Address     string
	Latitude    *float64
	Longitude   *float64
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  *models.User
	Token string
}

type AuthService struct {
	users      store.UserStore
	tokens     *auth.TokenService
	bcryptCost int
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewAuthService(users store.UserStore, tokens *auth.TokenService, bcryptCost int, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log,
		now:        time.Now,
	}
}

// Register creates an inactive customer account and returns a token right
// away; the account can browse but not order until an admin approves it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("Email already registered")
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal("Registration failed", err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	now := s.now()
	user := &models.User{
		FullName:     in.FullName,
		Email:        email,
		PasswordHash: hash,
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		IsActive:     false,
		Role:         models.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLogin:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, apperr.Internal("Registration failed", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.UserID}).Info("user registered, awaiting approval")
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the password and refreshes last_login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, apperr.Internal("Login failed", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.UserID, now); err != nil {
		return nil, apperr.Internal("Login failed", err)
	}
	user.LastLogin = now

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// CurrentUser loads the account named by a verified token.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	return user, nil
}
