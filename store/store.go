// Package store defines the persistence contract for users, products and
// orders. Backends translate their native errors into the sentinels below.
package store

import (
	"context"
	"errors"
	"time"

	"water-delivery-api/models"
)

var (
	// ErrNotFound replaces gorm.ErrRecordNotFound / mongo.ErrNoDocuments
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is a unique key violation (email, user_id, order_id)
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrInsufficientStock means the conditional stock decrement matched nothing
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Store is handed to every service explicitly; there is no package-level handle.
type Store interface {
	UserStore
	ProductStore
	OrderStore

	// Migrate creates tables/collections and their unique indexes.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

type UserStore interface {
	// CreateUser assigns the next sequential user_id when user.UserID is empty.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
	SetUserActive(ctx context.Context, userID string, active bool) error
	SetUserRole(ctx context.Context, userID string, role models.UserRole) error
}

type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	CountProducts(ctx context.Context) (int64, error)
}

type OrderStore interface {
	// PlaceOrder decrements the product's stock by order.Request.Quantity only
	// if enough stock remains, and inserts the order. Either both happen or
	// neither does.
	PlaceOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	// ListOrders returns orders newest first; an empty customerID lists all.
	ListOrders(ctx context.Context, customerID string) ([]models.Order, error)
	// AppendStatusChange sets the status and pushes entry onto the change log.
	AppendStatusChange(ctx context.Context, orderID string, status models.OrderStatus, entry models.ChangeLogEntry) error
}
