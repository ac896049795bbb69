package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"water-delivery-api/apperr"
	"water-delivery-api/auth"
	"water-delivery-api/idgen"
	"water-delivery-api/metrics"
	"water-delivery-api/models"
	"water-delivery-api/statemachine"
	"water-delivery-api/store"

	"github.com/sirupsen/logrus"
)

// maxIDAttempts bounds regeneration when a generated order_id collides.
const maxIDAttempts = 3

type CreateOrderInput struct {
	ProductID string
	Quantity  int
	ReadyTime string
	DueTime   string
	OrderDate string // optional, YYYY-MM-DD or RFC3339
	Notes     string
}

type OrderService struct {
	store store.Store
	ids   *idgen.Generator
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewOrderService(s store.Store, ids *idgen.Generator, log logrus.FieldLogger) *OrderService {
	return &OrderService{store: s, ids: ids, log: log, now: time.Now}
}

// Create places an order for the calling customer. Checks run in a fixed
// order and the first failure wins: account active, product exists, stock
// sufficient. The stock check is repeated atomically by the store, so a
// request that loses a race still gets InsufficientStock.
func (s *OrderService) Create(ctx context.Context, claims *auth.Claims, in CreateOrderInput) (*models.Order, error) {
	if in.Quantity < 1 {
		return nil, apperr.BadRequest("Quantity must be at least 1")
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	if !user.IsActive {
		metrics.OrderRejections.WithLabelValues(metrics.ReasonInactiveAccount).Inc()
		return nil, apperr.Forbidden("Account is not active. Please wait for admin approval.")
	}

	product, err := s.store.GetProduct(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.OrderRejections.WithLabelValues(metrics.ReasonProductNotFound).Inc()
			return nil, apperr.NotFound("Product not found")
		}
		return nil, apperr.Internal("Failed to load product", err)
	}
	if product.Stock < in.Quantity {
		metrics.OrderRejections.WithLabelValues(metrics.ReasonInsufficientStock).Inc()
		return nil, apperr.InsufficientStock("Insufficient stock")
	}

	now := s.now()
	orderDate, err := parseOrderDate(in.OrderDate, now)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerID: user.UserID,
		Request: models.OrderRequest{
			ProductID:   product.ProductID,
			ProductName: product.Name,
			Notes:       in.Notes,
			Quantity:    in.Quantity,
			Demand:      product.Weight.Value * float64(in.Quantity),
		},
		Location: models.Location{
			Address:   user.Address,
			Latitude:  copyFloat(user.Latitude),
			Longitude: copyFloat(user.Longitude),
		},
		ReadyTime:       in.ReadyTime,
		DueTime:         in.DueTime,
		OrderDate:       orderDate,
		ServiceTime:     models.DefaultServiceTime,
		TotalPrice:      product.Price * float64(in.Quantity),
		Status:          models.StatusPlanned,
		ChangeLog:       []models.ChangeLogEntry{},
		PriorityLevel:   models.DefaultPriorityLevel,
		AssignedVehicle: models.DefaultVehicle,
		AssignedRouteID: models.DefaultRouteID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.place(ctx, order, now); err != nil {
		switch {
		case errors.Is(err, store.ErrInsufficientStock):
			metrics.OrderRejections.WithLabelValues(metrics.ReasonInsufficientStock).Inc()
			return nil, apperr.InsufficientStock("Insufficient stock")
		case errors.Is(err, store.ErrNotFound):
			metrics.OrderRejections.WithLabelValues(metrics.ReasonProductNotFound).Inc()
			return nil, apperr.NotFound("Product not found")
		default:
			return nil, apperr.Internal("Failed to create order", err)
		}
	}

	metrics.OrdersCreated.Inc()
	s.log.WithFields(logrus.Fields{
		"order_id":    order.OrderID,
		"customer_id": order.CustomerID,
		"product_id":  order.Request.ProductID,
		"quantity":    order.Request.Quantity,
		"total_price": order.TotalPrice,
	}).Info("order placed")
	return order, nil
}

// place assigns fresh ids and retries while the store reports an id collision.
func (s *OrderService) place(ctx context.Context, order *models.Order, now time.Time) error {
	var err error
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		ids := s.ids.Next(now)
		order.OrderID, order.TaskID = ids.OrderID, ids.TaskID

		err = s.store.PlaceOrder(ctx, order)
		if !errors.Is(err, store.ErrDuplicate) {
			return err
		}
		s.log.WithField("order_id", order.OrderID).Warn("order id collision, regenerating")
	}
	return fmt.Errorf("order id still colliding after %d attempts: %w", maxIDAttempts, err)
}

// UpdateStatus sets a new status and appends a change log entry. Any known
// status may follow any other; repeated identical updates are all recorded.
func (s *OrderService) UpdateStatus(ctx context.Context, claims *auth.Claims, orderID string, status models.OrderStatus) error {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	if err := authorizeOrderAccess(claims, order); err != nil {
		return err
	}
	if err := statemachine.CanTransition(order.Status, status); err != nil {
		return apperr.BadRequest(err.Error())
	}

	entry := models.ChangeLogEntry{
		Field:     models.ChangeLogFieldStatus,
		OldValue:  string(order.Status),
		NewValue:  string(status),
		ChangedAt: s.now(),
		ChangedBy: claims.UserID,
	}
	if err := s.store.AppendStatusChange(ctx, orderID, status, entry); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Order not found")
		}
		return apperr.Internal("Failed to update order", err)
	}

	metrics.StatusChanges.WithLabelValues(string(status)).Inc()
	s.log.WithFields(logrus.Fields{
		"order_id":   orderID,
		"old_status": order.Status,
		"new_status": status,
		"changed_by": claims.UserID,
	}).Info("order status changed")
	return nil
}

// Get returns a single order to its owner or an admin.
func (s *OrderService) Get(ctx context.Context, claims *auth.Claims, orderID string) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOrderAccess(claims, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, customerID string) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx, customerID)
	if err != nil {
		return nil, apperr.Internal("Failed to load orders", err)
	}
	return orders, nil
}

// ListAll is admin-only; the role check happens before this is called.
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx, "")
	if err != nil {
		return nil, apperr.Internal("Failed to load orders", err)
	}
	return orders, nil
}

func (s *OrderService) load(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, apperr.Internal("Failed to load order", err)
	}
	return order, nil
}

func authorizeOrderAccess(claims *auth.Claims, order *models.Order) error {
	if claims.IsAdmin() || claims.UserID == order.CustomerID {
		return nil
	}
	return apperr.Forbidden("Access denied")
}

func parseOrderDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.BadRequest("Invalid order_date, expected YYYY-MM-DD or RFC3339")
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
