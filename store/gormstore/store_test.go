package gormstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"water-delivery-api/models"
	"water-delivery-api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// newTestStore returns a migrated in-memory sqlite store.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, ":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProduct(t *testing.T, s *Store, id string, price float64, stock int) {
	t.Helper()
	require.NoError(t, s.CreateProduct(context.Background(), &models.Product{
		ProductID: id,
		Name:      "Spring Water " + id,
		Price:     price,
		Stock:     stock,
		Weight:    models.Measure{Value: 19, Unit: "kg"},
		Dimensions: models.Dimensions{
			Length: models.Measure{Value: 20, Unit: "cm"},
		},
	}))
}

func newOrder(id, customerID, productID string, qty int, createdAt time.Time) *models.Order {
	return &models.Order{
		OrderID:    id,
		TaskID:     "task_" + id,
		CustomerID: customerID,
		Request:    models.OrderRequest{ProductID: productID, Quantity: qty},
		Status:     models.StatusPlanned,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestCreateUserAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &models.User{Email: "a@example.com", FullName: "A", PasswordHash: "x", Role: models.RoleCustomer}
	b := &models.User{Email: "b@example.com", FullName: "B", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, s.CreateUser(ctx, a))
	require.NoError(t, s.CreateUser(ctx, b))
	assert.Equal(t, "1", a.UserID)
	assert.Equal(t, "2", b.UserID)

	got, err := s.GetUserByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2", got.UserID)
	assert.False(t, got.IsActive)
}

func TestCreateUserKeepsExplicitID(t *testing.T) {
	s := newTestStore(t)
	admin := &models.User{UserID: "0", Email: "admin@example.com", FullName: "Admin", PasswordHash: "x", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, s.CreateUser(context.Background(), admin))

	got, err := s.GetUserByID(context.Background(), "0")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.True(t, got.IsActive)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{Email: "dup@example.com", FullName: "A", PasswordHash: "x"}))

	second := &models.User{Email: "dup@example.com", FullName: "B", PasswordHash: "x"}
	err := s.CreateUser(ctx, second)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.Empty(t, second.UserID)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := &models.User{Email: "u@example.com", FullName: "U", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, u))

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.TouchLastLogin(ctx, u.UserID, at))
	require.NoError(t, s.SetUserActive(ctx, u.UserID, true))

	got, err := s.GetUserByID(ctx, u.UserID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.True(t, at.Equal(got.LastLogin))

	require.NoError(t, s.SetUserRole(ctx, u.UserID, models.RoleAdmin))
	got, err = s.GetUserByID(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	assert.ErrorIs(t, s.SetUserActive(ctx, "missing", true), store.ErrNotFound)
	assert.ErrorIs(t, s.SetUserRole(ctx, "missing", models.RoleAdmin), store.ErrNotFound)
	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProducts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, s, "SU_1", 5, 500)
	seedProduct(t, s, "SU_0", 100, 120)

	n, err := s.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "SU_0", list[0].ProductID)

	p, err := s.GetProduct(ctx, "SU_0")
	require.NoError(t, err)
	assert.Equal(t, 19.0, p.Weight.Value)
	assert.Equal(t, "cm", p.Dimensions.Length.Unit)

	_, err = s.GetProduct(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPlaceOrderDecrementsStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, s, "SU_0", 100, 5)

	require.NoError(t, s.PlaceOrder(ctx, newOrder("o1", "1", "SU_0", 3, time.Now())))

	p, err := s.GetProduct(ctx, "SU_0")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)

	o, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlanned, o.Status)
	assert.NotNil(t, o.ChangeLog)
	assert.Empty(t, o.ChangeLog)
}

func TestPlaceOrderInsufficientStockLeavesNoOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, s, "SU_0", 100, 2)

	err := s.PlaceOrder(ctx, newOrder("o1", "1", "SU_0", 3, time.Now()))
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	_, err = s.GetOrder(ctx, "o1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	p, _ := s.GetProduct(ctx, "SU_0")
	assert.Equal(t, 2, p.Stock)

	err = s.PlaceOrder(ctx, newOrder("o2", "1", "missing", 1, time.Now()))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPlaceOrderDuplicateIDRollsBackDecrement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, s, "SU_0", 100, 10)

	require.NoError(t, s.PlaceOrder(ctx, newOrder("o1", "1", "SU_0", 1, time.Now())))
	err := s.PlaceOrder(ctx, newOrder("o1", "1", "SU_0", 4, time.Now()))
	assert.ErrorIs(t, err, store.ErrDuplicate)

	p, _ := s.GetProduct(ctx, "SU_0")
	assert.Equal(t, 9, p.Stock)
}

func TestPlaceOrderConcurrentNoOversell(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, s, "SU_0", 100, 4)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := []string{"race_a", "race_b"}[i]
			errs[i] = s.PlaceOrder(ctx, newOrder(id, "1", "SU_0", 4, time.Now()))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, store.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)

	p, _ := s.GetProduct(ctx, "SU_0")
	assert.Equal(t, 0, p.Stock)
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, s, "SU_0", 100, 100)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.PlaceOrder(ctx, newOrder("old", "1", "SU_0", 1, base)))
	require.NoError(t, s.PlaceOrder(ctx, newOrder("new", "1", "SU_0", 1, base.Add(time.Hour))))
	require.NoError(t, s.PlaceOrder(ctx, newOrder("other", "2", "SU_0", 1, base.Add(30*time.Minute))))

	mine, err := s.ListOrders(ctx, "1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "new", mine[0].OrderID)
	assert.Equal(t, "old", mine[1].OrderID)

	all, err := s.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "other", "old"}, []string{all[0].OrderID, all[1].OrderID, all[2].OrderID})
}

func TestAppendStatusChange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, s, "SU_0", 100, 10)
	require.NoError(t, s.PlaceOrder(ctx, newOrder("o1", "1", "SU_0", 1, time.Now())))

	for i := 0; i < 2; i++ {
		require.NoError(t, s.AppendStatusChange(ctx, "o1", models.StatusCompleted, models.ChangeLogEntry{
			Field:     models.ChangeLogFieldStatus,
			OldValue:  string(models.StatusPlanned),
			NewValue:  string(models.StatusCompleted),
			ChangedAt: time.Now(),
			ChangedBy: "1",
		}))
	}

	o, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, o.Status)
	require.Len(t, o.ChangeLog, 2)
	assert.Equal(t, o.ChangeLog[0].OldValue, o.ChangeLog[1].OldValue)
	assert.Equal(t, "1", o.ChangeLog[1].ChangedBy)

	err = s.AppendStatusChange(ctx, "missing", models.StatusCompleted, models.ChangeLogEntry{Field: "status", ChangedAt: time.Now()})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
