package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"water-delivery-api/apperr"
	"water-delivery-api/auth"
	"water-delivery-api/idgen"
	"water-delivery-api/models"
	"water-delivery-api/store/gormstore"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

type fixture struct {
	store   *gormstore.Store
	tokens  *auth.TokenService
	auth    *AuthService
	catalog *CatalogService
	orders  *OrderService
	admin   *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := gormstore.Open(gormstore.DriverSQLite, ":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	return &fixture{
		store:   s,
		tokens:  tokens,
		auth:    NewAuthService(s, tokens, 4, log),
		catalog: NewCatalogService(s),
		orders:  NewOrderService(s, idgen.New(), log),
		admin:   NewAdminService(s, log),
	}
}

// activeCustomer registers a customer, approves it and returns its claims.
func (f *fixture) activeCustomer(t *testing.T, email string) *auth.Claims {
	t.Helper()
	ctx := context.Background()
	lat, lon := 41.38, 2.17
	res, err := f.auth.Register(ctx, RegisterInput{
		FullName:  "Customer " + email,
		Email:     email,
		Password:  "secret123",
		Address:   "Carrer de Mallorca 1",
		Latitude:  &lat,
		Longitude: &lon,
	})
	require.NoError(t, err)
	require.NoError(t, f.admin.SetApproval(ctx, "0", res.User.UserID, true))

	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	return claims
}

func (f *fixture) product(t *testing.T, id string, price float64, stock int) {
	t.Helper()
	require.NoError(t, f.store.CreateProduct(context.Background(), &models.Product{
		ProductID: id,
		Name:      "Water " + id,
		Price:     price,
		Stock:     stock,
		Weight:    models.Measure{Value: 19, Unit: "kg"},
	}))
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: "0", Email: "admin@example.com", Role: models.RoleAdmin}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.auth.Register(ctx, RegisterInput{FullName: "A", Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, first.User.IsActive)
	assert.Equal(t, models.RoleCustomer, first.User.Role)
	assert.NotEmpty(t, first.Token)
	assert.NotEqual(t, "pw", first.User.PasswordHash)

	_, err = f.auth.Register(ctx, RegisterInput{FullName: "B", Email: "a@example.com", Password: "pw2"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	users, err := f.admin.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestLoginThenCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, RegisterInput{FullName: "A", Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)

	loginAt := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	f.auth.now = func() time.Time { return loginAt }

	res, err := f.auth.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	me, err := f.auth.CurrentUser(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", me.Email)
	assert.True(t, loginAt.Equal(me.LastLogin))
}

func TestLoginFailuresShareMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, RegisterInput{FullName: "A", Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)

	_, errUnknown := f.auth.Login(ctx, "nobody@example.com", "pw")
	_, errWrong := f.auth.Login(ctx, "a@example.com", "nope")
	require.ErrorIs(t, errUnknown, apperr.ErrUnauthorized)
	require.ErrorIs(t, errWrong, apperr.ErrUnauthorized)
	assert.Equal(t, apperr.From(errUnknown).Message, apperr.From(errWrong).Message)
}

func TestCurrentUserMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.CurrentUser(context.Background(), "42")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)
	f.product(t, "SU_0", 100, 5)

	list, err := f.catalog.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.catalog.Get(context.Background(), "SU_9")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateOrderExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "SU_0", 100, 5)
	claims := f.activeCustomer(t, "c@example.com")

	order, err := f.orders.Create(ctx, claims, CreateOrderInput{
		ProductID: "SU_0",
		Quantity:  3,
		ReadyTime: "09:00",
		DueTime:   "12:00",
		OrderDate: "2026-06-01",
		Notes:     "leave at the door",
	})
	require.NoError(t, err)
	assert.Equal(t, 300.0, order.TotalPrice)
	assert.Equal(t, 57.0, order.Request.Demand)
	assert.Equal(t, models.StatusPlanned, order.Status)
	assert.Empty(t, order.ChangeLog)
	assert.Equal(t, models.DefaultServiceTime, order.ServiceTime)
	assert.Equal(t, models.DefaultVehicle, order.AssignedVehicle)
	assert.Equal(t, "Carrer de Mallorca 1", order.Location.Address)
	assert.Regexp(t, `^order_\d{8}_[0-9a-z]{10}$`, order.OrderID)
	assert.Equal(t, "task"+order.OrderID[len("order"):], order.TaskID)
	assert.Equal(t, "2026-06-01", order.OrderDate.Format(time.DateOnly))

	p, err := f.catalog.Get(ctx, "SU_0")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "SU_0", 100, 5)
	claims := f.activeCustomer(t, "c@example.com")

	_, err := f.orders.Create(ctx, claims, CreateOrderInput{ProductID: "SU_0", Quantity: 0})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = f.orders.Create(ctx, claims, CreateOrderInput{ProductID: "SU_0", Quantity: 1, OrderDate: "tomorrow"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = f.orders.Create(ctx, claims, CreateOrderInput{ProductID: "SU_9", Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.orders.Create(ctx, claims, CreateOrderInput{ProductID: "SU_0", Quantity: 6})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
}

func TestInactiveUserAlwaysForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "SU_0", 100, 1000)

	res, err := f.auth.Register(ctx, RegisterInput{FullName: "A", Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)

	for _, in := range []CreateOrderInput{
		{ProductID: "SU_0", Quantity: 1},
		{ProductID: "SU_0", Quantity: 5000},
		{ProductID: "missing", Quantity: 1},
	} {
		_, err := f.orders.Create(ctx, claims, in)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	}

	p, _ := f.catalog.Get(ctx, "SU_0")
	assert.Equal(t, 1000, p.Stock)
}

func TestOrdersDrainStockExactly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "SU_1", 5, 10)
	claims := f.activeCustomer(t, "c@example.com")

	for _, q := range []int{3, 3, 4} {
		_, err := f.orders.Create(ctx, claims, CreateOrderInput{ProductID: "SU_1", Quantity: q})
		require.NoError(t, err)
	}
	p, _ := f.catalog.Get(ctx, "SU_1")
	assert.Equal(t, 0, p.Stock)

	_, err := f.orders.Create(ctx, claims, CreateOrderInput{ProductID: "SU_1", Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	mine, err := f.orders.ListMine(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestConcurrentOrdersNoOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "SU_0", 100, 4)
	a := f.activeCustomer(t, "a@example.com")
	b := f.activeCustomer(t, "b@example.com")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, claims := range []*auth.Claims{a, b} {
		wg.Add(1)
		go func(i int, claims *auth.Claims) {
			defer wg.Done()
			_, errs[i] = f.orders.Create(ctx, claims, CreateOrderInput{ProductID: "SU_0", Quantity: 4})
		}(i, claims)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)

	p, _ := f.catalog.Get(ctx, "SU_0")
	assert.Equal(t, 0, p.Stock)
}

func TestTotalPriceIsASnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "SU_0", 100, 5)
	claims := f.activeCustomer(t, "c@example.com")

	order, err := f.orders.Create(ctx, claims, CreateOrderInput{ProductID: "SU_0", Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, f.store.DB().Model(&models.Product{}).
		Where("product_id = ?", "SU_0").Update("price", 250).Error)
	require.NoError(t, f.store.DB().Model(&models.User{}).
		Where("user_id = ?", claims.UserID).Update("address", "Somewhere else").Error)

	got, err := f.orders.Get(ctx, claims, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.TotalPrice)
	assert.Equal(t, "Carrer de Mallorca 1", got.Location.Address)
}

func TestUpdateStatusAppendsEveryTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "SU_0", 100, 5)
	claims := f.activeCustomer(t, "c@example.com")
	order, err := f.orders.Create(ctx, claims, CreateOrderInput{ProductID: "SU_0", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.orders.UpdateStatus(ctx, claims, order.OrderID, models.StatusCancelled))
	require.NoError(t, f.orders.UpdateStatus(ctx, claims, order.OrderID, models.StatusCancelled))

	got, err := f.orders.Get(ctx, claims, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	require.Len(t, got.ChangeLog, 2)
	assert.Equal(t, "planned", got.ChangeLog[0].OldValue)
	assert.Equal(t, "cancelled", got.ChangeLog[1].OldValue)
	assert.Equal(t, got.ChangeLog[1].OldValue, got.ChangeLog[1].NewValue)
	assert.Equal(t, claims.UserID, got.ChangeLog[0].ChangedBy)

	// reopening a cancelled order is allowed
	require.NoError(t, f.orders.UpdateStatus(ctx, adminClaims(), order.OrderID, models.StatusPlanned))
}

func TestUpdateStatusRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "SU_0", 100, 5)
	owner := f.activeCustomer(t, "owner@example.com")
	other := f.activeCustomer(t, "other@example.com")
	order, err := f.orders.Create(ctx, owner, CreateOrderInput{ProductID: "SU_0", Quantity: 1})
	require.NoError(t, err)

	err = f.orders.UpdateStatus(ctx, owner, "order_19700101_missing000", models.StatusCompleted)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = f.orders.UpdateStatus(ctx, other, order.OrderID, models.StatusCompleted)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = f.orders.UpdateStatus(ctx, owner, order.OrderID, models.OrderStatus("shipped"))
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = f.orders.Get(ctx, other, order.OrderID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, f.orders.UpdateStatus(ctx, adminClaims(), order.OrderID, models.StatusInProgress))
}

func TestListAllNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "SU_0", 100, 50)
	a := f.activeCustomer(t, "a@example.com")
	b := f.activeCustomer(t, "b@example.com")

	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	var ids []string
	for i, claims := range []*auth.Claims{a, b, a} {
		at := base.Add(time.Duration(i) * time.Minute)
		f.orders.now = func() time.Time { return at }
		o, err := f.orders.Create(ctx, claims, CreateOrderInput{ProductID: "SU_0", Quantity: 1})
		require.NoError(t, err)
		ids = append(ids, o.OrderID)
	}

	all, err := f.orders.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].OrderID, all[1].OrderID, all[2].OrderID})

	mine, err := f.orders.ListMine(ctx, a.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, ids[2], mine[0].OrderID)
}

func TestAdminSetApprovalAndRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.admin.SetApproval(ctx, "0", "missing", true), apperr.ErrNotFound)
	assert.ErrorIs(t, f.admin.SetRole(ctx, "0", "missing", models.RoleAdmin), apperr.ErrNotFound)

	res, err := f.auth.Register(ctx, RegisterInput{FullName: "A", Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.ErrorIs(t, f.admin.SetRole(ctx, "0", res.User.UserID, models.UserRole("driver")), apperr.ErrBadRequest)
	require.NoError(t, f.admin.SetRole(ctx, "0", res.User.UserID, models.RoleAdmin))

	me, err := f.auth.CurrentUser(ctx, res.User.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, me.Role)
}
