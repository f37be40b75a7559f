package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/luxehome-backend/internal/cart"
	"github.com/angelmondragon/luxehome-backend/internal/notifications"
	"github.com/angelmondragon/luxehome-backend/internal/orders"
	product "github.com/angelmondragon/luxehome-backend/internal/products"
	"github.com/angelmondragon/luxehome-backend/internal/users"
	"github.com/angelmondragon/luxehome-backend/pkg/config"
	"github.com/angelmondragon/luxehome-backend/pkg/db/dbtest"
	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/outbox"
)

type memoryCarts struct {
	mu    sync.Mutex
	carts map[string]cart.Cart
}

func newMemoryCarts() *memoryCarts {
	return &memoryCarts{carts: map[string]cart.Cart{}}
}

func (m *memoryCarts) Load(_ context.Context, sessionID string) (cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.carts[sessionID]
	copied := cart.Cart{Lines: make(map[uuid.UUID]cart.Line, len(stored.Lines))}
	for id, line := range stored.Lines {
		copied.Lines[id] = line
	}
	return copied, nil
}

func (m *memoryCarts) Save(_ context.Context, sessionID string, c cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = c
	return nil
}

func (m *memoryCarts) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

type recordingNotifier struct {
	calls atomic.Int32
}

func (n *recordingNotifier) NotifyOrderPlaced(context.Context, *models.Order) bool {
	n.calls.Add(1)
	return true
}

type memorySessions struct {
	mu     sync.Mutex
	placed map[string][]string
}

func (m *memorySessions) AddSessionOrder(_ context.Context, sessionID, orderID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.placed == nil {
		m.placed = map[string][]string{}
	}
	m.placed[sessionID] = append(m.placed[sessionID], orderID)
	return nil
}

type fixture struct {
	db       *gorm.DB
	cart     *cart.Service
	svc      Service
	sessions *memorySessions
	notifier *recordingNotifier
	category *models.Category
}

func newFixture(t *testing.T, notifier notifications.OrderNotifier) *fixture {
	t.Helper()
	client, db := dbtest.Client(t, "checkout")
	products := product.NewRepository(db)
	cartSvc, err := cart.NewService(cart.ServiceParams{Store: newMemoryCarts(), Products: products})
	require.NoError(t, err)

	f := &fixture{db: db, cart: cartSvc, sessions: &memorySessions{}, notifier: &recordingNotifier{}}
	if notifier == nil {
		notifier = f.notifier
	}
	f.svc, err = NewService(ServiceParams{
		Tx:         client,
		Cart:       cartSvc,
		Products:   products,
		Orders:     orders.NewRepository(db),
		Users:      users.NewRepository(db),
		Sessions:   f.sessions,
		Outbox:     outbox.NewService(outbox.NewRepository(db), nil),
		Notifier:   notifier,
		SessionTTL: time.Hour,
	})
	require.NoError(t, err)

	f.category = &models.Category{Name: "Living Room", Slug: "living-room"}
	require.NoError(t, db.Create(f.category).Error)
	return f
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:       name,
		Slug:       "p-" + uuid.NewString()[:8],
		CategoryID: f.category.ID,
		Price:      decimal.RequireFromString(price),
		Material:   enums.MaterialWood,
		Color:      enums.ColorNatural,
		Stock:      stock,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) add(t *testing.T, sessionID string, p *models.Product, qty int) {
	t.Helper()
	_, err := f.cart.Add(context.Background(), sessionID, p.ID, qty)
	require.NoError(t, err)
}

func (f *fixture) stockOf(t *testing.T, p *models.Product) int {
	t.Helper()
	var fresh models.Product
	require.NoError(t, f.db.First(&fresh, "id = ?", p.ID).Error)
	return fresh.Stock
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func validCustomer() Customer {
	return Customer{
		FullName: "  Ines Duarte ",
		Phone:    "+351 912 000 111",
		Address:  "Rua do Carmo 7",
		City:     "Lisbon",
		Note:     "call before delivery",
	}
}

func TestPlaceOrderCreatesOrderAndDecrementsStock(t *testing.T) {
	f := newFixture(t, nil)
	sofa := f.product(t, "Velvet Sofa", "449.99", 5)
	chair := f.product(t, "Oak Chair", "120.50", 4)
	f.add(t, "sess-a", sofa, 3)
	f.add(t, "sess-a", chair, 2)

	// Catalog price changes after adding do not reach the order.
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", sofa.ID).Update("price", "499.00").Error)

	userID := uuid.New()
	res, err := f.svc.PlaceOrder(context.Background(), Input{SessionID: "sess-a", UserID: &userID, Customer: validCustomer()})
	require.NoError(t, err)
	assert.Equal(t, "1590.97", res.Total)
	assert.True(t, res.Notified)

	var order models.Order
	require.NoError(t, f.db.Preload("Items").First(&order, "id = ?", res.OrderID).Error)
	assert.Equal(t, "Ines Duarte", order.FullName)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("1590.97")))
	assert.True(t, order.TotalPrice.Equal(order.ItemsTotal()))
	require.Len(t, order.Items, 2)
	for _, item := range order.Items {
		if item.ProductName == "Velvet Sofa" {
			assert.True(t, item.Price.Equal(decimal.RequireFromString("449.99")))
			assert.Equal(t, "1349.97", item.Subtotal().StringFixed(2))
		}
	}

	assert.EqualValues(t, 1, f.count(t, &models.Order{}))
	assert.EqualValues(t, 2, f.count(t, &models.OrderItem{}))
	assert.Equal(t, 2, f.stockOf(t, sofa))
	assert.Equal(t, 2, f.stockOf(t, chair))

	n, err := f.cart.Count(context.Background(), "sess-a")
	require.NoError(t, err)
	assert.Zero(t, n)

	var events []models.OutboxEvent
	require.NoError(t, f.db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventOrderPlaced, events[0].EventType)
	assert.Equal(t, res.OrderID, events[0].AggregateID)

	assert.Equal(t, []string{res.OrderID.String()}, f.sessions.placed["sess-a"])
	assert.EqualValues(t, 1, f.notifier.calls.Load())
}

func TestPlaceOrderRejectsMissingFields(t *testing.T) {
	f := newFixture(t, nil)
	sofa := f.product(t, "Velvet Sofa", "449.99", 5)
	f.add(t, "sess-b", sofa, 2)

	customer := validCustomer()
	customer.Phone = "   "
	_, err := f.svc.PlaceOrder(context.Background(), Input{SessionID: "sess-b", Customer: customer})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	details, ok := pkgerrors.As(err).Details().(InvalidCheckout)
	require.True(t, ok)
	assert.Equal(t, "is required", details.Fields["phone"])
	require.NotNil(t, details.Review)
	require.Len(t, details.Review.Items, 1)
	assert.Equal(t, sofa.ID, details.Review.Items[0].Product.ID)
	assert.Equal(t, "899.98", details.Review.Total)
	assert.Equal(t, 2, details.Review.Count)
	assert.Equal(t, "Ines Duarte", details.Review.Customer.FullName)

	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Equal(t, 5, f.stockOf(t, sofa))
	n, err := f.cart.Count(context.Background(), "sess-b")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, f.notifier.calls.Load())
}

func TestPlaceOrderEmptyCartWinsOverMissingFields(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.PlaceOrder(context.Background(), Input{SessionID: "sess-empty", Customer: Customer{}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart), "got %v", err)
	assert.Zero(t, f.count(t, &models.Order{}))
}

func TestPlaceOrderWithOnlyDanglingLinesIsEmptyCart(t *testing.T) {
	f := newFixture(t, nil)
	lamp := f.product(t, "Brass Lamp", "89.00", 3)
	f.add(t, "sess-c", lamp, 1)
	require.NoError(t, f.db.Delete(&models.Product{}, "id = ?", lamp.ID).Error)

	_, err := f.svc.Review(context.Background(), "sess-c", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart))

	_, err = f.svc.PlaceOrder(context.Background(), Input{SessionID: "sess-c", Customer: validCustomer()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart), "got %v", err)
	assert.Zero(t, f.count(t, &models.Order{}))

	_, err = f.svc.PlaceOrder(context.Background(), Input{SessionID: "sess-none", Customer: validCustomer()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart))
}

func TestPlaceOrderSkipsDanglingLines(t *testing.T) {
	f := newFixture(t, nil)
	lamp := f.product(t, "Brass Lamp", "89.00", 3)
	rug := f.product(t, "Wool Rug", "210.00", 2)
	f.add(t, "sess-d", lamp, 1)
	f.add(t, "sess-d", rug, 1)
	require.NoError(t, f.db.Delete(&models.Product{}, "id = ?", lamp.ID).Error)

	res, err := f.svc.PlaceOrder(context.Background(), Input{SessionID: "sess-d", Customer: validCustomer()})
	require.NoError(t, err)
	assert.Equal(t, "210.00", res.Total)
	assert.EqualValues(t, 1, f.count(t, &models.OrderItem{}))
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t, nil)
	sofa := f.product(t, "Velvet Sofa", "449.99", 5)
	chair := f.product(t, "Oak Chair", "120.50", 2)
	f.add(t, "sess-e", sofa, 1)
	f.add(t, "sess-e", chair, 2)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", chair.ID).Update("stock", 1).Error)

	_, err := f.svc.PlaceOrder(context.Background(), Input{SessionID: "sess-e", Customer: validCustomer()})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)
	assert.True(t, pkgerrors.Retryable(err))

	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Zero(t, f.count(t, &models.OrderItem{}))
	assert.Zero(t, f.count(t, &models.OutboxEvent{}))
	assert.Equal(t, 5, f.stockOf(t, sofa))
	assert.Equal(t, 1, f.stockOf(t, chair))
	n, err := f.cart.Count(context.Background(), "sess-e")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestConcurrentCheckoutDoesNotOversell(t *testing.T) {
	f := newFixture(t, nil)
	armchair := f.product(t, "Last Armchair", "799.00", 1)
	f.add(t, "sess-1", armchair, 1)
	f.add(t, "sess-2", armchair, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, session := range []string{"sess-1", "sess-2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.PlaceOrder(context.Background(), Input{SessionID: session, Customer: validCustomer()})
		}()
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) && pkgerrors.Retryable(err):
			conflicted++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Equal(t, 0, f.stockOf(t, armchair))
	assert.EqualValues(t, 1, f.count(t, &models.Order{}))
}

func TestPlaceOrderSurvivesStalledNotification(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	notifier := notifications.NewTelegramNotifier(config.TelegramConfig{
		BotToken:   "123:abc",
		ChatID:     "-1",
		APIBaseURL: srv.URL,
		Timeout:    50 * time.Millisecond,
	}, nil, nil)
	f := newFixture(t, notifier)
	table := f.product(t, "Walnut Table", "1200.00", 2)
	f.add(t, "sess-f", table, 1)

	res, err := f.svc.PlaceOrder(context.Background(), Input{SessionID: "sess-f", Customer: validCustomer()})
	require.NoError(t, err)
	assert.False(t, res.Notified)

	var order models.Order
	require.NoError(t, f.db.First(&order, "id = ?", res.OrderID).Error)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, 1, f.stockOf(t, table))
}

func TestReviewPrefillsProfile(t *testing.T) {
	f := newFixture(t, nil)
	sofa := f.product(t, "Velvet Sofa", "449.99", 5)
	f.add(t, "sess-g", sofa, 3)

	user := &models.User{
		Email:        "ines@example.com",
		PasswordHash: "x",
		FirstName:    "Ines",
		LastName:     "Duarte",
		Phone:        "+351 912 000 111",
		Address:      "Rua do Carmo 7",
		City:         "Lisbon",
	}
	require.NoError(t, f.db.Create(user).Error)

	review, err := f.svc.Review(context.Background(), "sess-g", &user.ID)
	require.NoError(t, err)
	assert.Equal(t, "1349.97", review.Total)
	assert.Equal(t, 3, review.Count)
	require.Len(t, review.Items, 1)
	assert.Equal(t, "449.99", review.Items[0].UnitPrice)
	assert.Equal(t, Customer{FullName: "Ines Duarte", Phone: user.Phone, Address: user.Address, City: "Lisbon"}, review.Customer)

	missing := uuid.New()
	review, err = f.svc.Review(context.Background(), "sess-g", &missing)
	require.NoError(t, err)
	assert.Empty(t, review.Customer.FullName)
}

func TestCustomerValidate(t *testing.T) {
	require.NoError(t, validCustomer().Validate())

	err := Customer{FullName: " ", Address: "x"}.Validate()
	details := pkgerrors.As(err).Details().(map[string]string)
	assert.Len(t, details, 3)
	assert.Contains(t, details, "full_name")
	assert.Contains(t, details, "phone")
	assert.Contains(t, details, "city")
}
