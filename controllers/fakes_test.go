package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go-food-ordering/database"
	"go-food-ordering/middleware"
	"go-food-ordering/models"
	"go-food-ordering/payment"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withIdentity stands in for the authentication middleware.
func withIdentity(auth0ID, userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.Auth0IDKey, auth0ID)
		if userID != "" {
			c.Set(middleware.UserIDKey, userID)
		}
		c.Next()
	}
}

type memRestaurants struct {
	mu         sync.Mutex
	byID       map[string]*models.Restaurant
	lastSearch models.RestaurantSearch
}

func newMemRestaurants(restaurants ...*models.Restaurant) *memRestaurants {
	m := &memRestaurants{byID: map[string]*models.Restaurant{}}
	for _, r := range restaurants {
		m.byID[r.ID.Hex()] = r
	}
	return m
}

func (m *memRestaurants) FindByID(_ context.Context, id string) (*models.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memRestaurants) FindByOwner(_ context.Context, userID string) (*models.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.User.Hex() == userID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memRestaurants) Create(_ context.Context, restaurant *models.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.User == restaurant.User {
			return database.ErrDuplicate
		}
	}
	copied := *restaurant
	m.byID[restaurant.ID.Hex()] = &copied
	return nil
}

func (m *memRestaurants) Update(_ context.Context, restaurant *models.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[restaurant.ID.Hex()]
	if !ok || existing.User != restaurant.User {
		return database.ErrNotFound
	}
	copied := *restaurant
	m.byID[restaurant.ID.Hex()] = &copied
	return nil
}

func (m *memRestaurants) Search(_ context.Context, search models.RestaurantSearch) (*models.RestaurantSearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSearch = search
	return &models.RestaurantSearchResult{
		Data:       []models.Restaurant{},
		Pagination: models.Pagination{Page: search.Page},
	}, nil
}

type memOrders struct {
	mu   sync.Mutex
	byID map[string]models.Order
}

func newMemOrders(orders ...models.Order) *memOrders {
	m := &memOrders{byID: map[string]models.Order{}}
	for _, o := range orders {
		m.byID[o.ID.Hex()] = o
	}
	return m
}

func (m *memOrders) Insert(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[order.ID.Hex()] = *order
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &o, nil
}

func (m *memOrders) MarkPaid(_ context.Context, id string, amountTotal int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok || o.Status != models.OrderStatusPlaced {
		return false, nil
	}
	o.Status = models.OrderStatusPaid
	o.TotalAmount = amountTotal
	m.byID[id] = o
	return true, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id string, from, to models.OrderStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = at
	m.byID[id] = o
	return true, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID string) ([]models.OrderDetails, error) {
	return m.list(func(o models.Order) bool { return o.User.Hex() == userID }), nil
}

func (m *memOrders) ListByRestaurant(_ context.Context, restaurantID string) ([]models.OrderDetails, error) {
	return m.list(func(o models.Order) bool { return o.Restaurant.Hex() == restaurantID }), nil
}

func (m *memOrders) list(keep func(models.Order) bool) []models.OrderDetails {
	m.mu.Lock()
	defer m.mu.Unlock()
	details := []models.OrderDetails{}
	for _, o := range m.byID {
		if keep(o) {
			details = append(details, models.OrderDetails{Order: o})
		}
	}
	return details
}

func (m *memOrders) get(id string) models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

type memUsers struct {
	mu        sync.Mutex
	byAuth0ID map[string]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{byAuth0ID: map[string]*models.User{}}
	for _, u := range users {
		m.byAuth0ID[u.Auth0ID] = u
	}
	return m
}

func (m *memUsers) FindByAuth0ID(_ context.Context, auth0ID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byAuth0ID[auth0ID]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byAuth0ID[user.Auth0ID]; ok {
		return database.ErrDuplicate
	}
	copied := *user
	m.byAuth0ID[user.Auth0ID] = &copied
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byAuth0ID[user.Auth0ID]; !ok {
		return database.ErrNotFound
	}
	copied := *user
	m.byAuth0ID[user.Auth0ID] = &copied
	return nil
}

type stubGateway struct {
	session *payment.Session
	err     error
}

func (g *stubGateway) CreateCheckoutSession(context.Context, payment.SessionRequest) (*payment.Session, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.session, nil
}

type stubUploader struct {
	url      string
	err      error
	received []byte
}

func (u *stubUploader) Upload(_ context.Context, file io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}
	u.received = buf.Bytes()
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

const webhookSecret = "whsec_controllers_test"

func signedHeader(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.", ts)))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func completedEvent(orderID, restaurantID string, amount int64) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":"checkout.session.completed",`+
		`"data":{"object":{"id":"cs_1","object":"checkout.session","amount_total":%d,`+
		`"metadata":{"orderId":%q,"restaurantId":%q}}}}`, amount, orderID, restaurantID))
}
