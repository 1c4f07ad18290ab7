package services

import (
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
	"go-food-ordering/models"
	"go-food-ordering/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRestaurants struct {
	byID map[string]*models.Restaurant
}

func newFakeRestaurants(restaurants ...*models.Restaurant) *fakeRestaurants {
	f := &fakeRestaurants{byID: map[string]*models.Restaurant{}}
	for _, r := range restaurants {
		f.byID[r.ID.Hex()] = r
	}
	return f
}

func (f *fakeRestaurants) FindByID(_ context.Context, id string) (*models.Restaurant, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

// fakeOrders mimics the conditional updates of database.OrderStore.
type fakeOrders struct {
	mu         sync.Mutex
	byID       map[string]models.Order
	insertErr  error
	findErr    error
	markErr    error
	paidWrites int
}

func newFakeOrders(orders ...models.Order) *fakeOrders {
	f := &fakeOrders{byID: map[string]models.Order{}}
	for _, o := range orders {
		f.byID[o.ID.Hex()] = o
	}
	return f
}

func (f *fakeOrders) Insert(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.insertErr != nil {
		return f.insertErr
	}
	f.byID[order.ID.Hex()] = *order
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	o, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &o, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, id string, amountTotal int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return false, f.markErr
	}
	o, ok := f.byID[id]
	if !ok || o.Status != models.OrderStatusPlaced {
		return false, nil
	}
	o.Status = models.OrderStatusPaid
	o.TotalAmount = amountTotal
	f.byID[id] = o
	f.paidWrites++
	return true, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id string, from, to models.OrderStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = at
	f.byID[id] = o
	return true, nil
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeOrders) get(id primitive.ObjectID) models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id.Hex()]
}

type fakeGateway struct {
	requests []payment.SessionRequest
	session  *payment.Session
	err      error
	// created runs once the session has been opened.
	created func()
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.requests = append(g.requests, req)
	if g.created != nil {
		g.created()
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.session, nil
}

type notification struct {
	event   string
	orderID string
	status  models.OrderStatus
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) NotifyOrder(event string, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{event: event, orderID: order.ID.Hex(), status: order.Status})
}

const webhookSecret = "whsec_services_test"

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
