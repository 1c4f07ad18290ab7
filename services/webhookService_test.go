package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go-food-ordering/models"
	"go-food-ordering/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func placedOrder() models.Order {
	return models.Order{
		ID:         primitive.NewObjectID(),
		Restaurant: primitive.NewObjectID(),
		User:       primitive.NewObjectID(),
		Status:     models.OrderStatusPlaced,
	}
}

func newWebhookService(orders *fakeOrders, notifier *fakeNotifier) *WebhookService {
	return NewWebhookService(payment.NewStripeWebhookVerifier(webhookSecret), orders, notifier, time.Second, discardLogger())
}

func TestHandleEventMarksOrderPaid(t *testing.T) {
	order := placedOrder()
	orders := newFakeOrders(order)
	notifier := &fakeNotifier{}
	service := newWebhookService(orders, notifier)

	payload := completedEvent(order.ID.Hex(), order.Restaurant.Hex(), 2500)
	ack, err := service.HandleEvent(context.Background(), payload, signedHeader(payload, webhookSecret))
	require.NoError(t, err)
	assert.Equal(t, AckProcessed, ack)

	stored := orders.get(order.ID)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
	assert.Equal(t, int64(2500), stored.TotalAmount)
	assert.Equal(t, []notification{{event: models.EventNewOrder, orderID: order.ID.Hex(), status: models.OrderStatusPaid}}, notifier.sent)
}

func TestHandleEventRedeliveryIsIdempotent(t *testing.T) {
	order := placedOrder()
	orders := newFakeOrders(order)
	notifier := &fakeNotifier{}
	service := newWebhookService(orders, notifier)
	payload := completedEvent(order.ID.Hex(), order.Restaurant.Hex(), 2500)

	ack, err := service.HandleEvent(context.Background(), payload, signedHeader(payload, webhookSecret))
	require.NoError(t, err)
	assert.Equal(t, AckProcessed, ack)
	first := orders.get(order.ID)

	ack, err = service.HandleEvent(context.Background(), payload, signedHeader(payload, webhookSecret))
	require.NoError(t, err)
	assert.Equal(t, AckDuplicate, ack)

	assert.Equal(t, 1, orders.paidWrites)
	assert.Equal(t, first, orders.get(order.ID))
	assert.Len(t, notifier.sent, 1)
}

func TestHandleEventPaymentForCancelledOrder(t *testing.T) {
	order := placedOrder()
	order.Status = models.OrderStatusCancelled
	orders := newFakeOrders(order)
	notifier := &fakeNotifier{}
	var logs bytes.Buffer
	service := NewWebhookService(payment.NewStripeWebhookVerifier(webhookSecret), orders, notifier, time.Second,
		slog.New(slog.NewJSONHandler(&logs, nil)))

	payload := completedEvent(order.ID.Hex(), order.Restaurant.Hex(), 2500)
	ack, err := service.HandleEvent(context.Background(), payload, signedHeader(payload, webhookSecret))
	require.NoError(t, err)
	assert.Equal(t, AckPaidCancelled, ack)
	assert.Equal(t, "paid_cancelled", ack.String())

	assert.Equal(t, models.OrderStatusCancelled, orders.get(order.ID).Status)
	assert.Equal(t, 0, orders.paidWrites)
	assert.Empty(t, notifier.sent)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "paid_cancelled_order", entry["action"])
	assert.Equal(t, order.ID.Hex(), entry["order_id"])
	assert.Equal(t, "cs_1", entry["session_id"])
	assert.Equal(t, float64(2500), entry["amount_total"])
}

func TestHandleEventConcurrentDuplicatesApplyOnce(t *testing.T) {
	order := placedOrder()
	orders := newFakeOrders(order)
	service := newWebhookService(orders, &fakeNotifier{})
	payload := completedEvent(order.ID.Hex(), order.Restaurant.Hex(), 2500)
	header := signedHeader(payload, webhookSecret)

	var wg sync.WaitGroup
	acks := make([]Ack, 8)
	for i := range acks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ack, err := service.HandleEvent(context.Background(), payload, header)
			assert.NoError(t, err)
			acks[i] = ack
		}(i)
	}
	wg.Wait()

	processed := 0
	for _, ack := range acks {
		if ack == AckProcessed {
			processed++
		}
	}
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, orders.paidWrites)
}

func TestHandleEventRejectsForgedSignature(t *testing.T) {
	order := placedOrder()
	orders := newFakeOrders(order)
	service := newWebhookService(orders, &fakeNotifier{})
	payload := completedEvent(order.ID.Hex(), order.Restaurant.Hex(), 2500)

	_, err := service.HandleEvent(context.Background(), payload, signedHeader(payload, "whsec_forged"))
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	assert.Equal(t, models.OrderStatusPlaced, orders.get(order.ID).Status)
	assert.Equal(t, 0, orders.paidWrites)
}

func TestHandleEventIgnoresOtherEventKinds(t *testing.T) {
	orders := newFakeOrders(placedOrder())
	service := newWebhookService(orders, &fakeNotifier{})
	payload := []byte(`{"id":"evt_9","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge"}}}`)

	ack, err := service.HandleEvent(context.Background(), payload, signedHeader(payload, webhookSecret))
	require.NoError(t, err)
	assert.Equal(t, AckIgnored, ack)
	assert.Equal(t, 0, orders.paidWrites)
}

func TestHandleEventUnknownOrder(t *testing.T) {
	orders := newFakeOrders()
	service := newWebhookService(orders, &fakeNotifier{})

	for name, orderID := range map[string]string{
		"unknown id":   primitive.NewObjectID().Hex(),
		"missing id":   "",
		"malformed id": "not-an-object-id",
	} {
		t.Run(name, func(t *testing.T) {
			payload := completedEvent(orderID, "r1", 2500)
			_, err := service.HandleEvent(context.Background(), payload, signedHeader(payload, webhookSecret))
			assert.ErrorIs(t, err, ErrOrderNotFound)
		})
	}
}

func TestHandleEventStorageFailureIsRetryable(t *testing.T) {
	order := placedOrder()
	orders := newFakeOrders(order)
	orders.markErr = errors.New("connection reset")
	service := newWebhookService(orders, &fakeNotifier{})

	payload := completedEvent(order.ID.Hex(), order.Restaurant.Hex(), 2500)
	_, err := service.HandleEvent(context.Background(), payload, signedHeader(payload, webhookSecret))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrOrderNotFound)
	assert.NotErrorIs(t, err, payment.ErrInvalidSignature)
	assert.Equal(t, models.OrderStatusPlaced, orders.get(order.ID).Status)
}

func TestCheckoutThenWebhookScenario(t *testing.T) {
	f := newCheckoutFixture()
	notifier := &fakeNotifier{}
	webhooks := newWebhookService(f.orders, notifier)

	_, err := f.service.CreateCheckoutSession(context.Background(), f.userID, f.request("2"))
	require.NoError(t, err)
	orderID := f.gateway.requests[0].OrderID

	payload := completedEvent(orderID, f.restaurant.ID.Hex(), 2500)
	ack, err := webhooks.HandleEvent(context.Background(), payload, signedHeader(payload, webhookSecret))
	require.NoError(t, err)
	assert.Equal(t, AckProcessed, ack)

	oid, _ := primitive.ObjectIDFromHex(orderID)
	order := f.orders.get(oid)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, int64(2500), order.TotalAmount)

	ack, err = webhooks.HandleEvent(context.Background(), payload, signedHeader(payload, webhookSecret))
	require.NoError(t, err)
	assert.Equal(t, AckDuplicate, ack)
	assert.Equal(t, order, f.orders.get(oid))
}
