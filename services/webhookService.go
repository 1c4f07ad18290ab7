package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-food-ordering/database"
	"go-food-ordering/models"
	"go-food-ordering/payment"
)

// Ack tells the webhook handler how a delivery was handled.
type Ack int

const (
	AckProcessed Ack = iota
	AckIgnored
	AckDuplicate
	// AckPaidCancelled means the customer paid for an order that had already
	// been cancelled. The order is left cancelled and needs a refund.
	AckPaidCancelled
)

func (a Ack) String() string {
	switch a {
	case AckProcessed:
		return "processed"
	case AckIgnored:
		return "ignored"
	case AckDuplicate:
		return "duplicate"
	case AckPaidCancelled:
		return "paid_cancelled"
	}
	return fmt.Sprintf("Ack(%d)", int(a))
}

type WebhookService struct {
	verifier payment.WebhookVerifier
	orders   OrderStore
	notifier OrderNotifier
	timeout  time.Duration
	logger   *slog.Logger
}

func NewWebhookService(verifier payment.WebhookVerifier, orders OrderStore, notifier OrderNotifier,
	timeout time.Duration, logger *slog.Logger) *WebhookService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &WebhookService{verifier: verifier, orders: orders, notifier: notifier, timeout: timeout, logger: logger}
}

// HandleEvent verifies a raw webhook delivery and marks the referenced order
// paid. Redelivery of an already applied event is acknowledged without
// touching the order.
func (s *WebhookService) HandleEvent(ctx context.Context, payload []byte, signature string) (Ack, error) {
	event, err := s.verifier.ParseEvent(payload, signature)
	if err != nil {
		return 0, err
	}

	completed, ok := event.(payment.CheckoutCompleted)
	if !ok {
		s.logger.Debug("webhook event ignored",
			slog.String("action", "webhook_ignored"),
			slog.String("event_type", event.EventType()),
		)
		return AckIgnored, nil
	}
	if completed.OrderID == "" {
		s.logger.Warn("checkout session completed without an order id",
			slog.String("action", "webhook_order_missing"),
			slog.String("session_id", completed.SessionID),
		)
		return 0, fmt.Errorf("%w: session %s carries no order id", ErrOrderNotFound, completed.SessionID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	applied, err := s.orders.MarkPaid(ctx, completed.OrderID, completed.AmountTotal)
	if errors.Is(err, database.ErrNotFound) {
		return 0, s.orderNotFound(completed)
	}
	if err != nil {
		return 0, fmt.Errorf("mark order %s paid: %w", completed.OrderID, err)
	}

	order, err := s.orders.FindByID(ctx, completed.OrderID)
	if errors.Is(err, database.ErrNotFound) {
		return 0, s.orderNotFound(completed)
	}
	if err != nil {
		if applied {
			// The write is durable; only the notification is lost.
			s.logger.Warn("order paid but could not be reloaded for notification",
				slog.String("action", "webhook_reload_failed"),
				slog.String("order_id", completed.OrderID),
				slog.String("error", err.Error()),
			)
			return AckProcessed, nil
		}
		return 0, fmt.Errorf("find order %s: %w", completed.OrderID, err)
	}

	if !applied && order.Status == models.OrderStatusCancelled {
		s.logger.Error("payment received for a cancelled order",
			slog.String("action", "paid_cancelled_order"),
			slog.String("order_id", completed.OrderID),
			slog.String("restaurant_id", completed.RestaurantID),
			slog.String("session_id", completed.SessionID),
			slog.Int64("amount_total", completed.AmountTotal),
		)
		return AckPaidCancelled, nil
	}
	if !applied {
		s.logger.Info("duplicate payment event acknowledged",
			slog.String("action", "webhook_duplicate"),
			slog.String("order_id", completed.OrderID),
			slog.String("status", string(order.Status)),
		)
		return AckDuplicate, nil
	}

	s.logger.Info("order paid",
		slog.String("action", "order_paid"),
		slog.String("order_id", completed.OrderID),
		slog.Int64("amount_total", completed.AmountTotal),
	)
	s.notifier.NotifyOrder(models.EventNewOrder, order)
	return AckProcessed, nil
}

func (s *WebhookService) orderNotFound(completed payment.CheckoutCompleted) error {
	s.logger.Warn("payment event references an unknown order",
		slog.String("action", "webhook_order_missing"),
		slog.String("order_id", completed.OrderID),
		slog.String("restaurant_id", completed.RestaurantID),
		slog.String("session_id", completed.SessionID),
	)
	return fmt.Errorf("%w: %s", ErrOrderNotFound, completed.OrderID)
}
