package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-food-ordering/database"
	"go-food-ordering/models"
)

type OrderGuard struct {
	orders      OrderStore
	restaurants RestaurantFinder
	notifier    OrderNotifier
	timeout     time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewOrderGuard(orders OrderStore, restaurants RestaurantFinder, notifier OrderNotifier,
	timeout time.Duration, logger *slog.Logger) *OrderGuard {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &OrderGuard{
		orders:      orders,
		restaurants: restaurants,
		notifier:    notifier,
		timeout:     timeout,
		logger:      logger,
		now:         time.Now,
	}
}

// UpdateStatus lets the operator of the order's restaurant move the order
// forward. Nothing about the order is returned to anyone else.
func (g *OrderGuard) UpdateStatus(ctx context.Context, orderID, target, userID string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	order, err := g.orders.FindByID(ctx, orderID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", orderID, err)
	}

	restaurant, err := g.restaurants.FindByID(ctx, order.Restaurant.Hex())
	if errors.Is(err, database.ErrNotFound) {
		g.logger.Error("order references a missing restaurant",
			slog.String("action", "dangling_restaurant_reference"),
			slog.String("order_id", orderID),
			slog.String("restaurant_id", order.Restaurant.Hex()),
		)
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find restaurant %s: %w", order.Restaurant.Hex(), err)
	}

	if restaurant.User.Hex() != userID {
		return nil, ErrUnauthorized
	}

	next, ok := models.ParseOrderStatus(target)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	// paid is reached only through a verified payment event.
	if next == models.OrderStatusPaid || !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	updatedAt := g.now().UTC()
	updated, err := g.orders.UpdateStatus(ctx, orderID, order.Status, next, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", orderID, err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: order %s changed status concurrently", ErrConflict, orderID)
	}

	order.Status = next
	order.UpdatedAt = updatedAt
	g.notifier.NotifyOrder(models.EventOrderStatus, order)
	return order, nil
}
