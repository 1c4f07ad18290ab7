package services

import (
	"context"
	"time"

	"go-food-ordering/models"
)

type RestaurantFinder interface {
	FindByID(ctx context.Context, id string) (*models.Restaurant, error)
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	MarkPaid(ctx context.Context, id string, amountTotal int64) (bool, error)
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) (bool, error)
}

// OrderNotifier pushes order changes to the restaurant's live dashboards.
type OrderNotifier interface {
	NotifyOrder(event string, order *models.Order)
}

type noopNotifier struct{}

func (noopNotifier) NotifyOrder(string, *models.Order) {}
