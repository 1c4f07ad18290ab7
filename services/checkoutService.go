package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-food-ordering/database"
	"go-food-ordering/models"
	"go-food-ordering/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultCallTimeout = 15 * time.Second

type CheckoutService struct {
	restaurants RestaurantFinder
	orders      OrderStore
	gateway     payment.Gateway
	frontendURL string
	timeout     time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewCheckoutService(restaurants RestaurantFinder, orders OrderStore, gateway payment.Gateway,
	frontendURL string, timeout time.Duration, logger *slog.Logger) *CheckoutService {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &CheckoutService{
		restaurants: restaurants,
		orders:      orders,
		gateway:     gateway,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		timeout:     timeout,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateCheckoutSession prices the cart, opens a hosted payment session and
// only then stores the placed order. It returns the payment page URL.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID string, req models.CheckoutSessionRequest) (string, error) {
	restaurant, err := s.findRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return "", err
	}

	lineItems, err := PriceCart(req.CartItems, restaurant.MenuItems)
	if err != nil {
		return "", err
	}

	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", fmt.Errorf("%w: malformed user id", ErrUnauthorized)
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:              primitive.NewObjectID(),
		Restaurant:      restaurant.ID,
		User:            user,
		CartItems:       req.CartItems,
		DeliveryDetails: req.DeliveryDetails,
		Status:          models.OrderStatusPlaced,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	restaurantID := restaurant.ID.Hex()

	sessionCtx, cancel := context.WithTimeout(ctx, s.timeout)
	session, err := s.gateway.CreateCheckoutSession(sessionCtx, payment.SessionRequest{
		LineItems:    toGatewayLineItems(lineItems),
		DeliveryFee:  restaurant.DeliveryPrice,
		OrderID:      order.ID.Hex(),
		RestaurantID: restaurantID,
		SuccessURL:   s.frontendURL + "/order-status?success=true",
		CancelURL:    s.frontendURL + "/detail/" + restaurantID + "?cancelled=true",
	})
	cancel()
	if err != nil {
		return "", newPaymentGatewayError(err)
	}
	if session == nil || session.URL == "" {
		return "", &PaymentGatewayError{Message: "Error creating checkout session"}
	}
	order.CheckoutSessionID = session.ID

	// The session exists from here on, so the order is stored even if the
	// caller has gone away.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.orders.Insert(storeCtx, order); err != nil {
		// The customer can now pay for an order we never stored; only an
		// operator can reconcile this.
		s.logger.Error("checkout session created but order was not persisted",
			slog.String("action", "orphaned_checkout_session"),
			slog.String("order_id", order.ID.Hex()),
			slog.String("session_id", session.ID),
			slog.String("restaurant_id", restaurantID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("persist order %s: %w", order.ID.Hex(), err)
	}

	s.logger.Info("checkout session created",
		slog.String("action", "checkout_session_created"),
		slog.String("order_id", order.ID.Hex()),
		slog.String("session_id", session.ID),
	)
	return session.URL, nil
}

func (s *CheckoutService) findRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	restaurant, err := s.restaurants.FindByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find restaurant %s: %w", id, err)
	}
	return restaurant, nil
}
