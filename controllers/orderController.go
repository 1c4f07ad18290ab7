package controllers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go-food-ordering/helpers"
	"go-food-ordering/middleware"
	"go-food-ordering/models"
	"go-food-ordering/payment"
	"go-food-ordering/services"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody is the largest webhook delivery accepted.
const maxWebhookBody = 1 << 16

type OrderLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.OrderDetails, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]models.OrderDetails, error)
}

type OrderController struct {
	checkout    *services.CheckoutService
	webhooks    *services.WebhookService
	guard       *services.OrderGuard
	orders      OrderLister
	restaurants RestaurantRepository
	logger      *slog.Logger
}

func NewOrderController(checkout *services.CheckoutService, webhooks *services.WebhookService, guard *services.OrderGuard,
	orders OrderLister, restaurants RestaurantRepository, logger *slog.Logger) *OrderController {
	return &OrderController{
		checkout:    checkout,
		webhooks:    webhooks,
		guard:       guard,
		orders:      orders,
		restaurants: restaurants,
		logger:      logger,
	}
}

func (oc *OrderController) CreateCheckoutSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CheckoutSessionRequest
		if !helpers.BindAndValidate(c, &req) {
			return
		}

		url, err := oc.checkout.CreateCheckoutSession(c.Request.Context(), c.GetString(middleware.UserIDKey), req)
		if err != nil {
			helpers.RespondError(c, oc.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

// StripeWebhook consumes the body as raw bytes; the signature covers exactly
// those bytes.
func (oc *OrderController) StripeWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Webhook error"})
			return
		}
		if len(payload) > maxWebhookBody {
			oc.logger.Warn("webhook payload too large",
				slog.String("action", "webhook_too_large"),
				slog.Int64("content_length", c.Request.ContentLength),
				slog.String("request_id", c.GetString(helpers.RequestIDKey)),
			)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Webhook payload too large"})
			return
		}

		ack, err := oc.webhooks.HandleEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"received": true, "result": ack.String()})
		case errors.Is(err, payment.ErrInvalidSignature), errors.Is(err, payment.ErrMalformedEvent):
			oc.logger.Warn("webhook rejected",
				slog.String("action", "webhook_rejected"),
				slog.String("request_id", c.GetString(helpers.RequestIDKey)),
				slog.String("error", err.Error()),
			)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Webhook error"})
		case errors.Is(err, services.ErrOrderNotFound):
			// Not retryable: answer with a client error so the gateway stops.
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Order not found"})
		default:
			oc.logger.Error("webhook processing failed",
				slog.String("action", "webhook_failed"),
				slog.String("request_id", c.GetString(helpers.RequestIDKey)),
				slog.String("error", err.Error()),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Webhook processing failed"})
		}
	}
}

func (oc *OrderController) GetMyOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		orders, err := oc.orders.ListByUser(ctx, c.GetString(middleware.UserIDKey))
		if err != nil {
			helpers.RespondError(c, oc.logger, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func (oc *OrderController) GetMyRestaurantOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		restaurant, err := oc.restaurants.FindByOwner(ctx, c.GetString(middleware.UserIDKey))
		if err != nil {
			helpers.RespondError(c, oc.logger, restaurantErr(err))
			return
		}
		orders, err := oc.orders.ListByRestaurant(ctx, restaurant.ID.Hex())
		if err != nil {
			helpers.RespondError(c, oc.logger, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func (oc *OrderController) UpdateOrderStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateOrderStatusRequest
		if !helpers.BindAndValidate(c, &req) {
			return
		}

		order, err := oc.guard.UpdateStatus(c.Request.Context(), c.Param("orderId"), req.Status, c.GetString(middleware.UserIDKey))
		if err != nil {
			helpers.RespondError(c, oc.logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
