package routes

import (
	"go-food-ordering/controllers"

	"github.com/gin-gonic/gin"
)

// Guards are the middleware chains protecting a route group.
type Guards struct {
	// Identity only verifies the bearer token.
	Identity []gin.HandlerFunc
	// User also resolves the token to a stored user.
	User []gin.HandlerFunc
}

// OrderRoutes registers checkout, the payment webhook and the order
// dashboards. The webhook is authenticated by its signature alone.
func OrderRoutes(incomingRoutes *gin.Engine, guards Guards, orders *controllers.OrderController,
	hub *controllers.OrderHub, restaurants controllers.RestaurantRepository) {
	incomingRoutes.POST("/order/checkout/webhook", orders.StripeWebhook())

	customer := incomingRoutes.Group("/order", guards.User...)
	customer.GET("", orders.GetMyOrders())
	customer.POST("/checkout/create-checkout-session", orders.CreateCheckoutSession())

	operator := incomingRoutes.Group("/restaurant/order", guards.User...)
	operator.GET("", orders.GetMyRestaurantOrders())
	operator.GET("/ws", hub.Subscribe(restaurants))
	operator.PATCH("/:orderId/status", orders.UpdateOrderStatus())
}
