package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go-food-ordering/helpers"
	"go-food-ordering/middleware"
	"go-food-ordering/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// OrderHub fans order notifications out to the dashboards connected for each
// restaurant.
type OrderHub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[string]map[*websocket.Conn]bool
	logger   *slog.Logger
}

// NewOrderHub accepts websocket upgrades from allowedOrigin only. An empty
// allowedOrigin accepts any origin.
func NewOrderHub(allowedOrigin string, logger *slog.Logger) *OrderHub {
	return &OrderHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
		clients: make(map[string]map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// NotifyOrder sends event to every dashboard of the order's restaurant.
// Connections that fail to accept the write are dropped.
func (h *OrderHub) NotifyOrder(event string, order *models.Order) {
	message, err := json.Marshal(models.OrderNotification{Event: event, Payload: order})
	if err != nil {
		h.logger.Error("marshal order notification", slog.String("error", err.Error()))
		return
	}
	restaurantID := order.Restaurant.Hex()

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients[restaurantID] {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Warn("dropping dashboard connection",
				slog.String("action", "ws_write_failed"),
				slog.String("restaurant_id", restaurantID),
				slog.String("error", err.Error()),
			)
			conn.Close()
			h.removeLocked(restaurantID, conn)
		}
	}
}

func (h *OrderHub) register(restaurantID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[restaurantID] == nil {
		h.clients[restaurantID] = make(map[*websocket.Conn]bool)
	}
	h.clients[restaurantID][conn] = true
}

func (h *OrderHub) unregister(restaurantID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(restaurantID, conn)
}

func (h *OrderHub) removeLocked(restaurantID string, conn *websocket.Conn) {
	delete(h.clients[restaurantID], conn)
	if len(h.clients[restaurantID]) == 0 {
		delete(h.clients, restaurantID)
	}
}

// Connections reports how many dashboards are connected for a restaurant.
func (h *OrderHub) Connections(restaurantID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[restaurantID])
}

// Subscribe upgrades the operator's request and streams notifications for
// their restaurant until the client goes away.
func (h *OrderHub) Subscribe(restaurants RestaurantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		restaurant, err := restaurants.FindByOwner(ctx, c.GetString(middleware.UserIDKey))
		cancel()
		if err != nil {
			helpers.RespondError(c, h.logger, restaurantErr(err))
			return
		}
		restaurantID := restaurant.ID.Hex()

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed",
				slog.String("request_id", c.GetString(helpers.RequestIDKey)),
				slog.String("error", err.Error()),
			)
			return
		}
		defer conn.Close()

		h.register(restaurantID, conn)
		defer h.unregister(restaurantID, conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
