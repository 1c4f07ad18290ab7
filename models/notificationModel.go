package models

const (
	EventNewOrder    = "newOrder"
	EventOrderStatus = "orderStatus"
)

// OrderNotification is pushed to a restaurant's connected dashboards.
type OrderNotification struct {
	Event   string `json:"event"`
	Payload *Order `json:"payload"`
}
