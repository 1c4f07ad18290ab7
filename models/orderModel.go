package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "placed"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusInProgress     OrderStatus = "inProgress"
	OrderStatusOutForDelivery OrderStatus = "outForDelivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// orderTransitions is the forward-only status graph. Terminal statuses have no entry.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:         {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:           {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress:     {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	switch status {
	case OrderStatusPlaced, OrderStatusPaid, OrderStatusInProgress,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return status, true
	}
	return "", false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

type DeliveryDetails struct {
	Email        string `bson:"email" json:"email" validate:"required,email"`
	Name         string `bson:"name" json:"name" validate:"required"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1" validate:"required"`
	City         string `bson:"city" json:"city" validate:"required"`
}

// CartQuantity keeps the quantity exactly as the client sent it. Clients send
// either a JSON string or a JSON number; both are accepted and parsed later.
type CartQuantity string

func (q *CartQuantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = CartQuantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("quantity must be a string or a number: %w", err)
	}
	*q = CartQuantity(n.String())
	return nil
}

// CartItem is client-submitted. It never carries a price.
type CartItem struct {
	MenuItemID string       `bson:"menuItemId" json:"menuItemId" validate:"required"`
	Name       string       `bson:"name" json:"name"`
	Quantity   CartQuantity `bson:"quantity" json:"quantity" validate:"required"`
}

type Order struct {
	ID                primitive.ObjectID `bson:"_id" json:"_id"`
	Restaurant        primitive.ObjectID `bson:"restaurant" json:"restaurant"`
	User              primitive.ObjectID `bson:"user" json:"user"`
	CartItems         []CartItem         `bson:"cartItems" json:"cartItems"`
	DeliveryDetails   DeliveryDetails    `bson:"deliveryDetails" json:"deliveryDetails"`
	Status            OrderStatus        `bson:"status" json:"status"`
	TotalAmount       int64              `bson:"totalAmount,omitempty" json:"totalAmount,omitempty"`
	CheckoutSessionID string             `bson:"checkoutSessionId,omitempty" json:"-"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderDetails is an order joined with its restaurant and customer for listings.
type OrderDetails struct {
	Order             `bson:",inline"`
	RestaurantDetails *Restaurant `bson:"restaurantDetails,omitempty" json:"restaurantDetails,omitempty"`
	UserDetails       *User       `bson:"userDetails,omitempty" json:"userDetails,omitempty"`
}

type CheckoutSessionRequest struct {
	CartItems       []CartItem      `json:"cartItems" validate:"required,min=1,dive"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails"`
	RestaurantID    string          `json:"restaurantId" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
