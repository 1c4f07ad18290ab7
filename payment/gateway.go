// Package payment talks to the hosted checkout provider: it opens checkout
// sessions and turns signed webhook deliveries into typed events.
package payment

import (
	"context"
	"errors"
)

const (
	MetadataOrderID      = "orderId"
	MetadataRestaurantID = "restaurantId"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	LineItems    []LineItem
	DeliveryFee  int64
	OrderID      string
	RestaurantID string
	SuccessURL   string
	CancelURL    string
}

type Session struct {
	ID  string
	URL string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// Error is a failure reported by the provider. Message is the provider's own
// description and is safe to show to the customer.
type Error struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Event is a verified webhook event. It is either CheckoutCompleted or
// UnrecognizedEvent.
type Event interface {
	EventType() string
}

type CheckoutCompleted struct {
	SessionID    string
	OrderID      string
	RestaurantID string
	AmountTotal  int64
}

func (CheckoutCompleted) EventType() string { return eventCheckoutSessionCompleted }

type UnrecognizedEvent struct {
	Type string
}

func (e UnrecognizedEvent) EventType() string { return e.Type }

type WebhookVerifier interface {
	ParseEvent(payload []byte, signatureHeader string) (Event, error)
}
