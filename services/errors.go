package services

import (
	"errors"

	"go-food-ordering/payment"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrItemNotFound       = errors.New("menu item not found")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrInvalidStatus      = errors.New("unknown order status")
	ErrInvalidTransition  = errors.New("illegal order status transition")
)

// PaymentGatewayError reports a failed checkout session request. Message is
// what the gateway said, when it said anything.
type PaymentGatewayError struct {
	Message string
	Err     error
}

func (e *PaymentGatewayError) Error() string {
	return "payment gateway: " + e.Message
}

func (e *PaymentGatewayError) Unwrap() error {
	return e.Err
}

func newPaymentGatewayError(err error) *PaymentGatewayError {
	var gwErr *payment.Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return &PaymentGatewayError{Message: gwErr.Message, Err: err}
	}
	return &PaymentGatewayError{Message: "Error creating checkout session", Err: err}
}
