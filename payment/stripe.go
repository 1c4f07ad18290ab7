package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	currency                      = "usd"
	deliveryDisplayName           = "Standard delivery"
	eventCheckoutSessionCompleted = "checkout.session.completed"
)

type StripeGateway struct {
	sessions *session.Client
}

func NewStripeGateway(apiKey string) *StripeGateway {
	return &StripeGateway{
		sessions: &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: apiKey},
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := checkoutSessionParams(req)
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, &Error{Message: stripeErr.Msg, StatusCode: stripeErr.HTTPStatusCode, Err: err}
		}
		return nil, &Error{Message: err.Error(), Err: err}
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func checkoutSessionParams(req SessionRequest) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	return &stripe.CheckoutSessionParams{
		LineItems: lineItems,
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				DisplayName: stripe.String(deliveryDisplayName),
				Type:        stripe.String("fixed_amount"),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(req.DeliveryFee),
					Currency: stripe.String(currency),
				},
			},
		}},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata: map[string]string{
			MetadataOrderID:      req.OrderID,
			MetadataRestaurantID: req.RestaurantID,
		},
	}
}

type StripeWebhookVerifier struct {
	secret    string
	tolerance time.Duration
}

func NewStripeWebhookVerifier(secret string) *StripeWebhookVerifier {
	return &StripeWebhookVerifier{secret: secret, tolerance: webhook.DefaultTolerance}
}

// ParseEvent checks the signature over the raw request bytes before decoding
// anything. Only checkout.session.completed is decoded further.
func (v *StripeWebhookVerifier) ParseEvent(payload []byte, signatureHeader string) (Event, error) {
	if err := webhook.ValidatePayloadWithTolerance(payload, signatureHeader, v.secret, v.tolerance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if string(event.Type) != eventCheckoutSessionCompleted {
		return UnrecognizedEvent{Type: string(event.Type)}, nil
	}
	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", ErrMalformedEvent, event.ID)
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return CheckoutCompleted{
		SessionID:    cs.ID,
		OrderID:      cs.Metadata[MetadataOrderID],
		RestaurantID: cs.Metadata[MetadataRestaurantID],
		AmountTotal:  cs.AmountTotal,
	}, nil
}
