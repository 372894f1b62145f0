package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	portalsession "github.com/stripe/stripe-go/v81/billingportal/session"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/paymentlink"
	"github.com/stripe/stripe-go/v81/price"
	"github.com/stripe/stripe-go/v81/webhook"
)

// ErrStripeNotConfigured is returned when the secret key is missing.
// The key value itself is never included in any error or response.
var ErrStripeNotConfigured = errors.New("stripe is not configured")

// StripeService wraps the hosted-payment surface of the Stripe SDK:
// checkout sessions, payment links, the billing portal and webhook
// signature verification.
type StripeService struct {
	webhookSecret string
}

func NewStripeService() (*StripeService, error) {
	serverKey := os.Getenv("STRIPE_SECRET_KEY")
	if serverKey == "" {
		return nil, ErrStripeNotConfigured
	}
	stripe.Key = serverKey

	return &StripeService{
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}, nil
}

// CreateCheckoutSession creates one hosted checkout session for the
// full line-item set.
func (s *StripeService) CreateCheckoutSession(lineItems []*stripe.CheckoutSessionLineItemParams, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.IdempotencyKey = stripe.String(uuid.NewString())

	resp, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	return resp, nil
}

// ListLineItems retrieves the recorded line items of a completed
// checkout session.
func (s *StripeService) ListLineItems(sessionID string) ([]*stripe.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	iter := session.ListLineItems(params)

	var items []*stripe.LineItem
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	return items, iter.Err()
}

// CreatePaymentLink creates a hosted payment link for one price. When
// priceID is empty a price is created on the fly from the name and
// amount.
func (s *StripeService) CreatePaymentLink(priceID, name string, unitAmount int64) (*stripe.PaymentLink, error) {
	if priceID == "" {
		p, err := price.New(&stripe.PriceParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(unitAmount),
			ProductData: &stripe.PriceProductDataParams{
				Name: stripe.String(name),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("stripe create price: %w", err)
		}
		priceID = p.ID
	}

	link, err := paymentlink.New(&stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("stripe create payment link: %w", err)
	}
	return link, nil
}

// CreatePortalSession creates a hosted billing portal session.
func (s *StripeService) CreatePortalSession(customerID, returnURL string) (*stripe.BillingPortalSession, error) {
	resp, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe create portal session: %w", err)
	}
	return resp, nil
}

// VerifyEvent checks the webhook signature against the shared secret
// and parses the event. Nothing in the payload is trusted before this
// succeeds.
func (s *StripeService) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if s.webhookSecret == "" {
		return stripe.Event{}, ErrStripeNotConfigured
	}
	return webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
}

// UserMessage maps an upstream Stripe failure to a curated user-facing
// message. Raw processor messages and credentials are never exposed.
func UserMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == http.StatusUnauthorized:
			return "Payment provider authentication failed. Please contact support."
		case stripeErr.Code == stripe.ErrorCodeResourceMissing:
			return "The referenced payment record could not be found. Please contact support."
		case stripeErr.Code == stripe.ErrorCodeURLInvalid:
			return "The checkout redirect address was rejected. Please try again."
		case stripeErr.Type == stripe.ErrorTypeInvalidRequest:
			return "The payment provider rejected the request. Please try again."
		}
	}
	return "Payment processing failed. Please try again later."
}
