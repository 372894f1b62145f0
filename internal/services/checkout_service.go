package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/stripe/stripe-go/v81"

	"beatshop/internal/models"
)

// defaultUnitAmount is charged when a listing has a missing or zero
// price, so no zero-amount line item is ever sent to the processor.
const defaultUnitAmount int64 = 100

// listingGetter, cartAccessor and sessionCreator are the orchestrator's
// view of its collaborators.
type listingGetter interface {
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
}

type cartAccessor interface {
	Get(ctx context.Context) ([]uint, error)
	Clear(ctx context.Context) error
}

type sessionCreator interface {
	CreateCheckoutSession(lineItems []*stripe.CheckoutSessionLineItemParams, successURL, cancelURL string) (*stripe.CheckoutSession, error)
}

// CheckoutService turns a checkout intent into a hosted payment
// session. The only persistent state it touches is the cart, cleared
// once and only after the session exists.
type CheckoutService struct {
	listings listingGetter
	cart     cartAccessor
	payments sessionCreator
}

func NewCheckoutService(listings listingGetter, cart cartAccessor, payments sessionCreator) *CheckoutService {
	return &CheckoutService{listings: listings, cart: cart, payments: payments}
}

// CheckoutRequest is a checkout intent: one listing, or the whole cart.
type CheckoutRequest struct {
	ListingID uint
	FromCart  bool
	Origin    string
}

// CreateSession resolves the item set, builds the line items and
// creates one session covering all of them. Cart mode clears the cart
// after the session is confirmed created.
func (s *CheckoutService) CreateSession(ctx context.Context, req CheckoutRequest) (*stripe.CheckoutSession, error) {
	var items []*models.Listing

	if req.FromCart {
		ids, err := s.cart.Get(ctx)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, ErrCartEmpty
		}
		for _, id := range ids {
			listing, err := s.listings.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					// Stale cart entry; skip it rather than blocking the rest
					log.Printf("checkout: cart references missing listing %d, skipping", id)
					continue
				}
				return nil, err
			}
			items = append(items, listing)
		}
	} else {
		listing, err := s.listings.GetByID(ctx, req.ListingID)
		if err != nil {
			return nil, err
		}
		items = append(items, listing)
	}

	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, listing := range items {
		lineItems = append(lineItems, lineItemFor(listing))
	}

	successURL := req.Origin + "/shop?success=true&session_id={CHECKOUT_SESSION_ID}"
	cancelURL := req.Origin + "/shop?canceled=true"

	sess, err := s.payments.CreateCheckoutSession(lineItems, successURL, cancelURL)
	if err != nil {
		return nil, err
	}

	if req.FromCart {
		if err := s.cart.Clear(ctx); err != nil {
			// Session already exists; a stale cart is the lesser failure
			log.Printf("checkout: failed to clear cart after session %s: %v", sess.ID, err)
		}
	}

	return sess, nil
}

func lineItemFor(listing *models.Listing) *stripe.CheckoutSessionLineItemParams {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(listing.Title),
	}
	if listing.Description != nil && *listing.Description != "" {
		product.Description = stripe.String(*listing.Description)
	} else {
		product.Description = stripe.String(fmt.Sprintf("%s - digital download", listing.Type))
	}
	if listing.ImageURL != nil && *listing.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{*listing.ImageURL})
	}

	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:    stripe.String(string(stripe.CurrencyUSD)),
			ProductData: product,
			UnitAmount:  stripe.Int64(UnitAmount(listing.Price)),
		},
		Quantity: stripe.Int64(1),
	}
}

// UnitAmount converts a listing price to integer minor units. Zero and
// negative prices fall back to defaultUnitAmount.
func UnitAmount(price float64) int64 {
	cents := int64(math.Round(price * 100))
	if cents <= 0 {
		return defaultUnitAmount
	}
	return cents
}
