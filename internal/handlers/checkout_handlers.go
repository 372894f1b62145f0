package handlers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"beatshop/internal/metrics"
	"beatshop/internal/services"
)

// CheckoutHandler fronts the hosted-payment surface: checkout
// sessions, payment links and the billing portal.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	payments *services.StripeService
	listings *services.ListingService
}

func NewCheckoutHandler(checkout *services.CheckoutService, payments *services.StripeService, listings *services.ListingService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, payments: payments, listings: listings}
}

// requestOrigin resolves the redirect origin. CHECKOUT_ORIGIN, when
// set, overrides the request-derived value for deployments behind a
// proxy whose incoming Host is not the public one.
func requestOrigin(c echo.Context) string {
	if origin := os.Getenv("CHECKOUT_ORIGIN"); origin != "" {
		return strings.TrimSuffix(origin, "/")
	}
	return c.Scheme() + "://" + c.Request().Host
}

// CreateCheckoutSession resolves a single listing or the whole cart
// into one hosted checkout session and redirects to it.
func (h *CheckoutHandler) CreateCheckoutSession(c echo.Context) error {
	req := services.CheckoutRequest{Origin: requestOrigin(c)}

	switch {
	case c.QueryParam("cart") == "true":
		req.FromCart = true
	case c.QueryParam("listing_id") != "":
		id, err := strconv.ParseUint(c.QueryParam("listing_id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":   "invalid_request",
				"message": "listing_id must be a number",
			})
		}
		req.ListingID = uint(id)
	default:
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": "listing_id or cart=true is required",
		})
	}

	sess, err := h.checkout.CreateSession(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCartEmpty):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":   "cart_empty",
				"message": "Your cart is empty",
			})
		case errors.Is(err, services.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error":   "not_found",
				"message": "The requested item could not be found",
			})
		case errors.Is(err, services.ErrStripeNotConfigured):
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error":   "configuration_error",
				"message": "Payment processing is not configured",
			})
		default:
			c.Logger().Errorf("create checkout session: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error":   "payment_error",
				"message": services.UserMessage(err),
			})
		}
	}

	metrics.CheckoutSessionsCreated.Inc()
	return c.Redirect(http.StatusSeeOther, sess.URL)
}

type paymentLinkRequest struct {
	ListingID uint `json:"listing_id"`
}

// CreatePaymentLink creates a processor-hosted payment link for one
// listing. The listing's configured price plan is used when present.
func (h *CheckoutHandler) CreatePaymentLink(c echo.Context) error {
	var req paymentLinkRequest
	if err := c.Bind(&req); err != nil || req.ListingID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": "listing_id is required",
		})
	}

	listing, err := h.listings.GetByID(c.Request().Context(), req.ListingID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error":   "not_found",
				"message": "The requested item could not be found",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch listing")
	}

	priceID := ""
	if listing.StripePriceID != nil {
		priceID = *listing.StripePriceID
	}

	link, err := h.payments.CreatePaymentLink(priceID, listing.Title, services.UnitAmount(listing.Price))
	if err != nil {
		c.Logger().Errorf("create payment link: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "payment_error",
			"message": services.UserMessage(err),
		})
	}

	metrics.PaymentLinksCreated.Inc()
	return c.JSON(http.StatusOK, map[string]interface{}{"url": link.URL})
}

// CreatePortalSession redirects to the processor-hosted billing portal.
func (h *CheckoutHandler) CreatePortalSession(c echo.Context) error {
	customerID := c.QueryParam("customer_id")
	if customerID == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": "customer_id is required",
		})
	}

	sess, err := h.payments.CreatePortalSession(customerID, requestOrigin(c)+"/admin")
	if err != nil {
		c.Logger().Errorf("create portal session: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "payment_error",
			"message": services.UserMessage(err),
		})
	}

	return c.Redirect(http.StatusSeeOther, sess.URL)
}
