package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v81"

	"beatshop/internal/metrics"
	"beatshop/internal/services"
)

// eventDedupeTTL bounds the Redis replay guard. The durable
// payment_events unique index backstops anything older.
const eventDedupeTTL = 24 * time.Hour

type webhookPayments interface {
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
	ListLineItems(sessionID string) ([]*stripe.LineItem, error)
}

type soldMarker interface {
	MarkSoldByTitle(ctx context.Context, title string) (int64, error)
}

type eventRecorder interface {
	Record(ctx context.Context, eventID, eventType string, payload json.RawMessage) error
}

// WebhookHandler settles payments: it verifies processor notifications
// and marks the purchased listings sold.
type WebhookHandler struct {
	payments webhookPayments
	catalog  soldMarker
	events   eventRecorder
	cache    *services.RedisCache
}

func NewWebhookHandler(payments webhookPayments, catalog soldMarker, events eventRecorder, cache *services.RedisCache) *WebhookHandler {
	return &WebhookHandler{payments: payments, catalog: catalog, events: events, cache: cache}
}

// HandleWebhook processes one signed processor event. Nothing in the
// body is trusted before the signature verifies; once an event is
// accepted the response is 200 even if individual line items failed to
// match, so the processor does not retry forever.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable request body")
	}

	event, err := h.payments.VerifyEvent(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		metrics.WebhookSignatureFailures.Inc()
		c.Logger().Warnf("webhook signature verification failed: %v", err)
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Invalid webhook signature"})
	}

	metrics.WebhookEventsReceived.Inc()
	ctx := c.Request().Context()

	// Replay guard. The mark is written only after the event is fully
	// handled, so a failed delivery stays eligible for the processor's
	// retry. Reprocessing a completed session is harmless either way
	// because the flip only touches unsold rows.
	seen, err := h.cache.Exists(ctx, eventKey(event.ID))
	if err != nil {
		c.Logger().Warnf("webhook dedupe check failed for %s: %v", event.ID, err)
	} else if seen {
		c.Logger().Infof("webhook event %s already processed, skipping", event.ID)
		return c.JSON(http.StatusOK, map[string]interface{}{"received": true})
	}

	if err := h.events.Record(ctx, event.ID, string(event.Type), event.Data.Raw); err != nil {
		c.Logger().Warnf("record webhook event %s: %v", event.ID, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Malformed event payload"})
		}
		if err := h.fulfillSession(ctx, c, sess.ID); err != nil {
			c.Logger().Errorf("fulfill session %s: %v", sess.ID, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Webhook processing failed")
		}
	case "payment_intent.succeeded":
		// Recorded above for observability; no catalog mutation
		c.Logger().Infof("payment succeeded: %s", event.ID)
	}

	if _, err := h.cache.SetNX(ctx, eventKey(event.ID), true, eventDedupeTTL); err != nil {
		c.Logger().Warnf("webhook dedupe mark failed for %s: %v", event.ID, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"received": true})
}

func eventKey(eventID string) string {
	return "stripe:event:" + eventID
}

// fulfillSession marks each purchased listing sold, matching the
// processor's line-item product name against unsold titles. The flip
// happens only on an unambiguous match; anything else is logged and
// skipped.
func (h *WebhookHandler) fulfillSession(ctx context.Context, c echo.Context, sessionID string) error {
	items, err := h.payments.ListLineItems(sessionID)
	if err != nil {
		return err
	}

	for _, item := range items {
		name := item.Description
		if name == "" {
			continue
		}
		matched, err := h.catalog.MarkSoldByTitle(ctx, name)
		if err != nil {
			c.Logger().Errorf("mark sold %q: %v", name, err)
			continue
		}
		switch {
		case matched == 1:
			metrics.ListingsSold.Inc()
			c.Logger().Infof("marked listing %q as sold", name)
		case matched == 0:
			c.Logger().Warnf("no unsold listing matches %q", name)
		default:
			c.Logger().Warnf("%d unsold listings match %q, skipping", matched, name)
		}
	}
	return nil
}
