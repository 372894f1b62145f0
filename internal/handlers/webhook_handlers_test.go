package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v81"

	"beatshop/internal/services"
)

type fakeWebhookPayments struct {
	event     stripe.Event
	verifyErr error
	lineItems []*stripe.LineItem
	listErr   error
	listCalls int
}

func (f *fakeWebhookPayments) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if f.verifyErr != nil {
		return stripe.Event{}, f.verifyErr
	}
	return f.event, nil
}

func (f *fakeWebhookPayments) ListLineItems(sessionID string) ([]*stripe.LineItem, error) {
	f.listCalls++
	return f.lineItems, f.listErr
}

type fakeSoldMarker struct {
	matches map[string]int64
	calls   []string
}

func (f *fakeSoldMarker) MarkSoldByTitle(_ context.Context, title string) (int64, error) {
	f.calls = append(f.calls, title)
	return f.matches[title], nil
}

type fakeEventRecorder struct {
	recorded []string
}

func (f *fakeEventRecorder) Record(_ context.Context, eventID, eventType string, _ json.RawMessage) error {
	f.recorded = append(f.recorded, eventID)
	return nil
}

func newTestCache(t *testing.T) *services.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return services.NewRedisCacheFromClient(client)
}

func completedSessionEvent(eventID, sessionID string) stripe.Event {
	raw, _ := json.Marshal(map[string]string{"id": sessionID})
	return stripe.Event{
		ID:   eventID,
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}
}

func postWebhook(t *testing.T, h *WebhookHandler) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWebhook(c)
	if err != nil {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			t.Fatalf("handler error = %v", err)
		}
		rec.Code = he.Code
	}
	return rec
}

func TestWebhookInvalidSignature(t *testing.T) {
	payments := &fakeWebhookPayments{verifyErr: errors.New("signature mismatch")}
	catalog := &fakeSoldMarker{}
	events := &fakeEventRecorder{}
	h := NewWebhookHandler(payments, catalog, events, newTestCache(t))

	rec := postWebhook(t, h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rec.Code)
	}
	if len(catalog.calls) != 0 {
		t.Errorf("catalog mutations = %v; want none on signature failure", catalog.calls)
	}
	if len(events.recorded) != 0 {
		t.Errorf("recorded events = %v; want none on signature failure", events.recorded)
	}
}

func TestWebhookCompletedSessionMarksSold(t *testing.T) {
	payments := &fakeWebhookPayments{
		event:     completedSessionEvent("evt_1", "cs_1"),
		lineItems: []*stripe.LineItem{{Description: "Trap Beat 1"}},
	}
	catalog := &fakeSoldMarker{matches: map[string]int64{"Trap Beat 1": 1}}
	events := &fakeEventRecorder{}
	h := NewWebhookHandler(payments, catalog, events, newTestCache(t))

	rec := postWebhook(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if len(catalog.calls) != 1 || catalog.calls[0] != "Trap Beat 1" {
		t.Errorf("catalog calls = %v; want one match attempt for Trap Beat 1", catalog.calls)
	}
	if len(events.recorded) != 1 {
		t.Errorf("recorded events = %v; want [evt_1]", events.recorded)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if payload["received"] != true {
		t.Errorf("received = %v; want true", payload["received"])
	}
}

func TestWebhookFailedDeliveryStaysRetryable(t *testing.T) {
	payments := &fakeWebhookPayments{
		event:     completedSessionEvent("evt_retry", "cs_1"),
		lineItems: []*stripe.LineItem{{Description: "Trap Beat 1"}},
		listErr:   errors.New("connection reset"),
	}
	catalog := &fakeSoldMarker{matches: map[string]int64{"Trap Beat 1": 1}}
	h := NewWebhookHandler(payments, catalog, &fakeEventRecorder{}, newTestCache(t))

	first := postWebhook(t, h)
	if first.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500 when line item listing fails", first.Code)
	}
	if len(catalog.calls) != 0 {
		t.Fatalf("catalog calls = %v; want none on the failed delivery", catalog.calls)
	}

	// The failed delivery must not consume the event; the processor's
	// redelivery is the recovery path.
	payments.listErr = nil
	second := postWebhook(t, h)
	if second.Code != http.StatusOK {
		t.Fatalf("retry status = %d; want 200", second.Code)
	}
	if payments.listCalls != 2 {
		t.Errorf("line item lookups = %d; want 2 (one per delivery)", payments.listCalls)
	}
	if len(catalog.calls) != 1 || catalog.calls[0] != "Trap Beat 1" {
		t.Errorf("catalog calls = %v; want the retry to mark Trap Beat 1 sold", catalog.calls)
	}
}

func TestWebhookReplayIsSkipped(t *testing.T) {
	payments := &fakeWebhookPayments{
		event:     completedSessionEvent("evt_replay", "cs_1"),
		lineItems: []*stripe.LineItem{{Description: "Trap Beat 1"}},
	}
	catalog := &fakeSoldMarker{matches: map[string]int64{"Trap Beat 1": 1}}
	h := NewWebhookHandler(payments, catalog, &fakeEventRecorder{}, newTestCache(t))

	first := postWebhook(t, h)
	second := postWebhook(t, h)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d; want 200, 200", first.Code, second.Code)
	}
	if len(catalog.calls) != 1 {
		t.Errorf("catalog calls = %v; want exactly one despite replay", catalog.calls)
	}
}

func TestWebhookAmbiguousTitleIsSkipped(t *testing.T) {
	payments := &fakeWebhookPayments{
		event: completedSessionEvent("evt_2", "cs_2"),
		lineItems: []*stripe.LineItem{
			{Description: "Duplicate Title"},
			{Description: "Unknown Title"},
			{Description: "Trap Beat 1"},
		},
	}
	catalog := &fakeSoldMarker{matches: map[string]int64{
		"Duplicate Title": 2,
		"Trap Beat 1":     1,
	}}
	h := NewWebhookHandler(payments, catalog, &fakeEventRecorder{}, newTestCache(t))

	rec := postWebhook(t, h)
	// Ambiguous and unmatched line items are logged, never fatal
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if len(catalog.calls) != 3 {
		t.Errorf("catalog calls = %v; want all three line items attempted", catalog.calls)
	}
}

func TestWebhookPaymentSucceededRecordsOnly(t *testing.T) {
	payments := &fakeWebhookPayments{
		event: stripe.Event{
			ID:   "evt_pi",
			Type: "payment_intent.succeeded",
			Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"pi_1"}`)},
		},
	}
	catalog := &fakeSoldMarker{}
	events := &fakeEventRecorder{}
	h := NewWebhookHandler(payments, catalog, events, newTestCache(t))

	rec := postWebhook(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if len(catalog.calls) != 0 {
		t.Errorf("catalog calls = %v; want none for payment_intent.succeeded", catalog.calls)
	}
	if len(events.recorded) != 1 {
		t.Errorf("recorded events = %v; want [evt_pi]", events.recorded)
	}
	if payments.listCalls != 0 {
		t.Errorf("line item lookups = %d; want 0", payments.listCalls)
	}
}
