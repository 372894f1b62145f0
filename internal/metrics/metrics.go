package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CheckoutSessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_sessions_created_total",
			Help: "Number of hosted checkout sessions created",
		},
	)

	PaymentLinksCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_links_created_total",
			Help: "Number of payment links created",
		},
	)

	WebhookEventsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_events_received_total",
			Help: "Number of verified webhook events received",
		},
	)

	WebhookSignatureFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_signature_failures_total",
			Help: "Number of webhook deliveries rejected for a bad signature",
		},
	)

	ListingsSold = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "listings_sold_total",
			Help: "Number of listings marked sold by fulfillment",
		},
	)
)

func Register() {
	prometheus.MustRegister(
		CheckoutSessionsCreated,
		PaymentLinksCreated,
		WebhookEventsReceived,
		WebhookSignatureFailures,
		ListingsSold,
	)
}
