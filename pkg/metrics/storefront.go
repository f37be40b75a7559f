package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "luxehome"

// Checkout outcomes.
const (
	CheckoutPlaced            = "placed"
	CheckoutEmptyCart         = "empty_cart"
	CheckoutInvalid           = "invalid"
	CheckoutInsufficientStock = "insufficient_stock"
	CheckoutError             = "error"
)

// Notification outcomes.
const (
	NotifySent     = "sent"
	NotifyFailed   = "failed"
	NotifyDisabled = "disabled"
	NotifyThrottle = "throttled"
)

// Storefront holds the business counters. All methods are nil-safe so
// services can run without a registry in tests.
type Storefront struct {
	checkouts     *prometheus.CounterVec
	orderTotals   prometheus.Histogram
	notifications *prometheus.CounterVec
	cartMutations *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on reg.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	s := &Storefront{
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_attempts_total",
			Help:      "Checkout submissions by outcome.",
		}, []string{"outcome"}),
		orderTotals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_amount",
			Help:      "Distribution of placed order totals.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_notifications_total",
			Help:      "Order notification deliveries by outcome.",
		}, []string{"outcome"}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"op"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "Order status transitions by target status.",
		}, []string{"status"}),
	}
	reg.MustRegister(s.checkouts, s.orderTotals, s.notifications, s.cartMutations, s.statusChanges)
	return s
}

func (s *Storefront) Checkout(outcome string) {
	if s == nil || s.checkouts == nil {
		return
	}
	s.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (s *Storefront) OrderPlaced(total decimal.Decimal) {
	if s == nil || s.orderTotals == nil {
		return
	}
	s.Checkout(CheckoutPlaced)
	s.orderTotals.Observe(total.InexactFloat64())
}

func (s *Storefront) Notification(outcome string) {
	if s == nil || s.notifications == nil {
		return
	}
	s.notifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (s *Storefront) CartMutation(op string) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (s *Storefront) StatusChanged(status string) {
	if s == nil || s.statusChanges == nil {
		return
	}
	s.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}
