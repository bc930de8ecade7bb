package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "farmfresh"

// Storefront records cart, checkout and order lifecycle activity. A nil *Storefront
// (or one built with a nil registerer) is a valid no-op recorder.
type Storefront struct {
	cartMutations     *prometheus.CounterVec
	ordersCreated     prometheus.Counter
	checkoutFailures  *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	s := &Storefront{
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"op"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders persisted by checkout.",
		}),
		checkoutFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_failures_total",
			Help:      "Checkout attempts rejected or failed, by reason.",
		}, []string{"reason"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Order status changes by target status.",
		}, []string{"status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(s.cartMutations, s.ordersCreated, s.checkoutFailures, s.statusTransitions, s.httpDuration)
	return s
}

// IncCartMutation counts one cart mutation (add, set_quantity, remove, clear).
func (s *Storefront) IncCartMutation(op string) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncOrderCreated counts one persisted order.
func (s *Storefront) IncOrderCreated() {
	if s == nil || s.ordersCreated == nil {
		return
	}
	s.ordersCreated.Inc()
}

// IncCheckoutFailure counts a checkout that did not produce an order.
func (s *Storefront) IncCheckoutFailure(reason string) {
	if s == nil || s.checkoutFailures == nil {
		return
	}
	s.checkoutFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncStatusTransition counts an order entering status.
func (s *Storefront) IncStatusTransition(status string) {
	if s == nil || s.statusTransitions == nil {
		return
	}
	s.statusTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveHTTP records a served request.
func (s *Storefront) ObserveHTTP(method, route, status string, duration time.Duration) {
	if s == nil || s.httpDuration == nil {
		return
	}
	s.httpDuration.WithLabelValues(method, normalizeLabel(route), status).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
