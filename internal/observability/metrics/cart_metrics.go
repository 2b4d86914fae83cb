package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OperationAdd            = "add"
	OperationRemove         = "remove"
	OperationUpdateQuantity = "update_quantity"
	OperationClear          = "clear"
	OperationToggle         = "toggle"
	OperationOpen           = "open"
	OperationClose          = "close"
	OperationLoad           = "load"
	OperationSave           = "save"
	OperationDelete         = "delete"
)

const (
	CheckoutResultSucceeded = "succeeded"
	CheckoutResultDeclined  = "declined"
	CheckoutResultEmpty     = "empty_cart"
	CheckoutResultError     = "error"
)

// Config labels every series with the deployment it came from.
type Config struct {
	ServiceName string
	Environment string
}

// CartMetrics captures cart mutation, persistence and checkout signals.
type CartMetrics struct {
	operations          *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	checkouts           *prometheus.CounterVec
	grandTotal          prometheus.Histogram
}

// NewCartMetrics registers the cart collectors on registerer. A nil registerer
// falls back to the default registry.
func NewCartMetrics(registerer prometheus.Registerer, cfg Config) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "spice-marketplace"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "spice_cart_operations_total",
		Help:        "Cart mutations applied by operation.",
		ConstLabels: constLabels,
	}, []string{"operation"})
	persistenceFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "spice_cart_persistence_failures_total",
		Help:        "Cart snapshot reads or writes that failed and were swallowed.",
		ConstLabels: constLabels,
	}, []string{"operation"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "spice_checkout_total",
		Help:        "Checkout attempts by result.",
		ConstLabels: constLabels,
	}, []string{"result"})
	grandTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "spice_cart_grand_total",
		Help:        "Grand total of carts at successful checkout, in dollars.",
		Buckets:     []float64{10, 25, 50, 75, 100, 150, 200, 300, 500, 1000},
		ConstLabels: constLabels,
	})

	registerer.MustRegister(operations, persistenceFailures, checkouts, grandTotal)

	return &CartMetrics{
		operations:          operations,
		persistenceFailures: persistenceFailures,
		checkouts:           checkouts,
		grandTotal:          grandTotal,
	}
}

// IncOperation counts one applied cart mutation.
func (m *CartMetrics) IncOperation(operation string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(operation).Inc()
}

// IncPersistenceFailure counts one swallowed store error.
func (m *CartMetrics) IncPersistenceFailure(operation string) {
	if m == nil || m.persistenceFailures == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(operation).Inc()
}

// ObserveCheckout records a checkout outcome. The grand total is only observed for
// successful charges.
func (m *CartMetrics) ObserveCheckout(result string, grandTotal float64) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(result).Inc()
	if result == CheckoutResultSucceeded && m.grandTotal != nil {
		m.grandTotal.Observe(grandTotal)
	}
}
