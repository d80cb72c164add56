package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records storefront counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	resolverFallback *prometheus.CounterVec
	variantNotFound  *prometheus.CounterVec
	bundleAssembled  *prometheus.CounterVec
	bundleFailed     *prometheus.CounterVec
	checkoutDropped  prometheus.Counter
	shippingFallback *prometheus.CounterVec
	shippingCacheHit prometheus.Counter
}

// New registers the storefront metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		resolverFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "variant_resolver_fallback_total",
			Help: "Variant lookups that succeeded only in the alternate design bucket.",
		}, []string{"product"}),
		variantNotFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "variant_not_found_total",
			Help: "Variant lookups that missed in every design bucket.",
		}, []string{"product"}),
		bundleAssembled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bundle_assembled_total",
			Help: "Bundles assembled into a cart batch.",
		}, []string{"bundle"}),
		bundleFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bundle_failed_total",
			Help: "Bundle adds aborted because a component did not resolve.",
		}, []string{"bundle"}),
		checkoutDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "checkout_dropped_items_total",
			Help: "Cart items dropped from checkout for an invalid variant id.",
		}),
		shippingFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shipping_fallback_quotes_total",
			Help: "Shipping quotes answered with the fallback option.",
		}, []string{"reason"}),
		shippingCacheHit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shipping_quote_cache_hits_total",
			Help: "Shipping quotes served from cache.",
		}),
	}
	reg.MustRegister(
		m.resolverFallback,
		m.variantNotFound,
		m.bundleAssembled,
		m.bundleFailed,
		m.checkoutDropped,
		m.shippingFallback,
		m.shippingCacheHit,
	)
	return m
}

func (m *Metrics) IncResolverFallback(product string) {
	if m == nil || m.resolverFallback == nil {
		return
	}
	m.resolverFallback.WithLabelValues(normalizeLabel(product)).Inc()
}

func (m *Metrics) IncVariantNotFound(product string) {
	if m == nil || m.variantNotFound == nil {
		return
	}
	m.variantNotFound.WithLabelValues(normalizeLabel(product)).Inc()
}

func (m *Metrics) IncBundleAssembled(bundle string) {
	if m == nil || m.bundleAssembled == nil {
		return
	}
	m.bundleAssembled.WithLabelValues(normalizeLabel(bundle)).Inc()
}

func (m *Metrics) IncBundleFailed(bundle string) {
	if m == nil || m.bundleFailed == nil {
		return
	}
	m.bundleFailed.WithLabelValues(normalizeLabel(bundle)).Inc()
}

func (m *Metrics) AddCheckoutDropped(n int) {
	if m == nil || m.checkoutDropped == nil || n <= 0 {
		return
	}
	m.checkoutDropped.Add(float64(n))
}

func (m *Metrics) IncShippingFallback(reason string) {
	if m == nil || m.shippingFallback == nil {
		return
	}
	m.shippingFallback.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *Metrics) IncShippingCacheHit() {
	if m == nil || m.shippingCacheHit == nil {
		return
	}
	m.shippingCacheHit.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
