package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrderCreateTotal counts order creation attempts by outcome.
	OrderCreateTotal *prometheus.CounterVec
	// GatewayAuthTotal counts gateway credential exchanges by outcome.
	GatewayAuthTotal *prometheus.CounterVec
	// GatewayOrderTotal counts gateway order submissions by outcome.
	GatewayOrderTotal *prometheus.CounterVec
	// CallbackTotal counts inbound payment callbacks by classified status and outcome.
	CallbackTotal *prometheus.CounterVec
	// GatewayCallLatency records outbound gateway call latency in milliseconds.
	GatewayCallLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrderCreateTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_create_total",
			Help:      "Count of ticket order creation attempts by outcome.",
		}, []string{"result"})
		GatewayAuthTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_auth_total",
			Help:      "Count of UniPay credential exchanges by outcome.",
		}, []string{"result"})
		GatewayOrderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_order_total",
			Help:      "Count of UniPay order submissions by outcome.",
		}, []string{"result"})
		CallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_callback_total",
			Help:      "Count of inbound payment callbacks by classified status and outcome.",
		}, []string{"status", "outcome"})
		GatewayCallLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_ms",
			Help:      "Latency of outbound UniPay calls in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"call"})

		mustRegisterCollector(reg, OrderCreateTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrderCreateTotal = v
			}
		})
		mustRegisterCollector(reg, GatewayAuthTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				GatewayAuthTotal = v
			}
		})
		mustRegisterCollector(reg, GatewayOrderTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				GatewayOrderTotal = v
			}
		})
		mustRegisterCollector(reg, CallbackTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CallbackTotal = v
			}
		})
		mustRegisterCollector(reg, GatewayCallLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				GatewayCallLatency = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
