package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

const namespace = "storefront"

type ServerMetrics struct {
	Requests     *prometheus.CounterVec
	LatencyMS    *prometheus.HistogramVec
	OrdersPlaced prometheus.Counter
	OrderTotal   prometheus.Histogram

	registry *prometheus.Registry
}

// NewServerMetrics registers on its own registry so several servers (and
// tests) can coexist in one process.
func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "orders_placed_total",
		Help:      "Orders committed by checkout.",
	})
	orderTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "order_total",
		Help:      "Order grand total including tax and shipping.",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000},
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		requests, latency, ordersPlaced, orderTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &ServerMetrics{
		Requests:     requests,
		LatencyMS:    latency,
		OrdersPlaced: ordersPlaced,
		OrderTotal:   orderTotal,
		registry:     registry,
	}
}

// OrderPlaced implements shop.OrderListener.
func (m *ServerMetrics) OrderPlaced(_ context.Context, _ *models.User, order *models.Order) error {
	m.OrdersPlaced.Inc()
	m.OrderTotal.Observe(order.Total)
	return nil
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
