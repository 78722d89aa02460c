package lib

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/* This file implements dev-ops telemetry for the router runtime in the form of prometheus metrics */

const metricsPattern = "/metrics"

// Metrics represents a server that exposes Prometheus metrics
type Metrics struct {
	server   *http.Server         // the http prometheus server
	config   MetricsConfig        // the configuration
	registry *prometheus.Registry // the collectors of this instance
	log      LoggerI              // the logger

	BlockMetrics  // telemetry about block processing
	RouterMetrics // telemetry about route execution
	LedgerMetrics // telemetry about the ledger
}

// BlockMetrics represents general telemetry for block processing
type BlockMetrics struct {
	Height              prometheus.Gauge     // what's the height of the ledger?
	BlockProcessingTime prometheus.Histogram // how long does it take to apply a block?
}

// RouterMetrics represents the telemetry for the router module
type RouterMetrics struct {
	Trades       *prometheus.CounterVec // how many router trades by operation and result code?
	RouteHops    prometheus.Histogram   // how long are executed routes?
	RouteUpdates *prometheus.CounterVec // how many route updates by result?
}

// LedgerMetrics represents the telemetry for the ledger module
type LedgerMetrics struct {
	InsufficientEDCharged  prometheus.Counter // how many insufficient asset deposits were charged?
	InsufficientEDRefunded prometheus.Counter // how many insufficient asset deposits were refunded?
}

// NewMetricsServer() creates a new telemetry server with its own registry
func NewMetricsServer(config MetricsConfig, log LoggerI) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	mux := http.NewServeMux()
	mux.Handle(metricsPattern, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &Metrics{
		server:   &http.Server{Addr: config.PrometheusAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		config:   config,
		registry: registry,
		log:      log,
		BlockMetrics: BlockMetrics{
			Height: factory.NewGauge(prometheus.GaugeOpts{
				Name: "omniroute_height",
				Help: "Current ledger height",
			}),
			BlockProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
				Name: "omniroute_block_processing_time",
				Help: "Time to apply a block in seconds",
			}),
		},
		RouterMetrics: RouterMetrics{
			Trades: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "omniroute_router_trades",
				Help: "Router trades by operation and result",
			}, []string{"operation", "result"}),
			RouteHops: factory.NewHistogram(prometheus.HistogramOpts{
				Name:    "omniroute_router_route_hops",
				Help:    "Number of hops of executed routes",
				Buckets: prometheus.LinearBuckets(1, 1, 9),
			}),
			RouteUpdates: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "omniroute_router_route_updates",
				Help: "Route update attempts by result",
			}, []string{"result"}),
		},
		LedgerMetrics: LedgerMetrics{
			InsufficientEDCharged: factory.NewCounter(prometheus.CounterOpts{
				Name: "omniroute_ledger_insufficient_ed_charged",
				Help: "Number of insufficient asset deposits charged",
			}),
			InsufficientEDRefunded: factory.NewCounter(prometheus.CounterOpts{
				Name: "omniroute_ledger_insufficient_ed_refunded",
				Help: "Number of insufficient asset deposits refunded",
			}),
		},
	}
}

// Start() starts the telemetry server
func (m *Metrics) Start() {
	// exit if empty
	if m == nil || !m.config.Enabled {
		return
	}
	go func() {
		defer CatchPanic(m.log)
		m.log.Infof("Starting metrics server on %s", m.config.PrometheusAddress)
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.log.Errorf("Metrics server failed with err: %s", err.Error())
		}
	}()
}

// Stop() gracefully stops the telemetry server
func (m *Metrics) Stop() {
	// exit if empty
	if m == nil || !m.config.Enabled {
		return
	}
	if err := m.server.Shutdown(context.Background()); err != nil {
		m.log.Error(err.Error())
	}
}

// Registry() exposes the collectors, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// UpdateBlockMetrics() records the height and processing time of an applied block
func (m *Metrics) UpdateBlockMetrics(height uint64, took time.Duration) {
	// exit if empty
	if m == nil {
		return
	}
	m.Height.Set(float64(height))
	m.BlockProcessingTime.Observe(took.Seconds())
}

// UpdateTradeMetrics() records the result of a router trade
func (m *Metrics) UpdateTradeMetrics(operation string, hops int, err ErrorI) {
	// exit if empty
	if m == nil {
		return
	}
	m.Trades.WithLabelValues(operation, resultLabel(err)).Inc()
	if err == nil {
		m.RouteHops.Observe(float64(hops))
	}
}

// UpdateRouteMetrics() records the result of a route update
func (m *Metrics) UpdateRouteMetrics(err ErrorI) {
	// exit if empty
	if m == nil {
		return
	}
	m.RouteUpdates.WithLabelValues(resultLabel(err)).Inc()
}

// UpdateEDMetrics() records an insufficient asset deposit charge or refund
func (m *Metrics) UpdateEDMetrics(charged bool) {
	// exit if empty
	if m == nil {
		return
	}
	if charged {
		m.InsufficientEDCharged.Inc()
	} else {
		m.InsufficientEDRefunded.Inc()
	}
}

// resultLabel() converts an error into a low cardinality label: ok or <module>_<code>
func resultLabel(err ErrorI) string {
	if err == nil {
		return "ok"
	}
	return string(err.Module()) + "_" + strconv.FormatUint(uint64(err.Code()), 10)
}
