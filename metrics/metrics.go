// Package metrics provides Prometheus metrics for the trading terminal.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	ordersTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quantumedge",
		Subsystem: "terminal",
		Name:      "orders_tracked",
		Help:      "Orders currently held in the session cache.",
	})
	ordersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quantumedge",
		Subsystem: "terminal",
		Name:      "orders_active",
		Help:      "Cached orders still in a non-terminal status.",
	})
	pollTicks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quantumedge",
		Subsystem: "terminal",
		Name:      "poll_ticks_total",
		Help:      "Executed refresh cycles.",
	})
	fetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quantumedge",
		Subsystem: "terminal",
		Name:      "order_fetch_errors_total",
		Help:      "Failed status fetches, isolated per order per tick.",
	})
	fetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quantumedge",
		Subsystem: "terminal",
		Name:      "order_fetch_seconds",
		Help:      "Latency of single order status fetches.",
		Buckets:   prometheus.DefBuckets,
	})
	ordersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantumedge",
		Subsystem: "terminal",
		Name:      "orders_submitted_total",
		Help:      "Order submissions by outcome.",
	}, []string{"result"})
	streamReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quantumedge",
		Subsystem: "terminal",
		Name:      "stream_reconnects_total",
		Help:      "Order stream reconnect attempts.",
	})
)

func SetTrackedOrders(n int) { ordersTracked.Set(float64(n)) }
func SetActiveOrders(n int)  { ordersActive.Set(float64(n)) }
func IncPollTick()           { pollTicks.Inc() }
func IncFetchError()         { fetchErrors.Inc() }

func ObserveFetchLatency(d time.Duration) { fetchLatency.Observe(d.Seconds()) }

// IncOrderSubmitted records a submission outcome ("accepted" / "rejected").
func IncOrderSubmitted(result string) { ordersSubmitted.WithLabelValues(result).Inc() }

func IncStreamReconnect() { streamReconnects.Inc() }

func newMetricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// StartMetricsServer exposes /metrics on addr in a background goroutine.
// The server gets its own mux so nothing else registered on the process
// default mux leaks onto the metrics port.
func StartMetricsServer(addr string, logger *zap.Logger) {
	srv := &http.Server{Addr: addr, Handler: newMetricsMux()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
}
