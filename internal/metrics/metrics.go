// Package metrics exposes the collector's operational counters.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeedReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_feed_reconnects_total",
		Help: "Feed connections lost and retried.",
	})
	MarketSwitches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_market_switches_total",
		Help: "Successful market window rotations.",
	})
	TicksDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_ticks_dropped_total",
		Help: "Ticks dropped because the ingestion queue was full.",
	})
	TicksWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_ticks_written_total",
		Help: "Ticks persisted to the store.",
	})
	FlushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_batch_flush_failures_total",
		Help: "Tick batches dropped after a failed write.",
	})
)

// Serve starts the metrics listener. A blank addr disables it.
func Serve(addr string, log *slog.Logger) {
	if addr == "" {
		return
	}
	go func() {
		log.Info("metrics listening", "addr", addr)
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			log.Error("metrics server stopped", "error", err)
		}
	}()
}
