// Package metrics holds the Prometheus instruments for configuration
// resolution and the connection pool.  All collectors are registered with
// the global registry, so serving promhttp.Handler() is enough to expose
// them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dbconf"

var (
	ConfigFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_fallback_total",
			Help:      "Malformed configuration values replaced by their defaults.",
		}, []string{"key"})

	ConfigLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_load_errors_total",
			Help:      "Configuration loads rejected by validation or I/O errors.",
		})

	PoolAcquiredConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_acquired_conns",
			Help:      "Connections currently checked out of the pool.",
		})

	PoolIdleConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_idle_conns",
			Help:      "Idle connections held by the pool.",
		})

	PoolTotalConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_total_conns",
			Help:      "All connections held by the pool, idle or acquired.",
		})

	PoolMaxConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_max_conns",
			Help:      "Configured upper pool bound.",
		})
)

func init() {
	prometheus.MustRegister(
		ConfigFallbackTotal,
		ConfigLoadErrorsTotal,
		PoolAcquiredConns,
		PoolIdleConns,
		PoolTotalConns,
		PoolMaxConns,
	)
}

// PoolStat is the subset of *pgxpool.Stat the gauges need.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
	MaxConns() int32
}

// RecordPool copies one pool snapshot into the gauges.
func RecordPool(s PoolStat) {
	PoolAcquiredConns.Set(float64(s.AcquiredConns()))
	PoolIdleConns.Set(float64(s.IdleConns()))
	PoolTotalConns.Set(float64(s.TotalConns()))
	PoolMaxConns.Set(float64(s.MaxConns()))
}
