package sentinel_manager

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const MetricsSubsystem = "sentinel"

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Height of the local frozen edge.
	FrozenEdgeHeight metrics.Gauge
	// 1 while syncing in fast fetch mode, 0 otherwise.
	FastFetch metrics.Gauge
	// Number of block requests that returned a complete batch.
	BlockFetches metrics.Counter
	// Number of failed block requests.
	BlockFetchFailures metrics.Counter
	// Peers in the combined mesh.
	MeshSize metrics.Gauge
	// Number of failover blocks sent to the mesh.
	BlocksTransmitted metrics.Counter
	// Number of trusted imports done while bootstrapping.
	BootstrapImports metrics.Counter
}

// PrometheusMetrics returns Metrics built using the Prometheus client library.
func PrometheusMetrics(namespace string) *Metrics {
	return &Metrics{
		FrozenEdgeHeight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "frozen_edge_height",
			Help:      "Height of the local frozen edge.",
		}, []string{}),
		FastFetch: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "fast_fetch",
			Help:      "Whether or not the sentinel syncs in fast fetch mode. 1 if yes, 0 if no.",
		}, []string{}),
		BlockFetches: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "block_fetches",
			Help:      "Number of successful block requests.",
		}, []string{}),
		BlockFetchFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "block_fetch_failures",
			Help:      "Number of failed block requests.",
		}, []string{}),
		MeshSize: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "mesh_size",
			Help:      "Number of cycle verifiers in the combined mesh.",
		}, []string{}),
		BlocksTransmitted: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "blocks_transmitted",
			Help:      "Number of failover blocks sent to the mesh.",
		}, []string{}),
		BootstrapImports: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "bootstrap_imports",
			Help:      "Number of trusted block imports while bootstrapping.",
		}, []string{}),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		FrozenEdgeHeight:   discard.NewGauge(),
		FastFetch:          discard.NewGauge(),
		BlockFetches:       discard.NewCounter(),
		BlockFetchFailures: discard.NewCounter(),
		MeshSize:           discard.NewGauge(),
		BlocksTransmitted:  discard.NewCounter(),
		BootstrapImports:   discard.NewCounter(),
	}
}
