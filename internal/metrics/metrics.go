// Package metrics exposes Prometheus metrics for graph collection and the
// live server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rybkr/gitgraph/internal/domain"
)

// Outcome labels for collection attempts.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector holds all Prometheus metrics for the application.
type Collector struct {
	registry *prometheus.Registry

	Collections       *prometheus.CounterVec
	CollectDuration   prometheus.Histogram
	Commits           prometheus.Gauge
	Edges             prometheus.Gauge
	Truncated         prometheus.Gauge
	Broadcasts        *prometheus.CounterVec
	WebsocketClients  prometheus.Gauge
	DroppedBroadcasts prometheus.Counter
}

// NewCollector creates metrics in their own registry under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		Collections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_collections_total",
				Help:      "Total number of graph collections by outcome",
			},
			[]string{"outcome"},
		),
		CollectDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_collect_duration_seconds",
				Help:      "Time spent running git log and assembling the graph",
				Buckets:   prometheus.DefBuckets,
			},
		),
		Commits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_commits",
			Help:      "Commits in the most recently collected graph",
		}),
		Edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges in the most recently collected graph",
		}),
		Truncated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_truncated",
			Help:      "1 when the most recent graph hit its limit",
		}),
		Broadcasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "broadcasts_total",
				Help:      "Messages queued for websocket clients by type",
			},
			[]string{"type"},
		),
		WebsocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected websocket clients",
		}),
		DroppedBroadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_dropped_total",
			Help:      "Messages dropped because the broadcast queue was full",
		}),
	}

	c.registry = registry
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.Collections,
		c.CollectDuration,
		c.Commits,
		c.Edges,
		c.Truncated,
		c.Broadcasts,
		c.WebsocketClients,
		c.DroppedBroadcasts,
	)

	return c
}

// ObserveCollection records one collection attempt.
func (c *Collector) ObserveCollection(g domain.GitGraph, err error, elapsed time.Duration) {
	c.CollectDuration.Observe(elapsed.Seconds())
	if err != nil {
		c.Collections.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	c.Collections.WithLabelValues(OutcomeSuccess).Inc()
	c.Commits.Set(float64(len(g.Commits)))
	c.Edges.Set(float64(len(g.Edges)))
	if g.Truncated {
		c.Truncated.Set(1)
	} else {
		c.Truncated.Set(0)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
