// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Inserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbor_inserts_total",
		Help: "Keys inserted into the index.",
	})
	Searches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbor_searches_total",
		Help: "Search requests served.",
	})
	SearchHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbor_search_hits_total",
		Help: "Searches that found a key.",
	})
	WALAppends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbor_wal_appends_total",
		Help: "Records appended to the write-ahead log.",
	})
	BroadcastPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbor_broadcast_published_total",
		Help: "Outbox events acknowledged by the broker.",
	})
	BroadcastFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbor_broadcast_failed_total",
		Help: "Outbox publish attempts that failed.",
	})

	TreeSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbor_tree_size",
		Help: "Nodes currently in the tree.",
	})
	TreeRotations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arbor_tree_rotations",
		Help: "Cumulative rotations performed by insertion fix-up.",
	}, []string{"direction"})
	TreeRecolors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbor_tree_recolors",
		Help: "Cumulative red-uncle recolorings performed by fix-up.",
	})
)
