// Package obs exposes Prometheus collectors for data-quality telemetry.
// Fallback paths in the core (timestamp parsing, deal classification, ledger
// storage) must stay visible in metrics instead of degrading silently.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DataQuality counts degradations that would otherwise be invisible.
type DataQuality struct {
	TimestampFallbacks  prometheus.Counter
	ZoneGuesses         prometheus.Counter
	HeuristicClassified prometheus.Counter
	LedgerStorageErrors prometheus.Counter
}

// NewDataQuality registers the data-quality counters on reg.
func NewDataQuality(namespace string, reg prometheus.Registerer) *DataQuality {
	if namespace == "" {
		namespace = "ovenboard"
	}
	factory := promauto.With(reg)
	return &DataQuality{
		TimestampFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "core",
			Name:      "timestamp_parse_fallback_total",
			Help:      "Order timestamps that failed to parse and degraded to the current time.",
		}),
		ZoneGuesses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "core",
			Name:      "timestamp_zone_guess_total",
			Help:      "Order timestamps without an explicit offset that were interpreted as UTC.",
		}),
		HeuristicClassified: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "core",
			Name:      "deal_heuristic_fallback_total",
			Help:      "Line items classified by heuristic because no authoritative deal match was possible.",
		}),
		LedgerStorageErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "core",
			Name:      "ledger_storage_error_total",
			Help:      "Notification ledger reads/writes that failed against the backing store.",
		}),
	}
}

// NopDataQuality returns unregistered counters for tests and tooling.
func NopDataQuality() *DataQuality {
	return &DataQuality{
		TimestampFallbacks:  prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_timestamp_parse_fallback_total"}),
		ZoneGuesses:         prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_timestamp_zone_guess_total"}),
		HeuristicClassified: prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_deal_heuristic_fallback_total"}),
		LedgerStorageErrors: prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_ledger_storage_error_total"}),
	}
}
