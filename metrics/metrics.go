// Package metrics exposes Prometheus instrumentation for plantask.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlanExtractions counts plan extractions by strategy
	// ("structured" or "heuristic").
	PlanExtractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plantask",
		Name:      "plan_extractions_total",
		Help:      "Plan extractions by parsing strategy.",
	}, []string{"strategy"})

	// PlanExtractionFallbacks counts heuristic extractions that produced
	// the generic fallback subtask list.
	PlanExtractionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plantask",
		Name:      "plan_extraction_fallbacks_total",
		Help:      "Heuristic extractions that fell back to the generic subtask list.",
	})

	// TasksMaterialized counts tasks persisted from plans.
	TasksMaterialized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plantask",
		Name:      "tasks_materialized_total",
		Help:      "Tasks persisted from extracted plans.",
	})

	// TaskPersistFailures counts task documents that failed to persist.
	TaskPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plantask",
		Name:      "task_persist_failures_total",
		Help:      "Task documents that failed to persist.",
	})

	// ModuleLoads counts registry load attempts by result
	// ("loaded", "failed", "noop").
	ModuleLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plantask",
		Name:      "module_loads_total",
		Help:      "Module registry load attempts by result.",
	}, []string{"result"})

	// HistoryEntries counts recorded history entries by type.
	HistoryEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plantask",
		Name:      "history_entries_total",
		Help:      "History ledger entries recorded by entry type.",
	}, []string{"type"})

	// GenerationRetries counts size-reduction retries against the
	// text generation backend.
	GenerationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plantask",
		Name:      "generation_size_retries_total",
		Help:      "Generation requests retried with a reduced image payload.",
	})
)
