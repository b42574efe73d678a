package sysv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	listsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "valist_built_total",
		Help: "Number of variadic argument lists built with at least one argument.",
	})
	emptyListsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "valist_empty_built_total",
		Help: "Number of builds that returned the shared empty list.",
	})
	buildFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "valist_build_failures_total",
		Help: "Number of builds that failed and released their allocations.",
	})
	satellitesAllocated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "valist_satellites_total",
		Help: "Number of satellite buffers allocated for by-reference aggregates.",
	})
	slotBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "valist_slot_bytes_total",
		Help: "Bytes of slot storage allocated by successful builds.",
	})
	slotsRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "valist_reads_total",
		Help: "Number of slots consumed by Next, by argument class.",
	}, []string{"class"})
)
