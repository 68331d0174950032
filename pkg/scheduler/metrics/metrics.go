// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes the scheduler's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FreeMachinesPerRack reports the current free machine count of each
	// rack, updated after every Schedule call.
	FreeMachinesPerRack = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scheduler_free_machines",
		Help: "Number of free machines in a rack.",
	}, []string{"rack"})

	// PendingJobs reports the current size of the pending job list.
	PendingJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_pending_jobs",
		Help: "Number of jobs waiting to be scheduled.",
	})

	// RunningJobs reports the current size of the running set.
	RunningJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_running_jobs",
		Help: "Number of jobs currently running.",
	})

	// PlacementsTotal counts every committed placement, split by policy and
	// whether it satisfied the job's topology preference.
	PlacementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_placements_total",
		Help: "Total placements committed, by policy and preference outcome.",
	}, []string{"policy", "preferred"})

	// ScheduleDuration measures wall-clock time spent inside one Schedule
	// call, including the search planner's recursive exploration.
	ScheduleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_schedule_duration_seconds",
		Help:    "Time spent in a single Schedule call.",
		Buckets: prometheus.DefBuckets,
	})

	// AllocRPCFailures counts failed outbound calls to the resource
	// manager's alloc endpoint.
	AllocRPCFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_alloc_rpc_failures_total",
		Help: "Total outbound AllocResources calls that failed.",
	})
)
