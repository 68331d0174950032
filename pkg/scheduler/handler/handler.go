// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package handler holds the scheduler's authoritative state: the topology,
// machine ownership, pending jobs, and running jobs. Handler is not
// goroutine-safe on its own; the transport layer serializes access to it
// through a single worker goroutine.
package handler

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/job_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/machine_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/topology_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/config"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/log"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/metrics"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/policy"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/running_set"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/search"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/snapshot"
)

// ResourceManager is the outbound interface the handler uses to notify the
// resource manager of a committed placement. Implementations must not
// block the caller indefinitely; the HTTP implementation applies its own
// timeout.
type ResourceManager interface {
	AllocResources(jobID int32, machines []int) error
}

// Handler is the scheduler's single authoritative copy of cluster state.
// Every exported method assumes the caller has already serialized access
// (the transport layer's worker goroutine does this); Handler itself does
// no locking.
type Handler struct {
	topology *topology_info.Topology
	machines *machine_info.State
	pending  []*job_info.Job
	running  *running_set.RunningSet
	policy   policy.Policy

	rm  ResourceManager
	now func() time.Time
	rng *rand.Rand
}

// New builds a Handler from a resolved configuration.
func New(cfg *config.Config, rm ResourceManager) *Handler {
	return &Handler{
		topology: cfg.Topology,
		machines: machine_info.NewState(cfg.Topology),
		running:  running_set.New(),
		policy:   cfg.Policy,
		rm:       rm,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddJob admits a new job and immediately attempts to schedule it, matching
// the original scheduler's behavior of scheduling synchronously on every
// admission and every free.
func (h *Handler) AddJob(id int32, jobType job_info.Type, k int, priority int32, fast, slow float64) {
	if fast <= 0 || slow <= 0 {
		log.InfraLogger.Warnf("job %d: duration parameters should be positive (fast=%f slow=%f)", id, fast, slow)
	}
	if jobType != job_info.MPI && jobType != job_info.GPU {
		log.InfraLogger.Warnf("job %d: unknown job type %d; the planner cannot place it", id, int32(jobType))
	}
	log.InfraLogger.V(1).Infof("new job arrived: id=%d type=%s k=%d fast=%f slow=%f", id, jobType, k, fast, slow)

	h.pending = append(h.pending, job_info.New(id, jobType, k, priority, fast, slow, h.now()))
	h.Schedule()
}

// FreeResources releases a set of machines, finishing any job whose last
// machine is released, then reschedules.
func (h *Handler) FreeResources(machineIDs []int) {
	for _, id := range machineIDs {
		if id < 0 || id >= h.topology.NumMachines() {
			log.InfraLogger.Warnf("free: unknown machine %d", id)
			continue
		}
		owner, ok := h.machines.Owner(id)
		if !ok {
			log.InfraLogger.Warnf("free: machine %d already free", id)
			continue
		}
		h.machines.Free(id)

		j := h.running.FindByID(owner)
		if j == nil {
			log.InfraLogger.Warnf("free: machine %d owned by unknown job %d", id, owner)
			continue
		}
		j.ReleaseMachine(id)
		if j.IsFinished() {
			h.running.RemoveByID(j.ID)
			log.InfraLogger.V(1).Infof("job %d finished", j.ID)
		}
	}
	h.Schedule()
}

// Schedule dispatches to FIFO-random placement under the none policy, or
// the lookahead planner otherwise, then reports post-schedule metrics.
func (h *Handler) Schedule() {
	start := time.Now()
	defer func() {
		metrics.ScheduleDuration.Observe(time.Since(start).Seconds())
		h.reportMetrics()
	}()

	if h.policy == policy.None {
		h.scheduleNone()
		return
	}
	h.scheduleSearch()
}

// scheduleNone implements the none policy: strict FIFO admission order,
// with machines chosen uniformly at random rather than by rack locality.
func (h *Handler) scheduleNone() {
	for len(h.pending) > 0 {
		j := h.pending[0]
		if j.K > h.machines.TotalFree() {
			break
		}

		free := h.machines.FreeMachines()
		h.rng.Shuffle(len(free), func(i, k int) { free[i], free[k] = free[k], free[i] })
		chosen := free[:j.K]

		h.pending = h.pending[1:]
		now := h.now()
		h.machines.AssignMany(chosen, j.ID)
		j.Start(chosen, false, now)
		h.running.Push(j)

		h.notifyResourceManager(j.ID, chosen)
		metrics.PlacementsTotal.WithLabelValues(h.policy.String(), "false").Inc()
	}
}

// scheduleSearch implements the soft and hard policies: it clones the
// current state into a snapshot, runs the lookahead planner, and applies
// every decision it returns to the authoritative state.
func (h *Handler) scheduleSearch() {
	snap := snapshot.New(h.topology, h.machines.Clone(), clonePending(h.pending), h.running.Clone(), h.policy)
	decisions := search.Schedule(snap, h.now())

	for _, d := range decisions {
		j := h.removePending(d.JobID)
		if j == nil {
			log.InfraLogger.Errorf("search returned decision for unknown pending job %d", d.JobID)
			continue
		}

		now := h.now()
		h.machines.AssignMany(d.Machines, j.ID)
		j.Start(d.Machines, d.Preferred, now)
		h.running.Push(j)

		h.notifyResourceManager(j.ID, d.Machines)
		metrics.PlacementsTotal.WithLabelValues(h.policy.String(), strconv.FormatBool(d.Preferred)).Inc()
	}
}

func (h *Handler) removePending(id int32) *job_info.Job {
	for i, j := range h.pending {
		if j.ID == id {
			h.pending = append(h.pending[:i], h.pending[i+1:]...)
			return j
		}
	}
	return nil
}

func (h *Handler) notifyResourceManager(jobID int32, machines []int) {
	if h.rm == nil {
		return
	}
	if err := h.rm.AllocResources(jobID, machines); err != nil {
		metrics.AllocRPCFailures.Inc()
		log.InfraLogger.Errorf("AllocResources(%d) failed: %v", jobID, err)
	}
}

func (h *Handler) reportMetrics() {
	for rack, free := range h.machines.FreeCountByRack() {
		metrics.FreeMachinesPerRack.WithLabelValues(strconv.Itoa(rack)).Set(float64(free))
	}
	metrics.PendingJobs.Set(float64(len(h.pending)))
	metrics.RunningJobs.Set(float64(h.running.Len()))
}

func clonePending(jobs []*job_info.Job) []*job_info.Job {
	clones := make([]*job_info.Job, len(jobs))
	for i, j := range jobs {
		clones[i] = j.Clone()
	}
	return clones
}
