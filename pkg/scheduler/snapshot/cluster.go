// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package snapshot provides Cluster, a deep-copyable value holding a
// topology, machine ownership, and job lists. The search planner explores
// "run now vs delay" decisions entirely within Cluster values so it never
// touches the handler's authoritative state.
package snapshot

import (
	"time"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/job_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/machine_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/topology_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/placement"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/policy"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/running_set"
)

// Cluster is a speculative view of the cluster: a topology (shared,
// immutable), a machine ownership table, the pending job list, the running
// set, and the policy governing placement decisions within it.
type Cluster struct {
	Topology *topology_info.Topology
	Machines *machine_info.State
	Pending  []*job_info.Job
	Running  *running_set.RunningSet
	Policy   policy.Policy
}

// New builds a Cluster from already-owned (not shared) components. Used by
// the handler to construct the first snapshot of a Schedule call; every
// field handed in must already be an independent copy.
func New(topo *topology_info.Topology, machines *machine_info.State, pending []*job_info.Job,
	running *running_set.RunningSet, pol policy.Policy) *Cluster {
	return &Cluster{
		Topology: topo,
		Machines: machines,
		Pending:  pending,
		Running:  running,
		Policy:   pol,
	}
}

// Clone returns an independent deep copy: the topology is shared (it is
// immutable), the machine ownership table and every job are copied.
func (c *Cluster) Clone() *Cluster {
	pending := make([]*job_info.Job, len(c.Pending))
	for i, j := range c.Pending {
		pending[i] = j.Clone()
	}
	return &Cluster{
		Topology: c.Topology,
		Machines: c.Machines.Clone(),
		Pending:  pending,
		Running:  c.Running.Clone(),
		Policy:   c.Policy,
	}
}

// PlaceBest asks the Placer for the best machines for a job's type and
// count against this cluster's current free set. It does not mutate
// anything; callers must call Allocate to commit the result.
func (c *Cluster) PlaceBest(j *job_info.Job) ([]int, bool, error) {
	return placement.Place(c.Machines, c.Topology, j.Type, j.K)
}

// Allocate commits a placement: marks each machine owned by j and starts
// the job at now.
func (c *Cluster) Allocate(j *job_info.Job, machines []int, preferred bool, now time.Time) {
	c.Machines.AssignMany(machines, j.ID)
	j.Start(machines, preferred, now)
}

// FreeByJob releases every machine j holds and empties its assignment.
func (c *Cluster) FreeByJob(j *job_info.Job) {
	for id := range j.Assigned {
		c.Machines.Free(id)
	}
	j.Assigned = map[int]struct{}{}
}

// RemovePending removes and returns the pending job with the given id, or
// nil if none is pending under that id.
func (c *Cluster) RemovePending(id int32) *job_info.Job {
	for i, j := range c.Pending {
		if j.ID == id {
			c.Pending = append(c.Pending[:i], c.Pending[i+1:]...)
			return j
		}
	}
	return nil
}

// PushPending appends a job to the pending list (used when the planner
// decides to delay a job it had tentatively placed).
func (c *Cluster) PushPending(j *job_info.Job) {
	c.Pending = append(c.Pending, j)
}
