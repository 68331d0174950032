// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package machine_info tracks which job, if any, owns each machine in a
// Topology. It is the only mutable piece of cluster state the Placer reads.
package machine_info

import "github.com/linquanchen/tetrischeduler/pkg/scheduler/api/topology_info"

const unowned int32 = -1

// State is the ownership table for every machine in a Topology: free, or
// bound to exactly one job. A State never outlives the Topology it was built
// from; cloning a State shares the Topology pointer (it is immutable) and
// copies only the owner slice.
type State struct {
	topology *topology_info.Topology
	owner    []int32
}

// NewState returns a State with every machine free.
func NewState(t *topology_info.Topology) *State {
	owner := make([]int32, t.NumMachines())
	for i := range owner {
		owner[i] = unowned
	}
	return &State{topology: t, owner: owner}
}

// Topology returns the topology this state was built from.
func (s *State) Topology() *topology_info.Topology { return s.topology }

// IsFree reports whether the given machine currently has no owner.
func (s *State) IsFree(machineID int) bool { return s.owner[machineID] == unowned }

// Owner returns the job id owning the given machine, and false if it is
// free.
func (s *State) Owner(machineID int) (int32, bool) {
	o := s.owner[machineID]
	if o == unowned {
		return 0, false
	}
	return o, true
}

// Assign binds a single machine to a job. The caller must already know the
// machine is free; Assign does not check.
func (s *State) Assign(machineID int, jobID int32) {
	s.owner[machineID] = jobID
}

// AssignMany binds every machine in the slice to jobID.
func (s *State) AssignMany(machineIDs []int, jobID int32) {
	for _, id := range machineIDs {
		s.owner[id] = jobID
	}
}

// Free releases a single machine back to the free pool.
func (s *State) Free(machineID int) {
	s.owner[machineID] = unowned
}

// TotalFree returns the number of free machines across the whole cluster.
func (s *State) TotalFree() int {
	count := 0
	for _, o := range s.owner {
		if o == unowned {
			count++
		}
	}
	return count
}

// FreeCountByRack returns, for each rack, the number of free machines in it.
func (s *State) FreeCountByRack() []int {
	counts := make([]int, s.topology.NumRacks())
	for rack := 0; rack < s.topology.NumRacks(); rack++ {
		start := s.topology.RackStart(rack)
		size := s.topology.RackSize(rack)
		free := 0
		for id := start; id < start+size; id++ {
			if s.owner[id] == unowned {
				free++
			}
		}
		counts[rack] = free
	}
	return counts
}

// FreeMachines returns every free machine id across the whole cluster, in
// ascending order. Used by the none policy's random placement, which does
// not care about rack locality.
func (s *State) FreeMachines() []int {
	var ids []int
	for id, o := range s.owner {
		if o == unowned {
			ids = append(ids, id)
		}
	}
	return ids
}

// FreeMachinesInRack returns the free machine ids in the given rack, in
// ascending (rack-local index) order.
func (s *State) FreeMachinesInRack(rack int) []int {
	start := s.topology.RackStart(rack)
	size := s.topology.RackSize(rack)
	var ids []int
	for id := start; id < start+size; id++ {
		if s.owner[id] == unowned {
			ids = append(ids, id)
		}
	}
	return ids
}

// Clone returns an independent copy of the ownership table, sharing the
// (immutable) topology.
func (s *State) Clone() *State {
	owner := make([]int32, len(s.owner))
	copy(owner, s.owner)
	return &State{topology: s.topology, owner: owner}
}
