// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package placement chooses which free machines to hand to a job, honoring
// rack locality and the distinguished GPU rack. It never mutates the
// machine_info.State it reads; callers mark machines allocated separately.
package placement

import (
	"fmt"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/job_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/machine_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/topology_info"
)

// ErrUnknownJobType is returned when Place is asked to place a job type the
// planner does not recognize. Callers should log and treat the job as
// unplaceable rather than propagate the error across the event loop.
var ErrUnknownJobType = fmt.Errorf("placement: unknown job type")

// ErrInsufficientCapacity is returned when k exceeds the cluster's total
// free machine count. Place's contract requires callers to pre-check this;
// it is returned rather than panicking so a misbehaving caller fails loud
// in tests instead of corrupting state.
var ErrInsufficientCapacity = fmt.Errorf("placement: insufficient free machines")

// Place returns exactly k free machine ids for a job of the given type, and
// whether the placement satisfies the job's preference (MPI: single
// non-GPU rack; GPU: the GPU rack). It fails only on an unknown job type or
// when fewer than k machines are free anywhere in the cluster.
func Place(m *machine_info.State, t *topology_info.Topology, jobType job_info.Type, k int) ([]int, bool, error) {
	if k > m.TotalFree() {
		return nil, false, ErrInsufficientCapacity
	}

	switch jobType {
	case job_info.MPI:
		return placeMPI(m, t, k)
	case job_info.GPU:
		return placeGPU(m, t, k)
	default:
		return nil, false, fmt.Errorf("%w: %v", ErrUnknownJobType, jobType)
	}
}

func placeMPI(m *machine_info.State, t *topology_info.Topology, k int) ([]int, bool, error) {
	freeByRack := m.FreeCountByRack()

	bestRack, bestFree := -1, t.MaxPerRack()+1
	for rack := 1; rack < t.NumRacks(); rack++ {
		free := freeByRack[rack]
		if free >= k && free < bestFree {
			bestRack, bestFree = rack, free
		}
	}
	if bestRack != -1 {
		return takeFromRack(m, bestRack, k), true, nil
	}

	if freeByRack[topology_info.GPURack] >= k {
		return takeFromRack(m, topology_info.GPURack, k), true, nil
	}

	return spread(m, t, freeByRack, k), false, nil
}

func placeGPU(m *machine_info.State, t *topology_info.Topology, k int) ([]int, bool, error) {
	freeByRack := m.FreeCountByRack()

	if freeByRack[topology_info.GPURack] >= k {
		return takeFromRack(m, topology_info.GPURack, k), true, nil
	}

	return spread(m, t, freeByRack, k), false, nil
}

// spread fills k machines across racks smallest-free-first, taking a
// rack's entire remaining free count before moving to the next. The
// caller's k <= total-free invariant guarantees this terminates.
func spread(m *machine_info.State, t *topology_info.Topology, freeByRack []int, k int) []int {
	var result []int
	for k > 0 {
		rack := findMinRack(freeByRack, t.MaxPerRack())
		take := freeByRack[rack]
		if take > k {
			take = k
		}
		result = append(result, takeFromRack(m, rack, take)...)
		k -= take
		freeByRack[rack] -= take
	}
	return result
}

// findMinRack returns the rack with the fewest non-zero free machines,
// ties broken by lowest index.
func findMinRack(freeByRack []int, maxPerRack int) int {
	index, min := -1, maxPerRack+1
	for i, free := range freeByRack {
		if free != 0 && free < min {
			min, index = free, i
		}
	}
	return index
}

func takeFromRack(m *machine_info.State, rack, k int) []int {
	ids := m.FreeMachinesInRack(rack)
	return append([]int(nil), ids[:k]...)
}
