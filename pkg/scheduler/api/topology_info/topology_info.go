// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package topology_info holds the cluster's rack layout: an ordered sequence
// of racks, each an ordered sequence of machines, immutable once built.
package topology_info

import "fmt"

// GPURack is the distinguished rack index that GPU jobs prefer and that MPI
// jobs fall back to before spreading.
const GPURack = 0

// Topology assigns dense, rack-major machine ids over a fixed set of racks.
// It never changes after construction; all mutable state (which machines
// are free) lives in machine_info.State instead.
type Topology struct {
	rackSizes  []int
	rackStart  []int
	maxPerRack int
}

// New builds a Topology from the per-rack machine counts. rackSizes must be
// non-empty and every entry must be positive.
func New(rackSizes []int) (*Topology, error) {
	if len(rackSizes) == 0 {
		return nil, fmt.Errorf("topology_info: rack_cap must have at least one rack")
	}

	rackStart := make([]int, len(rackSizes))
	start := 0
	maxPerRack := 0
	for i, size := range rackSizes {
		if size <= 0 {
			return nil, fmt.Errorf("topology_info: rack %d has non-positive capacity %d", i, size)
		}
		rackStart[i] = start
		start += size
		if size > maxPerRack {
			maxPerRack = size
		}
	}

	return &Topology{
		rackSizes:  append([]int(nil), rackSizes...),
		rackStart:  rackStart,
		maxPerRack: maxPerRack,
	}, nil
}

// NumRacks returns the number of racks in the topology.
func (t *Topology) NumRacks() int { return len(t.rackSizes) }

// NumMachines returns the total number of machines across all racks.
func (t *Topology) NumMachines() int {
	if len(t.rackStart) == 0 {
		return 0
	}
	last := len(t.rackSizes) - 1
	return t.rackStart[last] + t.rackSizes[last]
}

// MaxPerRack returns the size of the largest rack.
func (t *Topology) MaxPerRack() int { return t.maxPerRack }

// RackSize returns the number of machines in the given rack.
func (t *Topology) RackSize(rack int) int { return t.rackSizes[rack] }

// RackStart returns the machine id of the first machine in the given rack.
func (t *Topology) RackStart(rack int) int { return t.rackStart[rack] }

// RackOf returns the rack index owning the given machine id.
func (t *Topology) RackOf(machineID int) int {
	for i := len(t.rackStart) - 1; i >= 0; i-- {
		if machineID >= t.rackStart[i] {
			return i
		}
	}
	return 0
}
