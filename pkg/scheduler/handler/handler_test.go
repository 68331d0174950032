// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"testing"
	"time"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/job_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/topology_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/config"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/policy"
)

type fakeResourceManager struct {
	calls [][2]interface{}
	err   error
}

func (f *fakeResourceManager) AllocResources(jobID int32, machines []int) error {
	f.calls = append(f.calls, [2]interface{}{jobID, machines})
	return f.err
}

func newTestHandler(t *testing.T, pol policy.Policy, rm ResourceManager) *Handler {
	t.Helper()
	topo, err := topology_info.New([]int{4, 6, 6, 6})
	if err != nil {
		t.Fatalf("topology_info.New() error = %v", err)
	}
	cfg := &config.Config{Topology: topo, Policy: pol}
	h := New(cfg, rm)
	now := time.Unix(0, 0)
	h.now = func() time.Time { return now }
	return h
}

func TestAddJobSoftPlacesImmediatelyWhenRoom(t *testing.T) {
	rm := &fakeResourceManager{}
	h := newTestHandler(t, policy.Soft, rm)

	h.AddJob(1, job_info.MPI, 6, 0, 100, 200)

	if len(h.pending) != 0 {
		t.Fatalf("pending after AddJob = %d, want 0", len(h.pending))
	}
	if h.running.Len() != 1 {
		t.Fatalf("running after AddJob = %d, want 1", h.running.Len())
	}
	if len(rm.calls) != 1 {
		t.Fatalf("resource manager notified %d times, want 1", len(rm.calls))
	}
}

func TestAddJobNonePolicyFIFO(t *testing.T) {
	rm := &fakeResourceManager{}
	h := newTestHandler(t, policy.None, rm)

	h.AddJob(1, job_info.MPI, 22, 0, 100, 200)
	if h.running.Len() != 1 {
		t.Fatalf("running after first AddJob = %d, want 1 (fills whole cluster)", h.running.Len())
	}

	h.AddJob(2, job_info.MPI, 1, 0, 100, 200)
	if len(h.pending) != 1 {
		t.Fatalf("pending after second AddJob = %d, want 1 (no room left)", len(h.pending))
	}
}

func TestFreeResourcesUnblocksPending(t *testing.T) {
	rm := &fakeResourceManager{}
	h := newTestHandler(t, policy.None, rm)

	h.AddJob(1, job_info.MPI, 22, 0, 100, 200)
	h.AddJob(2, job_info.MPI, 1, 0, 50, 50)
	if len(h.pending) != 1 {
		t.Fatalf("pending before free = %d, want 1", len(h.pending))
	}

	running1 := h.running.FindByID(1)
	if running1 == nil {
		t.Fatalf("job 1 not found in running set")
	}
	machines := make([]int, 0, len(running1.Assigned))
	for id := range running1.Assigned {
		machines = append(machines, id)
	}

	h.FreeResources(machines)

	if len(h.pending) != 0 {
		t.Fatalf("pending after free = %d, want 0", len(h.pending))
	}
	if h.running.FindByID(1) != nil {
		t.Fatalf("job 1 still running after releasing every machine it held")
	}
	if h.running.FindByID(2) == nil {
		t.Fatalf("job 2 not scheduled after free")
	}
}

func TestFreeResourcesIgnoresAlreadyFreeMachine(t *testing.T) {
	h := newTestHandler(t, policy.None, &fakeResourceManager{})
	// Should not panic despite no job owning machine 0.
	h.FreeResources([]int{0})
	if h.running.Len() != 0 {
		t.Fatalf("running after no-op free = %d, want 0", h.running.Len())
	}
}

func TestHardPolicyLeavesUnplaceableJobPending(t *testing.T) {
	rm := &fakeResourceManager{}
	h := newTestHandler(t, policy.Hard, rm)

	// Occupy 3 of rack1, 3 of rack2, all of rack3 and the GPU rack so only a
	// non-preferred spread fits.
	h.machines.AssignMany(h.machines.FreeMachinesInRack(1)[:3], 99)
	h.machines.AssignMany(h.machines.FreeMachinesInRack(2)[:3], 99)
	h.machines.AssignMany(h.machines.FreeMachinesInRack(3), 99)
	h.machines.AssignMany(h.machines.FreeMachinesInRack(topology_info.GPURack), 99)

	h.AddJob(1, job_info.MPI, 6, 0, 100, 200)

	if len(h.pending) != 1 {
		t.Fatalf("pending after unplaceable-preferred AddJob = %d, want 1", len(h.pending))
	}
	if h.running.Len() != 0 {
		t.Fatalf("running after unplaceable-preferred AddJob = %d, want 0", h.running.Len())
	}
}

func TestAllocRPCFailureDoesNotRollBackPlacement(t *testing.T) {
	rm := &fakeResourceManager{err: errAllocFailed("boom")}
	h := newTestHandler(t, policy.Soft, rm)

	h.AddJob(1, job_info.MPI, 6, 0, 100, 200)

	if h.running.Len() != 1 {
		t.Fatalf("running after failed notify = %d, want 1 (placement is not rolled back)", h.running.Len())
	}
}

type errAllocFailed string

func (e errAllocFailed) Error() string { return string(e) }
