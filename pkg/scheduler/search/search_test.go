// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"testing"
	"time"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/job_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/machine_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/topology_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/policy"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/running_set"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/snapshot"
)

func newTestTopology(t *testing.T) *topology_info.Topology {
	t.Helper()
	topo, err := topology_info.New([]int{4, 6, 6, 6})
	if err != nil {
		t.Fatalf("topology_info.New() error = %v", err)
	}
	return topo
}

func TestScheduleNoRunningJobsPlacesGreedily(t *testing.T) {
	topo := newTestTopology(t)
	now := time.Unix(0, 0)
	pending := []*job_info.Job{
		job_info.New(1, job_info.MPI, 6, 0, 100, 200, now),
	}
	c := snapshot.New(topo, machine_info.NewState(topo), pending, running_set.New(), policy.Soft)

	decisions := Schedule(c, now)
	if len(decisions) != 1 {
		t.Fatalf("Schedule() returned %d decisions, want 1", len(decisions))
	}
	if decisions[0].JobID != 1 {
		t.Fatalf("decision job id = %d, want 1", decisions[0].JobID)
	}
	if !decisions[0].Preferred {
		t.Fatalf("expected job to land preferred with an empty cluster")
	}
	if len(decisions[0].Machines) != 6 {
		t.Fatalf("decision machines = %v, want 6 machines", decisions[0].Machines)
	}
}

func TestScheduleHardPolicySkipsNonPreferred(t *testing.T) {
	topo := newTestTopology(t)
	now := time.Unix(0, 0)
	machines := machine_info.NewState(topo)
	// Leave exactly 3 free machines in each of rack1 and rack2 (6 total,
	// enough capacity for the job), with rack3 and the GPU rack entirely
	// occupied. No single rack can fit the 6-wide request, and the GPU rack
	// is too small regardless, so the only placement is a non-preferred
	// spread across rack1 and rack2.
	machines.AssignMany(machines.FreeMachinesInRack(1)[:3], 99)
	machines.AssignMany(machines.FreeMachinesInRack(2)[:3], 99)
	machines.AssignMany(machines.FreeMachinesInRack(3), 99)
	machines.AssignMany(machines.FreeMachinesInRack(topology_info.GPURack), 99)

	pending := []*job_info.Job{
		job_info.New(1, job_info.MPI, 6, 0, 100, 200, now),
	}
	c := snapshot.New(topo, machines, pending, running_set.New(), policy.Hard)

	decisions := Schedule(c, now)
	if len(decisions) != 0 {
		t.Fatalf("Schedule() under hard policy returned %d decisions for an unplaceable-preferred job, want 0", len(decisions))
	}
}

// TestSearchDelaysForHigherUtility exercises the internal search function
// directly (bypassing Schedule's SearchStep gate on the running-set size)
// with a single running job, so the delay-branching logic can be tested
// without needing five running jobs to trigger it.
func TestSearchDelaysForHigherUtility(t *testing.T) {
	topo := newTestTopology(t)
	now := time.Unix(0, 0)

	occupied := machine_info.NewState(topo)
	gpuMachines := occupied.FreeMachinesInRack(topology_info.GPURack)
	occupied.AssignMany(gpuMachines, 100)

	runner := job_info.New(100, job_info.GPU, 4, 0, 50, 50, now.Add(-40*time.Second))
	runner.Start(gpuMachines, true, now.Add(-40*time.Second))
	running := running_set.New()
	running.Push(runner)

	// duration_fast (preferred, GPU rack) is short; duration_slow (spread
	// placement) is long. Placed now it can only spread (GPU rack is
	// full), so running it immediately costs 900s of utility decay.
	// Delaying until the runner frees the GPU rack lets it run preferred
	// for only 10s, for a far higher net utility despite the wait.
	pending := []*job_info.Job{
		job_info.New(1, job_info.GPU, 4, 0, 10, 900, now),
	}

	c := snapshot.New(topo, occupied, pending, running, policy.Soft)
	result := search(c, 2, runner.ID, true, now)

	// A decision to delay contributes no placement to apply now: the job
	// stays pending in this frame, and only reappears as a real decision
	// once a later Schedule call's own greedy fill places it after the
	// runner has actually freed the GPU rack.
	if len(result.decisions) != 0 {
		t.Fatalf("search() returned %d decisions, want 0 (job should be delayed, not placed now)", len(result.decisions))
	}
	// Confirm the delay branch was chosen for the right reason: it found
	// far more total utility (running preferred after the wait) than
	// placing now non-preferred would have (300).
	if result.utility <= 300 {
		t.Fatalf("search() utility = %v, want > 300 (delay branch should have won)", result.utility)
	}
}
