// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package search implements the bounded-depth lookahead planner: it decides,
// for each pending job, whether to run it now or delay it, by simulating
// a fixed number of future job completions and comparing total utility
// across delay lengths.
package search

import (
	"sort"
	"time"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/job_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/policy"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/snapshot"
)

const (
	// SearchStep bounds how many of the currently-running jobs are
	// consumed to find the search horizon's end marker.
	SearchStep = 5
	// ExtraSearchStep bounds the recursion depth of the planner once the
	// horizon end is known.
	ExtraSearchStep = 7
)

// Decision is one placement the planner committed to: a job id, whether
// the placement honors topology preference, and the machines assigned.
type Decision struct {
	JobID     int32
	Preferred bool
	Machines  []int
}

// Schedule runs the planner over c and returns the decisions to apply to
// the authoritative cluster. c is consumed; callers should pass a fresh
// clone (or a snapshot never reused elsewhere).
func Schedule(c *snapshot.Cluster, now time.Time) []Decision {
	endID, hasEnd := findSearchEndJobID(c, SearchStep)
	result := search(c, ExtraSearchStep, endID, hasEnd, now)
	return result.decisions
}

type searchResult struct {
	decisions []Decision
	utility   float64
}

// findSearchEndJobID pops up to step jobs off a clone of the running set to
// find the id of the search horizon's last job. If fewer than step jobs are
// running, there is no horizon end: the planner performs a single greedy
// pass with no delay branching.
func findSearchEndJobID(c *snapshot.Cluster, step int) (int32, bool) {
	if c.Running.Len() < step {
		return 0, false
	}
	clone := c.Running.Clone()
	var last *job_info.Job
	for i := 0; i < step; i++ {
		last = clone.Pop()
	}
	return last.ID, true
}

// search is the recursive planner step. It greedily places as many pending
// jobs as improve utility, then -- if a search horizon remains -- branches
// over how many of those newly-placed jobs to "un-place" (delay) before
// simulating the next running-job completion and recursing. The branch
// with the greatest total utility wins; ties favor the smallest delay
// suffix because only strictly greater totals replace the current best.
//
// The returned decisions are always this frame's own kept placements only
// -- never the recursive call's. A deeper frame's greedy fill only places
// jobs onto machines a *simulated* future completion freed; those machines
// are still owned by a running job in the authoritative cluster, so that
// frame's decisions are not valid to apply now. Only its utility feeds the
// selection here.
func search(c *snapshot.Cluster, step int, endID int32, hasEnd bool, curTime time.Time) searchResult {
	// With no planning steps left but the horizon end still ahead, nothing
	// new is scheduled: time simply advances past running completions
	// until the horizon end is reached (or the running set drains).
	for step == 0 && hasEnd {
		endID, hasEnd, curTime = simulateNext(c, endID, curTime)
	}

	placed, placedUtil := greedyFill(c, curTime)

	if !hasEnd {
		return searchResult{
			decisions: constructResult(placed),
			utility:   placedUtil,
		}
	}

	bestUtility := negativeInfinity
	var best searchResult
	for d := 0; d <= len(placed); d++ {
		// Each branch gets its own clones of the jobs it places or delays:
		// the recursive call below may further mutate them (re-placing a
		// delayed job, simulating completions), and those mutations must
		// never leak into a sibling branch that shares the same d-loop.
		branchJobs := make([]*job_info.Job, len(placed))
		for i, j := range placed {
			branchJobs[i] = j.Clone()
		}
		kept := branchJobs[:len(branchJobs)-d]
		delayed := branchJobs[len(branchJobs)-d:]

		branch := c.Clone()
		for _, j := range delayed {
			branch.FreeByJob(j)
			j.StartTime = time.Time{}
			branch.PushPending(j)
		}
		// kept jobs are tentatively running for the rest of this branch's
		// simulation: folding them into Running lets simulateNext notice
		// when one of them finishes first, freeing its machines for the
		// next recursive greedy pass, exactly as it would for a job that
		// was already running when this search began.
		for _, j := range kept {
			branch.Running.Push(j)
		}

		nextEnd, nextHasEnd, nextTime := simulateNext(branch, endID, curTime)
		sub := search(branch, step-1, nextEnd, nextHasEnd, nextTime)

		// sub.decisions names machines only simulateNext's simulated
		// completions freed; those machines are still owned by a running
		// job in the authoritative cluster. Only this frame's own kept
		// placements are real decisions to apply now — sub.utility feeds
		// selection, but sub.decisions must never surface.
		total := utilitySum(kept, curTime) + sub.utility
		if total > bestUtility {
			bestUtility = total
			best = searchResult{
				decisions: constructResult(kept),
				utility:   total,
			}
		}
	}
	return best
}

const negativeInfinity = -1e18

// greedyFill repeatedly picks the pending job with the highest current
// utility that can be placed, allocates it, and removes it from Pending,
// until no remaining candidate has positive utility. Under Hard policy,
// non-preferred candidates are skipped entirely (they remain pending
// indefinitely rather than spreading across racks).
func greedyFill(c *snapshot.Cluster, curTime time.Time) ([]*job_info.Job, float64) {
	var placed []*job_info.Job
	var total float64

	for {
		bestIdx := -1
		var bestMachines []int
		var bestPreferred bool
		bestUtil := 0.0

		for i, j := range c.Pending {
			if j.K > c.Machines.TotalFree() {
				continue
			}
			machines, preferred, err := c.PlaceBest(j)
			if err != nil {
				continue
			}
			if c.Policy == policy.Hard && !preferred {
				continue
			}
			u := j.CalUtility(curTime, preferred)
			if u > bestUtil {
				bestUtil = u
				bestIdx = i
				bestMachines = machines
				bestPreferred = preferred
			}
		}

		if bestIdx == -1 {
			break
		}

		j := c.Pending[bestIdx]
		c.Pending = append(c.Pending[:bestIdx], c.Pending[bestIdx+1:]...)
		c.Allocate(j, bestMachines, bestPreferred, curTime)
		placed = append(placed, j)
		total += bestUtil
	}

	return placed, total
}

// simulateNext advances time to the next running job's projected
// completion, pops and frees it, and reports the new search horizon state.
// If the popped job was the horizon end, the horizon is exhausted.
func simulateNext(c *snapshot.Cluster, endID int32, curTime time.Time) (int32, bool, time.Time) {
	next := c.Running.Pop()
	if next == nil {
		return 0, false, curTime
	}
	c.FreeByJob(next)
	nextTime := next.FinishTime()
	if nextTime.Before(curTime) {
		nextTime = curTime
	}
	if next.ID == endID {
		return 0, false, nextTime
	}
	return endID, true, nextTime
}

func utilitySum(jobs []*job_info.Job, curTime time.Time) float64 {
	var sum float64
	for _, j := range jobs {
		sum += j.CalUtility(curTime, j.Preferred)
	}
	return sum
}

// constructResult converts placed jobs into decisions, each with machines
// sorted ascending for deterministic output.
func constructResult(jobs []*job_info.Job) []Decision {
	decisions := make([]Decision, 0, len(jobs))
	for _, j := range jobs {
		machines := make([]int, 0, len(j.Assigned))
		for id := range j.Assigned {
			machines = append(machines, id)
		}
		sort.Ints(machines)
		decisions = append(decisions, Decision{
			JobID:     j.ID,
			Preferred: j.Preferred,
			Machines:  machines,
		})
	}
	return decisions
}
