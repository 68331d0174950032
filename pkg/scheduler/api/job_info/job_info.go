// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package job_info holds the scheduler's view of a single batch job: its
// immutable request fields and the mutable runtime state assigned to it once
// it is placed.
package job_info

import (
	"time"
)

// Type is the job's workload class. The wire values match the inbound RPC
// enum; MPI and GPU are the only types the planner understands.
type Type int32

const (
	MPI Type = 0
	GPU Type = 2
)

func (t Type) String() string {
	switch t {
	case MPI:
		return "MPI"
	case GPU:
		return "GPU"
	default:
		return "Unknown"
	}
}

// UtilityHorizon is the fixed deadline, in seconds, past which a placement
// contributes zero utility regardless of how early it could have run.
const UtilityHorizon = 1200.0

// Job is the scheduler's record of one submitted workload. A Job is either
// pending (held by a handler's pending list, Assigned empty) or running
// (held by a RunningSet, |Assigned| == K). It is never shared between the
// authoritative state and a search snapshot: Clone produces an independent
// copy before it crosses that boundary.
type Job struct {
	ID           int32
	Type         Type
	K            int
	Priority     int32
	DurationFast float64
	DurationSlow float64
	ArriveTime   time.Time

	StartTime time.Time
	Preferred bool
	Assigned  map[int]struct{}
}

// New creates a pending job admitted at arriveTime.
func New(id int32, jobType Type, k int, priority int32, fast, slow float64, arriveTime time.Time) *Job {
	return &Job{
		ID:           id,
		Type:         jobType,
		K:            k,
		Priority:     priority,
		DurationFast: fast,
		DurationSlow: slow,
		ArriveTime:   arriveTime,
	}
}

// Clone returns a deep copy safe to mutate independently of the original,
// used whenever a job crosses into a search Snapshot.
func (j *Job) Clone() *Job {
	clone := *j
	if j.Assigned != nil {
		clone.Assigned = make(map[int]struct{}, len(j.Assigned))
		for id := range j.Assigned {
			clone.Assigned[id] = struct{}{}
		}
	}
	return &clone
}

// Start transitions the job to running: it records the placement machines,
// whether the placement satisfied the job's preference, and the start time.
func (j *Job) Start(machines []int, preferred bool, now time.Time) {
	j.StartTime = now
	j.Preferred = preferred
	j.Assigned = make(map[int]struct{}, len(machines))
	for _, m := range machines {
		j.Assigned[m] = struct{}{}
	}
}

// ReleaseMachine drops one machine from the job's assignment, as happens
// when FreeResources names one of its machines. The job is finished once
// this empties Assigned.
func (j *Job) ReleaseMachine(machineID int) {
	delete(j.Assigned, machineID)
}

// IsFinished reports whether a previously-started job has given up every
// assigned machine.
func (j *Job) IsFinished() bool {
	return !j.StartTime.IsZero() && len(j.Assigned) == 0
}

// Duration returns the realized runtime for the job given how it was
// placed: the fast duration on its preferred topology, the slow duration
// otherwise.
func (j *Job) Duration() float64 {
	if j.Preferred {
		return j.DurationFast
	}
	return j.DurationSlow
}

// FinishTime returns the projected completion time of a running job.
func (j *Job) FinishTime() time.Time {
	return j.StartTime.Add(time.Duration(j.Duration() * float64(time.Second)))
}

// CalUtility computes the time-decayed utility of running this job at
// curTime under the given preference outcome: max(0, 1200 - waiting -
// running). It does not mutate the job, so it may be called speculatively
// by the search planner before a placement is committed.
func (j *Job) CalUtility(curTime time.Time, preferred bool) float64 {
	waiting := curTime.Sub(j.ArriveTime).Seconds()
	if waiting < 0 {
		waiting = 0
	}
	running := j.DurationSlow
	if preferred {
		running = j.DurationFast
	}
	u := UtilityHorizon - waiting - running
	if u < 0 {
		return 0
	}
	return u
}
