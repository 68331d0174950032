// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package running_set implements the RunningSet: a priority queue of
// running jobs keyed by projected completion time, with ties broken by
// insertion order.
package running_set

import (
	"container/heap"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/job_info"
)

// RunningSet holds every currently-running job. Its top always has the
// minimum projected completion time.
type RunningSet struct {
	q       priorityQueue
	nextSeq int64
}

// New returns an empty RunningSet.
func New() *RunningSet {
	return &RunningSet{}
}

// Len returns the number of running jobs.
func (r *RunningSet) Len() int { return r.q.Len() }

// Push adds a running job to the set.
func (r *RunningSet) Push(j *job_info.Job) {
	heap.Push(&r.q, &entry{job: j, seq: r.nextSeq})
	r.nextSeq++
}

// Pop removes and returns the job with the earliest projected completion,
// or nil if the set is empty.
func (r *RunningSet) Pop() *job_info.Job {
	if r.q.Len() == 0 {
		return nil
	}
	e := heap.Pop(&r.q).(*entry)
	return e.job
}

// Peek returns the job with the earliest projected completion without
// removing it, or nil if the set is empty.
func (r *RunningSet) Peek() *job_info.Job {
	e := r.q.Peek()
	if e == nil {
		return nil
	}
	return e.job
}

// FindByID returns the running job with the given id without removing it,
// or nil if no such job is running. The returned pointer aliases the set's
// own storage, so mutating it (e.g. releasing a machine) is reflected in
// place; removing it still requires RemoveByID to restore the heap
// invariant.
func (r *RunningSet) FindByID(id int32) *job_info.Job {
	for _, e := range r.q.items {
		if e.job.ID == id {
			return e.job
		}
	}
	return nil
}

// RemoveByID removes the running job with the given id, rebuilding the
// heap. The handler calls it once per finished job (when FreeResources
// releases a job's last machine), so a full rebuild is simpler than
// tracking per-item heap indices.
func (r *RunningSet) RemoveByID(id int32) bool {
	for i, e := range r.q.items {
		if e.job.ID == id {
			r.q.items = append(r.q.items[:i], r.q.items[i+1:]...)
			heap.Init(&r.q)
			return true
		}
	}
	return false
}

// All returns every running job in no particular order. Used for read-only
// inspection (metrics, tests); callers must not mutate the slice's jobs in
// ways that would invalidate the heap's finish-time ordering.
func (r *RunningSet) All() []*job_info.Job {
	jobs := make([]*job_info.Job, len(r.q.items))
	for i, e := range r.q.items {
		jobs[i] = e.job
	}
	return jobs
}

// Clone returns a deep copy: every job is cloned, and the clone's own
// insertion sequence is preserved so its relative tie-break order matches
// the original.
func (r *RunningSet) Clone() *RunningSet {
	clone := &RunningSet{nextSeq: r.nextSeq}
	clone.q.items = make([]*entry, len(r.q.items))
	for i, e := range r.q.items {
		clone.q.items[i] = &entry{job: e.job.Clone(), seq: e.seq}
	}
	return clone
}
