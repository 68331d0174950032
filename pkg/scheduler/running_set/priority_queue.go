// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

package running_set

import (
	"container/heap"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/job_info"
)

// entry pairs a running job with the insertion sequence number used to
// break finish-time ties in FIFO order.
type entry struct {
	job *job_info.Job
	seq int64
}

// lessFn reports whether a should sort before b: earlier projected
// completion first, ties broken by earlier insertion. Adapted from the
// scheduler's generic container/heap-backed priority queue, specialized
// here to a concrete ordering instead of an injected comparator.
func lessFn(a, b *entry) bool {
	fa, fb := a.job.FinishTime(), b.job.FinishTime()
	if fa.Equal(fb) {
		return a.seq < b.seq
	}
	return fa.Before(fb)
}

type priorityQueue struct {
	items []*entry
}

func (pq *priorityQueue) Len() int { return len(pq.items) }

func (pq *priorityQueue) Less(i, j int) bool {
	return lessFn(pq.items[i], pq.items[j])
}

func (pq *priorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *priorityQueue) Push(x interface{}) {
	pq.items = append(pq.items, x.(*entry))
}

func (pq *priorityQueue) Pop() interface{} {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	pq.items = old[:n-1]
	return item
}

func (pq *priorityQueue) Peek() *entry {
	if len(pq.items) == 0 {
		return nil
	}
	return pq.items[0]
}

var _ = heap.Interface(&priorityQueue{})
