// Package timeline schedules deferred actions against an external clock.
//
// A Queue holds callbacks keyed by clock time. The owner drives it by
// calling RunDue with the current time; nothing runs on its own goroutine.
// Actions due at the same time run in the order they were scheduled.
package timeline

import (
	"container/heap"
	"math"
)

type entry struct {
	at  float64
	seq uint64
	fn  func()
}

type entries []entry

func (e entries) Len() int { return len(e) }

func (e entries) Less(i, j int) bool {
	if e[i].at != e[j].at {
		return e[i].at < e[j].at
	}
	return e[i].seq < e[j].seq
}

func (e entries) Swap(i, j int) { e[i], e[j] = e[j], e[i] }

func (e *entries) Push(x any) { *e = append(*e, x.(entry)) }

func (e *entries) Pop() any {
	old := *e
	n := len(old)
	x := old[n-1]
	old[n-1] = entry{}
	*e = old[:n-1]
	return x
}

// Queue is a time-ordered set of pending actions. The zero value is ready
// to use. It is not safe for concurrent use.
type Queue struct {
	items entries
	seq   uint64
}

// At schedules fn to run once the clock reaches t. NaN times and nil
// actions are ignored.
func (q *Queue) At(t float64, fn func()) {
	if fn == nil || math.IsNaN(t) {
		return
	}
	q.seq++
	heap.Push(&q.items, entry{at: t, seq: q.seq, fn: fn})
}

// Len returns the number of pending actions.
func (q *Queue) Len() int { return len(q.items) }

// Next returns the time of the earliest pending action.
func (q *Queue) Next() (float64, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	return q.items[0].at, true
}

// RunDue runs every action due at or before now and returns how many ran.
// Actions scheduled by a running action are run in the same call when they
// are already due.
func (q *Queue) RunDue(now float64) int {
	n := 0
	for len(q.items) > 0 && q.items[0].at <= now {
		e := heap.Pop(&q.items).(entry)
		e.fn()
		n++
	}
	return n
}

// Clear drops all pending actions.
func (q *Queue) Clear() {
	clear(q.items)
	q.items = q.items[:0]
}
