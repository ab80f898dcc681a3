package engine

import "container/heap"

// Event is a pending "job would finish now" notice.
type Event struct {
	Time  float64
	JobID int
	index int // heap position, maintained by EventQueue
}

// EventQueue implements heap.Interface ordered by (Time, JobID).
type EventQueue []*Event

func (q EventQueue) Len() int { return len(q) }

func (q EventQueue) Less(i, j int) bool {
	if q[i].Time != q[j].Time {
		return q[i].Time < q[j].Time
	}
	return q[i].JobID < q[j].JobID
}

func (q EventQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

// Push adds an event. Called by heap.Push; do not call directly.
func (q *EventQueue) Push(x any) {
	ev := x.(*Event)
	ev.index = len(*q)
	*q = append(*q, ev)
}

// Pop removes the last element. Called by heap.Pop; do not call directly.
func (q *EventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*q = old[:n-1]
	return ev
}

// PushEvent schedules ev.
func PushEvent(q *EventQueue, ev *Event) {
	heap.Push(q, ev)
}

// PopEvent removes and returns the earliest event.
func PopEvent(q *EventQueue) *Event {
	return heap.Pop(q).(*Event)
}

// Reschedule moves ev, which must already be queued, to time t.
func Reschedule(q *EventQueue, ev *Event, t float64) {
	ev.Time = t
	heap.Fix(q, ev.index)
}
