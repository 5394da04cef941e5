package simulator

import "container/heap"

// scheduleEntry is one element of the Schedule's min-heap, ordered by
// (Time, Seq). Seq is the insertion counter that gives two events
// scheduled for the same time a stable, deterministic tiebreak.
type scheduleEntry struct {
	Time  float64
	Seq   uint64
	Event Event
}

type scheduleHeap []scheduleEntry

func (h scheduleHeap) Len() int { return len(h) }

func (h scheduleHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}

func (h scheduleHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scheduleHeap) Push(x any) { *h = append(*h, x.(scheduleEntry)) }

func (h *scheduleHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// Schedule is a min-priority queue of (event_time, Event) pairs, ordered
// by time and then by insertion order. EndTime bounds the simulated
// window: events popped with a time beyond it are never dispatched.
type Schedule struct {
	EndTime float64

	entries scheduleHeap
	nextSeq uint64
}

// NewSchedule builds an empty Schedule ending at endTime.
func NewSchedule(endTime float64) *Schedule {
	return &Schedule{EndTime: endTime}
}

// PutEvent enqueues ev for dispatch at t. t must be strictly greater than
// the simulated time already reached by the consumer; the Schedule itself
// does not enforce this, since it has no notion of "now" -- the Simulator
// does, and only ever calls PutEvent with t in the future.
func (s *Schedule) PutEvent(t float64, ev Event) {
	heap.Push(&s.entries, scheduleEntry{Time: t, Seq: s.nextSeq, Event: ev})
	s.nextSeq++
}

// GetEvent pops the earliest-scheduled event. ok is false if the
// Schedule is empty.
func (s *Schedule) GetEvent() (float64, Event, bool) {
	if len(s.entries) == 0 {
		return 0, Event{}, false
	}
	entry := heap.Pop(&s.entries).(scheduleEntry)
	return entry.Time, entry.Event, true
}

// NoMoreEvents reports whether the Schedule has been fully drained.
func (s *Schedule) NoMoreEvents() bool {
	return len(s.entries) == 0
}

// Size returns the number of events still queued.
func (s *Schedule) Size() int {
	return len(s.entries)
}
