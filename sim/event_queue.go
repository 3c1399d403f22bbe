package sim

import "container/heap"

// scheduledEvent pairs an event with its insertion sequence number.
type scheduledEvent struct {
	ev  Event
	seq uint64
}

// eventHeap implements heap.Interface.
// Order by: timestamp → insertion sequence.
type eventHeap []scheduledEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].ev.Timestamp(), h[j].ev.Timestamp()
	if ti != tj {
		return ti < tj
	}
	// Equal timestamps pop in the order they were scheduled.
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(scheduledEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = scheduledEvent{}
	*h = old[0 : n-1]
	return item
}

// EventQueue is a priority queue of pending events with deterministic ordering.
// The front of the queue is always the event to happen next.
type EventQueue struct {
	events eventHeap
	seq    uint64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{events: make(eventHeap, 0)}
	heap.Init(&q.events)
	return q
}

// Schedule adds an event to the queue.
func (q *EventQueue) Schedule(ev Event) {
	q.seq++
	heap.Push(&q.events, scheduledEvent{ev: ev, seq: q.seq})
}

// PopNext removes and returns the earliest event, or nil when empty.
func (q *EventQueue) PopNext() Event {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.events).(scheduledEvent).ev
}

// Peek returns the earliest event without removing it, or nil when empty.
func (q *EventQueue) Peek() Event {
	if q.Len() == 0 {
		return nil
	}
	return q.events[0].ev
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.events)
}
