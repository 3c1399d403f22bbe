// Implements the waiting lines, which hold customers not yet in service.
// Customers are enqueued on arrival and leave only to enter service.

package sim

import (
	"fmt"
	"strings"
)

// WaitQueue represents a FIFO queue of customers of one class.
type WaitQueue struct {
	queue []*Customer
}

// Enqueue adds a customer to the back of the wait queue.
func (wq *WaitQueue) Enqueue(c *Customer) {
	wq.queue = append(wq.queue, c)
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range wq.queue {
		sb.WriteString(fmt.Sprint(c.ID))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of customers in the queue.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Peek returns the customer at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Peek() *Customer {
	if len(wq.queue) == 0 {
		return nil
	}
	return wq.queue[0]
}

// Dequeue removes and returns the customer at the front of the queue.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Dequeue() *Customer {
	if len(wq.queue) == 0 {
		return nil
	}
	head := wq.queue[0]
	wq.queue[0] = nil
	wq.queue = wq.queue[1:]
	return head
}

// ClassQueues holds one WaitQueue per class, indexed by Class.
type ClassQueues [numClasses]WaitQueue

// For returns the queue of class c.
func (cq *ClassQueues) For(c Class) *WaitQueue {
	return &cq[c]
}

// Enqueue appends c to the queue of its class.
func (cq *ClassQueues) Enqueue(c *Customer) {
	cq[c.Class].Enqueue(c)
}

// Len returns the total number of waiting customers.
func (cq *ClassQueues) Len() int {
	n := 0
	for i := range cq {
		n += cq[i].Len()
	}
	return n
}
