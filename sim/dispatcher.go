package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SelectionPolicy picks and removes the next customer to serve from the
// waiting lines, or returns nil when nobody should start service.
type SelectionPolicy interface {
	Next(queues *ClassQueues) *Customer
}

// StrictPriority serves the priority line first and falls back to the
// regular line only when the priority line is empty. FIFO within each line.
// Regular customers can be deferred indefinitely while priority customers keep arriving.
type StrictPriority struct{}

// Next dequeues the head of the highest-priority non-empty line.
func (StrictPriority) Next(queues *ClassQueues) *Customer {
	for _, class := range Classes {
		if c := queues.For(class).Dequeue(); c != nil {
			return c
		}
	}
	return nil
}

// FCFS ignores class and serves whichever line head arrived first.
// Used as the single-class M/M/1 baseline on the same random streams.
type FCFS struct{}

// Next dequeues whichever line head has the earliest arrival time.
// Ties go to the priority line.
func (FCFS) Next(queues *ClassQueues) *Customer {
	var pick *WaitQueue
	for _, class := range Classes {
		wq := queues.For(class)
		head := wq.Peek()
		if head == nil {
			continue
		}
		if pick == nil || head.ArrivalTime < pick.Peek().ArrivalTime {
			pick = wq
		}
	}
	if pick == nil {
		return nil
	}
	return pick.Dequeue()
}

const (
	PolicyPriority = "priority"
	PolicyFCFS     = "fcfs"
)

// validPolicies maps accepted dispatch policy names; empty defaults to priority.
var validPolicies = map[string]bool{"": true, PolicyPriority: true, PolicyFCFS: true}

// IsValidPolicy returns true if name is a recognized dispatch policy.
func IsValidPolicy(name string) bool {
	return validPolicies[name]
}

// NewSelectionPolicy creates a SelectionPolicy by name.
// Empty string defaults to StrictPriority.
// Panics on unrecognized names.
func NewSelectionPolicy(name string) SelectionPolicy {
	if !IsValidPolicy(name) {
		panic(fmt.Sprintf("unknown dispatch policy %q", name))
	}
	switch name {
	case "", PolicyPriority:
		return StrictPriority{}
	case PolicyFCFS:
		return FCFS{}
	default:
		panic(fmt.Sprintf("unhandled dispatch policy %q", name))
	}
}

// Dispatcher moves a waiting customer into service when the server is idle.
type Dispatcher struct {
	policy SelectionPolicy
}

// NewDispatcher creates a Dispatcher with the given policy. Panics on nil.
func NewDispatcher(policy SelectionPolicy) *Dispatcher {
	if policy == nil {
		panic("NewDispatcher: policy must not be nil")
	}
	return &Dispatcher{policy: policy}
}

// TryStartService starts the next customer chosen by the policy if the server
// is idle. Never preempts the customer in service.
func (d *Dispatcher) TryStartService(sim *Simulator, now float64) {
	if sim.Server.Busy() {
		return
	}
	waitingPriority := sim.Queues.For(ClassPriority).Len()
	waitingRegular := sim.Queues.For(ClassRegular).Len()

	c := d.policy.Next(&sim.Queues)
	if c == nil {
		return
	}
	until := sim.after(now, sim.sources.Service, sim.cfg.ServiceRate)
	sim.Server.start(c, now, until)
	sim.Schedule(NewDepartureEvent(until, c))
	sim.recordDispatch(c, now, waitingPriority, waitingRegular)

	logrus.Debugf("[t=%.4f] customer %d (%s) enters service until %.4f", now, c.ID, c.Class, until)
}
