// Defines the Customer struct that models an individual visitor in the simulation.
// Tracks class, arrival and departure times, and lifecycle state.

package sim

import (
	"fmt"
)

// Class identifies which waiting line a customer joins.
type Class int

const (
	// ClassPriority holds a FastPass and is always dispatched ahead of regular customers.
	ClassPriority Class = iota
	// ClassRegular waits in the standby line.
	ClassRegular

	numClasses
)

// Classes lists every class in dispatch order.
var Classes = [numClasses]Class{ClassPriority, ClassRegular}

func (c Class) String() string {
	switch c {
	case ClassPriority:
		return "priority"
	case ClassRegular:
		return "regular"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// CustomerState represents the lifecycle state of a customer.
type CustomerState string

const (
	StateQueued    CustomerState = "queued"
	StateInService CustomerState = "in_service"
	StateDeparted  CustomerState = "departed"
)

// Customer models a single customer's lifecycle in the simulation.
type Customer struct {
	ID    int64 // Sequence number assigned at arrival, starting at 0
	Class Class

	State         CustomerState
	ArrivalTime   float64 // Simulation time the customer entered the system
	ServiceStart  float64 // Simulation time the customer entered service; valid once not queued
	DepartureTime float64 // Valid only when State == StateDeparted
}

// NewCustomer creates a queued customer.
func NewCustomer(id int64, class Class, arrival float64) *Customer {
	return &Customer{ID: id, Class: class, State: StateQueued, ArrivalTime: arrival}
}

// Depart records the departure time. Panics if called twice or if the
// departure does not strictly follow the arrival.
func (c *Customer) Depart(now float64) {
	if c.State == StateDeparted {
		panic(fmt.Sprintf("customer %d departed twice", c.ID))
	}
	if !(now > c.ArrivalTime) {
		panic(fmt.Sprintf("customer %d: departure %g not after arrival %g", c.ID, now, c.ArrivalTime))
	}
	c.DepartureTime = now
	c.State = StateDeparted
}

// ResidenceTime returns departure minus arrival. ok is false until the customer departs.
func (c *Customer) ResidenceTime() (float64, bool) {
	if c.State != StateDeparted {
		return 0, false
	}
	return c.DepartureTime - c.ArrivalTime, true
}

func (c Customer) String() string {
	return fmt.Sprintf("Customer: (ID: %d, Class: %s, State: %s, ArrivalTime: %.4f)", c.ID, c.Class, c.State, c.ArrivalTime)
}
