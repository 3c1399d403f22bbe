package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Event defines the interface for all simulation events.
// Each event has a Timestamp in simulated time units and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Execute(*Simulator)
}

// ArrivalEvent represents the arrival of a new, not yet classified customer.
type ArrivalEvent struct {
	time float64
}

// NewArrivalEvent creates an arrival at time t.
func NewArrivalEvent(t float64) *ArrivalEvent {
	return &ArrivalEvent{time: t}
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() float64 {
	return e.time
}

// Execute classifies and enqueues the customer, schedules the next arrival,
// and starts service if the server is idle.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	c := sim.admitCustomer(e.time)
	logrus.Debugf("<< Arrival: customer %d (%s) at %.4f", c.ID, c.Class, e.time)

	sim.Schedule(NewArrivalEvent(sim.after(e.time, sim.sources.Arrival, sim.cfg.ArrivalRate)))
	sim.dispatcher.TryStartService(sim, e.time)
}

// DepartureEvent represents the service completion of the customer in service.
// A departure always carries its customer.
type DepartureEvent struct {
	time     float64
	Customer *Customer
}

// NewDepartureEvent creates a departure for c at time t. Panics on nil customer.
func NewDepartureEvent(t float64, c *Customer) *DepartureEvent {
	if c == nil {
		panic(fmt.Sprintf("NewDepartureEvent: nil customer at %g", t))
	}
	return &DepartureEvent{time: t, Customer: c}
}

// Timestamp returns the scheduled time of the DepartureEvent.
func (e *DepartureEvent) Timestamp() float64 {
	return e.time
}

// Execute frees the server, credits statistics past warm-up, and starts
// the next waiting customer, if any.
func (e *DepartureEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< Departure: customer %d (%s) at %.4f", e.Customer.ID, e.Customer.Class, e.time)
	sim.completeService(e.Customer, e.time)
	sim.dispatcher.TryStartService(sim, e.time)
}
