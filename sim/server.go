package sim

import "fmt"

// ServerStatus is the state of the single server.
type ServerStatus string

const (
	ServerIdle ServerStatus = "idle"
	ServerBusy ServerStatus = "busy"
)

// ServerState tracks the single server. Busy iff exactly one departure for
// InService is pending in the event queue.
type ServerState struct {
	Status    ServerStatus
	BusyUntil float64
	InService *Customer
}

// Busy reports whether a customer is in service.
func (s *ServerState) Busy() bool {
	return s.Status == ServerBusy
}

// start puts c into service until the given completion time.
func (s *ServerState) start(c *Customer, now, until float64) {
	if s.Busy() {
		panic(fmt.Sprintf("server already serving customer %d", s.InService.ID))
	}
	c.State = StateInService
	c.ServiceStart = now
	s.Status = ServerBusy
	s.BusyUntil = until
	s.InService = c
}

// release frees the server. Panics if c is not the customer in service.
func (s *ServerState) release(c *Customer) {
	if s.InService != c {
		panic(fmt.Sprintf("departure of customer %d, but server holds %v", c.ID, s.InService))
	}
	s.Status = ServerIdle
	s.InService = nil
}
