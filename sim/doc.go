// Package sim provides the discrete-event simulation engine for a single
// server shared by two customer classes under non-preemptive strict priority.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - customer.go: Customer lifecycle (queued → in_service → departed) and classes
//   - event.go: Arrival and Departure events that drive the simulation
//   - simulator.go: the event loop, warm-up accounting and RunSimulation
//   - dispatcher.go: which waiting customer enters service next
//
// # Key Interfaces
//
// The extension points are single-method interfaces:
//   - VariateSource: exponential interarrival and service durations
//   - ClassSampler: priority/regular classification of arrivals
//   - SelectionPolicy: pick the next customer from the waiting lines
//
// Tests inject deterministic VariateSource and ClassSampler implementations
// through Sources; production runs derive them from Config.Seed.
//
// Sub-packages:
//   - sim/trace/: dispatch decision recording
//   - sim/sweep/: parameter sweeps, allocation recommendation, result storage
package sim
