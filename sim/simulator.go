// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/fastpass-sim/sim/trace"
)

// Simulator is the core object that holds simulation time, system state, and the event loop.
// All mutable state lives here and is reached only through event handlers and the Dispatcher.
type Simulator struct {
	Clock   float64
	Horizon float64
	Warmup  float64
	// EventQueue has all pending arrivals and departures
	EventQueue *EventQueue
	// Queues holds waiting customers, one FIFO line per class
	Queues  ClassQueues
	Server  ServerState
	Metrics *Metrics
	Trace   *trace.SimulationTrace // nil unless Config.TraceLevel enables tracing

	cfg        Config
	sources    Sources
	dispatcher *Dispatcher
	nextID     int64
	finished   bool
}

// NewSimulator validates cfg and builds a simulator with the first arrival
// scheduled. Nil fields of sources are backed by streams derived from cfg.Seed.
func NewSimulator(cfg Config, sources Sources) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Stable() {
		logrus.Warnf("arrival rate %g >= service rate %g: the queue is unstable and residence times grow with the horizon",
			cfg.ArrivalRate, cfg.ServiceRate)
	}

	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	s := &Simulator{
		Clock:      0,
		Horizon:    cfg.Horizon,
		Warmup:     cfg.Warmup,
		EventQueue: NewEventQueue(),
		Server:     ServerState{Status: ServerIdle},
		Metrics:    NewMetrics(),
		cfg:        cfg,
		sources:    sources.withDefaults(cfg, rng),
		dispatcher: NewDispatcher(NewSelectionPolicy(cfg.Policy)),
	}
	if cfg.TraceLevel.Enabled() {
		s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: cfg.TraceLevel})
	}

	s.Schedule(NewArrivalEvent(s.after(0, s.sources.Arrival, cfg.ArrivalRate)))
	return s, nil
}

// Config returns the configuration the simulator was built with.
func (sim *Simulator) Config() Config {
	return sim.cfg
}

// Schedule pushes an event into the simulator's EventQueue.
func (sim *Simulator) Schedule(ev Event) {
	sim.EventQueue.Schedule(ev)
}

// Finished reports whether Run has completed.
func (sim *Simulator) Finished() bool {
	return sim.finished
}

// Run processes events until the queue empties, the clock passes the horizon,
// or the event cap is reached. The event that carries the clock past the
// horizon is still executed.
func (sim *Simulator) Run() {
	if sim.finished {
		return
	}
	for sim.EventQueue.Len() > 0 {
		if sim.cfg.MaxEvents > 0 && sim.Metrics.EventsProcessed >= sim.cfg.MaxEvents {
			logrus.Infof("[t=%.4f] event cap %d reached", sim.Clock, sim.cfg.MaxEvents)
			break
		}
		ev := sim.EventQueue.PopNext()
		if ev.Timestamp() < sim.Clock {
			panic(fmt.Sprintf("event %T at %g scheduled before clock %g", ev, ev.Timestamp(), sim.Clock))
		}
		sim.Clock = ev.Timestamp()
		logrus.Tracef("[t=%.4f] Executing %T", sim.Clock, ev)
		ev.Execute(sim)
		sim.Metrics.EventsProcessed++
		if sim.Clock > sim.Horizon {
			break
		}
	}
	sim.finalize()
	logrus.Infof("[t=%.4f] Simulation ended after %d events", sim.Clock, sim.Metrics.EventsProcessed)
}

// after returns now plus a fresh sample from src, redrawing in the
// vanishingly rare case the sample is lost to float rounding at large now.
func (sim *Simulator) after(now float64, src VariateSource, rate float64) float64 {
	t := now + src.Exponential(rate)
	for t <= now {
		t = now + src.Exponential(rate)
	}
	return t
}

// admitCustomer creates, classifies and enqueues an arriving customer.
func (sim *Simulator) admitCustomer(now float64) *Customer {
	c := NewCustomer(sim.nextID, sim.sources.Class.Sample(), now)
	sim.nextID++
	sim.Metrics.For(c.Class).TotalArrived++
	sim.Queues.Enqueue(c)
	return c
}

// completeService frees the server and credits the departure when it falls
// strictly after the warm-up horizon.
func (sim *Simulator) completeService(c *Customer, now float64) {
	sim.Server.release(c)
	c.Depart(now)
	sim.Metrics.BusyTime += now - c.ServiceStart

	stats := sim.Metrics.For(c.Class)
	if now > sim.Warmup {
		residence, _ := c.ResidenceTime()
		stats.record(residence)
	} else {
		stats.CompletedBeforeWarmup++
	}
}

// recordDispatch appends to the trace, if enabled.
func (sim *Simulator) recordDispatch(c *Customer, now float64, waitingPriority, waitingRegular int) {
	if sim.Trace == nil {
		return
	}
	sim.Trace.RecordDispatch(trace.DispatchRecord{
		CustomerID:      c.ID,
		Clock:           now,
		Class:           c.Class.String(),
		WaitingPriority: waitingPriority,
		WaitingRegular:  waitingRegular,
	})
}

// finalize snapshots end-of-run positions for conservation accounting.
func (sim *Simulator) finalize() {
	sim.finished = true
	sim.Metrics.SimEndedTime = sim.Clock
	for _, class := range Classes {
		sim.Metrics.For(class).QueuedAtEnd = int64(sim.Queues.For(class).Len())
	}
	if c := sim.Server.InService; c != nil {
		sim.Metrics.For(c.Class).InServiceAtEnd = 1
		// Credit the partial service delivered up to the clock.
		sim.Metrics.BusyTime += sim.Clock - c.ServiceStart
	}
}

// Result is the outcome of one simulation run.
type Result struct {
	Config   Config
	Priority ClassStats
	Regular  ClassStats

	EventsProcessed int64
	SimEndedTime    float64
	Utilization     float64
	Trace           *trace.SimulationTrace
}

// For returns the stats of class c.
func (r *Result) For(c Class) ClassStats {
	if c == ClassPriority {
		return r.Priority
	}
	return r.Regular
}

// Result snapshots the simulator's statistics. Call after Run.
func (sim *Simulator) Result() *Result {
	return &Result{
		Config:          sim.cfg,
		Priority:        sim.Metrics.Classes[ClassPriority],
		Regular:         sim.Metrics.Classes[ClassRegular],
		EventsProcessed: sim.Metrics.EventsProcessed,
		SimEndedTime:    sim.Metrics.SimEndedTime,
		Utilization:     sim.Metrics.Utilization(),
		Trace:           sim.Trace,
	}
}

// RunSimulation validates cfg, runs one seeded simulation to completion and
// returns per-class statistics.
func RunSimulation(cfg Config) (*Result, error) {
	s, err := NewSimulator(cfg, Sources{})
	if err != nil {
		return nil, err
	}
	logrus.Infof("Starting simulation: λ=%g f=%g μ=%g horizon=%g warmup=%g seed=%d policy=%q",
		cfg.ArrivalRate, cfg.FastpassFraction, cfg.ServiceRate, cfg.Horizon, cfg.Warmup, cfg.Seed, cfg.Policy)
	s.Run()
	return s.Result(), nil
}
