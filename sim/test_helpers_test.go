package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed durations, repeating the last one when exhausted.
// Rates are ignored. Values must be strictly positive.
type scriptedSource struct {
	values []float64
	next   int
}

func (s *scriptedSource) Exponential(float64) float64 {
	v := s.values[min(s.next, len(s.values)-1)]
	s.next++
	return v
}

// scriptedClasses replays fixed classes, repeating the last one when exhausted.
type scriptedClasses struct {
	classes []Class
	next    int
}

func (s *scriptedClasses) Sample() Class {
	c := s.classes[min(s.next, len(s.classes)-1)]
	s.next++
	return c
}

const (
	P = ClassPriority
	R = ClassRegular
)

// newScriptedSimulator builds a simulator whose arrival gaps, classes and
// service durations follow the given scripts.
func newScriptedSimulator(t *testing.T, cfg Config, gaps []float64, classes []Class, services []float64) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, Sources{
		Arrival: &scriptedSource{values: gaps},
		Service: &scriptedSource{values: services},
		Class:   &scriptedClasses{classes: classes},
	})
	require.NoError(t, err)
	return s
}

// scriptedConfig is a short run with no warm-up, suited to hand-computed scenarios.
func scriptedConfig() Config {
	cfg := NewConfig(0.5, 0.5)
	cfg.Horizon = 50
	cfg.Warmup = 0
	cfg.TraceLevel = "dispatch"
	return cfg
}

// dispatchOrder returns customer IDs in the order they entered service.
func dispatchOrder(s *Simulator) []int64 {
	ids := make([]int64, 0, len(s.Trace.Dispatches))
	for _, d := range s.Trace.Dispatches {
		ids = append(ids, d.CustomerID)
	}
	return ids
}
