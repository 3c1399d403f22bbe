package sim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/fastpass-sim/sim/internal/testutil"
)

func TestRunSimulation_ReferenceScenario_WithinExpectedRange(t *testing.T) {
	// GIVEN λ=0.5, μ=1, f=0.5, horizon 50000, warm-up 5000
	cfg := NewConfig(0.5, 0.5)

	// WHEN the simulation runs
	res, err := RunSimulation(cfg)
	require.NoError(t, err)

	// THEN both averages are defined and in the expected ranges
	prio, ok := res.Priority.AvgResidence()
	require.True(t, ok)
	reg, ok := res.Regular.AvgResidence()
	require.True(t, ok)
	assert.InDelta(t, 1.65, prio, 0.35, "priority average")
	assert.InDelta(t, 2.4, reg, 0.6, "regular average")
	// AND priority customers spend less time in the system
	assert.Less(t, prio, reg)
}

func TestRunSimulation_AcrossSeeds_WithinExpectedRange(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			// GIVEN the reference scenario with a different seed
			cfg := NewConfig(0.5, 0.5)
			cfg.Seed = seed

			// WHEN the simulation runs
			res, err := RunSimulation(cfg)
			require.NoError(t, err)

			// THEN priority beats regular and both stay in range
			prio, ok := res.Priority.AvgResidence()
			require.True(t, ok)
			reg, ok := res.Regular.AvgResidence()
			require.True(t, ok)
			assert.Less(t, prio, reg)
			assert.GreaterOrEqual(t, prio, 1.3)
			assert.LessOrEqual(t, prio, 2.0)
			assert.GreaterOrEqual(t, reg, 1.8)
			assert.LessOrEqual(t, reg, 3.0)
		})
	}
}

func TestSimulator_After_RedrawsSampleLostToRounding(t *testing.T) {
	// GIVEN a clock so large that a tiny sample rounds away
	now := 1e6
	src := &scriptedSource{values: []float64{1e-300, 1e-300, 0.5}}
	require.Equal(t, now, now+1e-300)

	// WHEN the next event time is drawn
	got := (&Simulator{}).after(now, src, 1)

	// THEN rounded-away samples are redrawn until time advances
	assert.Greater(t, got, now)
	assert.Equal(t, now+0.5, got)
	assert.Equal(t, 3, src.next)
}

func TestRunSimulation_SameSeed_Identical(t *testing.T) {
	// GIVEN two runs with identical config
	cfg := NewConfig(0.5, 0.5)
	cfg.Horizon = 10000
	cfg.Warmup = 1000

	// WHEN both run
	a, err := RunSimulation(cfg)
	require.NoError(t, err)
	b, err := RunSimulation(cfg)
	require.NoError(t, err)

	// THEN the per-class statistics are bit-for-bit equal
	assert.Equal(t, a.Priority, b.Priority)
	assert.Equal(t, a.Regular, b.Regular)
	assert.Equal(t, a.EventsProcessed, b.EventsProcessed)
}

func TestRunSimulation_DifferentSeeds_Differ(t *testing.T) {
	cfg := NewConfig(0.5, 0.5)
	cfg.Horizon = 10000
	cfg.Warmup = 1000
	a, err := RunSimulation(cfg)
	require.NoError(t, err)

	cfg.Seed = 7
	b, err := RunSimulation(cfg)
	require.NoError(t, err)

	assert.NotEqual(t, a.Regular.SumResidence, b.Regular.SumResidence)
}

func TestRunSimulation_SameSeed_SameArrivalsAcrossPolicies(t *testing.T) {
	// GIVEN one seed under both dispatch policies
	cfg := NewConfig(0.7, 0.3)
	cfg.Horizon = 10000
	cfg.Warmup = 1000
	prio, err := RunSimulation(cfg)
	require.NoError(t, err)
	cfg.Policy = PolicyFCFS
	fcfs, err := RunSimulation(cfg)
	require.NoError(t, err)

	// THEN the arrival and class streams are shared, so arrival counts match
	// up to the one arrival that may land past the horizon
	assert.InDelta(t, prio.Priority.TotalArrived, fcfs.Priority.TotalArrived, 1)
	assert.InDelta(t, prio.Regular.TotalArrived, fcfs.Regular.TotalArrived, 1)
}

func TestRunSimulation_Conservation(t *testing.T) {
	// GIVEN several loads and fractions, unstable included
	for _, tc := range []struct{ rate, f float64 }{
		{0.3, 0.5}, {0.5, 0}, {0.5, 1}, {0.9, 0.7}, {1.2, 0.5},
	} {
		cfg := NewConfig(tc.rate, tc.f)
		cfg.Horizon = 5000
		cfg.Warmup = 500

		// WHEN the simulation runs
		res, err := RunSimulation(cfg)
		require.NoError(t, err)

		// THEN every arrival is either departed, waiting, or in service
		for _, class := range Classes {
			stats := res.For(class)
			assert.Zero(t, stats.Unaccounted(), "λ=%g f=%g class %s", tc.rate, tc.f, class)
			assert.LessOrEqual(t, stats.InServiceAtEnd, int64(1))
		}
		assert.LessOrEqual(t, res.Priority.InServiceAtEnd+res.Regular.InServiceAtEnd, int64(1))
	}
}

func TestRunSimulation_NoFastpass_PriorityUndefined(t *testing.T) {
	// GIVEN f=0
	cfg := NewConfig(0.5, 0)
	cfg.Horizon = 5000
	cfg.Warmup = 500

	// WHEN the simulation runs
	res, err := RunSimulation(cfg)
	require.NoError(t, err)

	// THEN no priority customer arrives and the priority average is undefined, not zero
	assert.Zero(t, res.Priority.TotalArrived)
	_, ok := res.Priority.AvgResidence()
	assert.False(t, ok)
	_, ok = res.Regular.AvgResidence()
	assert.True(t, ok)
}

func TestRunSimulation_AllFastpass_RegularUndefined(t *testing.T) {
	cfg := NewConfig(0.5, 1)
	cfg.Horizon = 5000
	cfg.Warmup = 500

	res, err := RunSimulation(cfg)
	require.NoError(t, err)

	assert.Zero(t, res.Regular.TotalArrived)
	_, ok := res.Regular.AvgResidence()
	assert.False(t, ok)
	_, ok = res.Priority.AvgResidence()
	assert.True(t, ok)
}

func TestRunSimulation_NearSaturation_RegularStarves(t *testing.T) {
	// GIVEN λ=0.95 with most customers holding a FastPass
	cfg := NewConfig(0.95, 0.8)

	// WHEN the simulation runs
	res, err := RunSimulation(cfg)
	require.NoError(t, err)

	// THEN the regular average far exceeds the stable single-class mean 1/(1−λ)
	reg, ok := res.Regular.AvgResidence()
	require.True(t, ok)
	assert.Greater(t, reg, 1/(1-cfg.ArrivalRate))
	prio, ok := res.Priority.AvgResidence()
	require.True(t, ok)
	assert.Greater(t, reg, 3*prio)
}

func TestRunSimulation_Unstable_NotAnError(t *testing.T) {
	// GIVEN λ > μ
	cfg := NewConfig(1.5, 0.5)
	cfg.Horizon = 2000
	cfg.Warmup = 200

	// WHEN the simulation runs
	res, err := RunSimulation(cfg)

	// THEN it completes and the queue has grown
	require.NoError(t, err)
	assert.Greater(t, res.Priority.QueuedAtEnd+res.Regular.QueuedAtEnd, int64(100))
}

func TestRunSimulation_InvalidConfig_Error(t *testing.T) {
	_, err := RunSimulation(NewConfig(-1, 0.5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestSimulator_WarmupBoundary_DepartureAtWarmupExcluded(t *testing.T) {
	// GIVEN a single customer arriving at 1 and departing at exactly 3
	tests := []struct {
		name        string
		warmup      float64
		wantCounted int64
	}{
		{"departure at warm-up excluded", 3, 0},
		{"departure after warm-up counted", 2.5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scriptedConfig()
			cfg.Warmup = tt.warmup
			s := newScriptedSimulator(t, cfg, []float64{1, 100}, []Class{R}, []float64{2})

			// WHEN the simulation runs
			s.Run()

			// THEN the departure is counted only when strictly after warm-up
			stats := s.Metrics.For(ClassRegular)
			assert.Equal(t, tt.wantCounted, stats.CompletedAfterWarmup)
			assert.Equal(t, 1-tt.wantCounted, stats.CompletedBeforeWarmup)
			_, ok := stats.AvgResidence()
			assert.Equal(t, tt.wantCounted == 1, ok)
		})
	}
}

func TestSimulator_EventPastHorizon_ExecutedThenStops(t *testing.T) {
	// GIVEN arrivals at 1 and 60 with horizon 50, then one more at 61
	s := newScriptedSimulator(t, scriptedConfig(), []float64{1, 59, 1}, []Class{R}, []float64{2})

	// WHEN the simulation runs
	s.Run()

	// THEN the arrival at 60 is processed and the loop stops there
	assert.Equal(t, 60.0, s.Clock)
	assert.Equal(t, 60.0, s.Metrics.SimEndedTime)
	assert.Equal(t, int64(2), s.Metrics.For(ClassRegular).TotalArrived)
	assert.Equal(t, int64(1), s.Metrics.For(ClassRegular).InServiceAtEnd)
	assert.True(t, s.Finished())
	// AND the arrival at 61 is still pending
	assert.Equal(t, 61.0, s.EventQueue.Peek().Timestamp())
}

func TestSimulator_MaxEvents_StopsEarly(t *testing.T) {
	cfg := NewConfig(0.5, 0.5)
	cfg.MaxEvents = 10
	s, err := NewSimulator(cfg, Sources{})
	require.NoError(t, err)

	s.Run()

	assert.Equal(t, int64(10), s.Metrics.EventsProcessed)
	assert.Less(t, s.Clock, cfg.Horizon)
	for _, class := range Classes {
		assert.Zero(t, s.Metrics.For(class).Unaccounted())
	}
}

func TestSimulator_Causality_ClockNeverDecreases(t *testing.T) {
	// GIVEN a random simulation stepped one event at a time
	cfg := NewConfig(0.8, 0.5)
	cfg.Horizon = 2000
	cfg.Warmup = 100
	s, err := NewSimulator(cfg, Sources{})
	require.NoError(t, err)

	// WHEN events are executed in queue order
	prev := 0.0
	for s.EventQueue.Len() > 0 && s.Clock <= s.Horizon {
		ev := s.EventQueue.PopNext()
		// THEN no event is scheduled before the current clock
		require.GreaterOrEqual(t, ev.Timestamp(), prev)
		s.Clock = ev.Timestamp()
		ev.Execute(s)
		prev = s.Clock
		// AND the server is busy exactly when a departure is pending
		assert.Equal(t, s.Server.Busy(), pendingDepartures(s) == 1)
	}
}

func pendingDepartures(s *Simulator) int {
	n := 0
	for _, se := range s.EventQueue.events {
		if _, ok := se.ev.(*DepartureEvent); ok {
			n++
		}
	}
	return n
}

func TestSimulator_Run_Twice_NoOp(t *testing.T) {
	cfg := NewConfig(0.5, 0.5)
	cfg.Horizon = 1000
	cfg.Warmup = 100
	s, err := NewSimulator(cfg, Sources{})
	require.NoError(t, err)

	s.Run()
	events := s.Metrics.EventsProcessed
	s.Run()

	assert.Equal(t, events, s.Metrics.EventsProcessed)
}

func TestRunSimulation_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			// GIVEN a golden configuration with analytic residence times
			cfg := NewConfig(tc.ArrivalRate, tc.FastpassFraction)
			cfg.ServiceRate = tc.ServiceRate
			cfg.Horizon = tc.Horizon
			cfg.Warmup = tc.Warmup
			cfg.Seed = tc.Seed

			// WHEN the simulation runs
			res, err := RunSimulation(cfg)
			require.NoError(t, err)

			// THEN simulated averages match the closed form within tolerance
			avg, ok := res.Priority.AvgResidence()
			testutil.AssertOptionalFloat64(t, "priority_residence", tc.Metrics.PriorityResidence, avg, ok, tc.RelTol)
			avg, ok = res.Regular.AvgResidence()
			testutil.AssertOptionalFloat64(t, "regular_residence", tc.Metrics.RegularResidence, avg, ok, tc.RelTol)

			// AND the analytic model reproduces the golden values
			pred := Predict(cfg)
			testutil.AssertOptionalFloat64(t, "predicted priority", tc.Metrics.PriorityResidence, pred.Priority, pred.PriorityOK, 1e-5)
			testutil.AssertOptionalFloat64(t, "predicted regular", tc.Metrics.RegularResidence, pred.Regular, pred.RegularOK, 1e-5)
		})
	}
}
