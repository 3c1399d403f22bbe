package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/fastpass-sim/sim"
)

// smallSpec is a quick sweep over the boundary fractions and one interior point.
func smallSpec() *Spec {
	spec := DefaultSpec()
	spec.ArrivalRates = []float64{0.5}
	spec.Fractions = []float64{0, 0.5, 1}
	spec.Horizon = 5000
	spec.Warmup = 500
	spec.Replications = 3
	return spec
}

func TestRun_SmallSweep(t *testing.T) {
	// GIVEN a sweep over f ∈ {0, 0.5, 1} with three replications
	spec := smallSpec()

	// WHEN run
	table, err := Run(spec)
	require.NoError(t, err)

	// THEN one row per point in spec order
	require.Len(t, table.Rows, 3)
	for i, f := range spec.Fractions {
		assert.Equal(t, 0.5, table.Rows[i].ArrivalRate)
		assert.Equal(t, f, table.Rows[i].Fraction)
		assert.True(t, table.Rows[i].BaselineOK)
		assert.InDelta(t, 2.0, table.Rows[i].Baseline, 1e-12)
	}

	// AND boundary fractions leave the empty class undefined
	assert.False(t, table.Rows[0].Priority.Defined)
	assert.Zero(t, table.Rows[0].Priority.Arrived)
	assert.True(t, table.Rows[0].Regular.Defined)
	assert.False(t, table.Rows[2].Regular.Defined)
	assert.True(t, table.Rows[2].Priority.Defined)

	// AND the interior point aggregates all replications with a confidence interval
	mid := table.Rows[1]
	for _, class := range sim.Classes {
		cell := mid.Cell(class)
		assert.True(t, cell.Defined, class.String())
		assert.Equal(t, 3, cell.N)
		assert.Positive(t, cell.StdDev)
		assert.Positive(t, cell.HalfWidth)
		assert.Greater(t, cell.Completed, int64(1000))
	}
	assert.Less(t, mid.Priority.Mean, mid.Regular.Mean)
	assert.True(t, mid.Predicted.PriorityOK)
	assert.True(t, mid.Predicted.RegularOK)
}

func TestRun_Deterministic(t *testing.T) {
	spec := smallSpec()
	spec.Fractions = []float64{0.5}

	a, err := Run(spec)
	require.NoError(t, err)
	b, err := Run(spec)
	require.NoError(t, err)

	assert.Equal(t, a.Rows, b.Rows)
}

func TestRun_InvalidSpec(t *testing.T) {
	spec := smallSpec()
	spec.Replications = 0
	_, err := Run(spec)
	assert.Error(t, err)
}

func TestRun_DuplicateFraction_RejectedBeforeSimulating(t *testing.T) {
	// GIVEN a sweep listing the same fraction twice
	spec := smallSpec()
	spec.Fractions = []float64{0.5, 0.5}
	spec.Horizon = 200
	spec.Warmup = 0

	// WHEN run
	table, err := Run(spec)

	// THEN it fails up front instead of at the store's primary key
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate fraction 0.5")
	assert.Nil(t, table)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		avgs    []float64
		defined bool
		mean    float64
		half    float64
	}{
		{"none", nil, false, 0, 0},
		{"single", []float64{2.5}, true, 2.5, 0},
		// sd = 1, t(0.975, 2) = 4.302653
		{"three", []float64{1, 2, 3}, true, 2, 4.302653 / 1.7320508},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cell Cell
			summarize(&cell, tt.avgs)
			assert.Equal(t, tt.defined, cell.Defined)
			assert.Equal(t, len(tt.avgs), cell.N)
			assert.InDelta(t, tt.mean, cell.Mean, 1e-12)
			assert.InDelta(t, tt.half, cell.HalfWidth, 1e-4)
		})
	}
}
