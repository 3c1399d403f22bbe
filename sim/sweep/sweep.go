package sweep

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inference-sim/fastpass-sim/sim"
)

// Cell summarizes one class's average residence time across replications.
// Replications in which the class had no counted departure are excluded;
// Defined is false when none remain.
type Cell struct {
	Defined   bool
	Mean      float64 // mean of the per-replication averages
	StdDev    float64 // sample standard deviation; 0 when N < 2
	HalfWidth float64 // 95% Student-t confidence half width; 0 when N < 2
	N         int     // replications contributing
	Completed int64   // counted departures summed over replications
	Arrived   int64   // arrivals summed over replications
}

// Row is one (arrival rate, fraction) point of a sweep.
type Row struct {
	ArrivalRate float64
	Fraction    float64
	Priority    Cell
	Regular     Cell
	Predicted   sim.Prediction
	Baseline    float64 // M/M/1 residence 1/(μ−λ)
	BaselineOK  bool
}

// Cell returns the cell of class c.
func (r *Row) Cell(c sim.Class) Cell {
	if c == sim.ClassPriority {
		return r.Priority
	}
	return r.Regular
}

// Table is the result of a sweep, rows ordered by arrival rate then fraction
// in Spec order.
type Table struct {
	Spec *Spec
	Rows []Row
}

// RowsFor returns the rows with the given arrival rate.
func (t *Table) RowsFor(arrivalRate float64) []Row {
	var rows []Row
	for _, r := range t.Rows {
		if r.ArrivalRate == arrivalRate {
			rows = append(rows, r)
		}
	}
	return rows
}

// Run validates spec and simulates every grid point sequentially.
// Replication i of every point uses seed spec.Seed+i.
func Run(spec *Spec) (*Table, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep spec: %w", err)
	}
	table := &Table{Spec: spec, Rows: make([]Row, 0, spec.Points())}
	for _, rate := range spec.ArrivalRates {
		for _, f := range spec.FractionValues() {
			logrus.Infof("Running simulation with λ=%g, f=%.4f (%d replications)", rate, f, spec.Replications)
			row, err := runPoint(spec, rate, f)
			if err != nil {
				return nil, err
			}
			table.Rows = append(table.Rows, row)
		}
	}
	return table, nil
}

func runPoint(spec *Spec, rate, fraction float64) (Row, error) {
	row := Row{ArrivalRate: rate, Fraction: fraction}
	row.Predicted = sim.Predict(spec.PointConfig(rate, fraction, 0))
	row.Baseline, row.BaselineOK = sim.MM1Residence(rate, spec.ServiceRate)

	var avgs [2][]float64
	for rep := 0; rep < spec.Replications; rep++ {
		res, err := sim.RunSimulation(spec.PointConfig(rate, fraction, rep))
		if err != nil {
			return Row{}, fmt.Errorf("simulating λ=%g f=%g replication %d: %w", rate, fraction, rep, err)
		}
		for i, class := range sim.Classes {
			stats := res.For(class)
			cell := row.cellPtr(class)
			cell.Completed += stats.CompletedAfterWarmup
			cell.Arrived += stats.TotalArrived
			if avg, ok := stats.AvgResidence(); ok {
				avgs[i] = append(avgs[i], avg)
			}
		}
	}
	for i, class := range sim.Classes {
		summarize(row.cellPtr(class), avgs[i])
	}
	return row, nil
}

func (r *Row) cellPtr(c sim.Class) *Cell {
	if c == sim.ClassPriority {
		return &r.Priority
	}
	return &r.Regular
}

// summarize fills the distribution fields of cell from per-replication averages.
func summarize(cell *Cell, avgs []float64) {
	cell.N = len(avgs)
	if cell.N == 0 {
		return
	}
	cell.Defined = true
	if cell.N == 1 {
		cell.Mean = avgs[0]
		return
	}
	cell.Mean, cell.StdDev = stat.MeanStdDev(avgs, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(cell.N - 1)}
	cell.HalfWidth = t.Quantile(0.975) * cell.StdDev / math.Sqrt(float64(cell.N))
}
