// Tracks per-class residence-time statistics for final reporting.

package sim

import (
	"fmt"
	"io"
	"math"
)

// ClassStats aggregates one class's completions after warm-up.
type ClassStats struct {
	TotalArrived         int64   // every arrival of this class, warm-up included
	CompletedAfterWarmup int64   // departures strictly after the warm-up horizon
	SumResidence         float64 // sum of residence times of counted departures
	MaxResidence         float64 // maximum residence time of counted departures

	// Conservation accounting, not part of the steady-state estimate.
	CompletedBeforeWarmup int64 // departures at or before the warm-up horizon
	QueuedAtEnd           int64 // still waiting when the run stopped
	InServiceAtEnd        int64 // 0 or 1
}

// AvgResidence returns the mean residence time over counted departures.
// ok is false when no departure was counted; the zero value must then not be
// read as "no wait".
func (s ClassStats) AvgResidence() (avg float64, ok bool) {
	if s.CompletedAfterWarmup == 0 {
		return 0, false
	}
	return s.SumResidence / float64(s.CompletedAfterWarmup), true
}

// Unaccounted returns arrivals not covered by a departure or an end-of-run
// position. Zero for every correct run.
func (s ClassStats) Unaccounted() int64 {
	return s.TotalArrived - s.CompletedAfterWarmup - s.CompletedBeforeWarmup - s.QueuedAtEnd - s.InServiceAtEnd
}

// record credits one departure with the given residence time.
func (s *ClassStats) record(residence float64) {
	s.CompletedAfterWarmup++
	s.SumResidence += residence
	s.MaxResidence = math.Max(s.MaxResidence, residence)
}

// Metrics aggregates statistics about the simulation
// for final reporting.
type Metrics struct {
	Classes [numClasses]ClassStats

	EventsProcessed int64
	SimEndedTime    float64 // clock of the last processed event
	BusyTime        float64 // service time delivered, for utilization
}

// NewMetrics creates zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// For returns the stats of class c.
func (m *Metrics) For(c Class) *ClassStats {
	return &m.Classes[c]
}

// Utilization is the fraction of simulated time the server was busy.
func (m *Metrics) Utilization() float64 {
	if m.SimEndedTime <= 0 {
		return 0
	}
	return m.BusyTime / m.SimEndedTime
}

// FormatAvg renders an average residence time, or "n/a" when undefined.
func FormatAvg(avg float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", avg)
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Events Processed     : %d\n", m.EventsProcessed)
	fmt.Fprintf(w, "Simulation Ended At  : %.4f\n", m.SimEndedTime)
	fmt.Fprintf(w, "Server Utilization   : %.4f\n", m.Utilization())
	for _, class := range Classes {
		s := m.Classes[class]
		fmt.Fprintf(w, "--- %s ---\n", class)
		fmt.Fprintf(w, "Arrived              : %d\n", s.TotalArrived)
		fmt.Fprintf(w, "Completed (counted)  : %d\n", s.CompletedAfterWarmup)
		fmt.Fprintf(w, "Average Residence    : %s\n", FormatAvg(s.AvgResidence()))
		if s.CompletedAfterWarmup > 0 {
			fmt.Fprintf(w, "Max Residence        : %.4f\n", s.MaxResidence)
		}
	}
}
