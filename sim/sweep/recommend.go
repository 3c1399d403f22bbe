package sweep

import (
	"github.com/inference-sim/fastpass-sim/sim"
)

// Recommendation is the allocation chosen for one arrival rate.
type Recommendation struct {
	ArrivalRate float64
	Threshold   float64 // regular-class residence ceiling
	Found       bool

	Fraction        float64
	PriorityAvg     float64
	RegularAvg      float64
	RegularPerPrior float64 // RegularAvg / PriorityAvg
}

// Recommend picks, for each arrival rate of the table, the largest fraction
// whose regular-class average stays below factor × 1/(μ−λ) with both class
// averages defined. With λ >= μ no threshold exists and nothing is recommended.
func Recommend(table *Table, factor float64) []Recommendation {
	recs := make([]Recommendation, 0, len(table.Spec.ArrivalRates))
	for _, rate := range table.Spec.ArrivalRates {
		rec := Recommendation{ArrivalRate: rate}
		baseline, ok := sim.MM1Residence(rate, table.Spec.ServiceRate)
		if !ok {
			recs = append(recs, rec)
			continue
		}
		rec.Threshold = factor * baseline

		for _, row := range table.RowsFor(rate) {
			if !row.Priority.Defined || !row.Regular.Defined {
				continue
			}
			if row.Regular.Mean >= rec.Threshold {
				continue
			}
			if rec.Found && row.Fraction <= rec.Fraction {
				continue
			}
			rec.Found = true
			rec.Fraction = row.Fraction
			rec.PriorityAvg = row.Priority.Mean
			rec.RegularAvg = row.Regular.Mean
			rec.RegularPerPrior = row.Regular.Mean / row.Priority.Mean
		}
		recs = append(recs, rec)
	}
	return recs
}
