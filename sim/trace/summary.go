package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDispatches int
	ByClass         map[string]int // class name → dispatches

	// PriorityOverRegular counts priority dispatches made while at least one
	// regular customer was waiting.
	PriorityOverRegular int
	// LongestRegularWait is the longest run of consecutive dispatches during
	// which a regular customer was waiting but not served.
	LongestRegularWait int
	// RegularWhilePriorityWaiting counts regular dispatches made while a
	// priority customer was waiting. Always zero under strict priority.
	RegularWhilePriorityWaiting int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ByClass: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	streak := 0
	for _, d := range st.Dispatches {
		summary.TotalDispatches++
		summary.ByClass[d.Class]++
		switch d.Class {
		case ClassPriority:
			if d.WaitingRegular > 0 {
				summary.PriorityOverRegular++
				streak++
				summary.LongestRegularWait = max(summary.LongestRegularWait, streak)
			} else {
				streak = 0
			}
		case ClassRegular:
			if d.WaitingPriority > 0 {
				summary.RegularWhilePriorityWaiting++
			}
			streak = 0
		}
	}
	return summary
}
