// Package trace provides dispatch-trace recording for scheduling policy analysis.
// This package has no dependencies on sim/ — it stores pure data types.
package trace

// Class names as recorded in DispatchRecord.Class.
const (
	ClassPriority = "priority"
	ClassRegular  = "regular"
)

// DispatchRecord captures a single decision to move a customer into service,
// together with the waiting-line lengths observed just before the decision.
type DispatchRecord struct {
	CustomerID      int64
	Clock           float64
	Class           string
	WaitingPriority int // priority customers waiting, including the one dispatched if priority
	WaitingRegular  int // regular customers waiting, including the one dispatched if regular
}
