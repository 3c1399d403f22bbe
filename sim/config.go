package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/inference-sim/fastpass-sim/sim/trace"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Defaults matching the reference study.
const (
	DefaultServiceRate = 1.0
	DefaultHorizon     = 50000.0
	DefaultWarmup      = 5000.0
	DefaultSeed        = 42
)

// Config groups the parameters of one simulation run.
type Config struct {
	ArrivalRate      float64 // total arrival rate λ (> 0)
	FastpassFraction float64 // probability an arrival is priority, in [0, 1]
	ServiceRate      float64 // service rate μ (> 0)
	Horizon          float64 // simulated time to run to (> 0)
	Warmup           float64 // departures at or before this time are not counted, in [0, Horizon)
	Seed             int64

	Policy     string           // dispatch policy: "priority" (default) or "fcfs"
	MaxEvents  int64            // stop after this many events; 0 = unlimited
	TraceLevel trace.TraceLevel // "none" (default) or "dispatch"
}

// NewConfig returns a Config with the reference defaults for everything but
// the arrival rate and fastpass fraction.
func NewConfig(arrivalRate, fastpassFraction float64) Config {
	return Config{
		ArrivalRate:      arrivalRate,
		FastpassFraction: fastpassFraction,
		ServiceRate:      DefaultServiceRate,
		Horizon:          DefaultHorizon,
		Warmup:           DefaultWarmup,
		Seed:             DefaultSeed,
	}
}

// Validate checks parameter ranges. Values are never clamped.
func (c Config) Validate() error {
	if err := requirePositive("arrival_rate", c.ArrivalRate); err != nil {
		return err
	}
	if err := requirePositive("service_rate", c.ServiceRate); err != nil {
		return err
	}
	if err := requirePositive("horizon", c.Horizon); err != nil {
		return err
	}
	if math.IsNaN(c.FastpassFraction) || c.FastpassFraction < 0 || c.FastpassFraction > 1 {
		return fmt.Errorf("%w: fastpass_fraction must be in [0, 1], got %f", ErrInvalidConfig, c.FastpassFraction)
	}
	if math.IsNaN(c.Warmup) || c.Warmup < 0 || c.Warmup >= c.Horizon {
		return fmt.Errorf("%w: warmup must be in [0, horizon=%g), got %f", ErrInvalidConfig, c.Horizon, c.Warmup)
	}
	if !IsValidPolicy(c.Policy) {
		return fmt.Errorf("%w: unknown dispatch policy %q; valid: priority, fcfs", ErrInvalidConfig, c.Policy)
	}
	if c.MaxEvents < 0 {
		return fmt.Errorf("%w: max_events must be non-negative, got %d", ErrInvalidConfig, c.MaxEvents)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("%w: unknown trace level %q; valid: none, dispatch", ErrInvalidConfig, c.TraceLevel)
	}
	return nil
}

// Stable reports whether λ < μ.
func (c Config) Stable() bool {
	return c.ArrivalRate < c.ServiceRate
}

func requirePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%w: %s must be a finite number, got %f", ErrInvalidConfig, name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %f", ErrInvalidConfig, name, val)
	}
	return nil
}
