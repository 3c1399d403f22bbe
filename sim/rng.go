package sim

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemArrival drives interarrival gaps.
	SubsystemArrival = "arrival"

	// SubsystemService drives service durations.
	SubsystemService = "service"

	// SubsystemClass drives the priority/regular classification of arrivals.
	SubsystemClass = "class"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
//
// Keeping arrivals, service and classification on separate streams means the
// arrival process for a given seed is identical regardless of the fastpass
// fraction or dispatch policy, so sweeps compare configurations on common
// random numbers.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derivedSeed := int64(p.key) ^ fnv1a64(name)
	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === Variate sources ===

// VariateSource produces exponentially distributed durations.
type VariateSource interface {
	// Exponential returns a strictly positive, finite sample with mean 1/rate.
	Exponential(rate float64) float64
}

// ExponentialSource draws exponential variates by inverse transform on a
// dedicated *rand.Rand stream.
type ExponentialSource struct {
	rng *rand.Rand
}

// NewExponentialSource wraps rng. Panics on nil.
func NewExponentialSource(rng *rand.Rand) *ExponentialSource {
	if rng == nil {
		panic("NewExponentialSource: rng must not be nil")
	}
	return &ExponentialSource{rng: rng}
}

// Exponential returns -ln(U)/rate for U uniform on (0,1).
// rand.Float64 yields [0,1); U == 0 is redrawn so the result is never +Inf,
// and U < 1 keeps the result strictly positive.
func (s *ExponentialSource) Exponential(rate float64) float64 {
	u := s.rng.Float64()
	for u == 0 {
		u = s.rng.Float64()
	}
	return -math.Log(u) / rate
}

// ClassSampler assigns a class to each arriving customer.
type ClassSampler interface {
	Sample() Class
}

// BernoulliClassSampler marks an arrival as priority with probability Fraction.
type BernoulliClassSampler struct {
	Fraction float64
	rng      *rand.Rand
}

// NewBernoulliClassSampler creates a sampler drawing from rng. Panics on nil.
func NewBernoulliClassSampler(fraction float64, rng *rand.Rand) *BernoulliClassSampler {
	if rng == nil {
		panic("NewBernoulliClassSampler: rng must not be nil")
	}
	return &BernoulliClassSampler{Fraction: fraction, rng: rng}
}

// Sample performs one independent Bernoulli trial. A draw is consumed even
// for Fraction 0 or 1 so the class stream advances identically across fractions.
func (b *BernoulliClassSampler) Sample() Class {
	if b.rng.Float64() < b.Fraction {
		return ClassPriority
	}
	return ClassRegular
}

// Sources bundles the random inputs of a simulation.
// Nil fields are filled from the PartitionedRNG derived from the config seed.
type Sources struct {
	Arrival VariateSource
	Service VariateSource
	Class   ClassSampler
}

// withDefaults returns a copy of s with nil fields backed by rng subsystems.
func (s Sources) withDefaults(cfg Config, rng *PartitionedRNG) Sources {
	if s.Arrival == nil {
		s.Arrival = NewExponentialSource(rng.ForSubsystem(SubsystemArrival))
	}
	if s.Service == nil {
		s.Service = NewExponentialSource(rng.ForSubsystem(SubsystemService))
	}
	if s.Class == nil {
		s.Class = NewBernoulliClassSampler(cfg.FastpassFraction, rng.ForSubsystem(SubsystemClass))
	}
	return s
}
