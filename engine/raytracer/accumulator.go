package raytracer

import (
	"math"
	"math/rand/v2"
)

// DefaultCeiling is the sample count past which the image counts as converged.
const DefaultCeiling = 100

// accumulator is the implementation of the Accumulator interface.
type accumulator struct {
	count   uint32
	ceiling uint32
	started bool
	rng     *rand.Rand
}

// Accumulator is the progressive sample counter. Each frame it either advances or, when the scene
// changed, restarts at zero. It also draws the per-frame random seed.
type Accumulator interface {
	// Advance moves to the next frame. The first frame always reports 0.
	//
	// Parameters:
	//   - changed: whether geometry, materials or instances changed this frame
	//
	// Returns:
	//   - uint32: the counter value for this frame
	//   - [2]float32: a fresh seed with both components in [0, 1)
	Advance(changed bool) (uint32, [2]float32)

	// Count returns the counter value of the last Advance.
	Count() uint32

	// Ceiling returns the convergence threshold.
	Ceiling() uint32

	// Converged reports whether the counter has passed the ceiling.
	Converged() bool
}

var _ Accumulator = &accumulator{}

// NewAccumulator creates an Accumulator.
//
// Parameters:
//   - ceiling: the convergence threshold
//   - seed: seeds the random source; equal seeds give equal seed sequences
//
// Returns:
//   - Accumulator: the accumulator
func NewAccumulator(ceiling uint32, seed uint64) Accumulator {
	return &accumulator{
		ceiling: ceiling,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (a *accumulator) Advance(changed bool) (uint32, [2]float32) {
	switch {
	case !a.started:
		a.started = true
		a.count = 0
	case changed:
		a.count = 0
	case a.count < math.MaxUint32:
		a.count++
	}
	return a.count, [2]float32{a.rng.Float32(), a.rng.Float32()}
}

func (a *accumulator) Count() uint32 {
	return a.count
}

func (a *accumulator) Ceiling() uint32 {
	return a.ceiling
}

func (a *accumulator) Converged() bool {
	return a.count > a.ceiling
}
