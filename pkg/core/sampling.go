package core

import (
	"math/rand/v2"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a PCG generator that can be cheaply reseeded per pixel
type RandomSampler struct {
	source *rand.PCG
	random *rand.Rand
}

// NewRandomSampler creates a sampler seeded with (seed, stream)
func NewRandomSampler(seed, stream uint64) *RandomSampler {
	source := rand.NewPCG(seed, stream)
	return &RandomSampler{source: source, random: rand.New(source)}
}

// Reseed restarts the sequence so a pixel's samples do not depend on render order
func (r *RandomSampler) Reseed(seed, stream uint64) {
	r.source.Seed(seed, stream)
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// ConstantSampler always returns the same value, for tests that need a fixed jitter
type ConstantSampler struct {
	Value float64
}

// Get1D returns the constant
func (c ConstantSampler) Get1D() float64 {
	return c.Value
}

// Get2D returns the constant in both coordinates
func (c ConstantSampler) Get2D() Vec2 {
	return NewVec2(c.Value, c.Value)
}
