// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

// Package random provides the deterministic random engine driving all value
// generation, together with the sampling primitives built on top of it.
//
// The engine is seeded from a sequence of 64-bit integers plus a version
// tag. Given the same seed and the same call sequence it produces the same
// results on every platform.
package random

import (
	"fmt"
	"math"

	"pgregory.net/rand"

	"github.com/moriarty-project/moriarty/common"
)

// Number of draws discarded right after seeding. Mixing the seed sequence
// into a single word leaves correlated low-entropy state behind; the warm-up
// moves the generator well past it.
const warmUpDraws = 1024

// Engine is a seeded, deterministic source of uniform random integers.
type Engine struct {
	rnd *rand.Rand

	versionTag string
}

// NewEngine creates an engine from a seed sequence and a version tag. The
// tag participates in seeding, so different library versions may produce
// different streams for the same seed without silently pretending otherwise.
func NewEngine(seed []int64, versionTag string) *Engine {
	e := &Engine{
		rnd:        rand.New(mixSeed(seed, versionTag)),
		versionTag: versionTag,
	}
	for i := 0; i < warmUpDraws; i++ {
		e.rnd.Uint64()
	}
	return e
}

// VersionTag returns the version tag the engine was seeded with.
func (e *Engine) VersionTag() string {
	return e.versionTag
}

// Uint64 returns the next raw 64-bit draw.
func (e *Engine) Uint64() uint64 {
	return e.rnd.Uint64()
}

// Below returns a uniform integer in the half-open interval [0, n).
func (e *Engine) Below(n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: Below(n) called with n <= 0 (%d)",
			common.ErrInvalidArgument, n)
	}
	return e.Int(0, n-1)
}

// Int returns a uniform integer in the closed interval [lo, hi].
func (e *Engine) Int(lo, hi int64) (int64, error) {
	if lo > hi {
		return 0, fmt.Errorf("%w: Int(lo, hi) called with lo > hi (%d, %d)",
			common.ErrInvalidArgument, lo, hi)
	}
	return lo + int64(e.uintInclusive(uint64(hi)-uint64(lo))), nil
}

// uintInclusive returns a uniform integer in [0, upper].
func (e *Engine) uintInclusive(upper uint64) uint64 {
	span := upper + 1
	if upper&span == 0 {
		// The interval length is a power of two (or the full 2^64 domain,
		// where span wraps to 0): mask the low bits of one draw.
		return e.rnd.Uint64() & upper
	}

	// Rejection sampling: partition [0, 2^64) into span buckets of equal
	// size scale, reject draws beyond the last full bucket. The rejection
	// probability is below 1/2 per draw.
	scale := math.MaxUint64 / span
	limit := span * scale

	var draw uint64
	for draw = e.rnd.Uint64(); draw >= limit; draw = e.rnd.Uint64() {
	}
	return draw / scale
}

// mixSeed folds the seed sequence and version tag into a single 64-bit seed
// word using a splitmix64 accumulator. The folding is fully defined, so two
// builds on different platforms agree on the resulting stream.
func mixSeed(seed []int64, versionTag string) uint64 {
	acc := uint64(0x9E3779B97F4A7C15)
	step := func(v uint64) {
		acc += v + 0x9E3779B97F4A7C15
		z := acc
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		acc = z ^ (z >> 31)
	}
	for _, s := range seed {
		step(uint64(s))
	}
	for _, b := range []byte(versionTag) {
		step(uint64(b))
	}
	return acc
}
