// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package moriarty

import (
	"github.com/moriarty-project/moriarty/engine"
	"github.com/moriarty-project/moriarty/internal/random"
)

// Universe-aware wrappers around the randomness primitives, for variable
// implementations that draw directly instead of going through Random with a
// sub-variable.

// RandomInteger returns a uniform integer in the closed interval
// [min, max], drawn from the universe's engine.
func RandomInteger(u *engine.Universe, min, max int64) (int64, error) {
	rnd, err := u.Random()
	if err != nil {
		return 0, err
	}
	return rnd.Int(min, max)
}

// RandomBelow returns a uniform integer in [0, n). Useful for indices.
func RandomBelow(u *engine.Universe, n int64) (int64, error) {
	rnd, err := u.Random()
	if err != nil {
		return 0, err
	}
	return rnd.Below(n)
}

// Shuffle shuffles s in place.
func Shuffle[T any](u *engine.Universe, s []T) error {
	rnd, err := u.Random()
	if err != nil {
		return err
	}
	return random.Shuffle(rnd, s)
}

// RandomElement returns a uniformly chosen element of s.
func RandomElement[T any](u *engine.Universe, s []T) (T, error) {
	rnd, err := u.Random()
	if err != nil {
		var zero T
		return zero, err
	}
	return random.Element(rnd, s)
}

// RandomElementsWithReplacement returns k randomly ordered elements of s,
// possibly with duplicates.
func RandomElementsWithReplacement[T any](u *engine.Universe, s []T, k int) ([]T, error) {
	rnd, err := u.Random()
	if err != nil {
		return nil, err
	}
	return random.ElementsWithReplacement(rnd, s, k)
}

// RandomElementsWithoutReplacement returns k randomly ordered elements of
// s, each position used at most once.
func RandomElementsWithoutReplacement[T any](u *engine.Universe, s []T, k int) ([]T, error) {
	rnd, err := u.Random()
	if err != nil {
		return nil, err
	}
	return random.ElementsWithoutReplacement(rnd, s, k)
}

// RandomPermutation returns a random permutation of
// {min, min+1, …, min+(n-1)}.
func RandomPermutation(u *engine.Universe, n int, min int64) ([]int64, error) {
	rnd, err := u.Random()
	if err != nil {
		return nil, err
	}
	return random.Permutation(rnd, n, min)
}

// DistinctIntegers returns k randomly ordered distinct integers from
// {min, min+1, …, min+(n-1)}.
func DistinctIntegers(u *engine.Universe, n int64, k int, min int64) ([]int64, error) {
	rnd, err := u.Random()
	if err != nil {
		return nil, err
	}
	return random.DistinctIntegers(rnd, n, k, min)
}

// RandomComposition returns a random ordered partition of n into k buckets
// of at least minBucket each.
func RandomComposition(u *engine.Universe, n int64, k int, minBucket int64) ([]int64, error) {
	rnd, err := u.Random()
	if err != nil {
		return nil, err
	}
	return random.Composition(rnd, n, k, minBucket)
}
