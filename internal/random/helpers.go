// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package random

import (
	"fmt"
	"sort"

	"golang.org/x/exp/constraints"

	"github.com/moriarty-project/moriarty/common"
)

// Shuffle shuffles the elements of s in place.
func Shuffle[T any](e *Engine, s []T) error {
	for i := 1; i < len(s); i++ {
		j, err := e.Below(int64(i) + 1)
		if err != nil {
			return err
		}
		if int64(i) != j {
			s[i], s[j] = s[j], s[i]
		}
	}
	return nil
}

// Element returns a uniformly chosen element of s.
func Element[T any](e *Engine, s []T) (T, error) {
	var zero T
	if len(s) == 0 {
		return zero, fmt.Errorf(
			"%w: cannot pick a random element of an empty slice",
			common.ErrInvalidArgument)
	}
	idx, err := e.Below(int64(len(s)))
	if err != nil {
		return zero, err
	}
	return s[idx], nil
}

// ElementsWithReplacement returns k randomly ordered elements of s, possibly
// with duplicates.
func ElementsWithReplacement[T any](e *Engine, s []T, k int) ([]T, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be non-negative (%d)",
			common.ErrInvalidArgument, k)
	}
	if len(s) == 0 && k > 0 {
		return nil, fmt.Errorf(
			"%w: cannot pick random elements of an empty slice",
			common.ErrInvalidArgument)
	}

	result := make([]T, 0, k)
	for i := 0; i < k; i++ {
		idx, err := e.Below(int64(len(s)))
		if err != nil {
			return nil, err
		}
		result = append(result, s[idx])
	}
	return result, nil
}

// ElementsWithoutReplacement returns k randomly ordered elements of s,
// each position of s used at most once. If s itself contains duplicates,
// each occurrence may be returned once.
func ElementsWithoutReplacement[T any](e *Engine, s []T, k int) ([]T, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be non-negative (%d)",
			common.ErrInvalidArgument, k)
	}
	if k > len(s) {
		return nil, fmt.Errorf(
			"%w: cannot pick %d distinct elements from a slice of size %d",
			common.ErrInvalidArgument, k, len(s))
	}

	indices, err := DistinctIntegers(e, int64(len(s)), k, 0)
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, k)
	for _, idx := range indices {
		result = append(result, s[idx])
	}
	return result, nil
}

// Permutation returns a random permutation of {min, min+1, …, min+(n-1)}.
// min + (n-1) must not overflow T.
func Permutation[T constraints.Integer](e *Engine, n int, min T) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n must be non-negative (%d)",
			common.ErrInvalidArgument, n)
	}
	return DistinctIntegers(e, T(n), n, min)
}

// DistinctIntegers returns k randomly ordered distinct integers from
// {min, min+1, …, min+(n-1)}. min + (n-1) must not overflow T.
func DistinctIntegers[T constraints.Integer](e *Engine, n T, k int, min T) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n must be non-negative (%d)",
			common.ErrInvalidArgument, int64(n))
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be non-negative (%d)",
			common.ErrInvalidArgument, k)
	}
	if T(k) > n {
		return nil, fmt.Errorf(
			"%w: cannot pick %d distinct integers from a range of size %d",
			common.ErrInvalidArgument, k, int64(n))
	}

	if T(2*k) > n {
		// Dense request: materialize the whole domain, shuffle, take a
		// prefix. Allocates at most twice the required memory.
		all := make([]T, 0, n)
		for i := T(0); i < n; i++ {
			all = append(all, i+min)
		}
		if err := Shuffle(e, all); err != nil {
			return nil, err
		}
		return all[:k], nil
	}

	// Sparse request: rejection-sample offsets. Since k <= n/2 this takes
	// fewer than log(2)·n iterations on average.
	seen := make(map[int64]struct{}, k)

	// The result keeps the order the offsets were drawn in, so different
	// platforms agree on the output.
	result := make([]T, 0, k)
	for len(result) < k {
		offset, err := e.Below(int64(n))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[offset]; dup {
			continue
		}
		seen[offset] = struct{}{}
		result = append(result, T(offset)+min)
	}
	return result, nil
}

// Composition returns a random composition (an ordered partition) of n into
// k buckets, each of size at least minBucket. The returned values are the
// bucket sizes. n + (k-1) must not overflow T.
func Composition[T constraints.Integer](e *Engine, n T, k int, minBucket T) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n must be non-negative (%d)",
			common.ErrInvalidArgument, int64(n))
	}
	if minBucket < 0 {
		return nil, fmt.Errorf("%w: minBucket must be non-negative (%d)",
			common.ErrInvalidArgument, int64(minBucket))
	}
	if n == 0 && k == 0 && minBucket == 0 {
		return nil, nil
	}
	if k <= 0 {
		return nil, fmt.Errorf(
			"%w: k must be positive since one of n or minBucket is",
			common.ErrInvalidArgument)
	}
	if minBucket > 0 && n/minBucket < T(k) {
		return nil, fmt.Errorf(
			"%w: cannot place at least %d entries into each of %d buckets with only %d values",
			common.ErrInvalidArgument, int64(minBucket), k, int64(n))
	}

	if minBucket > 0 {
		// Set the required sizes aside, compose the remainder freely, then
		// hand the reserved sizes back.
		result, err := Composition(e, n-minBucket*T(k), k, 0)
		if err != nil {
			return nil, err
		}
		for i := range result {
			result[i] += minBucket
		}
		return result, nil
	}
	if n == 0 {
		return make([]T, k), nil
	}

	// Place k-1 barriers amongst the n values: (n + (k-1)) choose (k-1).
	barriers, err := DistinctIntegers(e, n+T(k-1), k-1, 0)
	if err != nil {
		return nil, err
	}
	sort.Slice(barriers, func(i, j int) bool { return barriers[i] < barriers[j] })

	result := make([]T, 0, k)
	prev := T(0) - 1 // barrier at index -1 bookends the left side
	for _, b := range barriers {
		result = append(result, b-prev-1)
		prev = b
	}
	result = append(result, n+T(k-1)-prev-1)
	return result, nil
}
