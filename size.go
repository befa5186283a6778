// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package moriarty

import (
	"math"

	"github.com/moriarty-project/moriarty/internal/ranges"
)

// CommonSize is a coarse size category for a value, typically set through a
// {size, …} property. Sizes form a small lattice: Min ⊆ Tiny ⊆ Small and
// Max ⊆ Huge ⊆ Large; merging two compatible sizes yields the smaller
// subset, merging incompatible ones fails.
type CommonSize int

const (
	AnySize CommonSize = iota
	MinSize
	TinySize
	SmallSize
	MediumSize
	LargeSize
	HugeSize
	MaxSize
	UnknownSize
)

func (s CommonSize) String() string {
	switch s {
	case AnySize:
		return "any"
	case MinSize:
		return "min"
	case TinySize:
		return "tiny"
	case SmallSize:
		return "small"
	case MediumSize:
		return "medium"
	case LargeSize:
		return "large"
	case HugeSize:
		return "huge"
	case MaxSize:
		return "max"
	}
	return "unknown"
}

// CommonSizeFromString parses a size descriptor; unrecognized descriptors
// yield UnknownSize.
func CommonSizeFromString(s string) CommonSize {
	for _, size := range []CommonSize{
		AnySize, MinSize, TinySize, SmallSize, MediumSize, LargeSize, HugeSize, MaxSize,
	} {
		if s == size.String() {
			return size
		}
	}
	return UnknownSize
}

// MergeSizes intersects two size categories. The second result is false
// when the sizes are incompatible.
func MergeSizes(a, b CommonSize) (CommonSize, bool) {
	if a == b {
		return a, true
	}
	if a == AnySize {
		return b, true
	}
	if b == AnySize {
		return a, true
	}

	type pair struct{ subset, superset CommonSize }
	for _, p := range []pair{
		{MinSize, TinySize},
		{MinSize, SmallSize},
		{TinySize, SmallSize},
		{MaxSize, HugeSize},
		{MaxSize, LargeSize},
		{HugeSize, LargeSize},
	} {
		if (a == p.subset && b == p.superset) || (b == p.subset && a == p.superset) {
			return p.subset, true
		}
	}
	return UnknownSize, false
}

// The thresholds below carve the reference interval [1, N] into bands. The
// cutoffs loosely track common contest limits: a "small" value of an
// O(N²)-sized problem should still let an O(N⁴) brute force pass. Exact
// values are implementation details; only the band ordering is stable.

func smallMaxThreshold(n int64) int64 {
	if n <= 100 {
		return int64(math.Sqrt(float64(n)))
	}
	if n <= 300 {
		return 30
	}
	if n <= 5000 {
		return 100
	}
	if n <= 5000000 {
		return 300
	}
	return 2000
}

func mediumMaxThreshold(n int64) int64 {
	if n <= 100 {
		half := n / 2
		if small := smallMaxThreshold(n); half < small {
			half = small
		}
		if half > n {
			half = n
		}
		return half
	}
	if n <= 300 {
		return 100
	}
	if n <= 5000 {
		return 500
	}
	if n <= 5000000 {
		return 5000
	}
	return 1000000
}

func tinyMaxThreshold(n int64) int64 {
	small := smallMaxThreshold(n)
	if small <= 10 {
		return small
	}
	log := int64(math.Log2(float64(n)))
	if log < 10 {
		return 10
	}
	return log
}

func hugeMinThreshold(n int64) int64 {
	if n <= 10 {
		return mediumMaxThreshold(n)
	}
	return (n / 10) * 9
}

// sizeRange returns the sub-range of the reference interval [1, n]
// corresponding to the size category. The range is empty for n <= 0.
func sizeRange(size CommonSize, n int64) *ranges.Range {
	if n <= 0 {
		return ranges.Empty()
	}
	switch size {
	case MinSize:
		return ranges.NewRange(1, 1)
	case TinySize:
		return ranges.NewRange(1, tinyMaxThreshold(n))
	case SmallSize:
		return ranges.NewRange(1, smallMaxThreshold(n))
	case MediumSize:
		return ranges.NewRange(smallMaxThreshold(n), mediumMaxThreshold(n))
	case LargeSize:
		return ranges.NewRange(mediumMaxThreshold(n), n)
	case HugeSize:
		return ranges.NewRange(hugeMinThreshold(n), n)
	case MaxSize:
		return ranges.NewRange(n, n)
	}
	return ranges.NewRange(1, n)
}
