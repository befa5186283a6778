// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package random

import (
	"errors"
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/moriarty-project/moriarty/common"
)

func newTestEngine() *Engine {
	return NewEngine([]int64{1, 2, 3}, "test")
}

func TestShuffle_PreservesElements(t *testing.T) {
	engine := newTestEngine()
	values := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if err := Shuffle(engine, values); err != nil {
		t.Fatalf("failed to shuffle: %v", err)
	}
	sort.Ints(values)
	for i, v := range values {
		if v != i+1 {
			t.Fatalf("shuffle changed the multiset: %v", values)
		}
	}
}

func TestElement_FailsOnEmptySlice(t *testing.T) {
	engine := newTestEngine()
	if _, err := Element(engine, []int{}); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("picking from an empty slice should fail, got %v", err)
	}
}

func TestElement_ReturnsMemberOfSlice(t *testing.T) {
	engine := newTestEngine()
	values := []string{"a", "b", "c"}
	for i := 0; i < 30; i++ {
		element, err := Element(engine, values)
		if err != nil {
			t.Fatalf("failed to pick an element: %v", err)
		}
		if element != "a" && element != "b" && element != "c" {
			t.Errorf("unexpected element %q", element)
		}
	}
}

func TestElementsWithReplacement_CountAndMembership(t *testing.T) {
	engine := newTestEngine()
	values := []int{10, 20}
	result, err := ElementsWithReplacement(engine, values, 40)
	if err != nil {
		t.Fatalf("failed to pick elements: %v", err)
	}
	if len(result) != 40 {
		t.Fatalf("wanted 40 elements, got %d", len(result))
	}
	for _, v := range result {
		if v != 10 && v != 20 {
			t.Errorf("unexpected element %d", v)
		}
	}
}

func TestElementsWithReplacement_EmptySource(t *testing.T) {
	engine := newTestEngine()
	if result, err := ElementsWithReplacement(engine, []int{}, 0); err != nil || len(result) != 0 {
		t.Errorf("picking zero elements from an empty slice should succeed, got %v, %v", result, err)
	}
	if _, err := ElementsWithReplacement(engine, []int{}, 1); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("picking from an empty slice should fail, got %v", err)
	}
}

func TestElementsWithoutReplacement_Distinct(t *testing.T) {
	engine := newTestEngine()
	values := []int{1, 2, 3, 4, 5}
	result, err := ElementsWithoutReplacement(engine, values, 5)
	if err != nil {
		t.Fatalf("failed to pick elements: %v", err)
	}
	sort.Ints(result)
	for i, v := range result {
		if v != i+1 {
			t.Fatalf("result is not a permutation of the source: %v", result)
		}
	}

	if _, err := ElementsWithoutReplacement(engine, values, 6); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("picking 6 of 5 should fail, got %v", err)
	}
}

func TestDistinctIntegers_DenseAndSparse(t *testing.T) {
	engine := newTestEngine()
	tests := map[string]struct {
		n   int64
		k   int
		min int64
	}{
		"dense":       {n: 10, k: 9, min: 0},
		"sparse":      {n: 1000, k: 5, min: 0},
		"with offset": {n: 10, k: 10, min: 100},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := DistinctIntegers(engine, test.n, test.k, test.min)
			if err != nil {
				t.Fatalf("failed to sample: %v", err)
			}
			if len(result) != test.k {
				t.Fatalf("wanted %d values, got %d", test.k, len(result))
			}
			seen := map[int64]bool{}
			for _, v := range result {
				if v < test.min || v >= test.min+test.n {
					t.Errorf("value %d outside [%d, %d)", v, test.min, test.min+test.n)
				}
				if seen[v] {
					t.Errorf("value %d appears twice", v)
				}
				seen[v] = true
			}
		})
	}
}

func TestDistinctIntegers_InvalidArguments(t *testing.T) {
	engine := newTestEngine()
	if _, err := DistinctIntegers(engine, int64(3), 4, 0); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("asking for 4 of 3 should fail, got %v", err)
	}
	if _, err := DistinctIntegers(engine, int64(-1), 0, 0); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("negative n should fail, got %v", err)
	}
}

func TestPermutation_IsPermutation(t *testing.T) {
	engine := newTestEngine()
	result, err := Permutation(engine, 8, int64(1))
	if err != nil {
		t.Fatalf("failed to sample: %v", err)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	for i, v := range result {
		if v != int64(i+1) {
			t.Fatalf("result is not a permutation of 1..8: %v", result)
		}
	}
}

func TestComposition_Properties(t *testing.T) {
	engine := newTestEngine()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Int64Range(0, 500).Draw(t, "n")
		k := int(rapid.Int64Range(1, 20).Draw(t, "k"))
		minBucket := rapid.Int64Range(0, 5).Draw(t, "minBucket")
		if minBucket > 0 && n/minBucket < int64(k) {
			t.Skip("unsatisfiable")
		}

		result, err := Composition(engine, n, k, minBucket)
		if err != nil {
			t.Fatalf("failed to compose: %v", err)
		}
		if len(result) != k {
			t.Fatalf("wanted %d buckets, got %d", k, len(result))
		}
		total := int64(0)
		for _, bucket := range result {
			if bucket < minBucket {
				t.Errorf("bucket %d below minimum %d", bucket, minBucket)
			}
			total += bucket
		}
		if total != n {
			t.Errorf("buckets sum to %d, wanted %d", total, n)
		}
	})
}

func TestComposition_InvalidArguments(t *testing.T) {
	engine := newTestEngine()
	if _, err := Composition(engine, int64(10), 0, int64(1)); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("k = 0 with positive n should fail, got %v", err)
	}
	if _, err := Composition(engine, int64(3), 4, int64(1)); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("4 buckets of at least 1 from 3 should fail, got %v", err)
	}
}
