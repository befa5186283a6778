// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package ranges

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/moriarty-project/moriarty/common"
)

func TestRange_DefaultCoversAllInt64(t *testing.T) {
	extremes, nonEmpty, err := Unbounded().Extremes(nil)
	if err != nil || !nonEmpty {
		t.Fatalf("unbounded range should have extremes, got %v, %v", nonEmpty, err)
	}
	if extremes.Min != math.MinInt64 || extremes.Max != math.MaxInt64 {
		t.Errorf("unexpected extremes %+v", extremes)
	}
}

func TestRange_ConstantBoundsNarrow(t *testing.T) {
	r := NewRange(1, 100)
	r.AtLeast(5)
	r.AtMost(50)
	r.AtLeast(3)  // weaker, ignored
	r.AtMost(200) // weaker, ignored

	extremes, nonEmpty, err := r.Extremes(nil)
	if err != nil || !nonEmpty {
		t.Fatalf("range should have extremes, got %v, %v", nonEmpty, err)
	}
	if extremes.Min != 5 || extremes.Max != 50 {
		t.Errorf("wanted [5, 50], got [%d, %d]", extremes.Min, extremes.Max)
	}
}

func TestRange_EmptyWhenMinExceedsMax(t *testing.T) {
	r := NewRange(10, 1)
	if _, nonEmpty, err := r.Extremes(nil); err != nil || nonEmpty {
		t.Errorf("range [10, 1] should be empty, got %v, %v", nonEmpty, err)
	}

	if _, nonEmpty, _ := Empty().Extremes(nil); nonEmpty {
		t.Errorf("Empty() should have no elements")
	}
}

func TestRange_ExpressionBounds(t *testing.T) {
	r := NewRange(1, 1000)
	r.AtLeastExpr("N + 1")
	r.AtMostExpr("3 * N")

	extremes, nonEmpty, err := r.Extremes(map[string]int64{"N": 10})
	if err != nil || !nonEmpty {
		t.Fatalf("range should have extremes, got %v, %v", nonEmpty, err)
	}
	if extremes.Min != 11 || extremes.Max != 30 {
		t.Errorf("wanted [11, 30], got [%d, %d]", extremes.Min, extremes.Max)
	}

	// Multiple expression bounds AND together: the effective minimum is the
	// largest lower bound.
	r.AtLeastExpr("N + 5")
	extremes, _, err = r.Extremes(map[string]int64{"N": 10})
	if err != nil {
		t.Fatalf("failed to get extremes: %v", err)
	}
	if extremes.Min != 15 {
		t.Errorf("wanted effective min 15, got %d", extremes.Min)
	}
}

func TestRange_EvaluationErrorsSurface(t *testing.T) {
	r := NewRange(1, 10)
	r.AtMostExpr("N")
	if _, _, err := r.Extremes(nil); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("missing identifier should surface an invalid argument, got %v", err)
	}
}

func TestRange_ParseErrorsSurfaceLazily(t *testing.T) {
	r := NewRange(1, 10)
	r.AtLeastExpr("1 +") // invalid, recorded silently

	if _, _, err := r.Extremes(nil); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("stored parse error should surface on Extremes, got %v", err)
	}
	if _, err := r.NeededVariables(); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("stored parse error should surface on NeededVariables, got %v", err)
	}
}

func TestRange_NeededVariables(t *testing.T) {
	r := Unbounded()
	r.AtLeastExpr("N + M")
	r.AtMostExpr("2 * N + K")

	needed, err := r.NeededVariables()
	if err != nil {
		t.Fatalf("failed to get needed variables: %v", err)
	}
	if want := []string{"K", "M", "N"}; !reflect.DeepEqual(needed, want) {
		t.Errorf("wanted %v, got %v", want, needed)
	}
}

func TestRange_IntersectConcatenatesBounds(t *testing.T) {
	a := NewRange(1, 100)
	a.AtLeastExpr("N")

	b := NewRange(5, 50)
	b.AtMostExpr("M")

	a.Intersect(b)

	extremes, nonEmpty, err := a.Extremes(map[string]int64{"N": 10, "M": 40})
	if err != nil || !nonEmpty {
		t.Fatalf("intersection should have extremes, got %v, %v", nonEmpty, err)
	}
	if extremes.Min != 10 || extremes.Max != 40 {
		t.Errorf("wanted [10, 40], got [%d, %d]", extremes.Min, extremes.Max)
	}

	needed, err := a.NeededVariables()
	if err != nil {
		t.Fatalf("failed to get needed variables: %v", err)
	}
	if want := []string{"M", "N"}; !reflect.DeepEqual(needed, want) {
		t.Errorf("wanted %v, got %v", want, needed)
	}
}

func TestRange_IntersectCarriesStoredErrors(t *testing.T) {
	a := NewRange(1, 100)
	b := NewRange(1, 100)
	b.AtMostExpr("][")

	a.Intersect(b)
	if _, _, err := a.Extremes(nil); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("intersection should carry the stored parse error, got %v", err)
	}
}

func TestRange_CloneIsIndependent(t *testing.T) {
	original := NewRange(1, 100)
	clone := original.Clone()
	clone.AtLeast(50)

	extremes, _, err := original.Extremes(nil)
	if err != nil {
		t.Fatalf("failed to get extremes: %v", err)
	}
	if extremes.Min != 1 {
		t.Errorf("mutating a clone changed the original: min = %d", extremes.Min)
	}
}
