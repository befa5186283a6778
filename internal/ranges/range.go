// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

// Package ranges implements integer intervals whose endpoints may be
// constants or expressions over other variables.
package ranges

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/moriarty-project/moriarty/common"
	"github.com/moriarty-project/moriarty/internal/expr"
)

// Range is the intersection of integer intervals: a constant lower and upper
// bound plus lists of expressions the effective bounds must respect. The
// effective minimum is max(min, max over the lower-bound expressions) and the
// effective maximum is min(max, min over the upper-bound expressions). The
// range is empty when the effective minimum exceeds the effective maximum.
//
// Additional calls to AtLeast and AtMost add constraints; they never
// overwrite earlier ones.
type Range struct {
	min int64
	max int64

	minExprs []*expr.Expression
	maxExprs []*expr.Expression

	// A failed bound parse is stored here and surfaced the first time the
	// bounds are consulted, keeping the builder API fluent.
	paramErr error
}

// NewRange returns the range covering [minimum, maximum]. If minimum >
// maximum the range is empty.
func NewRange(minimum, maximum int64) *Range {
	return &Range{min: minimum, max: maximum}
}

// Unbounded returns the range covering all 64-bit signed integers.
func Unbounded() *Range {
	return NewRange(math.MinInt64, math.MaxInt64)
}

// Empty returns a range with no elements in it.
func Empty() *Range {
	return NewRange(1, 0)
}

// AtLeast constrains the range to be at least minimum.
func (r *Range) AtLeast(minimum int64) {
	if minimum > r.min {
		r.min = minimum
	}
}

// AtMost constrains the range to be at most maximum.
func (r *Range) AtMost(maximum int64) {
	if maximum < r.max {
		r.max = maximum
	}
}

// AtLeastExpr constrains the range to be at least the value of the given
// integer expression, e.g. "3 * N + 1". A parse failure is recorded and
// surfaced on the next call to Extremes or NeededVariables.
func (r *Range) AtLeastExpr(expression string) {
	parsed, err := expr.Parse(expression)
	if err != nil {
		r.recordErr(err)
		return
	}
	r.minExprs = append(r.minExprs, parsed)
}

// AtMostExpr constrains the range to be at most the value of the given
// integer expression.
func (r *Range) AtMostExpr(expression string) {
	parsed, err := expr.Parse(expression)
	if err != nil {
		r.recordErr(err)
		return
	}
	r.maxExprs = append(r.maxExprs, parsed)
}

func (r *Range) recordErr(err error) {
	if r.paramErr == nil {
		r.paramErr = err
	}
}

// Intersect narrows r to the intersection with other.
func (r *Range) Intersect(other *Range) {
	r.AtLeast(other.min)
	r.AtMost(other.max)
	r.minExprs = append(r.minExprs, other.minExprs...)
	r.maxExprs = append(r.maxExprs, other.maxExprs...)
	if other.paramErr != nil {
		r.recordErr(other.paramErr)
	}
}

// Clone returns an independent copy of r.
func (r *Range) Clone() *Range {
	clone := *r
	clone.minExprs = append([]*expr.Expression(nil), r.minExprs...)
	clone.maxExprs = append([]*expr.Expression(nil), r.maxExprs...)
	return &clone
}

// Extremes holds the effective endpoints of a non-empty range.
type Extremes struct {
	Min int64
	Max int64
}

// Extremes evaluates all bound expressions against env and returns the
// effective endpoints. The second result is false when the range is empty.
// Any stored parse error and any evaluation error is returned here.
func (r *Range) Extremes(env map[string]int64) (Extremes, bool, error) {
	if r.paramErr != nil {
		return Extremes{}, false, r.paramErr
	}

	result := Extremes{Min: r.min, Max: r.max}
	for _, e := range r.minExprs {
		value, err := e.Eval(env)
		if err != nil {
			return Extremes{}, false, fmt.Errorf("evaluating lower bound %q: %w", e, err)
		}
		if value > result.Min {
			result.Min = value
		}
	}
	for _, e := range r.maxExprs {
		value, err := e.Eval(env)
		if err != nil {
			return Extremes{}, false, fmt.Errorf("evaluating upper bound %q: %w", e, err)
		}
		if value < result.Max {
			result.Max = value
		}
	}

	if result.Min > result.Max {
		return Extremes{}, false, nil
	}
	return result, true, nil
}

// NeededVariables returns the sorted names of all variables required to
// evaluate Extremes.
func (r *Range) NeededVariables() ([]string, error) {
	if r.paramErr != nil {
		return nil, r.paramErr
	}
	seen := map[string]struct{}{}
	for _, e := range r.minExprs {
		for _, name := range e.Identifiers() {
			seen[name] = struct{}{}
		}
	}
	for _, e := range r.maxExprs {
		for _, name := range e.Identifiers() {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ErrEmptyRange is the error surfaced when a consulted range has no
// elements.
var ErrEmptyRange = fmt.Errorf("%w: valid range is empty", common.ErrFailedPrecondition)

func (r *Range) String() string {
	var parts []string
	if r.min != math.MinInt64 || len(r.minExprs) > 0 {
		lows := []string{fmt.Sprintf("%d", r.min)}
		for _, e := range r.minExprs {
			lows = append(lows, e.String())
		}
		parts = append(parts, "min: "+strings.Join(lows, ", "))
	}
	if r.max != math.MaxInt64 || len(r.maxExprs) > 0 {
		highs := []string{fmt.Sprintf("%d", r.max)}
		for _, e := range r.maxExprs {
			highs = append(highs, e.String())
		}
		parts = append(parts, "max: "+strings.Join(highs, ", "))
	}
	if len(parts) == 0 {
		return "(unbounded)"
	}
	return "(" + strings.Join(parts, "; ") + ")"
}
