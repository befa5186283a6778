// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package moriarty

import (
	"fmt"

	"github.com/moriarty-project/moriarty/engine"
)

// ConstraintValues gives custom-constraint predicates access to the values
// of the variables they declared as dependencies.
//
//	vars.Add("X", moriarty.NewMInteger(moriarty.Between(1, 100)).
//		AddCustomConstraint("NotMultipleOfN", []string{"N"},
//			func(x int64, cv *moriarty.ConstraintValues) bool {
//				return x%cv.Int64("N") != 0
//			}))
//
// The accessors panic on a missing or mistyped value, so predicates stay
// plain boolean functions; a dependency listed at registration is always
// resolved before the predicate runs.
type ConstraintValues struct {
	universe *engine.Universe
}

// Int64 returns the integer value of the named variable.
func (cv *ConstraintValues) Int64(name string) int64 {
	return ContextValue[int64](cv, name)
}

// String returns the string value of the named variable.
func (cv *ConstraintValues) String(name string) string {
	return ContextValue[string](cv, name)
}

// ContextValue returns the value of the named variable with the requested
// type. It panics when the value is absent or of a different type.
func ContextValue[V any](cv *ConstraintValues, name string) V {
	value, err := engine.ValueAs[V](cv.universe, name)
	if err != nil {
		panic(fmt.Sprintf(
			"custom constraint requested %q, which is not available: %v; "+
				"declare it in the constraint's dependency list", name, err))
	}
	return value
}
