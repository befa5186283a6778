// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package moriarty

import (
	"fmt"
	"math"
	"strconv"

	"github.com/moriarty-project/moriarty/common"
	"github.com/moriarty-project/moriarty/engine"
	"github.com/moriarty-project/moriarty/internal/ranges"
)

// MInteger describes constraints on a 64-bit signed integer: a range whose
// endpoints may reference other variables, and an optional size category.
type MInteger struct {
	Base[int64]

	bounds *ranges.Range
	size   CommonSize
}

// NewMInteger returns an integer variable with the given constraints
// applied.
func NewMInteger(constraints ...IntegerConstraint) *MInteger {
	m := &MInteger{bounds: ranges.Unbounded(), size: AnySize}
	m.initBase(m)
	m.RegisterKnownProperty("size", m.OfSizeProperty)
	for _, constraint := range constraints {
		constraint.ApplyToInteger(m)
	}
	return m
}

// Typename implements engine.Variable.
func (m *MInteger) Typename() string {
	return "MInteger"
}

// Clone implements engine.Variable.
func (m *MInteger) Clone() engine.Variable {
	return m.CloneInteger()
}

// CloneInteger returns an independent copy.
func (m *MInteger) CloneInteger() *MInteger {
	clone := &MInteger{bounds: m.bounds.Clone(), size: m.size}
	m.cloneBaseInto(&clone.Base, clone)
	clone.RegisterKnownProperty("size", clone.OfSizeProperty)
	return clone
}

// Is pins the variable to exactly value.
func (m *MInteger) Is(value int64) *MInteger {
	m.setIs(value)
	return m
}

// IsOneOf restricts the variable to the given options. Successive calls
// intersect.
func (m *MInteger) IsOneOf(values ...int64) *MInteger {
	m.setIsOneOf(values)
	return m
}

// Between constrains the variable to [min, max].
func (m *MInteger) Between(min, max int64) *MInteger {
	m.bounds.Intersect(ranges.NewRange(min, max))
	return m
}

// BetweenExpr constrains the variable to lie between two integer
// expressions, e.g. BetweenExpr("1", "3 * N").
func (m *MInteger) BetweenExpr(min, max string) *MInteger {
	m.AtLeastExpr(min)
	m.AtMostExpr(max)
	return m
}

// AtLeast constrains the variable to be at least min. Multiple calls are
// ANDed together.
func (m *MInteger) AtLeast(min int64) *MInteger {
	m.bounds.AtLeast(min)
	return m
}

// AtLeastExpr constrains the variable to be at least the value of the given
// expression.
func (m *MInteger) AtLeastExpr(min string) *MInteger {
	m.bounds.AtLeastExpr(min)
	return m
}

// AtMost constrains the variable to be at most max. Multiple calls are
// ANDed together.
func (m *MInteger) AtMost(max int64) *MInteger {
	m.bounds.AtMost(max)
	return m
}

// AtMostExpr constrains the variable to be at most the value of the given
// expression.
func (m *MInteger) AtMostExpr(max string) *MInteger {
	m.bounds.AtMostExpr(max)
	return m
}

// WithSize applies a size category; incompatible categories mark the
// variable invalid.
func (m *MInteger) WithSize(size CommonSize) *MInteger {
	merged, ok := MergeSizes(m.size, size)
	if !ok {
		m.markInvalid(common.UnsatisfiedConstraintError(fmt.Sprintf(
			"invalid size: unable to be both %v and %v", size, m.size)))
		return m
	}
	m.size = merged
	return m
}

// AddCustomConstraint registers a named predicate over generated values.
// deps lists the variables the predicate reads through ConstraintValues.
func (m *MInteger) AddCustomConstraint(name string, deps []string, check func(int64, *ConstraintValues) bool) *MInteger {
	m.addCustomConstraint(name, deps, check)
	return m
}

// OfSizeProperty interprets a {size, …} property.
func (m *MInteger) OfSizeProperty(property engine.Property) error {
	if property.Category != "size" {
		return fmt.Errorf("%w: property category must be 'size' in OfSizeProperty",
			common.ErrInvalidArgument)
	}
	size := CommonSizeFromString(property.Descriptor)
	if size == UnknownSize {
		return fmt.Errorf("%w: unknown size %q",
			common.ErrInvalidArgument, property.Descriptor)
	}
	m.WithSize(size)
	return nil
}

// MergeFrom implements engine.Variable.
func (m *MInteger) MergeFrom(other engine.Variable) error {
	otherInteger, ok := other.(*MInteger)
	if !ok {
		return fmt.Errorf("%w: cannot merge %s into MInteger",
			common.ErrInvalidArgument, other.Typename())
	}
	m.mergeBaseFrom(&otherInteger.Base)
	m.bounds.Intersect(otherInteger.bounds)

	merged, ok := MergeSizes(m.size, otherInteger.size)
	if !ok {
		return fmt.Errorf(
			"%w: attempting to merge MIntegers with different size properties",
			common.ErrInvalidArgument)
	}
	m.size = merged
	return nil
}

// extremes resolves the effective bounds under u. When generate is set,
// dependent variables may be generated on demand; otherwise only known
// values are consulted. A nil universe works for ranges without
// dependencies.
func (m *MInteger) extremes(u *engine.Universe, generate bool) (ranges.Extremes, error) {
	needed, err := m.bounds.NeededVariables()
	if err != nil {
		return ranges.Extremes{}, fmt.Errorf("error getting the needed variables: %w", err)
	}

	env := map[string]int64{}
	for _, name := range needed {
		if u == nil {
			return ranges.Extremes{}, fmt.Errorf(
				"%w: bounds depend on %q, but no universe is available",
				common.ErrFailedPrecondition, name)
		}
		var value int64
		if generate {
			value, err = engine.GenerateValueAs[int64](u, name)
		} else {
			value, err = engine.ValueAs[int64](u, name)
		}
		if err != nil {
			return ranges.Extremes{}, fmt.Errorf(
				"error getting the dependent variable %q: %w", name, err)
		}
		env[name] = value
	}

	extremes, nonEmpty, err := m.bounds.Extremes(env)
	if err != nil {
		return ranges.Extremes{}, err
	}
	if !nonEmpty {
		return ranges.Extremes{}, ranges.ErrEmptyRange
	}
	return extremes, nil
}

func randomInRange(u *engine.Universe, extremes ranges.Extremes) (int64, error) {
	rnd, err := u.Random()
	if err != nil {
		return 0, err
	}
	return rnd.Int(extremes.Min, extremes.Max)
}

// GenerateOnce implements Variable.
func (m *MInteger) GenerateOnce(u *engine.Universe, name string) (int64, error) {
	extremes, err := m.extremes(u, true)
	if err != nil {
		return 0, fmt.Errorf("error getting the min/max of the range in MInteger: %w", err)
	}

	if m.size == AnySize {
		return randomInRange(u, extremes)
	}

	// For ranges spanning most of the int64 domain the band width below
	// would overflow; just sample the full range.
	if extremes.Min <= math.MinInt64/2 && extremes.Max >= math.MaxInt64/2 {
		return randomInRange(u, extremes)
	}

	band := sizeRange(m.size, extremes.Max-extremes.Min+1)
	bandExtremes, nonEmpty, err := band.Extremes(nil)
	if err != nil {
		return 0, err
	}
	if nonEmpty {
		// The band is relative to the reference interval [1, N]; shift it
		// onto the actual range.
		bandExtremes.Min += extremes.Min - 1
		bandExtremes.Max += extremes.Min - 1
		if value, err := randomInRange(u, bandExtremes); err == nil {
			return value, nil
		}
	}

	// A size band that cannot be honoured falls back to the full range.
	return randomInRange(u, extremes)
}

// Check implements Variable.
func (m *MInteger) Check(u *engine.Universe, value int64) error {
	extremes, err := m.extremes(u, false)
	if err != nil {
		return common.UnsatisfiedConstraintError(
			fmt.Sprintf("range should be valid: %v", err))
	}
	return common.CheckConstraint(
		extremes.Min <= value && value <= extremes.Max,
		fmt.Sprintf("%d is not in the range [%d, %d]", value, extremes.Min, extremes.Max))
}

// TypedUniqueValue implements Variable: the value is unique when the
// effective bounds collapse to a point.
func (m *MInteger) TypedUniqueValue(u *engine.Universe) (int64, bool) {
	extremes, err := m.extremes(u, false)
	if err != nil || extremes.Min != extremes.Max {
		return 0, false
	}
	return extremes.Min, true
}

// DirectDependencies implements Variable.
func (m *MInteger) DirectDependencies() []string {
	needed, err := m.bounds.NeededVariables()
	if err != nil {
		return nil
	}
	return needed
}

// Subvalues implements Variable; integers have no projections.
func (m *MInteger) Subvalues(int64) (*engine.Subvalues, error) {
	return nil, fmt.Errorf("%w: Subvalues not implemented for MInteger",
		common.ErrUnimplemented)
}

// Read implements Variable: a decimal token with an optional leading '-'.
func (m *MInteger) Read(u *engine.Universe, name string) (int64, error) {
	io, err := u.IO()
	if err != nil {
		return 0, err
	}
	token, err := io.ReadToken()
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unable to read an integer from %q",
			common.ErrInvalidArgument, token)
	}
	return value, nil
}

// Print implements Variable.
func (m *MInteger) Print(u *engine.Universe, name string, value int64) error {
	io, err := u.IO()
	if err != nil {
		return err
	}
	return io.PrintToken(strconv.FormatInt(value, 10))
}

// FormatValue implements Variable.
func (m *MInteger) FormatValue(value int64) (string, error) {
	return strconv.FormatInt(value, 10), nil
}

// TypedDifficultInstances implements Variable: endpoints, small values,
// neighbourhoods of powers of two, midpoints, and a square root of the
// maximum, filtered to the variable's own range.
func (m *MInteger) TypedDifficultInstances() ([]Variable[int64], error) {
	min, max := int64(math.MinInt64), int64(math.MaxInt64)
	if extremes, err := m.extremes(nil, false); err == nil {
		min, max = extremes.Min, extremes.Max
	}

	values := []int64{min}
	if min != max {
		values = append(values, max)
	}
	contains := func(v int64) bool {
		for _, existing := range values {
			if existing == v {
				return true
			}
		}
		return false
	}
	insert := func(candidates ...int64) {
		for _, v := range candidates {
			// min and max are already in; only values strictly inside count.
			if min < v && v < max && !contains(v) {
				values = append(values, v)
			}
		}
	}

	insert(0, 1, 2, -1, -2)

	for _, exp := range []uint{7, 8, 15, 16, 31, 32, 62} {
		powTwo := int64(1) << exp
		insert(powTwo, powTwo+1, powTwo-1)
		insert(-powTwo, -powTwo+1, -powTwo-1)
	}

	insert(min/2, max/2, min+1, max-1)
	if max >= 0 {
		root := int64(math.Sqrt(float64(max)))
		insert(root, root+1, root-1)
	}

	instances := make([]Variable[int64], 0, len(values))
	for _, v := range values {
		instances = append(instances, NewMInteger().Is(v))
	}
	return instances, nil
}

func (m *MInteger) String() string {
	result := m.Typename()
	if m.size != AnySize {
		result += fmt.Sprintf("; size: %v", m.size)
	}
	return result + fmt.Sprintf("; bounds: %v", m.bounds)
}
