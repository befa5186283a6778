// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package moriarty

import (
	"fmt"

	"github.com/moriarty-project/moriarty/common"
	"github.com/moriarty-project/moriarty/engine"
)

// MArray describes constraints on a sequence: one element variable shared
// by every entry, an optional length (an integer variable), a
// distinct-elements flag and a wire separator.
//
// Arrays nest: NewMArray[[]int64](NewMArray[int64](NewMInteger())) is an
// array of integer arrays.
type MArray[V any] struct {
	Base[[]V]

	element  Variable[V]
	length   *MInteger // nil if unconstrained
	distinct bool

	separator    engine.Whitespace
	hasSeparator bool

	lengthSizeProperty *engine.Property
}

// NewMArray returns an array variable whose entries all satisfy element.
func NewMArray[V any](element Variable[V]) *MArray[V] {
	m := &MArray[V]{element: element}
	m.initBase(m)
	m.RegisterKnownProperty("size", m.OfSizeProperty)
	return m
}

// Typename implements engine.Variable.
func (m *MArray[V]) Typename() string {
	return fmt.Sprintf("MArray<%s>", m.element.Typename())
}

// Clone implements engine.Variable.
func (m *MArray[V]) Clone() engine.Variable {
	return m.CloneArray()
}

// CloneArray returns an independent copy.
func (m *MArray[V]) CloneArray() *MArray[V] {
	clone := &MArray[V]{
		element:      m.element.Clone().(Variable[V]),
		distinct:     m.distinct,
		separator:    m.separator,
		hasSeparator: m.hasSeparator,
	}
	if m.length != nil {
		clone.length = m.length.CloneInteger()
	}
	if m.lengthSizeProperty != nil {
		property := *m.lengthSizeProperty
		clone.lengthSizeProperty = &property
	}
	m.cloneBaseInto(&clone.Base, clone)
	clone.RegisterKnownProperty("size", clone.OfSizeProperty)
	return clone
}

// Of merges additional constraints into the element variable.
func (m *MArray[V]) Of(element Variable[V]) *MArray[V] {
	if err := m.element.MergeFrom(element); err != nil {
		m.markInvalid(err)
	}
	return m
}

// OfLength constrains the length to exactly length.
func (m *MArray[V]) OfLength(length int64) *MArray[V] {
	return m.OfLengthVar(NewMInteger(Between(length, length)))
}

// OfLengthBetween constrains the length to [min, max]; bounds are int64
// constants or expression strings.
func (m *MArray[V]) OfLengthBetween(min, max any) *MArray[V] {
	return m.OfLengthVar(NewMInteger(Between(min, max)))
}

// OfLengthVar merges arbitrary integer constraints into the length.
func (m *MArray[V]) OfLengthVar(length *MInteger) *MArray[V] {
	if m.length != nil {
		if err := m.length.MergeFrom(length); err != nil {
			m.markInvalid(err)
		}
	} else {
		m.length = length.CloneInteger()
	}
	return m
}

// WithDistinctElements requires every element to appear at most once.
func (m *MArray[V]) WithDistinctElements() *MArray[V] {
	m.distinct = true
	return m
}

// WithSeparator sets the whitespace between entries on the wire. Default is
// a single space. Conflicting separators mark the variable invalid.
func (m *MArray[V]) WithSeparator(separator engine.Whitespace) *MArray[V] {
	if m.hasSeparator && m.separator != separator {
		m.markInvalid(fmt.Errorf(
			"%w: invalid MArray separator state, only one separator is supported",
			common.ErrFailedPrecondition))
		return m
	}
	m.separator = separator
	m.hasSeparator = true
	return m
}

// ApplySeparator applies an IOSeparator descriptor.
func (m *MArray[V]) ApplySeparator(c IOSeparatorConstraint) *MArray[V] {
	return m.WithSeparator(c.separator)
}

// AddCustomConstraint registers a named predicate over generated values.
func (m *MArray[V]) AddCustomConstraint(name string, deps []string, check func([]V, *ConstraintValues) bool) *MArray[V] {
	m.addCustomConstraint(name, deps, check)
	return m
}

// OfSizeProperty stores a {size, …} property to be applied to the length at
// generation time.
func (m *MArray[V]) OfSizeProperty(property engine.Property) error {
	m.lengthSizeProperty = &property
	return nil
}

// MergeFrom implements engine.Variable.
func (m *MArray[V]) MergeFrom(other engine.Variable) error {
	otherArray, ok := other.(*MArray[V])
	if !ok {
		return fmt.Errorf("%w: cannot merge %s into %s",
			common.ErrInvalidArgument, other.Typename(), m.Typename())
	}
	m.mergeBaseFrom(&otherArray.Base)
	if err := m.element.MergeFrom(otherArray.element); err != nil {
		return err
	}
	if otherArray.length != nil {
		m.OfLengthVar(otherArray.length)
	}
	if otherArray.distinct {
		m.distinct = true
	}
	if otherArray.hasSeparator {
		m.WithSeparator(otherArray.separator)
	}
	if m.invalid != nil {
		return m.invalid
	}
	return nil
}

func (m *MArray[V]) wireSeparator() engine.Whitespace {
	if m.hasSeparator {
		return m.separator
	}
	return engine.Space
}

// GenerateOnce implements Variable.
func (m *MArray[V]) GenerateOnce(u *engine.Universe, name string) ([]V, error) {
	if m.length == nil {
		return nil, fmt.Errorf(
			"%w: attempting to generate an array with no length given",
			common.ErrFailedPrecondition)
	}

	length := m.length.CloneInteger()
	length.AtLeast(0)
	if m.lengthSizeProperty != nil {
		if err := length.OfSizeProperty(*m.lengthSizeProperty); err != nil {
			return nil, err
		}
	}
	if limit, ok := u.ApproximateGenerationLimit(); ok {
		length.AtMost(limit)
	}

	n, err := Random(u, name, "length", length)
	if err != nil {
		return nil, fmt.Errorf("error determining the length of the array: %w", err)
	}

	if m.distinct {
		return m.generateDistinct(u, name, int(n))
	}

	result := make([]V, 0, n)
	for i := int64(0); i < n; i++ {
		value, err := Random(u, name, fmt.Sprintf("element[%d]", i), m.element)
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, nil
}

// generateDistinct draws entries until an unseen one appears, within a
// retry budget chosen so the failure probability stays below one percent
// even in the worst case of sampling n values from a domain of size n.
func (m *MArray[V]) generateDistinct(u *engine.Universe, name string, n int) ([]V, error) {
	var result []V // no reserve in case n is massive

	key := m.element.VariableBase().key
	seen := map[string]struct{}{}
	remainingRetries := distinctElementRetries(n)

	for i := 0; i < n && remainingRetries > 0; i++ {
		value, err := m.generateUnseen(u, name, seen, &remainingRetries, i)
		if err != nil {
			return nil, err
		}
		result = append(result, value)
		seen[key(value)] = struct{}{}
	}
	return result, nil
}

func (m *MArray[V]) generateUnseen(u *engine.Universe, name string, seen map[string]struct{}, remainingRetries *int, index int) (V, error) {
	key := m.element.VariableBase().key
	for ; *remainingRetries > 0; *remainingRetries-- {
		value, err := Random(u, name, fmt.Sprintf("element[%d]", index), m.element)
		if err != nil {
			var zero V
			return zero, err
		}
		if _, dup := seen[key(value)]; !dup {
			return value, nil
		}
	}
	var zero V
	return zero, fmt.Errorf("%w: cannot generate enough distinct values for array",
		common.ErrFailedPrecondition)
}

// distinctElementRetries bounds the draws for n distinct entries. With
//
//	T   := draws until all n values appear
//	H_n := 1/1 + 1/2 + … + 1/n
//
// the tail bound Prob(|T - n·H_n| > c·n) < π²/(6c²) gives, at c = 14,
// Prob(T > n·H_n + 14n) < 1%.
func distinctElementRetries(n int) int {
	hn := 0.0
	for i := n; i >= 1; i-- {
		hn += 1.0 / float64(i)
	}
	return int(float64(n)*hn + 14*float64(n))
}

// Check implements Variable.
func (m *MArray[V]) Check(u *engine.Universe, value []V) error {
	if m.length != nil {
		if err := common.CheckConstraint(
			IsSatisfiedWith(u, m.length, int64(len(value))) == nil,
			"invalid MArray length"); err != nil {
			return err
		}
	}

	for i, entry := range value {
		if err := common.CheckConstraint(
			IsSatisfiedWith(u, m.element, entry) == nil,
			fmt.Sprintf("invalid element %d (0-based)", i)); err != nil {
			return err
		}
	}

	if m.distinct {
		key := m.element.VariableBase().key
		seen := map[string]struct{}{}
		for i, entry := range value {
			k := key(entry)
			if _, dup := seen[k]; dup {
				return common.UnsatisfiedConstraintError(fmt.Sprintf(
					"elements are not distinct, element at index %d appears multiple times", i))
			}
			seen[k] = struct{}{}
		}
	}
	return nil
}

// TypedUniqueValue implements Variable; arrays do not compute one beyond
// Is/IsOneOf.
func (m *MArray[V]) TypedUniqueValue(*engine.Universe) ([]V, bool) {
	return nil, false
}

// DirectDependencies implements Variable.
func (m *MArray[V]) DirectDependencies() []string {
	deps := append([]string(nil), m.element.Dependencies()...)
	if m.length != nil {
		deps = append(deps, m.length.Dependencies()...)
	}
	return deps
}

// Subvalues implements Variable: the array's length.
func (m *MArray[V]) Subvalues(value []V) (*engine.Subvalues, error) {
	subvalues := &engine.Subvalues{}
	subvalues.Add("length", NewMInteger(), int64(len(value)))
	return subvalues, nil
}

// Read implements Variable. The length must be statically resolvable — a
// known value, a unique value, or fixed — before entries can be read.
func (m *MArray[V]) Read(u *engine.Universe, name string) ([]V, error) {
	if m.length == nil {
		return nil, fmt.Errorf("%w: unknown length of array before read",
			common.ErrFailedPrecondition)
	}
	length, ok := UniqueValueOf[int64](u, m.length)
	if !ok {
		return nil, fmt.Errorf("%w: cannot determine the length of array before read",
			common.ErrFailedPrecondition)
	}

	io, err := u.IO()
	if err != nil {
		return nil, err
	}
	result := make([]V, 0, length)
	for i := int64(0); i < length; i++ {
		if i > 0 {
			if err := io.ReadWhitespace(m.wireSeparator()); err != nil {
				return nil, err
			}
		}
		entry, err := m.element.Read(u, engine.ConstructVariableName(name, fmt.Sprintf("element[%d]", i)))
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, nil
}

// Print implements Variable: entries separated by the configured
// whitespace.
func (m *MArray[V]) Print(u *engine.Universe, name string, value []V) error {
	io, err := u.IO()
	if err != nil {
		return err
	}
	for i, entry := range value {
		if i > 0 {
			if err := io.PrintWhitespace(m.wireSeparator()); err != nil {
				return err
			}
		}
		if err := m.element.Print(u, engine.ConstructVariableName(name, fmt.Sprintf("element[%d]", i)), entry); err != nil {
			return err
		}
	}
	return nil
}

// FormatValue implements Variable.
func (m *MArray[V]) FormatValue(value []V) (string, error) {
	return fmt.Sprintf("%v", value), nil
}

// TypedDifficultInstances implements Variable: derived from the length's
// difficult instances.
func (m *MArray[V]) TypedDifficultInstances() ([]Variable[[]V], error) {
	if m.length == nil {
		return nil, fmt.Errorf(
			"%w: attempting to get difficult instances of an array with no length given",
			common.ErrFailedPrecondition)
	}
	lengthCases, err := m.length.TypedDifficultInstances()
	if err != nil {
		return nil, err
	}
	instances := make([]Variable[[]V], 0, len(lengthCases))
	for _, lengthCase := range lengthCases {
		instance := NewMArray[V](m.element.Clone().(Variable[V]))
		instance.OfLengthVar(lengthCase.(*MInteger))
		instances = append(instances, instance)
	}
	return instances, nil
}
