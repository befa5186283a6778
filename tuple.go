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

// Pair is the value type of MTuple2.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the value type of MTuple3.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// MTuple2 describes constraints on an ordered pair: each slot carries its
// own variable, and every operation applies slot-wise.
type MTuple2[A, B any] struct {
	Base[Pair[A, B]]

	first  Variable[A]
	second Variable[B]

	separator    engine.Whitespace
	hasSeparator bool
}

// NewMTuple2 returns a pair variable with the given slot constraints.
func NewMTuple2[A, B any](first Variable[A], second Variable[B]) *MTuple2[A, B] {
	m := &MTuple2[A, B]{first: first, second: second}
	m.initBase(m)
	m.RegisterKnownProperty("size", m.OfSizeProperty)
	return m
}

// Typename implements engine.Variable.
func (m *MTuple2[A, B]) Typename() string {
	return fmt.Sprintf("MTuple<%s, %s>", m.first.Typename(), m.second.Typename())
}

// Clone implements engine.Variable.
func (m *MTuple2[A, B]) Clone() engine.Variable {
	clone := &MTuple2[A, B]{
		first:        m.first.Clone().(Variable[A]),
		second:       m.second.Clone().(Variable[B]),
		separator:    m.separator,
		hasSeparator: m.hasSeparator,
	}
	m.cloneBaseInto(&clone.Base, clone)
	clone.RegisterKnownProperty("size", clone.OfSizeProperty)
	return clone
}

// WithSeparator sets the whitespace between the slots on the wire. Default
// is a single space.
func (m *MTuple2[A, B]) WithSeparator(separator engine.Whitespace) *MTuple2[A, B] {
	m.separator = separator
	m.hasSeparator = true
	return m
}

// ApplySeparator applies an IOSeparator descriptor.
func (m *MTuple2[A, B]) ApplySeparator(c IOSeparatorConstraint) *MTuple2[A, B] {
	return m.WithSeparator(c.separator)
}

// AddCustomConstraint registers a named predicate over generated values.
func (m *MTuple2[A, B]) AddCustomConstraint(name string, deps []string, check func(Pair[A, B], *ConstraintValues) bool) *MTuple2[A, B] {
	m.addCustomConstraint(name, deps, check)
	return m
}

// OfSizeProperty broadcasts a {size, …} property to all slots.
func (m *MTuple2[A, B]) OfSizeProperty(property engine.Property) error {
	if err := m.first.WithProperty(property); err != nil {
		return err
	}
	return m.second.WithProperty(property)
}

// MergeFrom implements engine.Variable, merging slot-wise.
func (m *MTuple2[A, B]) MergeFrom(other engine.Variable) error {
	otherTuple, ok := other.(*MTuple2[A, B])
	if !ok {
		return fmt.Errorf("%w: cannot merge %s into %s",
			common.ErrInvalidArgument, other.Typename(), m.Typename())
	}
	m.mergeBaseFrom(&otherTuple.Base)
	if err := m.first.MergeFrom(otherTuple.first); err != nil {
		return err
	}
	if err := m.second.MergeFrom(otherTuple.second); err != nil {
		return err
	}
	if otherTuple.hasSeparator {
		m.WithSeparator(otherTuple.separator)
	}
	return nil
}

func (m *MTuple2[A, B]) wireSeparator() engine.Whitespace {
	if m.hasSeparator {
		return m.separator
	}
	return engine.Space
}

// GenerateOnce implements Variable, generating slot-wise.
func (m *MTuple2[A, B]) GenerateOnce(u *engine.Universe, name string) (Pair[A, B], error) {
	var result Pair[A, B]
	first, err := Random(u, name, "slot[0]", m.first)
	if err != nil {
		return result, err
	}
	second, err := Random(u, name, "slot[1]", m.second)
	if err != nil {
		return result, err
	}
	result.First = first
	result.Second = second
	return result, nil
}

// Check implements Variable, validating slot-wise.
func (m *MTuple2[A, B]) Check(u *engine.Universe, value Pair[A, B]) error {
	if err := common.CheckConstraint(
		IsSatisfiedWith(u, m.first, value.First) == nil,
		"invalid tuple slot 0"); err != nil {
		return err
	}
	return common.CheckConstraint(
		IsSatisfiedWith(u, m.second, value.Second) == nil,
		"invalid tuple slot 1")
}

// TypedUniqueValue implements Variable: unique iff every slot is unique.
func (m *MTuple2[A, B]) TypedUniqueValue(u *engine.Universe) (Pair[A, B], bool) {
	var result Pair[A, B]
	first, ok := UniqueValueOf(u, m.first)
	if !ok {
		return result, false
	}
	second, ok := UniqueValueOf(u, m.second)
	if !ok {
		return result, false
	}
	result.First = first
	result.Second = second
	return result, true
}

// DirectDependencies implements Variable.
func (m *MTuple2[A, B]) DirectDependencies() []string {
	deps := append([]string(nil), m.first.Dependencies()...)
	return append(deps, m.second.Dependencies()...)
}

// Subvalues implements Variable; tuples expose no projections.
func (m *MTuple2[A, B]) Subvalues(Pair[A, B]) (*engine.Subvalues, error) {
	return nil, fmt.Errorf("%w: Subvalues not implemented for %s",
		common.ErrUnimplemented, m.Typename())
}

// Read implements Variable: slot values separated by the separator.
func (m *MTuple2[A, B]) Read(u *engine.Universe, name string) (Pair[A, B], error) {
	var result Pair[A, B]
	io, err := u.IO()
	if err != nil {
		return result, err
	}

	first, err := m.first.Read(u, engine.ConstructVariableName(name, "slot[0]"))
	if err != nil {
		return result, err
	}
	if err := io.ReadWhitespace(m.wireSeparator()); err != nil {
		return result, err
	}
	second, err := m.second.Read(u, engine.ConstructVariableName(name, "slot[1]"))
	if err != nil {
		return result, err
	}
	result.First = first
	result.Second = second
	return result, nil
}

// Print implements Variable.
func (m *MTuple2[A, B]) Print(u *engine.Universe, name string, value Pair[A, B]) error {
	io, err := u.IO()
	if err != nil {
		return err
	}
	if err := m.first.Print(u, engine.ConstructVariableName(name, "slot[0]"), value.First); err != nil {
		return err
	}
	if err := io.PrintWhitespace(m.wireSeparator()); err != nil {
		return err
	}
	return m.second.Print(u, engine.ConstructVariableName(name, "slot[1]"), value.Second)
}

// FormatValue implements Variable.
func (m *MTuple2[A, B]) FormatValue(value Pair[A, B]) (string, error) {
	return fmt.Sprintf("(%v, %v)", value.First, value.Second), nil
}

// TypedDifficultInstances implements Variable; tuples derive none of their
// own.
func (m *MTuple2[A, B]) TypedDifficultInstances() ([]Variable[Pair[A, B]], error) {
	return nil, nil
}

// MTuple3 describes constraints on an ordered triple. It composes an
// MTuple2 for the first two slots with a third slot of its own.
type MTuple3[A, B, C any] struct {
	Base[Triple[A, B, C]]

	head  *MTuple2[A, B]
	third Variable[C]
}

// NewMTuple3 returns a triple variable with the given slot constraints.
func NewMTuple3[A, B, C any](first Variable[A], second Variable[B], third Variable[C]) *MTuple3[A, B, C] {
	m := &MTuple3[A, B, C]{head: NewMTuple2(first, second), third: third}
	m.initBase(m)
	m.RegisterKnownProperty("size", m.OfSizeProperty)
	return m
}

// Typename implements engine.Variable.
func (m *MTuple3[A, B, C]) Typename() string {
	return fmt.Sprintf("MTuple<%s, %s, %s>",
		m.head.first.Typename(), m.head.second.Typename(), m.third.Typename())
}

// Clone implements engine.Variable.
func (m *MTuple3[A, B, C]) Clone() engine.Variable {
	clone := &MTuple3[A, B, C]{
		head:  m.head.Clone().(*MTuple2[A, B]),
		third: m.third.Clone().(Variable[C]),
	}
	m.cloneBaseInto(&clone.Base, clone)
	clone.RegisterKnownProperty("size", clone.OfSizeProperty)
	return clone
}

// WithSeparator sets the whitespace between the slots on the wire.
func (m *MTuple3[A, B, C]) WithSeparator(separator engine.Whitespace) *MTuple3[A, B, C] {
	m.head.WithSeparator(separator)
	return m
}

// OfSizeProperty broadcasts a {size, …} property to all slots.
func (m *MTuple3[A, B, C]) OfSizeProperty(property engine.Property) error {
	if err := m.head.OfSizeProperty(property); err != nil {
		return err
	}
	return m.third.WithProperty(property)
}

// MergeFrom implements engine.Variable, merging slot-wise.
func (m *MTuple3[A, B, C]) MergeFrom(other engine.Variable) error {
	otherTuple, ok := other.(*MTuple3[A, B, C])
	if !ok {
		return fmt.Errorf("%w: cannot merge %s into %s",
			common.ErrInvalidArgument, other.Typename(), m.Typename())
	}
	m.mergeBaseFrom(&otherTuple.Base)
	if err := m.head.MergeFrom(otherTuple.head); err != nil {
		return err
	}
	return m.third.MergeFrom(otherTuple.third)
}

// GenerateOnce implements Variable.
func (m *MTuple3[A, B, C]) GenerateOnce(u *engine.Universe, name string) (Triple[A, B, C], error) {
	var result Triple[A, B, C]
	head, err := m.head.GenerateOnce(u, name)
	if err != nil {
		return result, err
	}
	third, err := Random(u, name, "slot[2]", m.third)
	if err != nil {
		return result, err
	}
	result.First = head.First
	result.Second = head.Second
	result.Third = third
	return result, nil
}

// Check implements Variable.
func (m *MTuple3[A, B, C]) Check(u *engine.Universe, value Triple[A, B, C]) error {
	if err := m.head.Check(u, Pair[A, B]{First: value.First, Second: value.Second}); err != nil {
		return err
	}
	return common.CheckConstraint(
		IsSatisfiedWith(u, m.third, value.Third) == nil,
		"invalid tuple slot 2")
}

// TypedUniqueValue implements Variable.
func (m *MTuple3[A, B, C]) TypedUniqueValue(u *engine.Universe) (Triple[A, B, C], bool) {
	var result Triple[A, B, C]
	head, ok := m.head.TypedUniqueValue(u)
	if !ok {
		return result, false
	}
	third, ok := UniqueValueOf(u, m.third)
	if !ok {
		return result, false
	}
	result.First = head.First
	result.Second = head.Second
	result.Third = third
	return result, true
}

// DirectDependencies implements Variable.
func (m *MTuple3[A, B, C]) DirectDependencies() []string {
	deps := append([]string(nil), m.head.DirectDependencies()...)
	return append(deps, m.third.Dependencies()...)
}

// Subvalues implements Variable.
func (m *MTuple3[A, B, C]) Subvalues(Triple[A, B, C]) (*engine.Subvalues, error) {
	return nil, fmt.Errorf("%w: Subvalues not implemented for %s",
		common.ErrUnimplemented, m.Typename())
}

// Read implements Variable.
func (m *MTuple3[A, B, C]) Read(u *engine.Universe, name string) (Triple[A, B, C], error) {
	var result Triple[A, B, C]
	io, err := u.IO()
	if err != nil {
		return result, err
	}
	head, err := m.head.Read(u, name)
	if err != nil {
		return result, err
	}
	if err := io.ReadWhitespace(m.head.wireSeparator()); err != nil {
		return result, err
	}
	third, err := m.third.Read(u, engine.ConstructVariableName(name, "slot[2]"))
	if err != nil {
		return result, err
	}
	result.First = head.First
	result.Second = head.Second
	result.Third = third
	return result, nil
}

// Print implements Variable.
func (m *MTuple3[A, B, C]) Print(u *engine.Universe, name string, value Triple[A, B, C]) error {
	io, err := u.IO()
	if err != nil {
		return err
	}
	if err := m.head.Print(u, name, Pair[A, B]{First: value.First, Second: value.Second}); err != nil {
		return err
	}
	if err := io.PrintWhitespace(m.head.wireSeparator()); err != nil {
		return err
	}
	return m.third.Print(u, engine.ConstructVariableName(name, "slot[2]"), value.Third)
}

// FormatValue implements Variable.
func (m *MTuple3[A, B, C]) FormatValue(value Triple[A, B, C]) (string, error) {
	return fmt.Sprintf("(%v, %v, %v)", value.First, value.Second, value.Third), nil
}

// TypedDifficultInstances implements Variable.
func (m *MTuple3[A, B, C]) TypedDifficultInstances() ([]Variable[Triple[A, B, C]], error) {
	return nil, nil
}
