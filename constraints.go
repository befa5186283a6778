// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package moriarty

import (
	"fmt"

	"github.com/moriarty-project/moriarty/engine"
)

// Constraint descriptors are small values passed to the variable
// constructors; each variable type interprets the descriptors it
// understands:
//
//	moriarty.NewMInteger(moriarty.Between(1, "N"))
//	moriarty.NewMString(moriarty.Length(10), moriarty.Alphabet("abc"))
//
// Bounds accept either int64 constants or expression strings; the receiving
// type decides what an argument means (Exactly("abc") is an exact string
// value on MString, but the expression "abc" on MInteger).

// IntegerConstraint is a descriptor MInteger understands.
type IntegerConstraint interface {
	ApplyToInteger(m *MInteger)
}

// StringConstraint is a descriptor MString understands.
type StringConstraint interface {
	ApplyToString(m *MString)
}

// ExactlyConstraint pins a variable to a single value.
type ExactlyConstraint struct {
	value any
}

// Exactly constrains a variable to exactly the given value. For MInteger,
// value is an int64 or an expression string; for MString it is the literal
// string value.
func Exactly(value any) ExactlyConstraint {
	return ExactlyConstraint{value: value}
}

func (c ExactlyConstraint) ApplyToInteger(m *MInteger) {
	switch v := c.value.(type) {
	case int:
		m.Between(int64(v), int64(v))
	case int64:
		m.Between(v, v)
	case string:
		m.BetweenExpr(v, v)
	default:
		m.markInvalid(fmt.Errorf("exactly: unsupported value type %T", c.value))
	}
}

func (c ExactlyConstraint) ApplyToString(m *MString) {
	value, ok := c.value.(string)
	if !ok {
		m.markInvalid(fmt.Errorf("exactly: unsupported value type %T", c.value))
		return
	}
	m.Is(value)
}

// BetweenConstraint bounds an integer from both sides.
type BetweenConstraint struct {
	min, max any
}

// Between constrains an integer to [min, max]. Each bound is an int64 or an
// expression string, e.g. Between(1, "2 * N").
func Between(min, max any) BetweenConstraint {
	return BetweenConstraint{min: min, max: max}
}

func (c BetweenConstraint) ApplyToInteger(m *MInteger) {
	AtLeast(c.min).ApplyToInteger(m)
	AtMost(c.max).ApplyToInteger(m)
}

// AtMostConstraint bounds an integer from above.
type AtMostConstraint struct {
	max any
}

// AtMost constrains an integer to be at most max (an int64 or an expression
// string). Multiple bounds are ANDed together.
func AtMost(max any) AtMostConstraint {
	return AtMostConstraint{max: max}
}

func (c AtMostConstraint) ApplyToInteger(m *MInteger) {
	switch v := c.max.(type) {
	case int:
		m.AtMost(int64(v))
	case int64:
		m.AtMost(v)
	case string:
		m.AtMostExpr(v)
	default:
		m.markInvalid(fmt.Errorf("at most: unsupported bound type %T", c.max))
	}
}

// AtLeastConstraint bounds an integer from below.
type AtLeastConstraint struct {
	min any
}

// AtLeast constrains an integer to be at least min (an int64 or an
// expression string). Multiple bounds are ANDed together.
func AtLeast(min any) AtLeastConstraint {
	return AtLeastConstraint{min: min}
}

func (c AtLeastConstraint) ApplyToInteger(m *MInteger) {
	switch v := c.min.(type) {
	case int:
		m.AtLeast(int64(v))
	case int64:
		m.AtLeast(v)
	case string:
		m.AtLeastExpr(v)
	default:
		m.markInvalid(fmt.Errorf("at least: unsupported bound type %T", c.min))
	}
}

// LengthConstraint constrains the length of a string or array.
type LengthConstraint struct {
	length *MInteger
}

// Length constrains a container's length. The argument is an int64, an
// expression string, a [2]any{min, max} pair of such bounds, or an
// *MInteger carrying arbitrary length constraints.
func Length(length any) LengthConstraint {
	switch v := length.(type) {
	case *MInteger:
		return LengthConstraint{length: v}
	case int:
		return LengthConstraint{length: NewMInteger(Between(int64(v), int64(v)))}
	case int64:
		return LengthConstraint{length: NewMInteger(Between(v, v))}
	case string:
		return LengthConstraint{length: NewMInteger(Between(v, v))}
	case [2]any:
		return LengthConstraint{length: NewMInteger(Between(v[0], v[1]))}
	}
	invalid := NewMInteger()
	invalid.markInvalid(fmt.Errorf("length: unsupported argument type %T", length))
	return LengthConstraint{length: invalid}
}

func (c LengthConstraint) ApplyToString(m *MString) {
	m.OfLengthVar(c.length)
}

// LengthVariable returns the integer variable carrying the length
// constraints, for containers that apply lengths through OfLengthVar.
func (c LengthConstraint) LengthVariable() *MInteger {
	return c.length
}

// AlphabetConstraint restricts the characters of a string.
type AlphabetConstraint struct {
	alphabet string
}

// Alphabet constrains every character of a string to the given set.
// Successive alphabets intersect.
func Alphabet(characters string) AlphabetConstraint {
	return AlphabetConstraint{alphabet: characters}
}

func (c AlphabetConstraint) ApplyToString(m *MString) {
	m.WithAlphabet(c.alphabet)
}

// SimplePatternConstraint constrains a string to match a pattern.
type SimplePatternConstraint struct {
	pattern string
}

// SimplePattern constrains a string to match the given simple pattern (see
// package internal/pattern for the grammar).
func SimplePattern(pattern string) SimplePatternConstraint {
	return SimplePatternConstraint{pattern: pattern}
}

func (c SimplePatternConstraint) ApplyToString(m *MString) {
	m.WithSimplePattern(c.pattern)
}

// DistinctCharactersConstraint requires all characters of a string to
// differ.
type DistinctCharactersConstraint struct{}

// DistinctCharacters requires every character of a string to appear at most
// once.
func DistinctCharacters() DistinctCharactersConstraint {
	return DistinctCharactersConstraint{}
}

func (DistinctCharactersConstraint) ApplyToString(m *MString) {
	m.WithDistinctCharacters()
}

// DistinctElementsConstraint requires all elements of an array to differ.
// Arrays are generic, so the descriptor is applied through
// MArray.WithDistinctElements; the type exists for symmetry with the other
// descriptors and for spec files.
type DistinctElementsConstraint struct{}

// DistinctElements requires every element of an array to appear at most
// once.
func DistinctElements() DistinctElementsConstraint {
	return DistinctElementsConstraint{}
}

// SizeCategoryConstraint applies a coarse size category.
type SizeCategoryConstraint struct {
	size CommonSize
}

// SizeCategoryOf constrains a value (or a container's length) to the given
// size category.
func SizeCategoryOf(size CommonSize) SizeCategoryConstraint {
	return SizeCategoryConstraint{size: size}
}

func (c SizeCategoryConstraint) ApplyToInteger(m *MInteger) {
	m.WithSize(c.size)
}

func (c SizeCategoryConstraint) ApplyToString(m *MString) {
	m.OfLengthVar(NewMInteger(c))
}

// IOSeparatorConstraint selects the whitespace between printed entries.
type IOSeparatorConstraint struct {
	separator engine.Whitespace
}

// IOSeparator selects the whitespace separating the entries of an array or
// tuple on the wire. Default is a single space.
func IOSeparator(separator engine.Whitespace) IOSeparatorConstraint {
	return IOSeparatorConstraint{separator: separator}
}
