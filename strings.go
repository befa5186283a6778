// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package moriarty

import (
	"fmt"
	"sort"
	"strings"

	"github.com/moriarty-project/moriarty/common"
	"github.com/moriarty-project/moriarty/engine"
	"github.com/moriarty-project/moriarty/internal/pattern"
	"github.com/moriarty-project/moriarty/internal/random"
)

// MString describes constraints on a string: an optional length (itself an
// integer variable), an optional alphabet, a distinct-characters flag and
// an optional simple pattern.
type MString struct {
	Base[string]

	length      *MInteger // nil if unconstrained
	hasAlphabet bool
	alphabet    []byte // sorted, deduplicated
	distinct    bool
	pattern     *pattern.Pattern

	// A {size, …} property applies to the length, but the length variable
	// may not exist yet when the property arrives; it is replayed at
	// generation time.
	lengthSizeProperty *engine.Property
}

// NewMString returns a string variable with the given constraints applied.
func NewMString(constraints ...StringConstraint) *MString {
	m := &MString{}
	m.initBase(m)
	m.RegisterKnownProperty("size", m.OfSizeProperty)
	for _, constraint := range constraints {
		constraint.ApplyToString(m)
	}
	return m
}

// Typename implements engine.Variable.
func (m *MString) Typename() string {
	return "MString"
}

// Clone implements engine.Variable.
func (m *MString) Clone() engine.Variable {
	return m.CloneString()
}

// CloneString returns an independent copy.
func (m *MString) CloneString() *MString {
	clone := &MString{
		hasAlphabet: m.hasAlphabet,
		alphabet:    append([]byte(nil), m.alphabet...),
		distinct:    m.distinct,
		pattern:     m.pattern,
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

// Is pins the variable to exactly value.
func (m *MString) Is(value string) *MString {
	m.setIs(value)
	return m
}

// IsOneOf restricts the variable to the given options. Successive calls
// intersect.
func (m *MString) IsOneOf(values ...string) *MString {
	m.setIsOneOf(values)
	return m
}

// OfLength constrains the length to exactly length.
func (m *MString) OfLength(length int64) *MString {
	return m.OfLengthVar(NewMInteger(Between(length, length)))
}

// OfLengthBetween constrains the length to [min, max].
func (m *MString) OfLengthBetween(min, max any) *MString {
	return m.OfLengthVar(NewMInteger(Between(min, max)))
}

// OfLengthVar merges arbitrary integer constraints into the length.
func (m *MString) OfLengthVar(length *MInteger) *MString {
	if m.length != nil {
		if err := m.length.MergeFrom(length); err != nil {
			m.markInvalid(err)
		}
	} else {
		m.length = length.CloneInteger()
	}
	return m
}

// WithAlphabet constrains every character to the given set. Successive
// alphabets intersect.
func (m *MString) WithAlphabet(characters string) *MString {
	incoming := []byte(characters)
	sort.Slice(incoming, func(i, j int) bool { return incoming[i] < incoming[j] })
	deduped := incoming[:0]
	for i, c := range incoming {
		if i == 0 || incoming[i-1] != c {
			deduped = append(deduped, c)
		}
	}

	if !m.hasAlphabet {
		m.hasAlphabet = true
		m.alphabet = deduped
		return m
	}

	existing := map[byte]struct{}{}
	for _, c := range m.alphabet {
		existing[c] = struct{}{}
	}
	intersection := deduped[:0]
	for _, c := range deduped {
		if _, ok := existing[c]; ok {
			intersection = append(intersection, c)
		}
	}
	m.alphabet = intersection
	return m
}

// WithDistinctCharacters requires every character to appear at most once.
func (m *MString) WithDistinctCharacters() *MString {
	m.distinct = true
	return m
}

// WithSimplePattern constrains the string to match a simple pattern.
// Merging two different patterns is invalid.
func (m *MString) WithSimplePattern(simplePattern string) *MString {
	parsed, err := pattern.Parse(simplePattern)
	if err != nil {
		m.markInvalid(fmt.Errorf("error creating simple pattern: %w", err))
		return m
	}
	if m.pattern != nil {
		if m.pattern.String() != parsed.String() {
			m.markInvalid(fmt.Errorf(
				"%w: merging two incompatible simple patterns %q and %q",
				common.ErrInvalidArgument, m.pattern, parsed))
		}
		return m
	}
	m.pattern = parsed
	return m
}

// AddCustomConstraint registers a named predicate over generated values.
func (m *MString) AddCustomConstraint(name string, deps []string, check func(string, *ConstraintValues) bool) *MString {
	m.addCustomConstraint(name, deps, check)
	return m
}

// OfSizeProperty stores a {size, …} property to be applied to the length at
// generation time.
func (m *MString) OfSizeProperty(property engine.Property) error {
	m.lengthSizeProperty = &property
	return nil
}

// MergeFrom implements engine.Variable.
func (m *MString) MergeFrom(other engine.Variable) error {
	otherString, ok := other.(*MString)
	if !ok {
		return fmt.Errorf("%w: cannot merge %s into MString",
			common.ErrInvalidArgument, other.Typename())
	}
	m.mergeBaseFrom(&otherString.Base)
	if otherString.length != nil {
		m.OfLengthVar(otherString.length)
	}
	if otherString.hasAlphabet {
		m.WithAlphabet(string(otherString.alphabet))
	}
	m.distinct = otherString.distinct
	if otherString.pattern != nil {
		m.WithSimplePattern(otherString.pattern.String())
	}
	if m.invalid != nil {
		return m.invalid
	}
	return nil
}

// generationLength assembles the effective length variable for one
// generation attempt, leaving the declared constraints untouched.
func (m *MString) generationLength(u *engine.Universe) (*MInteger, error) {
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
	return length, nil
}

// GenerateOnce implements Variable.
func (m *MString) GenerateOnce(u *engine.Universe, name string) (string, error) {
	if m.pattern != nil {
		rnd, err := u.Random()
		if err != nil {
			return "", err
		}
		var restriction []byte
		if m.hasAlphabet {
			restriction = m.alphabet
		}
		return m.pattern.GenerateRestricted(rnd, restriction)
	}

	if !m.hasAlphabet {
		return "", fmt.Errorf(
			"%w: attempting to generate a string with no alphabet and no simple pattern",
			common.ErrFailedPrecondition)
	}
	if m.length == nil {
		return "", fmt.Errorf(
			"%w: attempting to generate a string with no length and no simple pattern",
			common.ErrFailedPrecondition)
	}

	length, err := m.generationLength(u)
	if err != nil {
		return "", err
	}
	if len(m.alphabet) == 0 {
		// Only the empty string can be produced; any positive length will
		// fail below with an empty range.
		length.AtMost(0)
	}
	if m.distinct {
		// Each character appears at most once.
		length.AtMost(int64(len(m.alphabet)))
	}

	n, err := Random(u, name, "length", length)
	if err != nil {
		return "", fmt.Errorf("error determining the length of the string: %w", err)
	}

	rnd, err := u.Random()
	if err != nil {
		return "", err
	}
	var chars []byte
	if m.distinct {
		chars, err = random.ElementsWithoutReplacement(rnd, m.alphabet, int(n))
	} else {
		chars, err = random.ElementsWithReplacement(rnd, m.alphabet, int(n))
	}
	if err != nil {
		return "", err
	}
	return string(chars), nil
}

// Check implements Variable.
func (m *MString) Check(u *engine.Universe, value string) error {
	if m.length != nil {
		if err := common.CheckConstraint(
			IsSatisfiedWith(u, m.length, int64(len(value))) == nil,
			"length of string is invalid"); err != nil {
			return err
		}
	}

	if m.hasAlphabet {
		for _, c := range []byte(value) {
			if err := common.CheckConstraint(
				containsByte(m.alphabet, c),
				fmt.Sprintf("character %q not in alphabet, but in %q", c, value)); err != nil {
				return err
			}
		}
	}

	if m.distinct {
		seen := map[byte]struct{}{}
		for _, c := range []byte(value) {
			if _, dup := seen[c]; dup {
				return common.UnsatisfiedConstraintError(fmt.Sprintf(
					"characters are not distinct, %q appears multiple times", c))
			}
			seen[c] = struct{}{}
		}
	}

	if m.pattern != nil {
		if err := common.CheckConstraint(
			m.pattern.Matches(value),
			fmt.Sprintf("string %q does not match simple pattern %q", value, m.pattern)); err != nil {
			return err
		}
	}
	return nil
}

// TypedUniqueValue implements Variable; strings do not compute one beyond
// Is/IsOneOf.
func (m *MString) TypedUniqueValue(*engine.Universe) (string, bool) {
	return "", false
}

// DirectDependencies implements Variable.
func (m *MString) DirectDependencies() []string {
	if m.length == nil {
		return nil
	}
	return m.length.Dependencies()
}

// Subvalues implements Variable: the string's length.
func (m *MString) Subvalues(value string) (*engine.Subvalues, error) {
	subvalues := &engine.Subvalues{}
	subvalues.Add("length", NewMInteger(), int64(len(value)))
	return subvalues, nil
}

// Read implements Variable: a single whitespace-free token.
func (m *MString) Read(u *engine.Universe, name string) (string, error) {
	io, err := u.IO()
	if err != nil {
		return "", err
	}
	return io.ReadToken()
}

// Print implements Variable.
func (m *MString) Print(u *engine.Universe, name string, value string) error {
	io, err := u.IO()
	if err != nil {
		return err
	}
	return io.PrintToken(value)
}

// FormatValue implements Variable.
func (m *MString) FormatValue(value string) (string, error) {
	return value, nil
}

// TypedDifficultInstances implements Variable: derived from the length's
// difficult instances.
func (m *MString) TypedDifficultInstances() ([]Variable[string], error) {
	if m.length == nil {
		return nil, fmt.Errorf(
			"%w: attempting to get difficult instances of a string with no length given",
			common.ErrFailedPrecondition)
	}
	lengthCases, err := m.length.TypedDifficultInstances()
	if err != nil {
		return nil, err
	}
	instances := make([]Variable[string], 0, len(lengthCases))
	for _, lengthCase := range lengthCases {
		instances = append(instances, NewMString().OfLengthVar(lengthCase.(*MInteger)))
	}
	return instances, nil
}

func (m *MString) String() string {
	var parts []string
	if m.length != nil {
		parts = append(parts, fmt.Sprintf("length: %v", m.length))
	}
	if m.hasAlphabet {
		parts = append(parts, fmt.Sprintf("alphabet: %q", string(m.alphabet)))
	}
	if m.distinct {
		parts = append(parts, "distinct characters")
	}
	if m.pattern != nil {
		parts = append(parts, fmt.Sprintf("simple pattern: %q", m.pattern))
	}
	if len(parts) == 0 {
		return m.Typename()
	}
	return m.Typename() + "; " + strings.Join(parts, "; ")
}

func containsByte(sorted []byte, c byte) bool {
	idx := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= c })
	return idx < len(sorted) && sorted[idx] == c
}
