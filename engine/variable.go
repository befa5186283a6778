// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

// Package engine contains the constraint-generation machinery: the
// type-erased variable contract, the named variable and value sets, the
// generation bookkeeping, the Universe context threading them together, and
// the bootstrap that produces a consistent assignment for a whole set of
// variables.
package engine

import (
	"fmt"
	"strings"

	"github.com/moriarty-project/moriarty/common"
)

// Variable is the type-erased contract every moriarty variable fulfills.
// Typed variable implementations live outside this package; the engine only
// needs this surface to orchestrate generation, validation and IO.
//
// Variables are stateless with respect to the Universe: every operation
// receives the Universe and the variable's name explicitly, so a variable
// never outlives or captures the context of a single run.
type Variable interface {
	// Typename returns a stable identifier for error messages, e.g.
	// "MInteger" or "MArray<MInteger>".
	Typename() string

	// Clone returns an independent deep copy.
	Clone() Variable

	// MergeFrom intersects the constraints of other into this variable.
	// Variables of a different concrete type do not merge.
	MergeFrom(other Variable) error

	// WithProperty applies a weakly-typed tagged constraint. Unknown
	// categories fail or are ignored according to the property's
	// enforcement.
	WithProperty(property Property) error

	// Dependencies returns the names of the variables consulted during
	// generation or validation.
	Dependencies() []string

	// AssignValue generates a value (with retries) and stores it in the
	// universe under name. A no-op if the value is already known.
	AssignValue(u *Universe, name string) error

	// AssignUniqueValue stores the variable's unique value if the
	// constraint set admits exactly one; otherwise a no-op.
	AssignUniqueValue(u *Universe, name string) error

	// UniqueValueAny returns the unique value admitted by the constraints,
	// computable without random draws, if one exists.
	UniqueValueAny(u *Universe) (any, bool)

	// ValueSatisfiesConstraints validates the value currently stored under
	// name against all constraints.
	ValueSatisfiesConstraints(u *Universe, name string) error

	// ReadValue reads a value from the universe IO and stores it under
	// name. PrintValue prints the value stored under name.
	ReadValue(u *Universe, name string) error
	PrintValue(u *Universe, name string) error

	// Subvalue resolves a dotted projection path (e.g. "length") against a
	// concrete value of this variable.
	Subvalue(value any, path string) (any, error)

	// DifficultVariables returns specialised variants pre-bound to
	// edge-case values, each already merged with this variable's
	// constraints.
	DifficultVariables() ([]Variable, error)
}

// VariableValue pairs a variable with a concrete value, as stored in a
// subvalue table.
type VariableValue struct {
	Variable Variable
	Value    any
}

// Subvalues is the table of named, typed projections a variable exposes for
// one of its values (e.g. an array's "length").
type Subvalues struct {
	entries map[string]VariableValue
}

// Add registers a subvalue under name and returns the receiver for
// chaining.
func (s *Subvalues) Add(name string, variable Variable, value any) *Subvalues {
	if s.entries == nil {
		s.entries = map[string]VariableValue{}
	}
	s.entries[name] = VariableValue{Variable: variable, Value: value}
	return s
}

// Get returns the subvalue registered under name.
func (s *Subvalues) Get(name string) (VariableValue, error) {
	entry, ok := s.entries[name]
	if !ok {
		return VariableValue{}, fmt.Errorf("%w: unknown subvalue %q",
			common.ErrNotFound, name)
	}
	return entry, nil
}

// WalkSubvaluePath resolves a dotted path against a subvalue table: the
// first path segment selects an entry, the remainder recurses into that
// entry's variable.
func WalkSubvaluePath(subvalues *Subvalues, path string) (any, error) {
	entry, err := subvalues.Get(BaseVariableName(path))
	if err != nil {
		return nil, err
	}
	rest, nested := SubvariableName(path)
	if !nested {
		return entry.Value, nil
	}
	return entry.Variable.Subvalue(entry.Value, rest)
}

// Variable names use '.' to address projections of a value: "A.length" is
// the "length" subvalue of "A".

// BaseVariableName returns the part of name before the first '.'.
func BaseVariableName(name string) string {
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return name
}

// SubvariableName returns the part of name after the first '.', and whether
// there is one.
func SubvariableName(name string) (string, bool) {
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[idx+1:], true
	}
	return "", false
}

// HasSubvariable reports whether name addresses a projection.
func HasSubvariable(name string) bool {
	return strings.IndexByte(name, '.') >= 0
}

// ConstructVariableName joins a base variable name with a subordinate name,
// as used for nested generation ("A.element[3]").
func ConstructVariableName(base, sub string) string {
	if base == "" {
		return sub
	}
	return base + "." + sub
}
