// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/moriarty-project/moriarty/common"
)

// stubVariable is a minimal Variable for exercising the Universe and the
// bootstrap without pulling in the real variable types.
type stubVariable struct {
	value     any
	unique    any
	hasUnique bool
	deps      []string

	// assign overrides the default AssignValue behaviour when set.
	assign func(u *Universe, name string) error
}

func (s *stubVariable) Typename() string { return "Stub" }

func (s *stubVariable) Clone() Variable {
	clone := *s
	return &clone
}

func (s *stubVariable) MergeFrom(other Variable) error {
	if _, ok := other.(*stubVariable); !ok {
		return fmt.Errorf("%w: cannot merge %s into Stub",
			common.ErrInvalidArgument, other.Typename())
	}
	return nil
}

func (s *stubVariable) WithProperty(Property) error { return nil }

func (s *stubVariable) Dependencies() []string { return s.deps }

func (s *stubVariable) AssignValue(u *Universe, name string) error {
	if s.assign != nil {
		return s.assign(u, name)
	}
	if u.ValueIsKnown(name) {
		return nil
	}
	// Resolve dependencies first, like a real variable would.
	for _, dep := range s.deps {
		if err := u.AssignValueToVariable(dep); err != nil {
			return err
		}
	}
	return u.SetValue(name, s.value)
}

func (s *stubVariable) AssignUniqueValue(u *Universe, name string) error {
	if !s.hasUnique || u.ValueIsKnown(name) {
		return nil
	}
	return u.SetValue(name, s.unique)
}

func (s *stubVariable) UniqueValueAny(*Universe) (any, bool) {
	return s.unique, s.hasUnique
}

func (s *stubVariable) ValueSatisfiesConstraints(u *Universe, name string) error {
	_, err := u.RawValue(name)
	return err
}

func (s *stubVariable) ReadValue(u *Universe, name string) error {
	io, err := u.IO()
	if err != nil {
		return err
	}
	token, err := io.ReadToken()
	if err != nil {
		return err
	}
	return u.SetValue(name, token)
}

func (s *stubVariable) PrintValue(u *Universe, name string) error {
	io, err := u.IO()
	if err != nil {
		return err
	}
	value, err := u.RawValue(name)
	if err != nil {
		return err
	}
	return io.PrintToken(fmt.Sprintf("%v", value))
}

func (s *stubVariable) Subvalue(value any, path string) (any, error) {
	subvalues := &Subvalues{}
	subvalues.Add("self", s, value)
	return WalkSubvaluePath(subvalues, path)
}

func (s *stubVariable) DifficultVariables() ([]Variable, error) { return nil, nil }

func TestUniverse_AssignIsANoOpForKnownValues(t *testing.T) {
	variables := NewVariableSet()
	if err := variables.Add("N", &stubVariable{value: int64(99)}); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}
	values := NewValueSet()
	values.Set("N", int64(7))

	universe := NewUniverse().
		SetMutableVariableSet(variables).
		SetMutableValueSet(values)

	if err := universe.AssignValueToVariable("N"); err != nil {
		t.Fatalf("assigning a known value should succeed: %v", err)
	}
	got, err := ValueAs[int64](universe, "N")
	if err != nil || got != 7 {
		t.Errorf("the known value must be preserved, got %d, %v", got, err)
	}
}

func TestUniverse_AssignDetectsReentrantResolution(t *testing.T) {
	variables := NewVariableSet()
	cyclic := &stubVariable{}
	cyclic.assign = func(u *Universe, name string) error {
		return u.AssignValueToVariable(name)
	}
	if err := variables.Add("N", cyclic); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}

	universe := NewUniverse().
		SetMutableVariableSet(variables).
		SetMutableValueSet(NewValueSet())

	if err := universe.AssignValueToVariable("N"); !errors.Is(err, common.ErrFailedPrecondition) {
		t.Errorf("re-entrant resolution should be a cycle, got %v", err)
	}
}

func TestUniverse_ValueAsFallsBackToUniqueValue(t *testing.T) {
	variables := NewVariableSet()
	if err := variables.Add("N", &stubVariable{unique: int64(5), hasUnique: true}); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}

	universe := NewUniverse().
		SetMutableVariableSet(variables).
		SetMutableValueSet(NewValueSet())

	got, err := ValueAs[int64](universe, "N")
	if err != nil || got != 5 {
		t.Errorf("wanted the unique value 5, got %d, %v", got, err)
	}
}

func TestUniverse_ValueAsReportsMissingValues(t *testing.T) {
	variables := NewVariableSet()
	if err := variables.Add("N", &stubVariable{value: int64(1)}); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}

	universe := NewUniverse().
		SetMutableVariableSet(variables).
		SetMutableValueSet(NewValueSet())

	if _, err := ValueAs[int64](universe, "N"); !common.IsValueNotFound(err) {
		t.Errorf("wanted a value-not-found error, got %v", err)
	}
	if _, err := ValueAs[int64](universe, "unknown"); !common.IsVariableNotFound(err) {
		t.Errorf("wanted a variable-not-found error, got %v", err)
	}
}

func TestUniverse_GenerateValueAsGeneratesOnDemand(t *testing.T) {
	variables := NewVariableSet()
	if err := variables.Add("N", &stubVariable{value: int64(31)}); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}

	universe := NewUniverse().
		SetMutableVariableSet(variables).
		SetMutableValueSet(NewValueSet())

	got, err := GenerateValueAs[int64](universe, "N")
	if err != nil || got != 31 {
		t.Errorf("wanted 31, got %d, %v", got, err)
	}
	if !universe.ValueIsKnown("N") {
		t.Errorf("the generated value should be stored")
	}
}

func TestUniverse_GenerateValueAsRejectsConstValueSets(t *testing.T) {
	variables := NewVariableSet()
	if err := variables.Add("N", &stubVariable{value: int64(31)}); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}

	universe := NewUniverse().
		SetMutableVariableSet(variables).
		SetConstValueSet(NewValueSet())

	if _, err := GenerateValueAs[int64](universe, "N"); !errors.Is(err, common.ErrFailedPrecondition) {
		t.Errorf("generating with a const value set should fail, got %v", err)
	}
}

func TestUniverse_EraseValueIsIdempotent(t *testing.T) {
	values := NewValueSet()
	values.Set("N", int64(1))
	universe := NewUniverse().SetMutableValueSet(values)

	if err := universe.EraseValue("N"); err != nil {
		t.Fatalf("failed to erase: %v", err)
	}
	if err := universe.EraseValue("N"); err != nil {
		t.Fatalf("erasing an absent value should succeed: %v", err)
	}
}

func TestUniverse_InstallingBothValueSetsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("installing both mutable and const value sets should panic")
		}
	}()
	NewUniverse().
		SetMutableValueSet(NewValueSet()).
		SetConstValueSet(NewValueSet())
}

func TestUniverse_SubvaluePathsResolve(t *testing.T) {
	variables := NewVariableSet()
	if err := variables.Add("A", &stubVariable{}); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}
	values := NewValueSet()
	values.Set("A", int64(11))

	universe := NewUniverse().
		SetMutableVariableSet(variables).
		SetMutableValueSet(values)

	got, err := ValueAs[int64](universe, "A.self")
	if err != nil || got != 11 {
		t.Errorf("wanted subvalue 11, got %d, %v", got, err)
	}
}
