// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/moriarty-project/moriarty/common"
	"github.com/moriarty-project/moriarty/internal/random"
)

func TestGenerationOrder_DependentsComeFirst(t *testing.T) {
	// A and B depend on N; both pop before N, and recursion is expected to
	// resolve N when A is driven.
	deps := map[string][]string{
		"A": {"N"},
		"B": {"N"},
		"N": {},
	}
	order, err := GenerationOrder(deps, NewValueSet())
	if err != nil {
		t.Fatalf("failed to order: %v", err)
	}
	if want := []string{"A", "B", "N"}; !reflect.DeepEqual(order, want) {
		t.Errorf("wanted order %v, got %v", want, order)
	}
}

func TestGenerationOrder_TiesBreakLexicographically(t *testing.T) {
	deps := map[string][]string{
		"c": {},
		"a": {},
		"b": {},
	}
	order, err := GenerationOrder(deps, NewValueSet())
	if err != nil {
		t.Fatalf("failed to order: %v", err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(order, want) {
		t.Errorf("wanted order %v, got %v", want, order)
	}
}

func TestGenerationOrder_UnknownDependency(t *testing.T) {
	deps := map[string][]string{
		"A": {"missing"},
	}
	if _, err := GenerationOrder(deps, NewValueSet()); !errors.Is(err, common.ErrFailedPrecondition) {
		t.Errorf("unknown dependency should fail, got %v", err)
	}

	// A dependency satisfied by a known value is fine.
	known := NewValueSet()
	known.Set("missing", int64(1))
	if _, err := GenerationOrder(deps, known); err != nil {
		t.Errorf("known-value dependencies should be accepted, got %v", err)
	}
}

func TestGenerationOrder_DetectsCycles(t *testing.T) {
	deps := map[string][]string{
		"A": {"B"},
		"B": {"A"},
	}
	if _, err := GenerationOrder(deps, NewValueSet()); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("cycles should fail with an invalid argument, got %v", err)
	}
}

func TestGenerateAllValues_DrivesStubs(t *testing.T) {
	variables := NewVariableSet()
	if err := variables.Add("N", &stubVariable{value: int64(10)}); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}
	if err := variables.Add("A", &stubVariable{value: int64(4), deps: []string{"N"}}); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}

	values, err := GenerateAllValues(variables, nil, GenerationOptions{
		Random: random.NewEngine([]int64{1}, "test"),
	})
	if err != nil {
		t.Fatalf("failed to generate: %v", err)
	}

	for name, want := range map[string]int64{"N": 10, "A": 4} {
		got, err := GetFromValueSet[int64](values, name)
		if err != nil || got != want {
			t.Errorf("wanted %s = %d, got %d, %v", name, want, got, err)
		}
	}
}

func TestGenerateAllValues_RequiresARandomEngine(t *testing.T) {
	if _, err := GenerateAllValues(NewVariableSet(), nil, GenerationOptions{}); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("a missing random engine should fail, got %v", err)
	}
}

func TestGenerateAllValues_PreservesKnownValues(t *testing.T) {
	variables := NewVariableSet()
	if err := variables.Add("N", &stubVariable{value: int64(10)}); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}
	known := NewValueSet()
	known.Set("N", int64(77))

	values, err := GenerateAllValues(variables, known, GenerationOptions{
		Random: random.NewEngine([]int64{1}, "test"),
	})
	if err != nil {
		t.Fatalf("failed to generate: %v", err)
	}
	got, err := GetFromValueSet[int64](values, "N")
	if err != nil || got != 77 {
		t.Errorf("the known value must win, got %d, %v", got, err)
	}
	if known.Len() != 1 || !known.Contains("N") {
		t.Errorf("the input value set must not be modified")
	}
}

func TestGenerateAllValues_DoesNotMutateTheInputVariables(t *testing.T) {
	variables := NewVariableSet()
	if err := variables.Add("N", &stubVariable{value: int64(10)}); err != nil {
		t.Fatalf("failed to add variable: %v", err)
	}

	if _, err := GenerateAllValues(variables, nil, GenerationOptions{
		Random: random.NewEngine([]int64{1}, "test"),
	}); err != nil {
		t.Fatalf("failed to generate: %v", err)
	}
	if variables.Len() != 1 {
		t.Errorf("the input variable set must not be modified")
	}
}
