// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package moriarty_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moriarty-project/moriarty"
	"github.com/moriarty-project/moriarty/common"
	"github.com/moriarty-project/moriarty/engine"
)

// buildDemoVariables assembles a small universe exercising integers,
// dependencies, custom constraints, strings and arrays. The insertion order
// is configurable to show it does not matter.
func buildDemoVariables(t *testing.T, order []string) *engine.VariableSet {
	t.Helper()
	builders := map[string]func() engine.Variable{
		"N": func() engine.Variable {
			return moriarty.NewMInteger(moriarty.Between(1, 50))
		},
		"X": func() engine.Variable {
			return moriarty.NewMInteger(moriarty.Between(1, 100)).
				AddCustomConstraint("NotMultipleOfN", []string{"N"},
					func(x int64, cv *moriarty.ConstraintValues) bool {
						return x%cv.Int64("N") != 0
					})
		},
		"S": func() engine.Variable {
			return moriarty.NewMString(moriarty.Length(10), moriarty.Alphabet("abc"))
		},
		"A": func() engine.Variable {
			return moriarty.NewMArray[int64](moriarty.NewMInteger(moriarty.Between(1, "N"))).
				OfLengthBetween(0, 10)
		},
	}

	variables := engine.NewVariableSet()
	for _, name := range order {
		addVariable(t, variables, name, builders[name]())
	}
	return variables
}

var demoOrder = []string{"N", "X", "S", "A"}

func TestGenerateAllValues_IsDeterministic(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		first := generateAll(t, buildDemoVariables(t, demoOrder), nil, seed)
		second := generateAll(t, buildDemoVariables(t, demoOrder), nil, seed)
		require.True(t, first.Equal(second),
			"two runs with seed %d should be identical", seed)
	}
}

func TestGenerateAllValues_InsertionOrderDoesNotMatter(t *testing.T) {
	reversed := []string{"A", "S", "X", "N"}
	for seed := int64(0); seed < 5; seed++ {
		first := generateAll(t, buildDemoVariables(t, demoOrder), nil, seed)
		second := generateAll(t, buildDemoVariables(t, reversed), nil, seed)
		require.True(t, first.Equal(second),
			"insertion order changed the result at seed %d", seed)
	}
}

func TestGenerateAllValues_KnownValuesAreIdempotent(t *testing.T) {
	known := engine.NewValueSet()
	known.Set("N", int64(13))

	values := generateAll(t, buildDemoVariables(t, demoOrder), known, 7)
	n, err := engine.GetFromValueSet[int64](values, "N")
	require.NoError(t, err)
	require.Equal(t, int64(13), n, "the known value must survive generation")

	x, err := engine.GetFromValueSet[int64](values, "X")
	require.NoError(t, err)
	require.NotZero(t, x%13, "X must respect the known N")
}

func TestGenerateAllValues_CycleAbortsWithoutPartialValues(t *testing.T) {
	variables := engine.NewVariableSet()
	addVariable(t, variables, "A", moriarty.NewMInteger(moriarty.Between(1, "B")))
	addVariable(t, variables, "B", moriarty.NewMInteger(moriarty.Between(1, "A")))

	values, err := engine.GenerateAllValues(variables, nil, engine.GenerationOptions{
		Random: moriarty.NewRandomEngine(1),
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrInvalidArgument), "got %v", err)
	require.Contains(t, err.Error(), "cycle")
	require.Nil(t, values, "no partial value set may escape")
}

func TestGenerateAllValues_UnknownDependencyFails(t *testing.T) {
	variables := engine.NewVariableSet()
	addVariable(t, variables, "A", moriarty.NewMInteger(moriarty.Between(1, "missing")))

	_, err := engine.GenerateAllValues(variables, nil, engine.GenerationOptions{
		Random: moriarty.NewRandomEngine(1),
	})
	require.True(t, errors.Is(err, common.ErrFailedPrecondition), "got %v", err)

	// The same dependency satisfied through a known value is fine.
	known := engine.NewValueSet()
	known.Set("missing", int64(5))
	values, err := engine.GenerateAllValues(variables, known, engine.GenerationOptions{
		Random: moriarty.NewRandomEngine(1),
	})
	require.NoError(t, err)
	a, err := engine.GetFromValueSet[int64](values, "A")
	require.NoError(t, err)
	require.LessOrEqual(t, a, int64(5))
}

// printAll prints the named values with newline separators and returns the
// wire text.
func printAll(t *testing.T, variables *engine.VariableSet, values *engine.ValueSet, names []string) string {
	t.Helper()
	var out bytes.Buffer
	io := engine.NewStreamIO(nil, &out)
	universe := engine.NewUniverse().
		SetConstVariableSet(variables).
		SetConstValueSet(values).
		SetIO(io)
	for _, name := range names {
		require.NoError(t, universe.PrintValueOf(name), "printing %s", name)
		require.NoError(t, io.PrintWhitespace(engine.Newline))
	}
	return out.String()
}

// readAll reads the named values back from the wire text under the exact
// whitespace policy.
func readAll(t *testing.T, variables *engine.VariableSet, wire string, names []string) *engine.ValueSet {
	t.Helper()
	values := engine.NewValueSet()
	io := engine.NewStreamIO(strings.NewReader(wire), nil)
	universe := engine.NewUniverse().
		SetConstVariableSet(variables).
		SetMutableValueSet(values).
		SetIO(io)
	for _, name := range names {
		require.NoError(t, universe.ReadValueOf(name), "reading %s", name)
		require.NoError(t, io.ReadWhitespace(engine.Newline))
	}
	return values
}

func TestRoundTrip_PrintThenReadRestoresValues(t *testing.T) {
	variables := engine.NewVariableSet()
	addVariable(t, variables, "N", moriarty.NewMInteger(moriarty.Between(-100, 100)))
	addVariable(t, variables, "S", moriarty.NewMString(moriarty.Length(6), moriarty.Alphabet("abc")))
	addVariable(t, variables, "A",
		moriarty.NewMArray[int64](moriarty.NewMInteger(moriarty.Between(1, 9))).OfLength(4))
	addVariable(t, variables, "T",
		moriarty.NewMTuple2(
			moriarty.NewMInteger(moriarty.Between(0, 5)),
			moriarty.NewMInteger(moriarty.Between(10, 15))))
	names := []string{"N", "S", "A", "T"}

	values := generateAll(t, variables, nil, 21)
	wire := printAll(t, variables, values, names)
	restored := readAll(t, variables, wire, names)

	for _, name := range names {
		original, err := values.Get(name)
		require.NoError(t, err)
		roundTripped, err := restored.Get(name)
		require.NoError(t, err)
		require.Equal(t, original, roundTripped, "round trip of %s", name)
	}
}

func TestRoundTrip_ArrayUsesTheDeclaredSeparator(t *testing.T) {
	variables := engine.NewVariableSet()
	addVariable(t, variables, "A",
		moriarty.NewMArray[int64](moriarty.NewMInteger(moriarty.Between(1, 9))).
			OfLength(3).
			WithSeparator(engine.Newline))

	values := generateAll(t, variables, nil, 30)
	wire := printAll(t, variables, values, []string{"A"})
	require.Equal(t, 3, strings.Count(wire, "\n"), "two separators plus the trailing newline")

	restored := readAll(t, variables, wire, []string{"A"})
	original, _ := values.Get("A")
	roundTripped, _ := restored.Get("A")
	require.Equal(t, original, roundTripped)
}

func TestDifficultInstances_CarryTheParentConstraints(t *testing.T) {
	m := moriarty.NewMString(moriarty.Length(NewLengthBetween(2, 5)), moriarty.Alphabet("ab"))
	instances, err := m.DifficultVariables()
	require.NoError(t, err)
	require.NotEmpty(t, instances)

	variables := engine.NewVariableSet()
	addVariable(t, variables, "S", instances[0])
	values := generateAll(t, variables, nil, 17)
	s, err := engine.GetFromValueSet[string](values, "S")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(s), 2)
	require.LessOrEqual(t, len(s), 5)
	for _, c := range s {
		require.Contains(t, []rune{'a', 'b'}, c)
	}
}

func TestWithProperty_SizePropagatesAndUnknownCategoriesEnforce(t *testing.T) {
	m := moriarty.NewMInteger(moriarty.Between(1, 1_000_000))
	require.NoError(t, m.WithProperty(engine.Property{Category: "size", Descriptor: "min"}))

	variables := engine.NewVariableSet()
	addVariable(t, variables, "N", m)
	values := generateAll(t, variables, nil, 2)
	n, err := engine.GetFromValueSet[int64](values, "N")
	require.NoError(t, err)
	require.Equal(t, int64(1), n, "the min size pins the value to 1")

	err = m.WithProperty(engine.Property{Category: "nonsense", Descriptor: "x"})
	require.True(t, errors.Is(err, common.ErrInvalidArgument), "got %v", err)

	require.NoError(t, m.WithProperty(engine.Property{
		Category:    "nonsense",
		Descriptor:  "x",
		Enforcement: engine.IgnoreIfUnknown,
	}))
}
