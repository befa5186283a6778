// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package expr

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/moriarty-project/moriarty/common"
)

func TestExpression_Eval(t *testing.T) {
	tests := map[string]struct {
		expression string
		env        map[string]int64
		want       int64
	}{
		"literal":             {expression: "42", want: 42},
		"addition":            {expression: "1 + 2", want: 3},
		"precedence":          {expression: "2 + 3 * 4", want: 14},
		"parentheses":         {expression: "(2 + 3) * 4", want: 20},
		"division truncates":  {expression: "10 / 3", want: 3},
		"modulo":              {expression: "10 % 3", want: 1},
		"unary minus":         {expression: "-5 + 2", want: -3},
		"double unary":        {expression: "--5", want: 5},
		"power":               {expression: "2 ^ 10", want: 1024},
		"power right assoc":   {expression: "2 ^ 3 ^ 2", want: 512},
		"unary binds power":   {expression: "-2 ^ 2", want: -4},
		"zero power":          {expression: "5 ^ 0", want: 1},
		"min":                 {expression: "min(3, 5)", want: 3},
		"max":                 {expression: "max(3, 5)", want: 5},
		"nested calls":        {expression: "min(max(1, 10), 5)", want: 5},
		"identifier":          {expression: "3 * N + 1", env: map[string]int64{"N": 5}, want: 16},
		"two identifiers":     {expression: "min(N, M) - 1", env: map[string]int64{"N": 7, "M": 3}, want: 2},
		"whitespace anywhere": {expression: "  1+ 2 *3 ", want: 7},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			parsed, err := Parse(test.expression)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", test.expression, err)
			}
			got, err := parsed.Eval(test.env)
			if err != nil {
				t.Fatalf("failed to evaluate %q: %v", test.expression, err)
			}
			if got != test.want {
				t.Errorf("%q evaluated to %d, wanted %d", test.expression, got, test.want)
			}
		})
	}
}

func TestExpression_ParseErrors(t *testing.T) {
	tests := []string{
		"",
		"1 +",
		"min(1)",
		"max(1, 2",
		"foo(1, 2)",
		"min",
		")(",
		"1 2",
		"9223372036854775808", // one past MaxInt64
		"a $ b",
	}
	for _, expression := range tests {
		t.Run(expression, func(t *testing.T) {
			if _, err := Parse(expression); !errors.Is(err, common.ErrInvalidArgument) {
				t.Errorf("parsing %q should fail with an invalid argument, got %v", expression, err)
			}
		})
	}
}

func TestExpression_EvalErrors(t *testing.T) {
	tests := map[string]struct {
		expression string
		env        map[string]int64
	}{
		"division by zero":   {expression: "1 / 0"},
		"modulo by zero":     {expression: "1 % 0"},
		"negative exponent":  {expression: "2 ^ -1"},
		"unknown identifier": {expression: "N + 1"},
		"addition overflow":  {expression: "9223372036854775807 + 1"},
		"mul overflow":       {expression: "4294967296 * 4294967296"},
		"power overflow":     {expression: "2 ^ 64"},
		"negation overflow":  {expression: "-N", env: map[string]int64{"N": math.MinInt64}},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			parsed, err := Parse(test.expression)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", test.expression, err)
			}
			if _, err := parsed.Eval(test.env); !errors.Is(err, common.ErrInvalidArgument) {
				t.Errorf("evaluating %q should fail with an invalid argument, got %v", test.expression, err)
			}
		})
	}
}

func TestExpression_SubtractionAtTheEdge(t *testing.T) {
	parsed, err := Parse("0 - N")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if _, err := parsed.Eval(map[string]int64{"N": math.MinInt64}); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("0 - MinInt64 should overflow, got %v", err)
	}
	got, err := parsed.Eval(map[string]int64{"N": math.MaxInt64})
	if err != nil || got != -math.MaxInt64 {
		t.Errorf("0 - MaxInt64 should be %d, got %d, %v", int64(-math.MaxInt64), got, err)
	}
}

func TestExpression_IdentifiersAreRecoverableWithoutEvaluation(t *testing.T) {
	parsed, err := Parse("min(N, 2 * M) + N - other_1")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	want := []string{"M", "N", "other_1"}
	if got := parsed.Identifiers(); !reflect.DeepEqual(got, want) {
		t.Errorf("wanted identifiers %v, got %v", want, got)
	}
}

func TestExpression_ParseCacheReturnsSharedTrees(t *testing.T) {
	first, err := Parse("3 * N + 1")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	second, err := Parse("3 * N + 1")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if first != second {
		t.Errorf("expected the cached expression to be shared")
	}
}
