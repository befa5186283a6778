// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moriarty-project/moriarty"
	"github.com/moriarty-project/moriarty/engine"
)

// Spec is the YAML surface of the generator: named variable definitions
// plus the order values are printed in.
//
//	seed: [7]
//	variables:
//	  N: {type: integer, between: [1, 50]}
//	  A: {type: array, element: {type: integer, between: [1, "N"]}, length: "N"}
//	output: [N, A]
type Spec struct {
	Seed      []int64             `yaml:"seed"`
	SoftLimit *int64              `yaml:"soft_limit"`
	Variables map[string]*VarSpec `yaml:"variables"`
	Output    []string            `yaml:"output"`
}

// VarSpec is one variable definition. Bounds and lengths are integers or
// expression strings referencing other variables.
type VarSpec struct {
	Type string `yaml:"type"` // integer, string, array, tuple

	Between  []any  `yaml:"between"`
	AtLeast  any    `yaml:"at_least"`
	AtMost   any    `yaml:"at_most"`
	Exactly  any    `yaml:"exactly"`
	Size     string `yaml:"size"`
	Length   any    `yaml:"length"`
	Alphabet string `yaml:"alphabet"`
	Pattern  string `yaml:"pattern"`
	Distinct bool   `yaml:"distinct"`

	Element   *VarSpec   `yaml:"element"`
	Slots     []*VarSpec `yaml:"slots"`
	Separator string     `yaml:"separator"`
}

// LoadSpec reads and decodes a spec file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if len(spec.Variables) == 0 {
		return nil, fmt.Errorf("spec %s declares no variables", path)
	}
	return &spec, nil
}

// BuildVariableSet turns the declared variables into an engine
// VariableSet.
func (s *Spec) BuildVariableSet() (*engine.VariableSet, error) {
	variables := engine.NewVariableSet()
	for name, varSpec := range s.Variables {
		variable, err := buildVariable(varSpec)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		if err := variables.Add(name, variable); err != nil {
			return nil, err
		}
	}
	return variables, nil
}

// PrintOrder returns the declared output order, defaulting to sorted
// variable names.
func (s *Spec) PrintOrder(variables *engine.VariableSet) []string {
	if len(s.Output) > 0 {
		return s.Output
	}
	return variables.Names()
}

// yaml decodes small integers as int; bounds may also be expression
// strings.
func normalizeBound(bound any) any {
	if v, ok := bound.(int); ok {
		return int64(v)
	}
	return bound
}

func buildInteger(spec *VarSpec) (*moriarty.MInteger, error) {
	m := moriarty.NewMInteger()
	if len(spec.Between) == 2 {
		moriarty.Between(normalizeBound(spec.Between[0]), normalizeBound(spec.Between[1])).ApplyToInteger(m)
	} else if len(spec.Between) != 0 {
		return nil, fmt.Errorf("between wants [min, max], got %v", spec.Between)
	}
	if spec.Exactly != nil {
		moriarty.Exactly(normalizeBound(spec.Exactly)).ApplyToInteger(m)
	}
	if spec.AtLeast != nil {
		moriarty.AtLeast(normalizeBound(spec.AtLeast)).ApplyToInteger(m)
	}
	if spec.AtMost != nil {
		moriarty.AtMost(normalizeBound(spec.AtMost)).ApplyToInteger(m)
	}
	if spec.Size != "" {
		size := moriarty.CommonSizeFromString(spec.Size)
		if size == moriarty.UnknownSize {
			return nil, fmt.Errorf("unknown size %q", spec.Size)
		}
		m.WithSize(size)
	}
	return m, nil
}

func lengthConstraint(length any) moriarty.LengthConstraint {
	return moriarty.Length(normalizeBound(length))
}

func buildString(spec *VarSpec) (*moriarty.MString, error) {
	m := moriarty.NewMString()
	if spec.Exactly != nil {
		value, ok := spec.Exactly.(string)
		if !ok {
			return nil, fmt.Errorf("exactly wants a string, got %T", spec.Exactly)
		}
		m.Is(value)
	}
	if spec.Length != nil {
		lengthConstraint(spec.Length).ApplyToString(m)
	}
	if spec.Alphabet != "" {
		m.WithAlphabet(spec.Alphabet)
	}
	if spec.Pattern != "" {
		m.WithSimplePattern(spec.Pattern)
	}
	if spec.Distinct {
		m.WithDistinctCharacters()
	}
	return m, nil
}

func parseSeparator(name string) (engine.Whitespace, error) {
	switch name {
	case "", "space":
		return engine.Space, nil
	case "tab":
		return engine.Tab, nil
	case "newline":
		return engine.Newline, nil
	}
	return engine.Space, fmt.Errorf("unknown separator %q", name)
}

func buildArray(spec *VarSpec) (engine.Variable, error) {
	if spec.Element == nil {
		return nil, fmt.Errorf("array wants an element spec")
	}
	separator, err := parseSeparator(spec.Separator)
	if err != nil {
		return nil, err
	}

	switch spec.Element.Type {
	case "integer":
		element, err := buildInteger(spec.Element)
		if err != nil {
			return nil, err
		}
		return finishArray(moriarty.NewMArray[int64](element), spec, separator)
	case "string":
		element, err := buildString(spec.Element)
		if err != nil {
			return nil, err
		}
		return finishArray(moriarty.NewMArray[string](element), spec, separator)
	case "array":
		if spec.Element.Element == nil || spec.Element.Element.Type != "integer" {
			return nil, fmt.Errorf("nested arrays support integer entries only")
		}
		inner, err := buildArray(spec.Element)
		if err != nil {
			return nil, err
		}
		return finishArray(moriarty.NewMArray[[]int64](inner.(*moriarty.MArray[int64])), spec, separator)
	}
	return nil, fmt.Errorf("unsupported array element type %q", spec.Element.Type)
}

func finishArray[V any](m *moriarty.MArray[V], spec *VarSpec, separator engine.Whitespace) (engine.Variable, error) {
	if spec.Length != nil {
		m.OfLengthVar(lengthConstraint(spec.Length).LengthVariable())
	}
	if spec.Distinct {
		m.WithDistinctElements()
	}
	if spec.Separator != "" {
		m.WithSeparator(separator)
	}
	return m, nil
}

func buildTuple(spec *VarSpec) (engine.Variable, error) {
	if len(spec.Slots) != 2 {
		return nil, fmt.Errorf("tuple wants exactly two slots, got %d", len(spec.Slots))
	}
	separator, err := parseSeparator(spec.Separator)
	if err != nil {
		return nil, err
	}

	kinds := [2]string{spec.Slots[0].Type, spec.Slots[1].Type}
	switch kinds {
	case [2]string{"integer", "integer"}:
		first, err := buildInteger(spec.Slots[0])
		if err != nil {
			return nil, err
		}
		second, err := buildInteger(spec.Slots[1])
		if err != nil {
			return nil, err
		}
		return moriarty.NewMTuple2(first, second).WithSeparator(separator), nil
	case [2]string{"integer", "string"}:
		first, err := buildInteger(spec.Slots[0])
		if err != nil {
			return nil, err
		}
		second, err := buildString(spec.Slots[1])
		if err != nil {
			return nil, err
		}
		return moriarty.NewMTuple2[int64, string](first, second).WithSeparator(separator), nil
	case [2]string{"string", "integer"}:
		first, err := buildString(spec.Slots[0])
		if err != nil {
			return nil, err
		}
		second, err := buildInteger(spec.Slots[1])
		if err != nil {
			return nil, err
		}
		return moriarty.NewMTuple2[string, int64](first, second).WithSeparator(separator), nil
	case [2]string{"string", "string"}:
		first, err := buildString(spec.Slots[0])
		if err != nil {
			return nil, err
		}
		second, err := buildString(spec.Slots[1])
		if err != nil {
			return nil, err
		}
		return moriarty.NewMTuple2[string, string](first, second).WithSeparator(separator), nil
	}
	return nil, fmt.Errorf("unsupported tuple slot types %v", kinds)
}

func buildVariable(spec *VarSpec) (engine.Variable, error) {
	switch spec.Type {
	case "integer":
		return buildInteger(spec)
	case "string":
		return buildString(spec)
	case "array":
		return buildArray(spec)
	case "tuple":
		return buildTuple(spec)
	}
	return nil, fmt.Errorf("unsupported variable type %q", spec.Type)
}
