// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package engine

import (
	"container/heap"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/moriarty-project/moriarty/common"
	"github.com/moriarty-project/moriarty/internal/random"
)

// GenerationOptions configures one GenerateAllValues run.
type GenerationOptions struct {
	// Random drives all value generation. Required.
	Random *random.Engine

	// SoftGenerationLimit bounds, approximately, the summed size of all
	// generated values. Nil means unlimited.
	SoftGenerationLimit *int64

	// IO is installed into the universe for variables that read or print
	// during generation. Optional.
	IO IO

	// Logger receives per-variable progress events. Defaults to a no-op
	// logger.
	Logger *zerolog.Logger
}

func (o *GenerationOptions) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// GenerateAllValues produces a value for every variable in variables,
// consistent with all constraints and with the values already present in
// knownValues. The input sets are not modified; the result is a new
// ValueSet containing the known values plus everything generated.
//
// The run is deterministic: the same variables, known values and random
// engine seed yield an identical result, independent of the order the
// variables were added in.
func GenerateAllValues(variables *VariableSet, knownValues *ValueSet, opts GenerationOptions) (*ValueSet, error) {
	if opts.Random == nil {
		return nil, fmt.Errorf("%w: GenerateAllValues requires a random engine",
			common.ErrInvalidArgument)
	}
	log := opts.logger()

	config := NewGenerationConfig()
	if opts.SoftGenerationLimit != nil {
		config.SetSoftGenerationLimit(*opts.SoftGenerationLimit)
	}

	values := NewValueSet()
	if knownValues != nil {
		values = knownValues.Clone()
	}
	variables = variables.Clone()

	universe := NewUniverse().
		SetMutableVariableSet(variables).
		SetMutableValueSet(values).
		SetGenerationConfig(config).
		SetRandomEngine(opts.Random)
	if opts.IO != nil {
		universe.SetIO(opts.IO)
	}

	depsMap := map[string][]string{}
	for _, name := range variables.Names() {
		variable, err := variables.Get(name)
		if err != nil {
			return nil, err
		}
		depsMap[name] = variable.Dependencies()
	}

	order, err := GenerationOrder(depsMap, values)
	if err != nil {
		return nil, err
	}
	log.Debug().Strs("order", order).Msg("resolved generation order")

	// First pass: install every uniquely determined value, so dependent
	// bounds can be resolved without generation where possible.
	for _, name := range order {
		variable, err := variables.Get(name)
		if err != nil {
			return nil, err
		}
		if err := variable.AssignUniqueValue(universe, name); err != nil {
			return nil, err
		}
	}

	// Second pass: deep generation, honouring retries.
	for _, name := range order {
		variable, err := variables.Get(name)
		if err != nil {
			return nil, err
		}
		log.Trace().Str("variable", name).Msg("assigning value")
		if err := variable.AssignValue(universe, name); err != nil {
			return nil, fmt.Errorf("assigning %q: %w", name, err)
		}
	}

	// Final pass: values installed optimistically as "unique" may be
	// invalidated by constraints resolved later; check everything.
	for _, name := range order {
		variable, err := variables.Get(name)
		if err != nil {
			return nil, err
		}
		if err := variable.ValueSatisfiesConstraints(universe, name); err != nil {
			return nil, fmt.Errorf("validating %q: %w", name, err)
		}
	}

	log.Debug().
		Int("variables", len(order)).
		Int64("approximate_size", values.ApproximateSize()).
		Msg("generated all values")
	return values, nil
}

// GenerationOrder returns the deterministic order variables are driven in:
// variables nobody depends on first, ties broken lexicographically.
// Recursive resolution inside AssignValue pulls dependencies in before their
// dependents complete, so every dependency is generated exactly once.
//
// A dependency that is neither a known variable nor a known value is an
// error, as is a residual cycle.
func GenerationOrder(depsMap map[string][]string, knownValues *ValueSet) ([]string, error) {
	incoming := map[string]int{}
	for name, deps := range depsMap {
		if _, ok := incoming[name]; !ok {
			incoming[name] = 0
		}
		for _, dep := range deps {
			incoming[dep]++
		}
	}

	queue := &stringHeap{}
	for name, count := range incoming {
		if count == 0 {
			heap.Push(queue, name)
		}
	}

	ordered := make([]string, 0, len(depsMap))
	for queue.Len() > 0 {
		current := heap.Pop(queue).(string)
		ordered = append(ordered, current)

		for _, dep := range depsMap[current] {
			if _, isVariable := depsMap[dep]; !isVariable {
				if knownValues == nil || !knownValues.Contains(BaseVariableName(dep)) {
					return nil, fmt.Errorf("%w: unknown dependency %q for variable %q",
						common.ErrFailedPrecondition, dep, current)
				}
				continue
			}
			incoming[dep]--
			if incoming[dep] == 0 {
				heap.Push(queue, dep)
			}
		}
	}

	if len(ordered) != len(depsMap) {
		return nil, fmt.Errorf("%w: cycle in the dependency order graph",
			common.ErrInvalidArgument)
	}
	return ordered, nil
}

// stringHeap is a lexicographic min-heap of variable names.
type stringHeap []string

func (h stringHeap) Len() int           { return len(h) }
func (h stringHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h stringHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *stringHeap) Push(x any)        { *h = append(*h, x.(string)) }
func (h *stringHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
