// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

// Package moriarty declares variables with constraints and generates
// concrete values that jointly satisfy them, or validates externally
// supplied values against them.
//
// A Variable combines a constraint set with a generator and a validator.
// Named variables form a dependency DAG — a bound like Between(1, "N") makes
// a variable depend on "N" — and engine.GenerateAllValues produces one
// consistent assignment for the whole DAG from a seeded random engine,
// deterministically.
//
//	vars := engine.NewVariableSet()
//	vars.Add("N", moriarty.NewMInteger(moriarty.Between(1, 50)))
//	vars.Add("A", moriarty.NewMInteger(moriarty.Between(1, "N")))
//	values, err := engine.GenerateAllValues(vars, nil, engine.GenerationOptions{
//		Random: moriarty.NewRandomEngine(42),
//	})
package moriarty

import (
	"github.com/moriarty-project/moriarty/engine"
	"github.com/moriarty-project/moriarty/internal/random"
)

// Version participates in random-engine seeding, so streams are not
// accidentally assumed stable across releases.
const Version = "0.1.0"

// NewRandomEngine returns a deterministic random engine seeded with the
// given sequence and the library version tag.
func NewRandomEngine(seed ...int64) *random.Engine {
	return random.NewEngine(seed, Version)
}

// Variable is the typed contract implemented by every variable type
// (MInteger, MString, MArray, MTuple2, and user-defined extensions). It
// extends the type-erased engine.Variable with the value-typed operations;
// the shared behaviour — Is/IsOneOf handling, custom constraints, property
// dispatch, retries — is provided by embedding Base[V].
type Variable[V any] interface {
	engine.Variable

	// VariableBase exposes the shared constraint state.
	VariableBase() *Base[V]

	// GenerateOnce produces a single candidate honouring the type-specific
	// constraints. Is/IsOneOf selection, custom-constraint checking and the
	// retry loop are layered on top by the package helpers; implementations
	// draw randomness and dependent values only through u.
	GenerateOnce(u *engine.Universe, name string) (V, error)

	// Check verifies the type-specific constraints on v, returning an
	// unsatisfied-constraint error with a reason on violation.
	Check(u *engine.Universe, v V) error

	// Read reads one value from the universe IO; Print writes one.
	Read(u *engine.Universe, name string) (V, error)
	Print(u *engine.Universe, name string, v V) error

	// TypedUniqueValue returns the single value the type-specific
	// constraints admit, if that is cheaply determinable.
	TypedUniqueValue(u *engine.Universe) (V, bool)

	// DirectDependencies lists the variables the type-specific constraints
	// consult; dependencies of custom constraints are added by Base.
	DirectDependencies() []string

	// Subvalues returns the named projections of v, e.g. an array's
	// "length". Types without projections return ErrUnimplemented.
	Subvalues(v V) (*engine.Subvalues, error)

	// FormatValue renders v for error messages.
	FormatValue(v V) (string, error)

	// TypedDifficultInstances returns edge-case variants of this variable,
	// not yet merged with its constraints.
	TypedDifficultInstances() ([]Variable[V], error)
}
