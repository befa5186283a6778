// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package engine

import (
	"fmt"

	"github.com/moriarty-project/moriarty/common"
	"github.com/moriarty-project/moriarty/internal/random"
)

// Universe is the context of one generation, validation or IO run. It
// bundles borrowed references to the variable set, the value set, the random
// engine, the generation config and the optional IO, and is the single
// meeting point for all cross-variable queries.
//
// A Universe never owns any of its parts; the outer driver does. Exactly one
// of the mutable/const references may be installed for the variable set and
// for the value set — installing both is a programmer error and panics.
type Universe struct {
	mutableVariables *VariableSet
	constVariables   *VariableSet

	mutableValues *ValueSet
	constValues   *ValueSet

	rnd    *random.Engine
	config *GenerationConfig
	io     IO

	// Names currently being resolved, for cycle detection on top of the
	// config-level check (the config may not be installed for pure
	// validation runs).
	resolving map[string]struct{}
}

// NewUniverse returns an empty Universe; install the parts with the
// SetXxx methods.
func NewUniverse() *Universe {
	return &Universe{resolving: map[string]struct{}{}}
}

// SetMutableVariableSet installs variables. Only one of
// SetMutableVariableSet and SetConstVariableSet may be called.
func (u *Universe) SetMutableVariableSet(variables *VariableSet) *Universe {
	if u.constVariables != nil {
		panic("only one of SetConstVariableSet and SetMutableVariableSet may be called")
	}
	u.mutableVariables = variables
	return u
}

// SetConstVariableSet installs a read-only variable set.
func (u *Universe) SetConstVariableSet(variables *VariableSet) *Universe {
	if u.mutableVariables != nil {
		panic("only one of SetConstVariableSet and SetMutableVariableSet may be called")
	}
	u.constVariables = variables
	return u
}

// SetMutableValueSet installs values. Only one of SetMutableValueSet and
// SetConstValueSet may be called.
func (u *Universe) SetMutableValueSet(values *ValueSet) *Universe {
	if u.constValues != nil {
		panic("only one of SetConstValueSet and SetMutableValueSet may be called")
	}
	u.mutableValues = values
	return u
}

// SetConstValueSet installs a read-only value set.
func (u *Universe) SetConstValueSet(values *ValueSet) *Universe {
	if u.mutableValues != nil {
		panic("only one of SetConstValueSet and SetMutableValueSet may be called")
	}
	u.constValues = values
	return u
}

// SetRandomEngine installs the random engine.
func (u *Universe) SetRandomEngine(rnd *random.Engine) *Universe {
	u.rnd = rnd
	return u
}

// SetGenerationConfig installs the generation config.
func (u *Universe) SetGenerationConfig(config *GenerationConfig) *Universe {
	u.config = config
	return u
}

// SetIO installs the IO collaborator used by read/print operations.
func (u *Universe) SetIO(io IO) *Universe {
	u.io = io
	return u
}

func (u *Universe) variableSet() *VariableSet {
	if u.constVariables != nil {
		return u.constVariables
	}
	return u.mutableVariables
}

func (u *Universe) valueSet() *ValueSet {
	if u.constValues != nil {
		return u.constValues
	}
	return u.mutableValues
}

func misconfigured(operation, missing string) error {
	return fmt.Errorf("%w: %s called without a %s installed",
		common.ErrFailedPrecondition, operation, missing)
}

// Random returns the installed random engine.
func (u *Universe) Random() (*random.Engine, error) {
	if u.rnd == nil {
		return nil, misconfigured("Random", "random engine")
	}
	return u.rnd, nil
}

// GenerationConfig returns the installed generation config, or nil.
func (u *Universe) GenerationConfig() *GenerationConfig {
	return u.config
}

// IO returns the installed IO collaborator.
func (u *Universe) IO() (IO, error) {
	if u.io == nil {
		return nil, misconfigured("IO", "IO collaborator")
	}
	return u.io, nil
}

// ApproximateGenerationLimit returns the soft size budget, if a generation
// config with one is installed.
func (u *Universe) ApproximateGenerationLimit() (int64, bool) {
	if u.config == nil {
		return 0, false
	}
	return u.config.SoftGenerationLimit()
}

// Variable returns the variable registered under name.
func (u *Universe) Variable(name string) (Variable, error) {
	variables := u.variableSet()
	if variables == nil {
		return nil, misconfigured("Variable", "variable set")
	}
	return variables.Get(name)
}

// CanMutateValues reports whether values may be written.
func (u *Universe) CanMutateValues() bool {
	return u.mutableValues != nil
}

// ValueIsKnown reports whether a value for name has been computed.
func (u *Universe) ValueIsKnown(name string) bool {
	values := u.valueSet()
	return values != nil && values.Contains(name)
}

// SetValue stores value under name. Requires a mutable value set.
func (u *Universe) SetValue(name string, value any) error {
	if u.mutableValues == nil {
		return misconfigured("SetValue", "mutable value set")
	}
	u.mutableValues.Set(name, value)
	return nil
}

// EraseValue removes the value stored under name. Erasing an absent value
// succeeds.
func (u *Universe) EraseValue(name string) error {
	if u.valueSet() == nil {
		return misconfigured("EraseValue", "value set")
	}
	if u.mutableValues == nil {
		return misconfigured("EraseValue", "mutable value set")
	}
	u.mutableValues.Erase(name)
	return nil
}

// RawValue returns the stored value for name without a type check and
// without the unique-value fallback.
func (u *Universe) RawValue(name string) (any, error) {
	values := u.valueSet()
	if values == nil {
		return nil, misconfigured("RawValue", "value set")
	}
	return values.Get(name)
}

// AssignValueToVariable generates and stores a value for name. A no-op if
// the value is already known. Re-entrant resolution of the same name is a
// cyclic dependency.
func (u *Universe) AssignValueToVariable(name string) error {
	values := u.valueSet()
	if values == nil {
		return misconfigured("AssignValueToVariable", "value set")
	}
	if values.Contains(name) {
		return nil
	}

	variable, err := u.Variable(name)
	if err != nil {
		return err
	}

	if _, active := u.resolving[name]; active {
		return fmt.Errorf("%w: found cyclic dependency in variables involving %q",
			common.ErrFailedPrecondition, name)
	}
	u.resolving[name] = struct{}{}
	defer delete(u.resolving, name)

	return variable.AssignValue(u, name)
}

// ValueAs returns the value assigned to name, checked against the requested
// type. Dotted names resolve subvalue projections. If no value is stored,
// the variable's unique value is consulted before giving up with a
// value-not-found error.
func ValueAs[V any](u *Universe, name string) (V, error) {
	var zero V
	values := u.valueSet()
	if values == nil {
		return zero, misconfigured("ValueAs", "value set")
	}

	if HasSubvariable(name) {
		return subvalueAs[V](u, name)
	}

	value, err := GetFromValueSet[V](values, name)
	if err == nil || !common.IsValueNotFound(err) {
		return value, err
	}

	// No stored value; the variable may still admit exactly one.
	variable, verr := u.Variable(name)
	if verr != nil {
		return zero, verr
	}
	unique, ok := variable.UniqueValueAny(u)
	if !ok {
		return zero, common.ValueNotFoundError(name)
	}
	typed, ok := unique.(V)
	if !ok {
		return zero, fmt.Errorf(
			"%w: unique value of %q has type %T, requested %T",
			common.ErrInternal, name, unique, zero)
	}
	return typed, nil
}

// GenerateValueAs returns the value assigned to name, generating and
// storing it first if absent and the value set is mutable.
func GenerateValueAs[V any](u *Universe, name string) (V, error) {
	value, err := ValueAs[V](u, name)
	if err == nil || !common.IsValueNotFound(err) {
		return value, err
	}

	if !u.CanMutateValues() {
		var zero V
		return zero, fmt.Errorf("%w: cannot generate %q with a const value set",
			common.ErrFailedPrecondition, name)
	}

	if err := u.AssignValueToVariable(BaseVariableName(name)); err != nil {
		var zero V
		return zero, err
	}
	return ValueAs[V](u, name)
}

func subvalueAs[V any](u *Universe, name string) (V, error) {
	var zero V
	base := BaseVariableName(name)
	path, _ := SubvariableName(name)

	variable, err := u.Variable(base)
	if err != nil {
		return zero, err
	}
	raw, err := u.RawValue(base)
	if err != nil {
		return zero, err
	}
	sub, err := variable.Subvalue(raw, path)
	if err != nil {
		return zero, err
	}
	typed, ok := sub.(V)
	if !ok {
		return zero, fmt.Errorf("%w: subvalue %q has type %T, requested %T",
			common.ErrFailedPrecondition, name, sub, zero)
	}
	return typed, nil
}

// ReadValueOf reads a value for name from the universe IO and stores it.
func (u *Universe) ReadValueOf(name string) error {
	variable, err := u.Variable(name)
	if err != nil {
		return err
	}
	return variable.ReadValue(u, name)
}

// PrintValueOf prints the value stored under name to the universe IO.
func (u *Universe) PrintValueOf(name string) error {
	variable, err := u.Variable(name)
	if err != nil {
		return err
	}
	return variable.PrintValue(u, name)
}
