// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package moriarty

import (
	"fmt"
	"sort"

	"github.com/moriarty-project/moriarty/common"
	"github.com/moriarty-project/moriarty/engine"
	"github.com/moriarty-project/moriarty/internal/random"
)

// Base holds the constraint state and behaviour shared by all variable
// types: the Is/IsOneOf allow-list, custom predicates with their declared
// dependencies, and the property-category handlers. Embedding Base[V] also
// provides most of the type-erased engine.Variable surface; the embedding
// type supplies Typename, Clone, MergeFrom and the typed operations.
type Base[V any] struct {
	self Variable[V]

	hasOneOf bool
	oneOf    []V // sorted by key, deduplicated

	customs    []customConstraint[V]
	customDeps []string // sorted, so generation order stays deterministic

	properties map[string]func(engine.Property) error

	// A constraint that failed to apply marks the whole variable invalid;
	// the error surfaces on the next generate or validate.
	invalid error

	// key gives values a total order and an equality, used for the
	// allow-list and for distinctness checks.
	key func(V) string
}

type customConstraint[V any] struct {
	name  string
	check func(V, *ConstraintValues) bool
}

// initBase wires the embedding variable into its base. Every constructor
// must call it before anything else.
func (b *Base[V]) initBase(self Variable[V]) {
	b.self = self
	b.key = func(v V) string { return fmt.Sprintf("%v", v) }
}

// cloneBaseInto copies the base state into dst, owned by self. Property
// handlers are method values bound to the original, so the embedding
// type re-registers them after cloning.
func (b *Base[V]) cloneBaseInto(dst *Base[V], self Variable[V]) {
	dst.self = self
	dst.key = b.key
	dst.hasOneOf = b.hasOneOf
	dst.oneOf = append([]V(nil), b.oneOf...)
	dst.customs = append([]customConstraint[V](nil), b.customs...)
	dst.customDeps = append([]string(nil), b.customDeps...)
	dst.invalid = b.invalid
	dst.properties = nil
}

// VariableBase exposes the shared constraint state.
func (b *Base[V]) VariableBase() *Base[V] {
	return b
}

// markInvalid records a constraint-application failure for later
// surfacing. The first failure wins.
func (b *Base[V]) markInvalid(err error) {
	if b.invalid == nil {
		b.invalid = err
	}
}

// setIs declares that this variable must be exactly value. Logically
// equivalent to setIsOneOf with a single option.
func (b *Base[V]) setIs(value V) {
	b.setIsOneOf([]V{value})
}

// setIsOneOf declares that this variable must be one of values. Successive
// calls intersect.
func (b *Base[V]) setIsOneOf(values []V) {
	sorted := append([]V(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return b.key(sorted[i]) < b.key(sorted[j]) })

	deduped := sorted[:0]
	for i, v := range sorted {
		if i == 0 || b.key(sorted[i-1]) != b.key(v) {
			deduped = append(deduped, v)
		}
	}

	if !b.hasOneOf {
		b.hasOneOf = true
		b.oneOf = deduped
		return
	}

	existing := map[string]struct{}{}
	for _, v := range b.oneOf {
		existing[b.key(v)] = struct{}{}
	}
	intersection := deduped[:0]
	for _, v := range deduped {
		if _, ok := existing[b.key(v)]; ok {
			intersection = append(intersection, v)
		}
	}
	b.oneOf = intersection
}

func (b *Base[V]) oneOfContains(value V) bool {
	k := b.key(value)
	for _, v := range b.oneOf {
		if b.key(v) == k {
			return true
		}
	}
	return false
}

// addCustomConstraint registers a named predicate. deps lists the variables
// the predicate consults via ConstraintValues; they are generated before
// every candidate is validated.
func (b *Base[V]) addCustomConstraint(name string, deps []string, check func(V, *ConstraintValues) bool) {
	b.customDeps = append(b.customDeps, deps...)
	sort.Strings(b.customDeps)
	b.customs = append(b.customs, customConstraint[V]{name: name, check: check})
}

// RegisterKnownProperty informs the base that the embedding type knows how
// to interpret the given property category.
func (b *Base[V]) RegisterKnownProperty(category string, handler func(engine.Property) error) {
	if b.properties == nil {
		b.properties = map[string]func(engine.Property) error{}
	}
	b.properties[category] = handler
}

// WithProperty implements engine.Variable. Unknown categories fail or are
// ignored according to the property's enforcement.
func (b *Base[V]) WithProperty(property engine.Property) error {
	handler, known := b.properties[property.Category]
	if !known {
		if property.Enforcement == engine.IgnoreIfUnknown {
			return nil
		}
		return fmt.Errorf(
			"%w: property with non-optional category %q requested, but unknown to this variable",
			common.ErrInvalidArgument, property.Category)
	}
	if err := handler(property); err != nil && property.Enforcement == engine.FailIfUnknown {
		return fmt.Errorf("%w: failed to apply property %v: %v",
			common.ErrFailedPrecondition, property, err)
	}
	return nil
}

// Dependencies implements engine.Variable: the type-specific dependencies
// plus those declared by custom constraints.
func (b *Base[V]) Dependencies() []string {
	deps := append([]string(nil), b.self.DirectDependencies()...)
	return append(deps, b.customDeps...)
}

// UniqueValueAny implements engine.Variable.
func (b *Base[V]) UniqueValueAny(u *engine.Universe) (any, bool) {
	value, ok := b.uniqueValue(u)
	if !ok {
		return nil, false
	}
	return value, true
}

func (b *Base[V]) uniqueValue(u *engine.Universe) (V, bool) {
	if b.hasOneOf {
		if len(b.oneOf) == 1 {
			return b.oneOf[0], true
		}
		var zero V
		return zero, false
	}
	return b.self.TypedUniqueValue(u)
}

// AssignValue implements engine.Variable: generate under supervision and
// store, unless a value is already known.
func (b *Base[V]) AssignValue(u *engine.Universe, name string) error {
	if u.ValueIsKnown(name) {
		return nil
	}
	value, err := generateSupervised(u, name, b.self)
	if err != nil {
		return err
	}
	return u.SetValue(name, value)
}

// AssignUniqueValue implements engine.Variable.
func (b *Base[V]) AssignUniqueValue(u *engine.Universe, name string) error {
	if u.ValueIsKnown(name) {
		return nil
	}
	value, ok := b.uniqueValue(u)
	if !ok {
		return nil
	}
	return u.SetValue(name, value)
}

// ValueSatisfiesConstraints implements engine.Variable.
func (b *Base[V]) ValueSatisfiesConstraints(u *engine.Universe, name string) error {
	value, err := engine.ValueAs[V](u, name)
	if err != nil {
		return err
	}
	return IsSatisfiedWith(u, b.self, value)
}

// ReadValue implements engine.Variable.
func (b *Base[V]) ReadValue(u *engine.Universe, name string) error {
	value, err := b.self.Read(u, name)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", name, err)
	}
	return u.SetValue(name, value)
}

// PrintValue implements engine.Variable.
func (b *Base[V]) PrintValue(u *engine.Universe, name string) error {
	value, err := engine.ValueAs[V](u, name)
	if err != nil {
		return err
	}
	return b.self.Print(u, name, value)
}

// Subvalue implements engine.Variable by walking the dotted path through
// the typed subvalue table.
func (b *Base[V]) Subvalue(value any, path string) (any, error) {
	typed, ok := value.(V)
	if !ok {
		var zero V
		return nil, fmt.Errorf("%w: value has type %T, %s expects %T",
			common.ErrInternal, value, b.self.Typename(), zero)
	}
	subvalues, err := b.self.Subvalues(typed)
	if err != nil {
		return nil, err
	}
	return engine.WalkSubvaluePath(subvalues, path)
}

// DifficultVariables implements engine.Variable: the type-specific edge
// cases, each merged with this variable's own constraints.
func (b *Base[V]) DifficultVariables() ([]engine.Variable, error) {
	instances, err := b.self.TypedDifficultInstances()
	if err != nil {
		return nil, err
	}
	result := make([]engine.Variable, 0, len(instances))
	for _, instance := range instances {
		if err := instance.MergeFrom(b.self); err != nil {
			return nil, err
		}
		result = append(result, instance)
	}
	return result, nil
}

// mergeBaseFrom intersects the shared constraint state of other into b.
func (b *Base[V]) mergeBaseFrom(other *Base[V]) {
	if other.hasOneOf {
		b.setIsOneOf(other.oneOf)
	}
	if other.invalid != nil {
		b.markInvalid(other.invalid)
	}
}

// -----------------------------------------------------------------------------
// Supervised generation

// Random generates one value described by m, under the caller's universe.
// The value is tracked under parent's name extended by debugName, so errors
// and retry bookkeeping point at the right spot ("A.length").
func Random[V any](u *engine.Universe, parent, debugName string, m Variable[V]) (V, error) {
	return generateSupervised(u, engine.ConstructVariableName(parent, debugName), m)
}

// GenerateValue returns the value of the named variable, generating and
// storing it first if needed.
func GenerateValue[V any](u *engine.Universe, name string) (V, error) {
	return engine.GenerateValueAs[V](u, name)
}

// KnownValue returns the value of the named variable if it is already
// known, without generating.
func KnownValue[V any](u *engine.Universe, name string) (V, error) {
	return engine.ValueAs[V](u, name)
}

// UniqueValueOf returns the single value m admits under u, if one is
// determinable without random draws.
func UniqueValueOf[V any](u *engine.Universe, m Variable[V]) (V, bool) {
	return m.VariableBase().uniqueValue(u)
}

// IsSatisfiedWith checks value against every constraint of m: the
// Is/IsOneOf allow-list, the type-specific constraints, and the custom
// predicates. Missing variables or values encountered by the type-specific
// check are reported as unsatisfied constraints, so validators can be
// written naively.
func IsSatisfiedWith[V any](u *engine.Universe, m Variable[V], value V) error {
	b := m.VariableBase()
	if b.invalid != nil {
		return b.invalid
	}

	if b.hasOneOf && !b.oneOfContains(value) {
		return common.UnsatisfiedConstraintError(
			"value must be one of the options in Is() and IsOneOf()")
	}

	if err := m.Check(u, value); err != nil {
		if common.IsVariableNotFound(err) || common.IsValueNotFound(err) {
			return common.UnsatisfiedConstraintError(err.Error())
		}
		return err
	}

	cv := &ConstraintValues{universe: u}
	for _, constraint := range b.customs {
		if !constraint.check(value, cv) {
			return common.UnsatisfiedConstraintError(
				fmt.Sprintf("custom constraint %q not satisfied", constraint.name))
		}
	}
	return nil
}

// generateSupervised runs generation attempts for m under the generation
// config until a value is produced, a retry limit aborts, or a
// non-retryable bookkeeping error occurs. On each failure the descendants
// generated by the failed attempt are erased before the next try.
func generateSupervised[V any](u *engine.Universe, name string, m Variable[V]) (V, error) {
	var zero V
	b := m.VariableBase()

	if _, err := u.Random(); err != nil {
		return zero, err
	}
	config := u.GenerationConfig()
	if config == nil {
		return zero, fmt.Errorf("%w: generation requires a generation config",
			common.ErrFailedPrecondition)
	}
	if b.hasOneOf && len(b.oneOf) == 0 {
		return zero, fmt.Errorf("%w: Is/IsOneOf used, but no viable value found",
			common.ErrFailedPrecondition)
	}

	if err := config.MarkStartGeneration(name); err != nil {
		return zero, err
	}

	for {
		value, err := generateOnce(u, name, m)
		if err == nil {
			if err := config.MarkSuccessfulGeneration(name); err != nil {
				return zero, err
			}
			return value, nil
		}

		recommendation, recErr := config.AddGenerationFailure(name, err)
		if recErr != nil {
			return zero, recErr
		}
		for _, stale := range recommendation.VariableNamesToDelete {
			if err := u.EraseValue(stale); err != nil {
				return zero, err
			}
		}
		if recommendation.Policy == engine.Abort {
			break
		}
	}

	if err := config.MarkAbandonedGeneration(name); err != nil {
		return zero, err
	}
	return zero, fmt.Errorf("%w: error generating %q (even with retries), one such error: %v",
		common.ErrFailedPrecondition, name, config.GenerationStatus(name))
}

// generateOnce makes a single attempt: pick or generate a candidate,
// resolve the custom-constraint dependencies, validate.
func generateOnce[V any](u *engine.Universe, name string, m Variable[V]) (V, error) {
	var zero V
	b := m.VariableBase()
	if b.invalid != nil {
		return zero, b.invalid
	}

	var value V
	var err error
	if b.hasOneOf {
		rnd, rndErr := u.Random()
		if rndErr != nil {
			return zero, rndErr
		}
		value, err = random.Element(rnd, b.oneOf)
	} else {
		value, err = m.GenerateOnce(u, name)
	}
	if err != nil {
		return zero, err
	}

	for _, dep := range b.customDeps {
		if err := u.AssignValueToVariable(dep); err != nil {
			return zero, err
		}
	}

	if err := IsSatisfiedWith(u, m, value); err != nil {
		return zero, err
	}
	return value, nil
}
