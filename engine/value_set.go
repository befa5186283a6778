// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package engine

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/moriarty-project/moriarty/common"
)

// ValueSet maps variable names to type-erased values. Each entry keeps its
// origin type, so a retrieval with the wrong type is reported as a caller
// error instead of silently mis-casting.
type ValueSet struct {
	values map[string]storedValue
}

type storedValue struct {
	value any
	size  int64
}

// NewValueSet returns an empty ValueSet.
func NewValueSet() *ValueSet {
	return &ValueSet{values: map[string]storedValue{}}
}

// Set stores value under name, replacing any previous value.
func (s *ValueSet) Set(name string, value any) {
	if s.values == nil {
		s.values = map[string]storedValue{}
	}
	s.values[name] = storedValue{value: value, size: approximateSize(value)}
}

// Contains reports whether a value is stored under name.
func (s *ValueSet) Contains(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Get returns the value stored under name without a type check.
func (s *ValueSet) Get(name string) (any, error) {
	stored, ok := s.values[name]
	if !ok {
		return nil, common.ValueNotFoundError(name)
	}
	return stored.value, nil
}

// Erase removes the value stored under name. Erasing an absent name is a
// no-op.
func (s *ValueSet) Erase(name string) {
	delete(s.values, name)
}

// Names returns the stored names in sorted order.
func (s *ValueSet) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored values.
func (s *ValueSet) Len() int {
	return len(s.values)
}

// ApproximateSize returns the summed size estimate of all stored values:
// integers count 1, strings their length, sequences the sum of their
// entries. The exact weights are heuristics and may change.
func (s *ValueSet) ApproximateSize() int64 {
	total := int64(0)
	for _, stored := range s.values {
		total += stored.size
	}
	return total
}

// Clone returns an independent copy of the set. Values are shared; they are
// never mutated in place.
func (s *ValueSet) Clone() *ValueSet {
	clone := NewValueSet()
	for name, stored := range s.values {
		clone.values[name] = stored
	}
	return clone
}

// Equal reports whether both sets hold the same names bound to deeply equal
// values.
func (s *ValueSet) Equal(other *ValueSet) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for name, stored := range s.values {
		otherStored, ok := other.values[name]
		if !ok || !reflect.DeepEqual(stored.value, otherStored.value) {
			return false
		}
	}
	return true
}

// GetFromValueSet returns the value stored under name, checked against the
// requested type.
func GetFromValueSet[V any](s *ValueSet, name string) (V, error) {
	var zero V
	raw, err := s.Get(name)
	if err != nil {
		return zero, err
	}
	value, ok := raw.(V)
	if !ok {
		return zero, fmt.Errorf("%w: value %q has type %T, requested %T",
			common.ErrInvalidArgument, name, raw, zero)
	}
	return value, nil
}

// approximateSize estimates the generation size of a value: 1 for scalars,
// the length for strings, and the recursive sum for sequences and tuples.
func approximateSize(value any) int64 {
	switch v := value.(type) {
	case string:
		return int64(len(v))
	case int64, int, int32, bool:
		return 1
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		total := int64(0)
		for i := 0; i < rv.Len(); i++ {
			total += approximateSize(rv.Index(i).Interface())
		}
		return total
	case reflect.Struct:
		total := int64(0)
		for i := 0; i < rv.NumField(); i++ {
			if rv.Field(i).CanInterface() {
				total += approximateSize(rv.Field(i).Interface())
			}
		}
		return total
	}
	return 1
}
