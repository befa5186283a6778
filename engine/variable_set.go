// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package engine

import (
	"fmt"
	"sort"

	"github.com/moriarty-project/moriarty/common"
)

// VariableSet owns a collection of named variables. The Universe only ever
// borrows from it.
type VariableSet struct {
	variables map[string]Variable
}

// NewVariableSet returns an empty VariableSet.
func NewVariableSet() *VariableSet {
	return &VariableSet{variables: map[string]Variable{}}
}

// Add registers variable under name. Duplicate names are rejected.
func (s *VariableSet) Add(name string, variable Variable) error {
	if s.variables == nil {
		s.variables = map[string]Variable{}
	}
	if _, exists := s.variables[name]; exists {
		return fmt.Errorf("%w: variable %q already exists",
			common.ErrInvalidArgument, name)
	}
	s.variables[name] = variable
	return nil
}

// Merge intersects variable into the variable already registered under
// name, or registers it if absent.
func (s *VariableSet) Merge(name string, variable Variable) error {
	existing, ok := s.variables[name]
	if !ok {
		return s.Add(name, variable)
	}
	return existing.MergeFrom(variable)
}

// Get returns the variable registered under name.
func (s *VariableSet) Get(name string) (Variable, error) {
	variable, ok := s.variables[name]
	if !ok {
		return nil, common.VariableNotFoundError(name)
	}
	return variable, nil
}

// Contains reports whether a variable is registered under name.
func (s *VariableSet) Contains(name string) bool {
	_, ok := s.variables[name]
	return ok
}

// Names returns the registered names in sorted order.
func (s *VariableSet) Names() []string {
	names := make([]string, 0, len(s.variables))
	for name := range s.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered variables.
func (s *VariableSet) Len() int {
	return len(s.variables)
}

// Clone returns a deep copy of the set.
func (s *VariableSet) Clone() *VariableSet {
	clone := NewVariableSet()
	for name, variable := range s.variables {
		clone.variables[name] = variable.Clone()
	}
	return clone
}
