// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package engine

import "fmt"

// Enforcement controls what happens when a property's category is unknown
// to the receiving variable.
type Enforcement int

const (
	// FailIfUnknown surfaces an invalid-argument error for unknown
	// categories.
	FailIfUnknown Enforcement = iota
	// IgnoreIfUnknown silently drops properties of unknown categories.
	IgnoreIfUnknown
)

// Property is a weakly-typed tagged constraint, interpreted by the
// receiving variable's registered handler for the category.
//
// Example: {Category: "size", Descriptor: "small"}.
type Property struct {
	Category    string
	Descriptor  string
	Enforcement Enforcement
}

func (p Property) String() string {
	enforcement := "fail_if_unknown"
	if p.Enforcement == IgnoreIfUnknown {
		enforcement = "ignore_if_unknown"
	}
	return fmt.Sprintf("{%s, %s, %s}", p.Category, p.Descriptor, enforcement)
}
