// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package engine

import (
	"fmt"

	"github.com/moriarty-project/moriarty/common"
)

// Retry limits. Once any of them is exceeded, a failed generation is not
// retried again.
const (
	MaxActiveRetries      = 1000
	MaxTotalRetries       = 100_000
	MaxTotalGenerateCalls = 10_000_000
)

// RetryPolicy is the recommendation after a failed generation attempt.
type RetryPolicy int

const (
	// Retry recommends another generation attempt.
	Retry RetryPolicy = iota
	// Abort recommends giving up; a retry limit has been exceeded.
	Abort
)

// RetryRecommendation is returned by AddGenerationFailure. Before retrying,
// the caller must erase the values of all listed variables from the
// universe; they were generated by the failed attempt and may no longer be
// consistent.
type RetryRecommendation struct {
	Policy                RetryPolicy
	VariableNamesToDelete []string
}

// GenerationConfig tracks the variables currently being generated.
// Generation proceeds in a stack order: dependent variables and subvariables
// are fully generated before their parent finishes. Every variable must be
// started with MarkStartGeneration and finished with exactly one of
// MarkSuccessfulGeneration or MarkAbandonedGeneration. AddGenerationFailure
// records a failed attempt but leaves the variable in flight, even when it
// recommends Abort.
type GenerationConfig struct {
	totalGenerateCalls int64

	// The in-flight chain, innermost last.
	active []activeGeneration

	// Successfully generated variables in the order they finished.
	// Truncated back to a variable's entry point when that variable fails,
	// yielding the deletion list of the retry recommendation.
	generated []string

	info map[string]*generationInfo

	softLimit    int64
	hasSoftLimit bool
}

type activeGeneration struct {
	name        string
	activeRetry int
}

type generationInfo struct {
	// Most recent outcome; nil means success. attempted stays false while
	// the variable was started but never finished an attempt.
	lastStatus   error
	attempted    bool
	totalRetries int
	active       bool
	// Length of the generated list when this variable started; everything
	// appended beyond it belongs to the current attempt.
	generatedSizeBefore int
}

// NewGenerationConfig returns an empty config.
func NewGenerationConfig() *GenerationConfig {
	return &GenerationConfig{info: map[string]*generationInfo{}}
}

// MarkStartGeneration records that name has started generation. Starting a
// variable that is already active is a cyclic dependency.
func (c *GenerationConfig) MarkStartGeneration(name string) error {
	entry, ok := c.info[name]
	if !ok {
		entry = &generationInfo{}
		c.info[name] = entry
	}
	if entry.active {
		return fmt.Errorf("%w: cyclic dependency while generating %q",
			common.ErrFailedPrecondition, name)
	}
	entry.active = true
	entry.generatedSizeBefore = len(c.generated)

	c.active = append(c.active, activeGeneration{name: name})
	return nil
}

func (c *GenerationConfig) checkTop(name string) error {
	if len(c.active) == 0 || c.active[len(c.active)-1].name != name {
		top := "(empty)"
		if len(c.active) > 0 {
			top = c.active[len(c.active)-1].name
		}
		return fmt.Errorf(
			"%w: finalizing generation for the wrong variable, expected %q but got %q",
			common.ErrInvalidArgument, top, name)
	}
	return nil
}

// MarkSuccessfulGeneration records that the innermost in-flight variable,
// which must be name, produced a value.
func (c *GenerationConfig) MarkSuccessfulGeneration(name string) error {
	if err := c.checkTop(name); err != nil {
		return err
	}
	c.active = c.active[:len(c.active)-1]
	c.generated = append(c.generated, name)

	entry := c.info[name]
	entry.lastStatus = nil
	entry.attempted = true
	entry.active = false

	c.totalGenerateCalls++
	return nil
}

// MarkAbandonedGeneration records that the innermost in-flight variable,
// which must be name, stopped attempting to generate.
func (c *GenerationConfig) MarkAbandonedGeneration(name string) error {
	if err := c.checkTop(name); err != nil {
		return err
	}
	c.active = c.active[:len(c.active)-1]

	entry := c.info[name]
	entry.active = false
	return nil
}

// AddGenerationFailure records a failed attempt for the innermost in-flight
// variable, which must be name, and recommends whether to retry. The
// returned deletion list holds every variable generated since name started
// its current run; the generated history is truncated accordingly.
func (c *GenerationConfig) AddGenerationFailure(name string, failure error) (RetryRecommendation, error) {
	if err := c.checkTop(name); err != nil {
		return RetryRecommendation{}, err
	}
	if failure == nil {
		return RetryRecommendation{}, fmt.Errorf(
			"%w: passed a nil failure to AddGenerationFailure",
			common.ErrInvalidArgument)
	}

	entry := c.info[name]
	entry.lastStatus = failure
	entry.attempted = true

	top := &c.active[len(c.active)-1]
	top.activeRetry++
	entry.totalRetries++
	c.totalGenerateCalls++

	toDelete := append([]string(nil), c.generated[entry.generatedSizeBefore:]...)
	c.generated = c.generated[:entry.generatedSizeBefore]

	recommendation := RetryRecommendation{VariableNamesToDelete: toDelete}
	if top.activeRetry > MaxActiveRetries ||
		entry.totalRetries > MaxTotalRetries ||
		c.totalGenerateCalls > MaxTotalGenerateCalls {
		recommendation.Policy = Abort
		return recommendation, nil
	}
	recommendation.Policy = Retry
	return recommendation, nil
}

// GenerationStatus returns the most recent generation outcome for name: nil
// after a success, the failure after a failed attempt. Asking about a
// variable that was never started is an invalid argument; asking about one
// that started but never finished an attempt is a failed precondition.
func (c *GenerationConfig) GenerationStatus(name string) error {
	entry, ok := c.info[name]
	if !ok {
		return fmt.Errorf("%w: no generation status available for %q",
			common.ErrInvalidArgument, name)
	}
	if !entry.attempted {
		return fmt.Errorf("%w: no generation status available for %q",
			common.ErrFailedPrecondition, name)
	}
	return entry.lastStatus
}

// SetSoftGenerationLimit sets the approximate upper bound on the total size
// of all generated values. Variables treat it as a suggestion when choosing
// lengths; no type is required to adhere to it.
func (c *GenerationConfig) SetSoftGenerationLimit(limit int64) {
	c.softLimit = limit
	c.hasSoftLimit = true
}

// SoftGenerationLimit returns the soft generation limit, if one is set.
func (c *GenerationConfig) SoftGenerationLimit() (int64, bool) {
	return c.softLimit, c.hasSoftLimit
}

// TotalGenerateCalls returns the number of finished generation attempts,
// successful or not.
func (c *GenerationConfig) TotalGenerateCalls() int64 {
	return c.totalGenerateCalls
}
