// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package engine

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/moriarty-project/moriarty/common"
)

func TestGenerationConfig_StartingTwiceIsACycle(t *testing.T) {
	config := NewGenerationConfig()
	if err := config.MarkStartGeneration("N"); err != nil {
		t.Fatalf("failed to start generation: %v", err)
	}
	if err := config.MarkStartGeneration("N"); !errors.Is(err, common.ErrFailedPrecondition) {
		t.Errorf("re-starting an active variable should be a cycle, got %v", err)
	}
}

func TestGenerationConfig_RestartAfterSuccessIsAllowed(t *testing.T) {
	config := NewGenerationConfig()
	for i := 0; i < 2; i++ {
		if err := config.MarkStartGeneration("N"); err != nil {
			t.Fatalf("failed to start generation: %v", err)
		}
		if err := config.MarkSuccessfulGeneration("N"); err != nil {
			t.Fatalf("failed to finish generation: %v", err)
		}
	}
}

func TestGenerationConfig_OnlyTheInnermostVariableMayFinish(t *testing.T) {
	config := NewGenerationConfig()
	if err := config.MarkStartGeneration("A"); err != nil {
		t.Fatalf("failed to start generation: %v", err)
	}
	if err := config.MarkStartGeneration("B"); err != nil {
		t.Fatalf("failed to start generation: %v", err)
	}

	if err := config.MarkSuccessfulGeneration("A"); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("finishing A while B is innermost should fail, got %v", err)
	}
	if err := config.MarkAbandonedGeneration("A"); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("abandoning A while B is innermost should fail, got %v", err)
	}
	if _, err := config.AddGenerationFailure("A", errors.New("boom")); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("failing A while B is innermost should fail, got %v", err)
	}

	if err := config.MarkSuccessfulGeneration("B"); err != nil {
		t.Fatalf("failed to finish B: %v", err)
	}
	if err := config.MarkSuccessfulGeneration("A"); err != nil {
		t.Fatalf("failed to finish A: %v", err)
	}
}

func TestGenerationConfig_FailureReturnsTheGeneratedSuffix(t *testing.T) {
	config := NewGenerationConfig()

	// A starts, then its descendants B and C finish, then A fails: B and C
	// must be listed for deletion and the history truncated.
	if err := config.MarkStartGeneration("A"); err != nil {
		t.Fatalf("failed to start A: %v", err)
	}
	for _, name := range []string{"B", "C"} {
		if err := config.MarkStartGeneration(name); err != nil {
			t.Fatalf("failed to start %s: %v", name, err)
		}
		if err := config.MarkSuccessfulGeneration(name); err != nil {
			t.Fatalf("failed to finish %s: %v", name, err)
		}
	}

	recommendation, err := config.AddGenerationFailure("A", errors.New("boom"))
	if err != nil {
		t.Fatalf("failed to record the failure: %v", err)
	}
	if recommendation.Policy != Retry {
		t.Errorf("first failure should recommend a retry")
	}
	if want := []string{"B", "C"}; !reflect.DeepEqual(recommendation.VariableNamesToDelete, want) {
		t.Errorf("wanted deletion list %v, got %v", want, recommendation.VariableNamesToDelete)
	}

	// The history was truncated: a second immediate failure deletes nothing.
	recommendation, err = config.AddGenerationFailure("A", errors.New("boom"))
	if err != nil {
		t.Fatalf("failed to record the failure: %v", err)
	}
	if len(recommendation.VariableNamesToDelete) != 0 {
		t.Errorf("second failure should have an empty deletion list, got %v",
			recommendation.VariableNamesToDelete)
	}
}

func TestGenerationConfig_FailureRequiresAnError(t *testing.T) {
	config := NewGenerationConfig()
	if err := config.MarkStartGeneration("A"); err != nil {
		t.Fatalf("failed to start A: %v", err)
	}
	if _, err := config.AddGenerationFailure("A", nil); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("a nil failure should be rejected, got %v", err)
	}
}

func TestGenerationConfig_AbortsAfterActiveRetryLimit(t *testing.T) {
	config := NewGenerationConfig()
	if err := config.MarkStartGeneration("A"); err != nil {
		t.Fatalf("failed to start A: %v", err)
	}

	for i := 0; i < MaxActiveRetries; i++ {
		recommendation, err := config.AddGenerationFailure("A", errors.New("boom"))
		if err != nil {
			t.Fatalf("failed to record failure %d: %v", i, err)
		}
		if recommendation.Policy != Retry {
			t.Fatalf("failure %d should still recommend a retry", i)
		}
	}

	recommendation, err := config.AddGenerationFailure("A", errors.New("boom"))
	if err != nil {
		t.Fatalf("failed to record the final failure: %v", err)
	}
	if recommendation.Policy != Abort {
		t.Errorf("failure %d should recommend aborting", MaxActiveRetries+1)
	}
}

func TestGenerationConfig_ActiveRetriesResetPerGenerationRun(t *testing.T) {
	config := NewGenerationConfig()

	for run := 0; run < 3; run++ {
		if err := config.MarkStartGeneration("A"); err != nil {
			t.Fatalf("failed to start run %d: %v", run, err)
		}
		recommendation, err := config.AddGenerationFailure("A", errors.New("boom"))
		if err != nil {
			t.Fatalf("failed to record the failure: %v", err)
		}
		if recommendation.Policy != Retry {
			t.Errorf("run %d should still recommend a retry", run)
		}
		if err := config.MarkAbandonedGeneration("A"); err != nil {
			t.Fatalf("failed to abandon run %d: %v", run, err)
		}
	}
}

func TestGenerationConfig_GenerationStatus(t *testing.T) {
	config := NewGenerationConfig()

	if err := config.GenerationStatus("A"); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("unknown variable should yield an invalid argument, got %v", err)
	}

	if err := config.MarkStartGeneration("A"); err != nil {
		t.Fatalf("failed to start A: %v", err)
	}
	if err := config.GenerationStatus("A"); !errors.Is(err, common.ErrFailedPrecondition) {
		t.Errorf("started-but-unfinished variable should yield a failed precondition, got %v", err)
	}

	boom := fmt.Errorf("boom")
	if _, err := config.AddGenerationFailure("A", boom); err != nil {
		t.Fatalf("failed to record the failure: %v", err)
	}
	if err := config.GenerationStatus("A"); !errors.Is(err, boom) {
		t.Errorf("status should be the recorded failure, got %v", err)
	}

	if err := config.MarkSuccessfulGeneration("A"); err != nil {
		t.Fatalf("failed to finish A: %v", err)
	}
	if err := config.GenerationStatus("A"); err != nil {
		t.Errorf("status after a success should be nil, got %v", err)
	}
}

func TestGenerationConfig_SoftGenerationLimit(t *testing.T) {
	config := NewGenerationConfig()
	if _, ok := config.SoftGenerationLimit(); ok {
		t.Errorf("no limit should be set by default")
	}
	config.SetSoftGenerationLimit(1 << 20)
	limit, ok := config.SoftGenerationLimit()
	if !ok || limit != 1<<20 {
		t.Errorf("wanted limit %d, got %d (%v)", 1<<20, limit, ok)
	}
}
