package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/summarize/internal/runtime"
	"github.com/aretw0/summarize/pkg/domain"
)

func TestManager_RefLifecycle(t *testing.T) {
	mgr := NewManager()
	ctx := context.Background()
	count := 1000
	cfg := domain.TrialConfig{Questions: []domain.QuestionSpec{{Prompt: "Summarize"}}}

	// 1. Create, use and delete many trials
	for i := 0; i < count; i++ {
		tid := fmt.Sprintf("trial-%d", i)
		c, err := runtime.NewRenderer().Render(ctx, tid, cfg)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if err := mgr.Add(c); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		_ = mgr.WithTrial(ctx, tid, func(context.Context, *runtime.Controller) error { return nil })
		if refs := mgr.trials[tid].refs; refs != 0 {
			t.Fatalf("trial %s: %d refs after WithTrial returned", tid, refs)
		}
		mgr.Delete(tid)
	}

	// 2. Assert nothing leaked
	if n := len(mgr.trials); n != 0 {
		t.Errorf("Memory Leak Detected: %d trials remaining in memory after Delete", n)
	}
}
