package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"tagnav/internal/tags"
)

func TestGetOrCompute(t *testing.T) {
	svc := NewService()

	calls := 0
	compute := func() (Grouped, error) {
		calls++
		return Grouped{"sym": []tags.Record{{Symbol: "sym"}}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := svc.GetOrCompute("/proj", "key", compute)
		if err != nil {
			t.Fatal(err)
		}
		if len(got["sym"]) != 1 {
			t.Fatalf("result = %v, want one record", got)
		}
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestGetOrComputeError(t *testing.T) {
	svc := NewService()

	wantErr := errors.New("boom")
	_, err := svc.GetOrCompute("/proj", "key", func() (Grouped, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}

	// Failed computes must not be cached.
	if svc.Len("/proj") != 0 {
		t.Error("failed compute was cached")
	}
}

func TestInvalidate(t *testing.T) {
	svc := NewService()

	calls := 0
	compute := func() (Grouped, error) {
		calls++
		return Grouped{}, nil
	}

	svc.GetOrCompute("/proj", "a", compute)
	svc.GetOrCompute("/proj", "b", compute)
	svc.GetOrCompute("/other", "a", compute)

	svc.Invalidate("/proj")

	if svc.Len("/proj") != 0 {
		t.Error("invalidated root still has entries")
	}
	if svc.Len("/other") != 1 {
		t.Error("invalidation leaked into another root")
	}

	// Queries after invalidation recompute, never seeing stale values.
	svc.GetOrCompute("/proj", "a", compute)
	if calls != 4 {
		t.Errorf("compute called %d times, want 4", calls)
	}
}

func TestServiceConcurrent(t *testing.T) {
	svc := NewService()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%4)
			svc.GetOrCompute("/proj", key, func() (Grouped, error) {
				return Grouped{"s": []tags.Record{{Symbol: "s"}}}, nil
			})
			if i%8 == 0 {
				svc.Invalidate("/proj")
			}
		}()
	}
	wg.Wait()
}
