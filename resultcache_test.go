package main

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestResultCacheReturnsCachedVerdictWithoutRerunning(t *testing.T) {
	cache := NewResultCache(true)
	var calls int32

	run := func(ctx context.Context) (Verdict, error) {
		atomic.AddInt32(&calls, 1)
		return Interesting, nil
	}

	v1, err := cache.Evaluate(context.Background(), "fp-a", run)
	if err != nil || v1 != Interesting {
		t.Fatalf("first Evaluate: verdict=%v err=%v", v1, err)
	}

	v2, err := cache.Evaluate(context.Background(), "fp-a", run)
	if err != nil || v2 != Interesting {
		t.Fatalf("second Evaluate: verdict=%v err=%v", v2, err)
	}

	if calls != 1 {
		t.Fatalf("run() called %d times, want 1 (second call should hit the cache)", calls)
	}
}

func TestResultCacheSingleFlightDeduplicatesConcurrentSubmissions(t *testing.T) {
	cache := NewResultCache(true)
	var calls int32
	release := make(chan struct{})

	run := func(ctx context.Context) (Verdict, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return Interesting, nil
	}

	var wg sync.WaitGroup
	const n = 8
	results := make([]Verdict, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := cache.Evaluate(context.Background(), "same-fingerprint", run)
			if err != nil {
				t.Errorf("Evaluate: %v", err)
			}
			results[i] = v
		}(i)
	}

	close(release)
	wg.Wait()

	if calls != 1 {
		t.Fatalf("run() called %d times for identical concurrent fingerprints, want 1", calls)
	}
	for i, v := range results {
		if v != Interesting {
			t.Fatalf("result[%d] = %v, want Interesting", i, v)
		}
	}
}

func TestResultCacheDisabledDoesNotPersist(t *testing.T) {
	cache := NewResultCache(false)
	var calls int32

	run := func(ctx context.Context) (Verdict, error) {
		atomic.AddInt32(&calls, 1)
		return NotInteresting, nil
	}

	if _, err := cache.Evaluate(context.Background(), "fp-b", run); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if _, err := cache.Evaluate(context.Background(), "fp-b", run); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if calls != 2 {
		t.Fatalf("run() called %d times with cache disabled, want 2 (no persistence across calls)", calls)
	}
	if cache.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 when disabled", cache.Len())
	}
}
