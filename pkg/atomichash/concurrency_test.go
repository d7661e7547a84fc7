package atomichash_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/concurrenthash/atomichash/pkg/atomichash"
)

func Test_Table_ConcurrentAddGetDelete_NeverCorrupts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	t.Parallel()

	const (
		workers  = 32
		keyCount = 500
	)
	tbl := newTestTable(t, keyCount*2)

	keys := make([][]byte, keyCount)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("key-%d", i))
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(seed int) {
			defer wg.Done()
			for round := 0; round < 200; round++ {
				k := keys[(seed+round)%keyCount]
				switch round % 3 {
				case 0:
					if _, err := tbl.Add(k, seed, 0, nil, nil); err != nil {
						t.Errorf("Add() error = %v", err)
						return
					}
				case 1:
					var out any
					if _, err := tbl.Get(k, nil, &out); err != nil {
						t.Errorf("Get() error = %v", err)
						return
					}
				case 2:
					if _, err := tbl.Delete(k, nil, nil); err != nil {
						t.Errorf("Delete() error = %v", err)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()

	stats := tbl.Stats()
	if stats.HoldEscapes > 0 {
		t.Logf("observed %d hold escapes under contention (not a failure, just noisy)", stats.HoldEscapes)
	}
}

// Test_Table_ConcurrentAddOfSameKey_EventuallyUnique exercises the racy
// window documented in DESIGN.md's delete-all-matches Open Question: workers
// that pass the duplicate scan before any of them has installed can each
// land in a distinct seat and each get back ResultAdded, so more than one
// transient copy of the same key is allowed to exist at once. What the
// table guarantees is that every attempt resolves to one of the two
// outcomes, and that a single Delete afterwards removes every copy, so a
// following Get reports the key as not found.
func Test_Table_ConcurrentAddOfSameKey_EventuallyUnique(t *testing.T) {
	t.Parallel()

	const workers = 64
	tbl := newTestTable(t, 128)

	var added, duplicate int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			res, err := tbl.Add([]byte("contended"), id, 0, nil, nil)
			if err != nil {
				t.Errorf("Add() error = %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch res {
			case atomichash.ResultAdded:
				added++
			case atomichash.ResultDuplicate:
				duplicate++
			default:
				t.Errorf("Add() = %v, want ResultAdded or ResultDuplicate", res)
			}
		}(w)
	}
	wg.Wait()

	if added < 1 {
		t.Fatalf("added = %d, want at least 1", added)
	}
	if added+duplicate != workers {
		t.Fatalf("added + duplicate = %d, want %d", added+duplicate, workers)
	}

	if _, err := tbl.Delete([]byte("contended"), nil, nil); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if res, err := tbl.Get([]byte("contended"), nil, nil); err != nil || res != atomichash.ResultNotFound {
		t.Fatalf("Get() after Delete = (%v, %v), want (ResultNotFound, nil)", res, err)
	}
}
