package atomichash_test

import (
	"testing"
	"time"

	"github.com/concurrenthash/atomichash/pkg/atomichash"
)

func Test_Get_ReturnsNotFound_When_TTLExpired(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 64)

	clock := int64(1_000_000)
	restore := tbl.SetClockForTest(func() int64 { return clock })
	defer restore()

	if _, err := tbl.Add([]byte("ttl-key"), "value", 10*time.Millisecond, nil, nil); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if res, err := tbl.Get([]byte("ttl-key"), nil, nil); err != nil || res != atomichash.ResultFound {
		t.Fatalf("Get() before expiry = (%v, %v), want (ResultFound, nil)", res, err)
	}

	clock += 11

	res, err := tbl.Get([]byte("ttl-key"), nil, nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if res != atomichash.ResultNotFound {
		t.Fatalf("Get() after expiry = %v, want ResultNotFound", res)
	}

	stats := tbl.Stats()
	if stats.ExpiredReclaims == 0 {
		t.Fatal("expected ExpiredReclaims to be incremented by the lazy reclaim")
	}
}

func Test_PermanentEntry_NeverExpires_When_NoTTLGiven(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 64)

	clock := int64(1_000_000)
	restore := tbl.SetClockForTest(func() int64 { return clock })
	defer restore()

	if _, err := tbl.Add([]byte("forever"), "value", 0, nil, nil); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	clock += int64(365 * 24 * time.Hour / time.Millisecond)

	if res, err := tbl.Get([]byte("forever"), nil, nil); err != nil || res != atomichash.ResultFound {
		t.Fatalf("Get() on permanent entry a year later = (%v, %v), want (ResultFound, nil)", res, err)
	}
}

func Test_PermanentEntry_StaysPermanent_When_HookRequestsTTL(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 64)

	clock := int64(1_000_000)
	restore := tbl.SetClockForTest(func() int64 { return clock })
	defer restore()

	if _, err := tbl.Add([]byte("stubborn"), "value", 0, nil, nil); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	setTTL := func(value any, out *any) atomichash.Instruction {
		*out = value
		return atomichash.InstrSetTTL(5)
	}
	if _, err := tbl.Get([]byte("stubborn"), setTTL, nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	clock += 1000

	if res, err := tbl.Get([]byte("stubborn"), nil, nil); err != nil || res != atomichash.ResultFound {
		t.Fatalf("Get() after requested TTL on permanent entry = (%v, %v), want (ResultFound, nil)", res, err)
	}
}

func Test_Add_DefaultDupHook_ResetsTTL_When_DuplicateKeyAdded(t *testing.T) {
	t.Parallel()
	tbl, err := atomichash.New(atomichash.Options{MaxEntries: 64, ResetTTL: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = tbl.Close() })

	clock := int64(1_000_000)
	restore := tbl.SetClockForTest(func() int64 { return clock })
	defer restore()

	if _, err := tbl.Add([]byte("renew"), "v1", 10*time.Millisecond, nil, nil); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	clock += 9 // still alive, but close to expiry

	if res, err := tbl.Add([]byte("renew"), "v2", 10*time.Millisecond, nil, nil); err != nil || res != atomichash.ResultDuplicate {
		t.Fatalf("Add() duplicate = (%v, %v), want (ResultDuplicate, nil)", res, err)
	}

	clock += 40 // would have expired under the original TTL, not the reset one

	if res, err := tbl.Get([]byte("renew"), nil, nil); err != nil || res != atomichash.ResultFound {
		t.Fatalf("Get() after dup-triggered TTL reset = (%v, %v), want (ResultFound, nil)", res, err)
	}
}
