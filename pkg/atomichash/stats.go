package atomichash

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// statCounters are table-wide counters (not per bucket table): TTL reclaims
// found in passing, hold-spin escapes, adds that found no memory or no free
// seat, and deletes and gets that found no match.
type statCounters struct {
	expires  atomic.Uint64
	escapes  atomic.Uint64
	addNoMem atomic.Uint64
	addNoSeat atomic.Uint64
	delNoHit atomic.Uint64
	getNoHit atomic.Uint64
}

// BucketStats is a point-in-time snapshot of one table's occupancy and
// per-operation counters.
type BucketStats struct {
	Buckets          uint64
	Occupied         uint64
	Added, Duplicate uint64
	Got, Deleted     uint64
}

func snapshotBucket(bt *bucketTable) BucketStats {
	return BucketStats{
		Buckets:   bt.nb,
		Occupied:  bt.ncur.Load(),
		Added:     bt.nadd.Load(),
		Duplicate: bt.ndup.Load(),
		Got:       bt.nget.Load(),
		Deleted:   bt.ndel.Load(),
	}
}

// Stats is a point-in-time snapshot of a Table's occupancy and counters.
type Stats struct {
	MaxEntries uint64
	Table1     BucketStats
	Table2     BucketStats
	Overflow   BucketStats

	ExpiredReclaims uint64
	HoldEscapes     uint64
	AddOutOfMemory  uint64
	AddNoSeat       uint64
	DeleteMisses    uint64
	GetMisses       uint64

	PoolBlocksInUse uint64
	PoolMaxBlocks   uint64
}

// Stats takes a snapshot of the table's current counters. It is itself
// lock-free: each field is read independently, so a Stats value is not a
// linearizable point-in-time view under concurrent mutation, only a
// best-effort approximation, same as the table this design is modeled on.
func (t *Table) Stats() Stats {
	return Stats{
		MaxEntries:      t.maxNodes,
		Table1:          snapshotBucket(t.t1),
		Table2:          snapshotBucket(t.t2),
		Overflow:        snapshotBucket(t.ov),
		ExpiredReclaims: t.stats.expires.Load(),
		HoldEscapes:     t.stats.escapes.Load(),
		AddOutOfMemory:  t.stats.addNoMem.Load(),
		AddNoSeat:       t.stats.addNoSeat.Load(),
		DeleteMisses:    t.stats.delNoHit.Load(),
		GetMisses:       t.stats.getNoHit.Load(),
		PoolBlocksInUse: t.pool.blocksInUse(),
		PoolMaxBlocks:   maxBlocks,
	}
}

// Report renders the snapshot as a human-readable multi-line report,
// optionally including a throughput line computed from elapsed. Pass zero
// for elapsed to omit the throughput line.
func (s Stats) Report(elapsed time.Duration) string {
	var b strings.Builder
	total := s.Table1.Occupied + s.Table2.Occupied + s.Overflow.Occupied
	fmt.Fprintf(&b, "atomichash stats: capacity=%d occupied=%d\n", s.MaxEntries, total)
	fmt.Fprintf(&b, "  table1:   buckets=%-10d occupied=%-8d add=%-8d dup=%-8d get=%-8d del=%d\n",
		s.Table1.Buckets, s.Table1.Occupied, s.Table1.Added, s.Table1.Duplicate, s.Table1.Got, s.Table1.Deleted)
	fmt.Fprintf(&b, "  table2:   buckets=%-10d occupied=%-8d add=%-8d dup=%-8d get=%-8d del=%d\n",
		s.Table2.Buckets, s.Table2.Occupied, s.Table2.Added, s.Table2.Duplicate, s.Table2.Got, s.Table2.Deleted)
	fmt.Fprintf(&b, "  overflow: buckets=%-10d occupied=%-8d add=%-8d dup=%-8d get=%-8d del=%d\n",
		s.Overflow.Buckets, s.Overflow.Occupied, s.Overflow.Added, s.Overflow.Duplicate, s.Overflow.Got, s.Overflow.Deleted)
	fmt.Fprintf(&b, "  expired_reclaims=%d hold_escapes=%d add_no_seat=%d add_out_of_memory=%d get_misses=%d delete_misses=%d\n",
		s.ExpiredReclaims, s.HoldEscapes, s.AddNoSeat, s.AddOutOfMemory, s.GetMisses, s.DeleteMisses)
	fmt.Fprintf(&b, "  pool: blocks_in_use=%d/%d\n", s.PoolBlocksInUse, s.PoolMaxBlocks)
	if elapsed > 0 {
		ops := s.Table1.Added + s.Table1.Duplicate + s.Table1.Got + s.Table1.Deleted +
			s.Table2.Added + s.Table2.Duplicate + s.Table2.Got + s.Table2.Deleted +
			s.Overflow.Added + s.Overflow.Duplicate + s.Overflow.Got + s.Overflow.Deleted
		fmt.Fprintf(&b, "  elapsed=%s ops=%d ops/sec=%.0f\n", elapsed, ops, float64(ops)/elapsed.Seconds())
	}
	return b.String()
}

func (s Stats) String() string { return s.Report(0) }
