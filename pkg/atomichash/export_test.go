package atomichash

// Internal accessors for white-box tests, mirroring the debug/introspection
// surface the original C implementation exposed for its own test harness.

// SetClockForTest overrides this specific table's clock, leaving every
// other Table (including ones under test concurrently in the same
// process) on its own clock.
func (t *Table) SetClockForTest(fn func() int64) (restore func()) {
	prev := t.now
	t.now = fn
	return func() { t.now = prev }
}

func (t *Table) PoolBlockSizeForTest() uint32 { return t.pool.blkNodeNum }

func (t *Table) Table1BucketsForTest() uint64 { return t.t1.nb }

func (t *Table) Table2BucketsForTest() uint64 { return t.t2.nb }

func (t *Table) FreeListLenForTest() int {
	n := 0
	idx, _ := unpackFree(t.free.head.Load())
	for idx != nullIndex {
		n++
		e := t.pool.indexToEntry(idx)
		if e == nil {
			break
		}
		idx = e.next.Load()
	}
	return n
}

func (t *Table) FingerprintForTest(key []byte) Fingerprint { return t.fp.Fingerprint(key) }
