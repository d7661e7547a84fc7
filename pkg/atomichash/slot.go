package atomichash

import "sync/atomic"

// maxSpin bounds how many times a hold attempt retries before giving up and
// counting an escape. At one spin iteration roughly every microsecond, this
// is on the order of a second of worst-case contention before a caller sees
// a spurious miss.
const maxSpin = 1 << 20

// hold attempts to take exclusive ownership of e on behalf of target,
// spinning while some other goroutine's hold is in progress. It returns
// false if the slot turns out to belong to a different identity (reused),
// to have been vacated outright, or if the spin budget is exhausted.
func (t *Table) hold(e *node, target Fingerprint) bool {
	spin := maxSpin
	for {
		if e.fpX.CompareAndSwap(target.X, 0) {
			break
		}
		x := e.fpX.Load()
		if x != target.X && x != 0 {
			return false // reused for a different key
		}
		if x == 0 && e.fpY.Load() == 0 {
			return false // vacated while we were trying
		}
		spin--
		if spin == 0 {
			t.stats.escapes.Add(1)
			t.log.holdEscape()
			return false
		}
		spinWait(spin)
	}
	y := e.fpY.Load()
	if y != target.Y || y == 0 {
		t.release(e, target)
		return false
	}
	return true
}

// release restores e's held fingerprint back to target.X, unless the entry
// was vacated out from under the holder in the meantime, in which case
// there is nothing left to restore.
func (t *Table) release(e *node, target Fingerprint) {
	for e.fpY.Load() != 0 {
		if e.fpX.CompareAndSwap(0, target.X) {
			return
		}
	}
}

// validTTL inspects a candidate slot's entry before any match attempt. It
// returns true if the slot might still hold a live entry worth comparing
// (including the case where some other goroutine currently holds it), and
// false once it is certain the slot has been reclaimed and the caller
// should move on to the next probe position without comparing.
//
// When reuse is non-nil and currently nullIndex, a node reclaimed here is
// handed back through *reuse instead of being pushed onto the free list,
// letting Add recycle the very entry it just evicted for expiry.
func (t *Table) validTTL(e *node, slot *atomic.Uint32, mi nodeID, tbl *bucketTable, nowMS int64, reuse *nodeID) bool {
	expire := e.expireMS.Load()
	if expire == 0 || expire > nowMS {
		return true
	}

	x, y := e.fpX.Load(), e.fpY.Load()
	if x == 0 || y == 0 {
		return true // contended or already vacated; let the caller sort it out
	}

	target := Fingerprint{X: x, Y: y}
	if !t.hold(e, target) {
		return true
	}

	if e.expireMS.Load() == 0 || e.expireMS.Load() > nowMS {
		t.release(e, target)
		return true
	}

	if !slot.CompareAndSwap(mi, nullIndex) {
		t.release(e, target)
		return false
	}

	tbl.decrCur()
	value := derefAny(e.data.Load())
	e.fpX.Store(0)
	e.fpY.Store(0)
	e.expireMS.Store(0)
	e.data.Store(nil)
	t.stats.expires.Add(1)

	if reuse != nil && *reuse == nullIndex {
		*reuse = mi
	} else {
		t.free.pushOne(mi)
	}

	hooks := t.hooks.Load()
	if hooks.onTTL != nil {
		var out any
		hooks.onTTL(value, &out)
	}
	return false
}
