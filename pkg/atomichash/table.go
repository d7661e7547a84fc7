package atomichash

import (
	"sync/atomic"
	"time"
)

// Table is a fixed-capacity, lock-free concurrent hash table. The zero
// value is not usable; construct one with New.
type Table struct {
	t1, t2, ov *bucketTable
	pool       *pool
	free       *freeList
	fp         Fingerprinter

	hooks atomic.Pointer[hookSet]
	stats statCounters

	// now is the table's clock, a field (rather than a package-level var)
	// so each Table can be faked independently in tests without racing or
	// interfering with other Tables under test in the same process.
	now func() int64

	resetTTLms int64
	maxNodes   uint64
	log        *logWrapper

	closed atomic.Bool
}

// New constructs a Table sized for up to opts.MaxEntries live entries.
func New(opts Options) (*Table, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	fp := opts.Fingerprinter
	if fp == nil {
		fp = newMaphashFingerprinter()
	}

	nb1, nb2 := sizeTables(opts.MaxEntries)

	t := &Table{
		t1:         newBucketTable(nb1),
		t2:         newBucketTable(nb2),
		ov:         newBucketTable(minOverflow),
		fp:         fp,
		now:        func() int64 { return time.Now().UnixMilli() },
		resetTTLms: opts.ResetTTL.Milliseconds(),
		maxNodes:   opts.MaxEntries,
		log:        newLogWrapper(opts.Logger),
	}
	t.pool = newPool(opts.MaxEntries)
	t.free = newFreeList(t.pool)
	t.hooks.Store(&hookSet{
		onTTL: defaultOnTTL,
		onAdd: defaultOnAdd,
		onDup: defaultOnDup,
		onGet: defaultOnGet,
		onDel: defaultOnDel,
	})

	t.log.tableCreated(opts.MaxEntries, nb1, nb2)
	return t, nil
}

// Close marks the table closed; subsequent operations return ErrClosed.
// Close is idempotent and safe to call concurrently with in-flight
// operations, though results racing with a Close are unspecified beyond
// "either observed before or after."
func (t *Table) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	for i := range t.pool.blocks {
		t.pool.blocks[i].Store(nil)
	}
	return nil
}

// RegisterHooks installs new hooks, replacing any previously registered.
// A nil argument leaves that hook unchanged. Safe to call at any time, but
// typically called once, before the table is shared with other goroutines.
func (t *Table) RegisterHooks(onTTL, onAdd, onDup, onGet, onDel Hook) {
	for {
		cur := t.hooks.Load()
		next := *cur
		if onTTL != nil {
			next.onTTL = onTTL
		}
		if onAdd != nil {
			next.onAdd = onAdd
		}
		if onDup != nil {
			next.onDup = onDup
		}
		if onGet != nil {
			next.onGet = onGet
		}
		if onDel != nil {
			next.onDel = onDel
		}
		if t.hooks.CompareAndSwap(cur, &next) {
			return
		}
	}
}

func (t *Table) newNode() (nodeID, bool) {
	mi, ok := t.free.popOrGrow()
	if !ok {
		t.log.poolExhausted(t.maxNodes)
	}
	return mi, ok
}

// addFingerprint is the shared engine behind Add and AddFingerprint.
func (t *Table) addFingerprint(fp Fingerprint, value any, initialTTL time.Duration, cbDup Hook, out *any) (AddResult, error) {
	if t.closed.Load() {
		return 0, ErrClosed
	}

	d := split(fp)
	seats := buildSeats(d, t.t1, t.t2)
	now := t.now()
	hooks := t.hooks.Load()
	var reuse nodeID = nullIndex

	for i := range seats {
		s := &seats[i]
		mi := s.slot.Load()
		if mi == nullIndex {
			continue
		}
		e := t.pool.indexToEntry(mi)
		if e == nil {
			continue
		}
		if !t.validTTL(e, s.slot, mi, s.tbl, now, &reuse) {
			continue
		}
		if e.fpY.Load() != fp.Y {
			continue
		}
		if t.tryDup(fp, e, s.slot, mi, s.tbl, cbDup, hooks, now, out) {
			t.releaseReuse(reuse)
			return ResultDuplicate, nil
		}
	}

	remaining := int(t.ov.ncur.Load())
	for j := 0; j < minOverflow && remaining > 0; j++ {
		slot := &t.ov.slots[j]
		mi := slot.Load()
		if mi == nullIndex {
			continue
		}
		remaining--
		e := t.pool.indexToEntry(mi)
		if e == nil {
			continue
		}
		if !t.validTTL(e, slot, mi, t.ov, now, &reuse) {
			continue
		}
		if e.fpY.Load() != fp.Y {
			continue
		}
		if t.tryDup(fp, e, slot, mi, t.ov, cbDup, hooks, now, out) {
			t.releaseReuse(reuse)
			return ResultDuplicate, nil
		}
	}

	ni := reuse
	if ni == nullIndex {
		var ok bool
		ni, ok = t.newNode()
		if !ok {
			t.stats.addNoMem.Add(1)
			return ResultOutOfMemory, nil
		}
	}

	e := t.pool.indexToEntry(ni)
	var deadline int64
	if initialTTL > 0 {
		deadline = now + initialTTL.Milliseconds()
	}
	// x stays zero (held) until tryAdd's on_add hook has run; see the
	// x-restore-after-add note in DESIGN.md.
	e.fpX.Store(0)
	e.fpY.Store(fp.Y)
	e.expireMS.Store(deadline)
	v := value
	e.data.Store(&v)

	for i := range seats {
		s := &seats[i]
		if s.slot.Load() != nullIndex {
			continue
		}
		if t.tryAdd(fp, e, s.slot, ni, s.tbl, hooks, now, out) {
			return ResultAdded, nil
		}
	}
	// ncur is a hint, not a lock: a concurrent delete can drop it below
	// minOverflow after this check and still leave every slot occupied by
	// the time the loop below runs, costing a spurious ResultNoSeat. That's
	// within the no-seat/retry contract, so it's left as a hint rather than
	// re-scanned under a lock.
	if t.ov.ncur.Load() < minOverflow {
		for j := 0; j < minOverflow; j++ {
			slot := &t.ov.slots[j]
			if slot.Load() != nullIndex {
				continue
			}
			if t.tryAdd(fp, e, slot, ni, t.ov, hooks, now, out) {
				return ResultAdded, nil
			}
		}
	}

	e.fpX.Store(0)
	e.fpY.Store(0)
	e.expireMS.Store(0)
	e.data.Store(nil)
	t.free.pushOne(ni)
	t.stats.addNoSeat.Add(1)
	t.log.addNoSeat()
	return ResultNoSeat, nil
}

func (t *Table) releaseReuse(reuse nodeID) {
	if reuse != nullIndex {
		t.free.pushOne(reuse)
	}
}

func (t *Table) tryDup(target Fingerprint, e *node, slot *atomic.Uint32, mi nodeID, tbl *bucketTable, cb Hook, hooks *hookSet, now int64, out *any) bool {
	if !t.hold(e, target) {
		return false
	}
	if slot.Load() != mi {
		t.release(e, target)
		return false
	}

	hook := cb
	if hook == nil {
		hook = hooks.onDup
	}
	val := derefAny(e.data.Load())
	var ret any
	instr := hook(val, &ret)
	if out != nil {
		*out = ret
	}

	if instr == InstrRemove {
		if slot.CompareAndSwap(mi, nullIndex) {
			tbl.decrCur()
		}
		e.fpX.Store(0)
		e.fpY.Store(0)
		e.expireMS.Store(0)
		e.data.Store(nil)
		tbl.ndup.Add(1)
		t.free.pushOne(mi)
		return true
	}

	applyTTLInstruction(e, instr, t.resetTTLms, now)
	t.release(e, target)
	tbl.ndup.Add(1)
	return true
}

func (t *Table) tryAdd(target Fingerprint, e *node, slot *atomic.Uint32, mi nodeID, tbl *bucketTable, hooks *hookSet, now int64, out *any) bool {
	if !slot.CompareAndSwap(nullIndex, mi) {
		return false
	}
	tbl.ncur.Add(1)

	val := derefAny(e.data.Load())
	var ret any
	instr := hooks.onAdd(val, &ret)
	if out != nil {
		*out = ret
	}

	if instr == InstrRemove {
		if slot.CompareAndSwap(mi, nullIndex) {
			tbl.decrCur()
		}
		e.fpX.Store(0)
		e.fpY.Store(0)
		e.expireMS.Store(0)
		e.data.Store(nil)
		t.free.pushOne(mi)
		return true
	}

	applyTTLInstruction(e, instr, t.resetTTLms, now)
	e.fpX.Store(target.X)
	tbl.nadd.Add(1)
	return true
}

func (t *Table) getFingerprint(fp Fingerprint, cb Hook, out *any) (GetResult, error) {
	if t.closed.Load() {
		return 0, ErrClosed
	}

	d := split(fp)
	seats := buildSeats(d, t.t1, t.t2)
	now := t.now()
	hooks := t.hooks.Load()

	for i := range seats {
		s := &seats[i]
		mi := s.slot.Load()
		if mi == nullIndex {
			continue
		}
		e := t.pool.indexToEntry(mi)
		if e == nil {
			continue
		}
		if !t.validTTL(e, s.slot, mi, s.tbl, now, nil) {
			continue
		}
		if e.fpY.Load() != fp.Y {
			continue
		}
		if t.tryGet(fp, e, s.slot, mi, s.tbl, cb, hooks, now, out) {
			return ResultFound, nil
		}
	}

	remaining := int(t.ov.ncur.Load())
	for j := 0; j < minOverflow && remaining > 0; j++ {
		slot := &t.ov.slots[j]
		mi := slot.Load()
		if mi == nullIndex {
			continue
		}
		remaining--
		e := t.pool.indexToEntry(mi)
		if e == nil {
			continue
		}
		if !t.validTTL(e, slot, mi, t.ov, now, nil) {
			continue
		}
		if e.fpY.Load() != fp.Y {
			continue
		}
		if t.tryGet(fp, e, slot, mi, t.ov, cb, hooks, now, out) {
			return ResultFound, nil
		}
	}

	t.stats.getNoHit.Add(1)
	return ResultNotFound, nil
}

func (t *Table) tryGet(target Fingerprint, e *node, slot *atomic.Uint32, mi nodeID, tbl *bucketTable, cb Hook, hooks *hookSet, now int64, out *any) bool {
	if !t.hold(e, target) {
		return false
	}
	if slot.Load() != mi {
		t.release(e, target)
		return false
	}

	hook := cb
	if hook == nil {
		hook = hooks.onGet
	}
	val := derefAny(e.data.Load())
	var ret any
	instr := hook(val, &ret)
	if out != nil {
		*out = ret
	}

	if instr == InstrRemove {
		if slot.CompareAndSwap(mi, nullIndex) {
			tbl.decrCur()
		}
		e.fpX.Store(0)
		e.fpY.Store(0)
		e.expireMS.Store(0)
		e.data.Store(nil)
		tbl.nget.Add(1)
		t.free.pushOne(mi)
		return true
	}

	applyTTLInstruction(e, instr, t.resetTTLms, now)
	t.release(e, target)
	tbl.nget.Add(1)
	return true
}

func (t *Table) deleteFingerprint(fp Fingerprint, cb Hook, out *any) (DelResult, error) {
	if t.closed.Load() {
		return 0, ErrClosed
	}

	d := split(fp)
	seats := buildSeats(d, t.t1, t.t2)
	now := t.now()
	hooks := t.hooks.Load()
	matches := 0

	for i := range seats {
		s := &seats[i]
		mi := s.slot.Load()
		if mi == nullIndex {
			continue
		}
		e := t.pool.indexToEntry(mi)
		if e == nil {
			continue
		}
		if !t.validTTL(e, s.slot, mi, s.tbl, now, nil) {
			continue
		}
		if e.fpY.Load() != fp.Y {
			continue
		}
		if t.tryDel(fp, e, s.slot, mi, s.tbl, cb, hooks, out) {
			matches++
		}
	}

	if t.ov.ncur.Load() > 0 {
		for j := 0; j < minOverflow; j++ {
			slot := &t.ov.slots[j]
			mi := slot.Load()
			if mi == nullIndex {
				continue
			}
			e := t.pool.indexToEntry(mi)
			if e == nil {
				continue
			}
			if !t.validTTL(e, slot, mi, t.ov, now, nil) {
				continue
			}
			if e.fpY.Load() != fp.Y {
				continue
			}
			if t.tryDel(fp, e, slot, mi, t.ov, cb, hooks, out) {
				matches++
			}
		}
	}

	if matches > 0 {
		return ResultRemoved, nil
	}
	t.stats.delNoHit.Add(1)
	return ResultNotRemoved, nil
}

func (t *Table) tryDel(target Fingerprint, e *node, slot *atomic.Uint32, mi nodeID, tbl *bucketTable, cb Hook, hooks *hookSet, out *any) bool {
	if !t.hold(e, target) {
		return false
	}
	if slot.Load() != mi || !slot.CompareAndSwap(mi, nullIndex) {
		t.release(e, target)
		return false
	}

	tbl.decrCur()
	val := derefAny(e.data.Load())
	e.fpX.Store(0)
	e.fpY.Store(0)
	e.expireMS.Store(0)
	e.data.Store(nil)
	tbl.ndel.Add(1)
	t.free.pushOne(mi)

	hook := cb
	if hook == nil {
		hook = hooks.onDel
	}
	var ret any
	hook(val, &ret)
	if out != nil {
		*out = ret
	}
	return true
}
