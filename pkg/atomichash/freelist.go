package atomichash

import "sync/atomic"

// freeList is the tagged, ABA-safe free list of reclaimed entries. The head
// packs {index, tag} into a single 64-bit word so it can be updated with one
// CAS; the tag is bumped on every successful pop or push so a goroutine that
// stalls between reading the head and CASing it cannot succeed against a
// head that coincidentally cycled back to the same index.
type freeList struct {
	head atomic.Uint64
	pool *pool
}

func newFreeList(p *pool) *freeList {
	fl := &freeList{pool: p}
	fl.head.Store(packFree(nullIndex, 0))
	return fl
}

func packFree(index nodeID, tag uint32) uint64 {
	return uint64(index) | uint64(tag)<<32
}

func unpackFree(w uint64) (index nodeID, tag uint32) {
	return uint32(w), uint32(w >> 32)
}

// pop removes and returns the head of the free list, or reports failure once
// the list is empty.
func (fl *freeList) pop() (nodeID, bool) {
	for {
		old := fl.head.Load()
		idx, tag := unpackFree(old)
		if idx == nullIndex {
			return nullIndex, false
		}
		e := fl.pool.indexToEntry(idx)
		if e == nil {
			return nullIndex, false
		}
		next := e.next.Load()
		if fl.head.CompareAndSwap(old, packFree(next, tag+1)) {
			return idx, true
		}
	}
}

// pushOne returns a single entry to the free list.
func (fl *freeList) pushOne(i nodeID) {
	e := fl.pool.indexToEntry(i)
	for {
		old := fl.head.Load()
		idx, tag := unpackFree(old)
		e.next.Store(idx)
		if fl.head.CompareAndSwap(old, packFree(i, tag+1)) {
			return
		}
	}
}

// pushChain splices a pre-threaded head..tail run (as produced by
// pool.allocateBlock) onto the free list in one CAS.
func (fl *freeList) pushChain(head, tail nodeID) {
	tailNode := fl.pool.indexToEntry(tail)
	for {
		old := fl.head.Load()
		idx, tag := unpackFree(old)
		tailNode.next.Store(idx)
		if fl.head.CompareAndSwap(old, packFree(head, tag+1)) {
			return
		}
	}
}

// popOrGrow pops a free entry, allocating a fresh block from the pool first
// if the list is currently empty. ok is false only once the pool's block
// directory is exhausted.
func (fl *freeList) popOrGrow() (nodeID, bool) {
	for {
		if mi, ok := fl.pop(); ok {
			return mi, true
		}
		head, tail, ok := fl.pool.allocateBlock()
		if !ok {
			return nullIndex, false
		}
		fl.pushChain(head, tail)
	}
}
