package atomichash

import "sync/atomic"

// bucketTable is one probe-addressable table: the two primaries sized by
// sizeTables, plus an overflow table scanned linearly rather than probed.
type bucketTable struct {
	slots []atomic.Uint32
	nb    uint64

	ncur atomic.Uint64
	nadd atomic.Uint64
	ndup atomic.Uint64
	nget atomic.Uint64
	ndel atomic.Uint64
}

func newBucketTable(nb uint64) *bucketTable {
	bt := &bucketTable{slots: make([]atomic.Uint32, nb), nb: nb}
	for i := range bt.slots {
		bt.slots[i].Store(nullIndex)
	}
	return bt
}

func (bt *bucketTable) decrCur() { bt.ncur.Add(^uint64(0)) }

// seatRef is one of the NSEAT probe positions, resolved to a concrete slot.
type seatRef struct {
	tbl  *bucketTable
	slot *atomic.Uint32
}

// buildSeats computes the full ordered probe list across both primary
// tables for a fingerprint's split probe words: 4 direct positions per
// table, followed by (NCLUSTER-1) rounds of 4 cross-mixed positions each.
func buildSeats(d [nKey]uint32, t1, t2 *bucketTable) [nSeat]seatRef {
	var seats [nSeat]seatRef
	i := 0
	for _, tbl := range [2]*bucketTable{t1, t2} {
		nb := tbl.nb
		seats[i] = seatRef{tbl, &tbl.slots[uint64(d[0])%nb]}
		i++
		seats[i] = seatRef{tbl, &tbl.slots[uint64(d[1])%nb]}
		i++
		seats[i] = seatRef{tbl, &tbl.slots[uint64(d[2])%nb]}
		i++
		seats[i] = seatRef{tbl, &tbl.slots[uint64(d[3])%nb]}
		i++
		for c := uint32(1); c < nCluster; c++ {
			seats[i] = seatRef{tbl, &tbl.slots[uint64(d[3]+c*d[0])%nb]}
			i++
			seats[i] = seatRef{tbl, &tbl.slots[uint64(d[0]+c*d[1])%nb]}
			i++
			seats[i] = seatRef{tbl, &tbl.slots[uint64(d[1]+c*d[2])%nb]}
			i++
			seats[i] = seatRef{tbl, &tbl.slots[uint64(d[2]+c*d[3])%nb]}
			i++
		}
	}
	return seats
}
