// Package atomichash implements a fixed-capacity, in-process concurrent hash
// table with no internal locks on its hot paths. Slots are claimed and
// released through CAS-only transitions on a two-word fingerprint stored
// directly in each entry; entries themselves are drawn from a block-addressed
// pool via a tagged (ABA-safe) free list.
//
// The table trades a fixed capacity and a probe geometry sized at creation
// time for the ability to add, get and delete concurrently from any number of
// goroutines without taking a lock. Entries expire lazily: there is no
// background sweeper, and a caller may observe (and pay the cost of
// reclaiming) an expired entry on its own operation.
//
// See [New] for construction, and [Table.Add], [Table.Get] and
// [Table.Delete] for the three supported operations.
package atomichash
