package atomichash

import (
	"fmt"
	"time"
)

// Add inserts value under key if no entry with the same identity exists,
// subject to a free seat being found across both probe tables and the
// overflow table. If an entry with the same fingerprint already exists,
// cbDup (or the registered duplicate hook, if cbDup is nil) is invoked on
// it instead and Add returns ResultDuplicate.
//
// initialTTL of zero or less creates a permanent entry that no hook can
// later give a finite deadline. out, if non-nil, receives whatever the
// invoked hook (duplicate case) or the add hook (new-entry case) wrote to
// its own out parameter.
func (t *Table) Add(key []byte, value any, initialTTL time.Duration, cbDup Hook, out *any) (AddResult, error) {
	if len(key) == 0 {
		return 0, fmt.Errorf("%w: use AddFingerprint for a precomputed identity", ErrInvalidKeyLength)
	}
	return t.addFingerprint(t.fp.Fingerprint(key), value, initialTTL, cbDup, out)
}

// AddFingerprint is Add for a caller-computed Fingerprint, bypassing the
// table's Fingerprinter entirely. Both words of fp must be non-zero.
func (t *Table) AddFingerprint(fp Fingerprint, value any, initialTTL time.Duration, cbDup Hook, out *any) (AddResult, error) {
	if fp.X == 0 || fp.Y == 0 {
		return 0, fmt.Errorf("%w: fingerprint words must be non-zero", ErrInvalidKeyLength)
	}
	return t.addFingerprint(fp, value, initialTTL, cbDup, out)
}

// Get looks up key and, if found, invokes cb (or the registered get hook,
// if cb is nil) on its value before releasing the entry. out, if non-nil,
// receives whatever the hook wrote to its own out parameter.
func (t *Table) Get(key []byte, cb Hook, out *any) (GetResult, error) {
	if len(key) == 0 {
		return 0, fmt.Errorf("%w: use GetFingerprint for a precomputed identity", ErrInvalidKeyLength)
	}
	return t.getFingerprint(t.fp.Fingerprint(key), cb, out)
}

// GetFingerprint is Get for a caller-computed Fingerprint.
func (t *Table) GetFingerprint(fp Fingerprint, cb Hook, out *any) (GetResult, error) {
	if fp.X == 0 || fp.Y == 0 {
		return 0, fmt.Errorf("%w: fingerprint words must be non-zero", ErrInvalidKeyLength)
	}
	return t.getFingerprint(fp, cb, out)
}

// Delete removes every entry matching key's fingerprint, invoking cb (or
// the registered delete hook, if cb is nil) on each one's value as it is
// removed. out, if non-nil, receives whatever the last invoked hook wrote
// to its own out parameter.
func (t *Table) Delete(key []byte, cb Hook, out *any) (DelResult, error) {
	if len(key) == 0 {
		return 0, fmt.Errorf("%w: use DeleteFingerprint for a precomputed identity", ErrInvalidKeyLength)
	}
	return t.deleteFingerprint(t.fp.Fingerprint(key), cb, out)
}

// DeleteFingerprint is Delete for a caller-computed Fingerprint.
func (t *Table) DeleteFingerprint(fp Fingerprint, cb Hook, out *any) (DelResult, error) {
	if fp.X == 0 || fp.Y == 0 {
		return 0, fmt.Errorf("%w: fingerprint words must be non-zero", ErrInvalidKeyLength)
	}
	return t.deleteFingerprint(fp, cb, out)
}
