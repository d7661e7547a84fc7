package atomichash

import "hash/maphash"

// Fingerprinter derives a key's two-word identity. Both returned words must
// be non-zero, since zero is reserved for the hold/vacate sentinels. The
// default Fingerprinter clamps a zero word up to 1; a Table does not check
// or clamp the words returned by a Fingerprinter supplied through Options.
//
// This indirection is the one seam in the core engine deliberately left
// outside of it: the probe geometry, hold protocol and TTL bookkeeping never
// look at how a Fingerprint was derived, only that it is stable and that
// equal keys produce equal fingerprints.
type Fingerprinter interface {
	Fingerprint(key []byte) Fingerprint
}

// maphashFingerprinter is the default Fingerprinter, built on the standard
// library's hash/maphash. No third-party hash in the reference stack targets
// this exact two-independent-64-bit-word shape, and maphash is already
// hardened against hash-flooding, which a general-purpose non-cryptographic
// hash library would need extra wiring to match.
type maphashFingerprinter struct {
	seedX, seedY maphash.Seed
}

func newMaphashFingerprinter() *maphashFingerprinter {
	return &maphashFingerprinter{
		seedX: maphash.MakeSeed(),
		seedY: maphash.MakeSeed(),
	}
}

func (m *maphashFingerprinter) Fingerprint(key []byte) Fingerprint {
	return Fingerprint{
		X: ensureNonZero(maphash.Bytes(m.seedX, key)),
		Y: ensureNonZero(maphash.Bytes(m.seedY, key)),
	}
}
