package atomichash

import (
	"fmt"
	"math"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

const (
	minEntries = 2
	maxEntries = math.MaxUint32
)

// Options configures a Table at construction time. All fields are optional
// except MaxEntries.
type Options struct {
	// MaxEntries is the capacity the probe geometry and entry pool are
	// sized for. Required, must be in [2, 2^32-1].
	MaxEntries uint64

	// ResetTTL is the deadline applied when a hook returns InstrResetTTL.
	// Zero means InstrResetTTL behaves like InstrSetTTL(0), which (per
	// applyTTLInstruction) is a no-op against any entry.
	ResetTTL time.Duration

	// Fingerprinter overrides the default hash/maphash-backed fingerprint
	// function. Most callers should leave this nil.
	Fingerprinter Fingerprinter

	// Logger receives rare-path structured log events: table creation (at
	// debug level), pool exhaustion, no-seat adds and hold-spin escapes.
	// Block allocations are not logged. Never written to
	// on a successful, uncontended operation. Nil disables logging.
	Logger *logiface.Logger[*stumpy.Event]
}

func (o Options) validate() error {
	if o.MaxEntries < minEntries || o.MaxEntries > maxEntries {
		return fmt.Errorf("%w: must be in [%d, %d], got %d", ErrInvalidCapacity, minEntries, uint64(maxEntries), o.MaxEntries)
	}
	return nil
}
