package atomichash

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// logWrapper centralizes the table's rare-path logging so every call site
// is a no-op test for a nil logger rather than repeating it inline.
type logWrapper struct {
	logger *logiface.Logger[*stumpy.Event]
}

func newLogWrapper(l *logiface.Logger[*stumpy.Event]) *logWrapper {
	return &logWrapper{logger: l}
}

func (w *logWrapper) tableCreated(maxNodes, nb1, nb2 uint64) {
	if w == nil || w.logger == nil {
		return
	}
	w.logger.Debug().
		Uint64(`max_entries`, maxNodes).
		Uint64(`table1_buckets`, nb1).
		Uint64(`table2_buckets`, nb2).
		Log(`atomichash: table created`)
}

func (w *logWrapper) poolExhausted(maxNodes uint64) {
	if w == nil || w.logger == nil {
		return
	}
	w.logger.Warning().
		Uint64(`max_entries`, maxNodes).
		Log(`atomichash: entry pool exhausted`)
}

func (w *logWrapper) addNoSeat() {
	if w == nil || w.logger == nil {
		return
	}
	w.logger.Warning().Log(`atomichash: add found no free seat across both tables and overflow`)
}

func (w *logWrapper) holdEscape() {
	if w == nil || w.logger == nil {
		return
	}
	w.logger.Warning().Log(`atomichash: hold spin budget exhausted`)
}
