//go:build linux

package atomichash

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// spinWait backs off a contended hold attempt: most iterations sleep for a
// microsecond via a real nanosleep, with an occasional voluntary yield so a
// long-stalled holder's goroutine gets a chance to run on busy GOMAXPROCS.
func spinWait(spinsLeft int) {
	if spinsLeft&0x0f != 0 {
		_ = unix.Nanosleep(&unix.Timespec{Sec: 0, Nsec: 1000}, nil)
		return
	}
	runtime.Gosched()
}
