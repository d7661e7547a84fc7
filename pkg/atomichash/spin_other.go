//go:build !linux

package atomichash

import (
	"runtime"
	"time"
)

// spinWait is the portable fallback for platforms without a cheap
// microsecond-granularity nanosleep syscall wired up.
func spinWait(spinsLeft int) {
	if spinsLeft&0x0f != 0 {
		time.Sleep(time.Microsecond)
		return
	}
	runtime.Gosched()
}
