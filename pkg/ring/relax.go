package ring

import "runtime"

// gosched yields the processor to another goroutine. Used by the
// busy-wait helpers instead of a raw spin so a blocked consumer does
// not starve the scheduler on a GOMAXPROCS=1 build.
func gosched() {
	runtime.Gosched()
}
