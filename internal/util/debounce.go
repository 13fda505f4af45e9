package util

import (
	"sync"
	"time"
)

// Debounce returns call, which postpones fn until wait has elapsed since the
// most recent invocation, and cancel, which drops any pending invocation.
// Only the argument of the last call in a burst reaches fn.
func Debounce[T any](fn func(T), wait time.Duration) (call func(T), cancel func()) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)

	call = func(arg T) {
		mu.Lock()
		defer mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(wait, func() {
			fn(arg)
		})
	}

	cancel = func() {
		mu.Lock()
		defer mu.Unlock()

		if timer != nil {
			timer.Stop()
			timer = nil
		}
	}

	return call, cancel
}
