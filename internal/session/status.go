package session

import (
	"sync"
	"time"
)

// loadingMessages rotate on the loading screen while a generation call is
// in flight.
var loadingMessages = []string{
	"Reading your material...",
	"Picking out the key ideas...",
	"Putting it all together...",
	"Almost there...",
}

const statusRotateInterval = 3 * time.Second

// statusTicker drives the rotating loading message. It ticks independently
// of the generation call itself and is stopped together with it when the
// call completes, fails, or is cancelled.
type statusTicker struct {
	stop     chan struct{}
	stopOnce sync.Once
}

// startStatusTicker invokes onTick every rotation interval until Stop is
// called. onTick must do its own locking.
func startStatusTicker(onTick func()) *statusTicker {
	t := &statusTicker{stop: make(chan struct{})}
	ticker := time.NewTicker(statusRotateInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				onTick()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

// Stop ends the rotation. Safe to call more than once.
func (t *statusTicker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}

// statusMessage returns the rotating message for a tick count.
func statusMessage(tick int) string {
	return loadingMessages[tick%len(loadingMessages)]
}
