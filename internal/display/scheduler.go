package display

import (
	"sync"
	"time"
)

// Scheduler abstracts the fixed-interval reveal timer so tests can drive
// ticks by hand instead of sleeping.
type Scheduler interface {
	// Every runs fn once per interval until the returned cancel func is
	// called.
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler is the production Scheduler, backed by time.Ticker.
type TickerScheduler struct{}

func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

func (s *TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}
}
