package application

import (
	"sync"
	"time"
)

// Clock interface supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Ticker returns a clock that starts at start and advances by step on every call.
// Result ordering in tests depends on strictly increasing timestamps.
func Ticker(start time.Time, step time.Duration) Clock {
	var mu sync.Mutex
	next := start
	return ClockFunc(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	})
}
