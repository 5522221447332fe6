package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

func NewReal() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// FakeClock is a Clock whose time only moves when told to.
type FakeClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
}

func (fc *FakeClock) Now() time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.CurrentTime
}

// Advance moves the clock forward by d.
func (fc *FakeClock) Advance(d time.Duration) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.CurrentTime = fc.CurrentTime.Add(d)
}
