package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/tosih/rpm-simulator/pkg/clock"
	"github.com/tosih/rpm-simulator/pkg/formula"
	"github.com/tosih/rpm-simulator/pkg/store"
)

// RedlineAlerter sends a message each time the simulated engine enters the red zone.
// Staying in the red zone does not repeat the alert, and alerts closer together than
// Cooldown are suppressed.
type RedlineAlerter struct {
	sender   Sender
	clock    clock.Clock
	cooldown time.Duration

	mu       sync.Mutex
	lastZone formula.Zone
	lastSent time.Time
	wg       sync.WaitGroup
}

func NewRedlineAlerter(sender Sender, clk clock.Clock, cooldown time.Duration) *RedlineAlerter {
	return &RedlineAlerter{
		sender:   sender,
		clock:    clk,
		cooldown: cooldown,
		lastZone: formula.ZoneGreen,
	}
}

// Observe inspects a new state and dispatches an alert on entry into the red zone.
// It reports whether an alert was dispatched. Delivery happens in the background.
func (a *RedlineAlerter) Observe(s store.State) bool {
	a.mu.Lock()
	entered := s.Zone == formula.ZoneRed && a.lastZone != formula.ZoneRed
	a.lastZone = s.Zone
	now := a.clock.Now()
	if !entered || (!a.lastSent.IsZero() && now.Sub(a.lastSent) < a.cooldown) {
		a.mu.Unlock()
		return false
	}
	a.lastSent = now
	a.mu.Unlock()

	title := "Redline!"
	message := fmt.Sprintf("%s RPM in %s gear at %.0f MPH (redline %s)",
		s.FormattedRPM, formula.GearLabel(s.SelectedGear), s.Speed, formula.FormatRPM(s.Thresholds.Red))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.sender.SendMessageWithTitle(message, title); err != nil {
			glog.Errorf("Cannot send redline alert: %s", err)
		}
	}()
	return true
}

// Listener adapts Observe to a store change listener.
func (a *RedlineAlerter) Listener() store.ChangeListener {
	return func(s store.State) {
		a.Observe(s)
	}
}

// Wait blocks until every dispatched alert has been delivered or failed.
func (a *RedlineAlerter) Wait() {
	a.wg.Wait()
}
