package gesture

import (
	"sync"
	"time"
)

// holdSlack is how long after the hold threshold a synthesized Up is
// emitted, so the hold timer is always enqueued ahead of it.
const holdSlack = 20 * time.Millisecond

// MinHold wraps a Watcher so that every press is held for at least the
// given threshold. A tap on the global hotkey would otherwise be treated
// as a tap and cancel the session before recording starts; delaying the
// Up until just past the threshold makes a hotkey tap replay the exact
// hold path, with the same downstream sequence as a real hold.
type MinHold struct {
	inner     Watcher
	threshold time.Duration

	mu      sync.Mutex
	pressed bool
	downAt  time.Time
	pending *time.Timer
}

func NewMinHold(inner Watcher, threshold time.Duration) *MinHold {
	return &MinHold{inner: inner, threshold: threshold}
}

func (m *MinHold) Start(emit func(Event)) error {
	return m.inner.Start(func(ev Event) {
		m.relay(ev, emit)
	})
}

func (m *MinHold) Stop() {
	m.inner.Stop()
	m.mu.Lock()
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.pressed = false
	m.mu.Unlock()
}

func (m *MinHold) relay(ev Event, emit func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Kind {
	case Down:
		if m.pressed {
			return // key repeat
		}
		m.pressed = true
		m.downAt = ev.At
		emit(ev)
	case Up:
		if !m.pressed {
			return
		}
		m.pressed = false
		held := ev.At.Sub(m.downAt)
		if held >= m.threshold {
			emit(ev)
			return
		}
		// Tap: hold the Up back until the threshold has passed.
		delay := m.threshold - held + holdSlack
		origin := ev.Origin
		m.pending = time.AfterFunc(delay, func() {
			m.mu.Lock()
			m.pending = nil
			m.mu.Unlock()
			emit(Event{Kind: Up, Origin: origin, At: time.Now()})
		})
	}
}
