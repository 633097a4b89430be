package gesture

import (
	"sync"
	"testing"
	"time"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) emit(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) kinds() []Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Kind, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Kind
	}
	return out
}

func waitKinds(t *testing.T, l *eventLog, want []Kind) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		got := l.kinds()
		if len(got) == len(want) {
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("event %d: got %v, want %v", i, got[i], want[i])
				}
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out: got %v, want %v", l.kinds(), want)
}

func TestMinHoldLongPressPassesThrough(t *testing.T) {
	fk := NewFake(Hotkey)
	mh := NewMinHold(fk, 50*time.Millisecond)
	var l eventLog
	if err := mh.Start(l.emit); err != nil {
		t.Fatal(err)
	}
	defer mh.Stop()

	fk.SimDown()
	time.Sleep(80 * time.Millisecond)
	fk.SimUp()
	waitKinds(t, &l, []Kind{Down, Up})
}

func TestMinHoldTapDelaysUp(t *testing.T) {
	fk := NewFake(Hotkey)
	threshold := 80 * time.Millisecond
	mh := NewMinHold(fk, threshold)
	var l eventLog
	start := time.Now()
	if err := mh.Start(l.emit); err != nil {
		t.Fatal(err)
	}
	defer mh.Stop()

	fk.SimDown()
	fk.SimUp() // immediate release

	waitKinds(t, &l, []Kind{Down, Up})

	l.mu.Lock()
	upAt := l.events[1].At
	l.mu.Unlock()
	if held := upAt.Sub(start); held < threshold {
		t.Errorf("Up emitted after %v, want >= %v", held, threshold)
	}
}

func TestMinHoldIgnoresRepeatDown(t *testing.T) {
	fk := NewFake(Hotkey)
	mh := NewMinHold(fk, 50*time.Millisecond)
	var l eventLog
	if err := mh.Start(l.emit); err != nil {
		t.Fatal(err)
	}
	defer mh.Stop()

	fk.SimDown()
	fk.SimDown() // key repeat
	time.Sleep(70 * time.Millisecond)
	fk.SimUp()
	waitKinds(t, &l, []Kind{Down, Up})
}

func TestMinHoldIgnoresSpuriousUp(t *testing.T) {
	fk := NewFake(Hotkey)
	mh := NewMinHold(fk, 50*time.Millisecond)
	var l eventLog
	if err := mh.Start(l.emit); err != nil {
		t.Fatal(err)
	}
	defer mh.Stop()

	fk.SimUp()
	time.Sleep(70 * time.Millisecond)
	if got := l.kinds(); len(got) != 0 {
		t.Fatalf("expected no events, got %v", got)
	}
}
