// Package gesture produces the raw Down/Up trigger events that drive a
// recording session. Two independent watchers exist: a pointer-button
// watcher and a global-hotkey watcher. Watchers know nothing about each
// other or about recording; they only emit events.
package gesture

import "time"

type Kind int

const (
	Down Kind = iota
	Up
)

func (k Kind) String() string {
	if k == Down {
		return "down"
	}
	return "up"
}

type Origin int

const (
	Pointer Origin = iota
	Hotkey
)

func (o Origin) String() string {
	if o == Pointer {
		return "pointer"
	}
	return "hotkey"
}

// Event is a single raw trigger signal. Produced once, consumed once.
type Event struct {
	Kind   Kind
	Origin Origin
	At     time.Time
}

// Watcher is one gesture source. Start begins emitting events through emit;
// emit may be called from any goroutine and must not block for long.
type Watcher interface {
	Start(emit func(Event)) error
	Stop()
}
