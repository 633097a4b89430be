package gesture

import (
	"sync"
	"time"
)

// FakeWatcher emits events on demand, for tests and the headless test mode.
type FakeWatcher struct {
	origin Origin

	mu   sync.Mutex
	emit func(Event)
}

func NewFake(origin Origin) *FakeWatcher {
	return &FakeWatcher{origin: origin}
}

func (f *FakeWatcher) Start(emit func(Event)) error {
	f.mu.Lock()
	f.emit = emit
	f.mu.Unlock()
	return nil
}

func (f *FakeWatcher) Stop() {
	f.mu.Lock()
	f.emit = nil
	f.mu.Unlock()
}

func (f *FakeWatcher) send(k Kind) {
	f.mu.Lock()
	emit := f.emit
	f.mu.Unlock()
	if emit != nil {
		emit(Event{Kind: k, Origin: f.origin, At: time.Now()})
	}
}

func (f *FakeWatcher) SimDown() { f.send(Down) }
func (f *FakeWatcher) SimUp()   { f.send(Up) }
