//go:build !linux

package gesture

import (
	"sync"
	"time"

	hook "github.com/robotn/gohook"
)

// Mouse button 4 is the first side button on hooked mouse events.
const sideButton = 4

// pointerWatcher taps the global mouse hook and emits Down/Up for the
// side button.
type pointerWatcher struct {
	stop chan struct{}
	once sync.Once
}

func NewPointerWatcher() Watcher {
	return &pointerWatcher{}
}

func (p *pointerWatcher) Start(emit func(Event)) error {
	p.stop = make(chan struct{})
	events := hook.Start()

	go func() {
		var held bool
		for {
			select {
			case <-p.stop:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Button != sideButton {
					continue
				}
				switch ev.Kind {
				case hook.MouseDown, hook.MouseHold:
					if !held {
						held = true
						emit(Event{Kind: Down, Origin: Pointer, At: time.Now()})
					}
				case hook.MouseUp:
					if held {
						held = false
						emit(Event{Kind: Up, Origin: Pointer, At: time.Now()})
					}
				}
			}
		}
	}()

	return nil
}

func (p *pointerWatcher) Stop() {
	p.once.Do(func() {
		if p.stop != nil {
			close(p.stop)
		}
		hook.End()
	})
}
