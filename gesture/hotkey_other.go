//go:build !linux

package gesture

import (
	"time"

	"golang.design/x/hotkey"
)

type hotkeyWatcher struct {
	hk   *hotkey.Hotkey
	stop chan struct{}
}

func NewHotkeyWatcher() Watcher {
	return &hotkeyWatcher{
		hk: hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace),
	}
}

func (h *hotkeyWatcher) Start(emit func(Event)) error {
	if err := h.hk.Register(); err != nil {
		return err
	}
	h.stop = make(chan struct{})
	go func() {
		for {
			select {
			case <-h.hk.Keydown():
				emit(Event{Kind: Down, Origin: Hotkey, At: time.Now()})
			case <-h.stop:
				return
			}
		}
	}()
	go func() {
		for {
			select {
			case <-h.hk.Keyup():
				emit(Event{Kind: Up, Origin: Hotkey, At: time.Now()})
			case <-h.stop:
				return
			}
		}
	}()
	return nil
}

func (h *hotkeyWatcher) Stop() {
	if h.stop != nil {
		close(h.stop)
	}
	h.hk.Unregister()
}
