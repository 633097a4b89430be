//go:build linux

package gesture

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
	keyLCtrl   = 29
	keyRCtrl   = 97
	keyLShift  = 42
	keyRShift  = 54
	keySpace   = 57
)

const inputEventSize = 24

// hotkeyWatcher reads raw evdev keyboard events and emits Down/Up for
// Ctrl+Shift+Space. Requires read access to /dev/input (the 'input' group).
type hotkeyWatcher struct {
	files []*os.File
	stop  chan struct{}
	once  sync.Once
}

func NewHotkeyWatcher() Watcher {
	return &hotkeyWatcher{}
}

func (h *hotkeyWatcher) Start(emit func(Event)) error {
	keyboards, err := findInputDevices(isKeyboard)
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	h.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.readEvents(f, emit)
	}

	if len(h.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}

	return nil
}

func (h *hotkeyWatcher) readEvents(f *os.File, emit func(Event)) {
	buf := make([]byte, inputEventSize*16)
	var ctrlHeld, shiftHeld, spaceHeld bool

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey {
				continue
			}

			pressed := evValue == keyPress
			released := evValue == keyRelease

			switch evCode {
			case keyLCtrl, keyRCtrl:
				ctrlHeld = pressed || (!released && ctrlHeld)
			case keyLShift, keyRShift:
				shiftHeld = pressed || (!released && shiftHeld)
			case keySpace:
				if pressed && !spaceHeld && ctrlHeld && shiftHeld {
					spaceHeld = true
					emit(Event{Kind: Down, Origin: Hotkey, At: time.Now()})
				} else if released && spaceHeld {
					spaceHeld = false
					emit(Event{Kind: Up, Origin: Hotkey, At: time.Now()})
				}
			}
		}
	}
}

func (h *hotkeyWatcher) Stop() {
	h.once.Do(func() {
		if h.stop != nil {
			close(h.stop)
		}
		for _, f := range h.files {
			f.Close()
		}
	})
}

func findInputDevices(match func(eventName string) bool) ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if match(e.Name()) {
			paths = append(paths, filepath.Join("/dev/input", e.Name()))
		}
	}
	return paths, nil
}

func isKeyboard(eventName string) bool {
	caps, err := readCaps(eventName, "key")
	if err != nil {
		return false
	}
	return len(caps) > 10
}

func readCaps(eventName, kind string) (string, error) {
	path := filepath.Join("/sys/class/input", eventName, "device", "capabilities", kind)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
