//go:build linux

package gesture

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"
)

// Side buttons found on most multi-button mice.
const (
	btnSide  = 0x113
	btnExtra = 0x114
)

// pointerWatcher reads raw evdev mouse events and emits Down/Up for the
// side button. Same /dev/input access requirements as the hotkey watcher.
type pointerWatcher struct {
	files []*os.File
	stop  chan struct{}
	once  sync.Once
}

func NewPointerWatcher() Watcher {
	return &pointerWatcher{}
}

func (p *pointerWatcher) Start(emit func(Event)) error {
	mice, err := findInputDevices(isPointer)
	if err != nil {
		return fmt.Errorf("finding pointer devices: %w", err)
	}
	if len(mice) == 0 {
		return fmt.Errorf("no pointer devices found (is user in 'input' group?)")
	}

	p.stop = make(chan struct{})

	for _, path := range mice {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		p.files = append(p.files, f)
		go p.readEvents(f, emit)
	}

	if len(p.files) == 0 {
		return fmt.Errorf("could not open any pointer device")
	}

	return nil
}

func (p *pointerWatcher) readEvents(f *os.File, emit func(Event)) {
	buf := make([]byte, inputEventSize*16)
	var held bool

	for {
		select {
		case <-p.stop:
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

			if evType != evKey || (evCode != btnSide && evCode != btnExtra) {
				continue
			}

			if evValue == keyPress && !held {
				held = true
				emit(Event{Kind: Down, Origin: Pointer, At: time.Now()})
			} else if evValue == keyRelease && held {
				held = false
				emit(Event{Kind: Up, Origin: Pointer, At: time.Now()})
			}
		}
	}
}

func (p *pointerWatcher) Stop() {
	p.once.Do(func() {
		if p.stop != nil {
			close(p.stop)
		}
		for _, f := range p.files {
			f.Close()
		}
	})
}

func isPointer(eventName string) bool {
	// A pointer reports relative axes; keyboards don't.
	caps, err := readCaps(eventName, "rel")
	if err != nil {
		return false
	}
	return caps != "" && caps != "0"
}
