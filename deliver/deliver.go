// Package deliver puts transcribed text into the focused application:
// clipboard copy followed by a synthetic paste keystroke. If the
// keystroke cannot be injected the text stays in the clipboard, which
// counts as delivered.
package deliver

import (
	"fmt"
	"sync"
	"time"

	cb "github.com/atotto/clipboard"

	"murmur/log"
	"murmur/paste"
)

// restoreDelay gives the target application time to read the clipboard
// before the previous contents are put back.
const restoreDelay = 600 * time.Millisecond

type Deliverer interface {
	Deliver(text string) error
}

type Paster struct {
	mu        sync.Mutex
	autoPaste bool
}

func NewPaster(autoPaste bool) *Paster {
	return &Paster{autoPaste: autoPaste}
}

// SetAutoPaste toggles keystroke injection at runtime, from the tray.
func (p *Paster) SetAutoPaste(on bool) {
	p.mu.Lock()
	p.autoPaste = on
	p.mu.Unlock()
}

func (p *Paster) Deliver(text string) error {
	p.mu.Lock()
	autoPaste := p.autoPaste
	p.mu.Unlock()

	prev, _ := cb.ReadAll()

	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	if !autoPaste {
		return nil
	}

	if err := paste.Send(); err != nil {
		// Fallback: the text is in the clipboard, the user pastes by hand.
		log.Warnf("paste keystroke failed, text left in clipboard: %v", err)
		return nil
	}

	if prev != "" {
		go func() {
			time.Sleep(restoreDelay)
			cb.WriteAll(prev)
		}()
	}
	return nil
}
