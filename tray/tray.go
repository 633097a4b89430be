// Package tray is the menu-bar surface: a status icon that follows the
// session lifecycle plus a small settings menu.
package tray

import (
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/systray"

	"murmur/orchestrator"
)

const idleTooltip = "murmur – hold to dictate"

// errorHold is how long an error tooltip sticks before state changes
// may overwrite it again.
const errorHold = 10 * time.Second

type Language struct {
	Code  string // ISO-639-1, "" = auto-detect
	Label string
}

var Languages = []Language{
	{"", "Auto-detect"},
	{"zh", "Chinese"},
	{"nl", "Dutch"},
	{"en", "English"},
	{"fr", "French"},
	{"de", "German"},
	{"hi", "Hindi"},
	{"it", "Italian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"pl", "Polish"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"es", "Spanish"},
	{"tr", "Turkish"},
	{"uk", "Ukrainian"},
}

type Options struct {
	AutoPaste    bool
	Language     string
	LoginShown   bool // show the launch-at-login toggle
	LoginEnabled bool
	OnAutoPaste  func(bool)
	OnLanguage   func(code string)
	OnLogin      func(bool) error
}

var (
	ready     atomic.Bool
	quitCh    = make(chan struct{})
	closeOnce sync.Once
)

func onExit() {
	ready.Store(false)
	closeOnce.Do(func() { close(quitCh) })
}

func Quit() {
	systray.Quit()
}

func onReady(opts Options) {
	systray.SetTemplateIcon(iconIdle, iconIdle)
	systray.SetTooltip(idleTooltip)

	mSettings := systray.AddMenuItem("Settings", "Settings")
	mAutoPaste := mSettings.AddSubMenuItemCheckbox("Auto-paste", "Paste transcriptions into the focused app", opts.AutoPaste)
	var mLogin *systray.MenuItem
	loginClicks := make(chan struct{})
	if opts.LoginShown {
		mLogin = mSettings.AddSubMenuItemCheckbox("Start on Login", "Launch murmur when you log in", opts.LoginEnabled)
		loginClicks = mLogin.ClickedCh
	}
	mLanguage := mSettings.AddSubMenuItem("Language", "Transcription language")

	langItems := make([]*systray.MenuItem, len(Languages))
	langClicks := make(chan int, 4)
	for i, lang := range Languages {
		langItems[i] = mLanguage.AddSubMenuItemCheckbox(lang.Label, lang.Label, lang.Code == opts.Language)
		go func(idx int, ch <-chan struct{}) {
			for range ch {
				langClicks <- idx
			}
		}(i, langItems[i].ClickedCh)
	}

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit murmur")

	ready.Store(true)

	go func() {
		for {
			select {
			case <-mAutoPaste.ClickedCh:
				if mAutoPaste.Checked() {
					mAutoPaste.Uncheck()
				} else {
					mAutoPaste.Check()
				}
				if opts.OnAutoPaste != nil {
					opts.OnAutoPaste(mAutoPaste.Checked())
				}
			case <-loginClicks:
				if mLogin.Checked() {
					mLogin.Uncheck()
				} else {
					mLogin.Check()
				}
				if opts.OnLogin != nil {
					if err := opts.OnLogin(mLogin.Checked()); err != nil {
						// Roll the checkbox back, state did not change.
						if mLogin.Checked() {
							mLogin.Uncheck()
						} else {
							mLogin.Check()
						}
					}
				}
			case idx := <-langClicks:
				for j, it := range langItems {
					if j == idx {
						it.Check()
					} else {
						it.Uncheck()
					}
				}
				if opts.OnLanguage != nil {
					opts.OnLanguage(Languages[idx].Code)
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

// Sink adapts lifecycle notifications onto the tray icon.
type Sink struct {
	mu       sync.Mutex
	errUntil time.Time
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) StateChanged(st orchestrator.State) {
	if !ready.Load() {
		return
	}
	s.mu.Lock()
	muted := time.Now().Before(s.errUntil)
	s.mu.Unlock()

	switch st {
	case orchestrator.StateRecording:
		systray.SetIcon(iconRec)
		if !muted {
			systray.SetTooltip("murmur – recording")
		}
	case orchestrator.StateTranscribing, orchestrator.StateDelivering:
		systray.SetIcon(iconBusy)
		if !muted {
			systray.SetTooltip("murmur – transcribing")
		}
	default:
		systray.SetTemplateIcon(iconIdle, iconIdle)
		if !muted {
			systray.SetTooltip(idleTooltip)
		}
	}
}

func (s *Sink) SessionError(kind orchestrator.ErrorKind, detail string) {
	if !ready.Load() {
		return
	}
	s.mu.Lock()
	s.errUntil = time.Now().Add(errorHold)
	s.mu.Unlock()

	systray.SetTooltip("murmur – " + kind.String() + " failed: " + detail)
	go func() {
		time.Sleep(errorHold)
		if ready.Load() {
			systray.SetTooltip(idleTooltip)
		}
	}()
}
