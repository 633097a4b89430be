//go:build !linux

package tray

import (
	"fyne.io/systray"
	"golang.design/x/hotkey/mainthread"
)

// Init hooks the tray into the main-thread loop that the hotkey
// runtime already owns.
func Init(opts Options) <-chan struct{} {
	start, _ := systray.RunWithExternalLoop(func() { onReady(opts) }, onExit)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	return quitCh
}
