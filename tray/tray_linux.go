//go:build linux

package tray

import "fyne.io/systray"

// Init starts the tray on its own goroutine. Linux talks to the status
// notifier over D-Bus, so no main-thread dance is needed.
func Init(opts Options) <-chan struct{} {
	go systray.Run(func() { onReady(opts) }, onExit)
	return quitCh
}
