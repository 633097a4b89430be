//go:build gui

package main

import (
	"fmt"
	"os"
	"runtime"

	"murmur/gui"
)

func initGUI() {
	guiMode = true
	runtime.LockOSThread()

	app := gui.NewApp(func() {
		run()
	})
	guiSink = app
	guiQuit = app.Quit
	if err := gui.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	gracefulShutdown()
}
