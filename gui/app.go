//go:build gui

// Package gui is an optional on-screen status pill, shown only while a
// dictation session is in flight. Built with -tags gui.
package gui

import (
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"

	"murmur/orchestrator"
)

var (
	colorIdle  = color.RGBA{60, 60, 60, 230}
	colorRec   = color.RGBA{180, 40, 32, 230}
	colorBusy  = color.RGBA{190, 140, 0, 230}
	colorDone  = color.RGBA{30, 130, 70, 230}
	colorError = color.RGBA{200, 90, 0, 230}
)

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	bg      *canvas.Rectangle
	label   *canvas.Text
	onReady func()
}

func NewApp(onReady func()) *App {
	return &App{onReady: onReady}
}

// Run takes over the calling goroutine with the Fyne event loop.
func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.murmur.app")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	// Frameless splash window so the pill floats without decorations.
	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("murmur")
	}

	a.bg = canvas.NewRectangle(colorIdle)
	a.bg.CornerRadius = 12
	a.label = canvas.NewText("murmur", color.White)
	a.label.TextSize = 14

	a.window.SetContent(container.NewStack(a.bg, container.NewCenter(a.label)))
	a.window.SetPadded(false)
	a.window.Resize(fyne.NewSize(180, 44))

	go a.onReady()

	// Stays hidden until a session starts.
	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) set(text string, c color.Color, visible bool) {
	fyne.Do(func() {
		if a.window == nil {
			return
		}
		a.label.Text = text
		a.label.Refresh()
		a.bg.FillColor = c
		a.bg.Refresh()
		if visible {
			a.window.Show()
		} else {
			a.window.Hide()
		}
	})
}

func (a *App) StateChanged(st orchestrator.State) {
	switch st {
	case orchestrator.StatePressed:
		a.set("hold…", colorIdle, true)
	case orchestrator.StateRecording:
		a.set("● recording", colorRec, true)
	case orchestrator.StateTranscribing:
		a.set("transcribing…", colorBusy, true)
	case orchestrator.StateDelivering:
		a.set("✓ delivered", colorDone, true)
	default:
		a.set("murmur", colorIdle, false)
	}
}

func (a *App) SessionError(kind orchestrator.ErrorKind, _ string) {
	a.set(kind.String()+" failed", colorError, true)
	time.AfterFunc(3*time.Second, func() {
		a.set("murmur", colorIdle, false)
	})
}
