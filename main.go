package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"murmur/audio"
	"murmur/beep"
	"murmur/config"
	"murmur/deliver"
	"murmur/doctor"
	"murmur/encoder"
	"murmur/gesture"
	"murmur/log"
	"murmur/login"
	"murmur/orchestrator"
	"murmur/recorder"
	"murmur/shutdown"
	"murmur/transcriber"
	"murmur/tray"
	"murmur/update"
)

var version = "dev"

// -gui is routed by main before parsing, but run still calls
// flag.Parse with the argument present, so it must be registered.
var _ = flag.Bool("gui", false, "Run with the status window (requires a gui build)")

var (
	orch       *orchestrator.Orchestrator
	orchCancel context.CancelFunc

	guiMode bool
	guiSink orchestrator.StatusSink
	guiQuit func()

	shutdownOnce sync.Once
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if orchCancel != nil {
			orchCancel()
		}
		if orch != nil {
			if n := orch.Completed(); n > 0 {
				log.SessionEnd(n)
			}
		}
		log.Close()
		tray.Quit()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		if guiQuit != nil {
			guiQuit()
		}
		os.Exit(0)
	})
}

// beepSink plays the audible cues for the session lifecycle.
type beepSink struct{}

func (beepSink) StateChanged(st orchestrator.State) {
	switch st {
	case orchestrator.StateRecording:
		beep.PlayStart()
	case orchestrator.StateTranscribing:
		beep.PlayStop()
	}
}

func (beepSink) SessionError(orchestrator.ErrorKind, string) {
	beep.PlayError()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func runUpdateCommand() {
	if version == "dev" {
		fmt.Println("Dev build, cannot check for updates.")
		os.Exit(0)
	}
	fmt.Printf("murmur %s, checking for updates...\n", version)
	rel, err := update.CheckLatest(version)
	if err != nil {
		fatalf("%v", err)
	}
	if rel == nil {
		fmt.Println("Already up to date.")
		os.Exit(0)
	}
	fmt.Printf("Update available: %s -> %s\n", version, rel.Version)
	fmt.Print("Continue? [y/N] ")
	var answer string
	fmt.Scanln(&answer)
	if answer != "y" && answer != "Y" {
		fmt.Println("Aborted.")
		os.Exit(0)
	}
	if err := update.Apply(rel); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Updated to %s\n", rel.Version)
	os.Exit(0)
}

func run() {
	if len(os.Args) > 1 && os.Args[1] == "update" {
		runUpdateCommand()
	}

	// .env first, so both API keys and MURMUR_* overrides are visible
	// to everything below.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fatalf("%v", err)
	}

	autoPasteFlag := flag.Bool("autopaste", cfg.AutoPaste, "Paste transcriptions into the focused window")
	setupFlag := flag.Bool("setup", false, "Select microphone device interactively")
	deviceFlag := flag.String("device", cfg.Device, "Use named microphone device")
	formatFlag := flag.String("format", cfg.Format, "Audio format: flac or wav")
	langFlag := flag.String("lang", cfg.Language, "Language code for transcription (empty = auto-detect)")
	holdFlag := flag.Duration("hold", cfg.HoldThreshold(), "How long a press must last before recording starts")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	testFlag := flag.Bool("test", false, "Headless test mode (stdin-driven)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	flag.Parse()

	cfg.AutoPaste = *autoPasteFlag
	cfg.Format = *formatFlag
	cfg.Language = *langFlag
	cfg.HoldThresholdMs = int(holdFlag.Milliseconds())
	cfg.Device = *deviceFlag
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fatalf("resolving log directory: %v", err)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	// Panics land in a file even when we run detached from a terminal.
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	if crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}
	if *doctorFlag {
		os.Exit(doctor.Run())
	}

	tr, err := transcriber.New()
	if err != nil {
		fatalf("%v", err)
	}
	tr.SetLanguage(cfg.Language)

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	paster := deliver.NewPaster(cfg.AutoPaste)

	if *testFlag {
		runTestMode(tr, cfg, flag.Args())
		return
	}

	actx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init: %v", err)
		fatalf("initializing audio: %v", err)
	}
	defer actx.Close()

	if *setupFlag {
		if dev, err := selectDevice(actx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v\n", err)
		} else if dev != nil {
			cfg.Device = dev.Name
			cfg.Save()
		}
	}

	var dev *audio.DeviceInfo
	if cfg.Device != "" {
		if dev = audio.FindDevice(actx, cfg.Device); dev == nil {
			log.Warnf("device %q not found, using default", cfg.Device)
		}
	}

	capture, err := actx.NewCapture(dev, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init: %v", err)
		fatalf("initializing capture device: %v", err)
	}
	defer capture.Close()

	mic := recorder.NewMic(capture, cfg.Format, "")
	mic.OnSilence = func(ev recorder.SilenceEvent) {
		switch ev {
		case recorder.SilenceWarn, recorder.SilenceRepeat:
			log.Info("no voice detected")
			tuiSend(silenceMsg{Warn: true})
			beep.PlayError()
		case recorder.SilenceClear:
			tuiSend(silenceMsg{Warn: false})
		}
	}

	sinks := []orchestrator.StatusSink{tuiSink{}, beepSink{}, tray.NewSink()}
	if guiSink != nil {
		sinks = append(sinks, guiSink)
	}

	orch = orchestrator.New(orchestrator.Options{
		HoldThreshold: cfg.HoldThreshold(),
		Recorder:      mic,
		Transcriber:   tr,
		Deliverer:     notifyDeliverer{inner: paster},
		Status:        orchestrator.Fanout(sinks...),
	})

	runCtx, cancel := context.WithCancel(context.Background())
	orchCancel = cancel
	go orch.Run(runCtx)

	started := 0
	if cfg.EnableHotkey {
		w := gesture.NewMinHold(gesture.NewHotkeyWatcher(), cfg.HoldThreshold())
		if err := w.Start(orch.Post); err != nil {
			log.Errorf("hotkey watcher: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: hotkey unavailable: %v\n", err)
		} else {
			defer w.Stop()
			started++
		}
	}
	if cfg.EnablePointer {
		w := gesture.NewPointerWatcher()
		if err := w.Start(orch.Post); err != nil {
			log.Errorf("pointer watcher: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: pointer buttons unavailable: %v\n", err)
		} else {
			defer w.Stop()
			started++
		}
	}
	if started == 0 {
		fatalf("no gesture sources available")
	}

	go beep.Init()

	if *tuiFlag && !guiMode {
		tuiMu.Lock()
		tuiProgram = newTUIProgram()
		tuiMu.Unlock()
		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()
	}

	// In -gui mode the Fyne app owns the menu bar, skip the tray.
	trayQuit := make(<-chan struct{})
	if !guiMode {
		trayQuit = tray.Init(tray.Options{
			AutoPaste:    cfg.AutoPaste,
			Language:     cfg.Language,
			LoginShown:   login.Supported(),
			LoginEnabled: login.Enabled(),
			OnAutoPaste: func(on bool) {
				paster.SetAutoPaste(on)
				cfg.AutoPaste = on
				cfg.Save()
			},
			OnLanguage: func(code string) {
				tr.SetLanguage(code)
				cfg.Language = code
				cfg.Save()
			},
			OnLogin: func(on bool) error {
				if on {
					return login.Enable()
				}
				return login.Disable()
			},
		})
	}

	update.StartBackgroundCheck(version, log.Dir(), func(rel update.Release) {
		log.Infof("update available: %s", rel.Version)
		tuiSend(updateMsg{Version: rel.Version})
	})

	log.Infof("murmur %s ready: hold=%s format=%s provider=%s", version, cfg.HoldThreshold(), cfg.Format, tr.Name())

	select {
	case <-shutdown.Chan():
	case <-trayQuit:
	}
	gracefulShutdown()
}
