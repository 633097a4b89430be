package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"murmur/audio"
	"murmur/beep"
	"murmur/config"
	"murmur/encoder"
	"murmur/gesture"
	"murmur/orchestrator"
	"murmur/recorder"
	"murmur/transcriber"
)

// testSink signals each return to idle, so WAIT can block on session
// completion.
type testSink struct {
	idle chan struct{}
}

func (s testSink) StateChanged(st orchestrator.State) {
	if st == orchestrator.StateIdle {
		select {
		case s.idle <- struct{}{}:
		default:
		}
	}
}

func (s testSink) SessionError(kind orchestrator.ErrorKind, detail string) {
	fmt.Printf("ERROR %s: %s\n", kind, detail)
}

// printDeliverer writes the transcription to stdout so a driving
// script can assert on it.
type printDeliverer struct{}

func (printDeliverer) Deliver(text string) error {
	fmt.Printf("TRANSCRIPT: %s\n", text)
	return nil
}

// runTestMode drives the whole pipeline headless: gestures come from
// stdin commands, audio comes from a WAV file on disk, only the
// transcription call is real.
//
// Commands: DOWN, UP, HOTKEY_DOWN, HOTKEY_UP, SLEEP <ms>, WAIT, QUIT.
func runTestMode(tr transcriber.Transcriber, cfg *config.Config, args []string) {
	beep.Disable()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: murmur -test <wav-file>")
		os.Exit(1)
	}

	fakeCtx, err := audio.NewFakeContext(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}
	capture, err := fakeCtx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capture: %v\n", err)
		os.Exit(1)
	}

	mic := recorder.NewMic(capture, cfg.Format, "")
	idle := make(chan struct{}, 1)

	orch = orchestrator.New(orchestrator.Options{
		HoldThreshold: cfg.HoldThreshold(),
		Recorder:      mic,
		Transcriber:   tr,
		Deliverer:     printDeliverer{},
		Status:        testSink{idle: idle},
	})
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orch.Run(runCtx)

	pointer := gesture.NewFake(gesture.Pointer)
	pointer.Start(orch.Post)
	hotkey := gesture.NewFake(gesture.Hotkey)
	minHold := gesture.NewMinHold(hotkey, cfg.HoldThreshold())
	minHold.Start(orch.Post)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "DOWN":
			pointer.SimDown()
		case cmd == "UP":
			pointer.SimUp()
		case cmd == "HOTKEY_DOWN":
			hotkey.SimDown()
		case cmd == "HOTKEY_UP":
			hotkey.SimUp()
		case cmd == "WAIT":
			<-idle
		case cmd == "QUIT":
			fmt.Printf("COMPLETED: %d\n", orch.Completed())
			return
		case strings.HasPrefix(cmd, "SLEEP "):
			if ms, err := strconv.Atoi(cmd[6:]); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		case cmd == "" || strings.HasPrefix(cmd, "#"):
			// comment or blank line
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %q\n", cmd)
		}
	}
}
