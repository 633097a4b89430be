// Package doctor runs interactive system diagnostics: input sources,
// microphone capture, transcription credentials and clipboard access.
package doctor

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	cb "github.com/atotto/clipboard"

	"murmur/audio"
	"murmur/encoder"
	"murmur/gesture"
	"murmur/transcriber"
)

// Run executes the checks in order and returns an exit code, 0 when
// everything passed.
func Run() int {
	fmt.Println("murmur doctor - system diagnostics")
	fmt.Println("==================================")

	pass := true
	if !checkTranscriber() {
		pass = false
	}
	if !checkMicrophone() {
		pass = false
	}
	if !checkClipboard() {
		pass = false
	}
	if !checkHotkey() {
		pass = false
	}

	fmt.Println()
	if pass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkTranscriber() bool {
	fmt.Println()
	fmt.Println("[1/4] Transcription credentials")
	tr, err := transcriber.New()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: provider %q configured\n", tr.Name())
	return true
}

func checkMicrophone() bool {
	fmt.Println()
	fmt.Println("[2/4] Microphone capture")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}
	for _, d := range devices {
		fmt.Printf("  found device: %s\n", d.Name)
	}

	capture, err := ctx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		fmt.Printf("  FAIL: cannot open capture device: %v\n", err)
		return false
	}
	defer capture.Close()

	var mu sync.Mutex
	var sumSquares float64
	var samples int
	capture.SetCallback(func(data []byte, _ uint32) {
		mu.Lock()
		for i := 0; i+1 < len(data); i += 2 {
			s := float64(int16(binary.LittleEndian.Uint16(data[i:]))) / 32768.0
			sumSquares += s * s
			samples++
		}
		mu.Unlock()
	})
	if err := capture.Start(); err != nil {
		fmt.Printf("  FAIL: cannot start capture: %v\n", err)
		return false
	}
	fmt.Println("  recording 1s of audio, say something...")
	time.Sleep(time.Second)
	capture.Stop()
	capture.ClearCallback()

	mu.Lock()
	defer mu.Unlock()
	if samples == 0 {
		fmt.Println("  FAIL: no audio data received")
		return false
	}
	rms := math.Sqrt(sumSquares / float64(samples))
	fmt.Printf("  PASS: captured %d samples, level %.4f\n", samples, rms)
	if rms < 0.001 {
		fmt.Println("  note: level is very low, check the input volume")
	}
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[3/4] Clipboard")

	prev, _ := cb.ReadAll()
	const probe = "murmur-doctor-probe"
	if err := cb.WriteAll(probe); err != nil {
		fmt.Printf("  FAIL: cannot write clipboard: %v\n", err)
		return false
	}
	got, err := cb.ReadAll()
	if err != nil || got != probe {
		fmt.Printf("  FAIL: clipboard readback mismatch (err=%v)\n", err)
		return false
	}
	if prev != "" {
		cb.WriteAll(prev)
	}
	fmt.Println("  PASS: clipboard round-trip ok")
	return true
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[4/4] Hotkey detection")
	fmt.Println("  press Ctrl+Shift+Space within 10s...")

	watcher := gesture.NewHotkeyWatcher()
	pressed := make(chan struct{}, 1)
	err := watcher.Start(func(ev gesture.Event) {
		if ev.Kind == gesture.Down {
			select {
			case pressed <- struct{}{}:
			default:
			}
		}
	})
	if err != nil {
		fmt.Printf("  FAIL: cannot watch hotkey: %v\n", err)
		return false
	}
	defer watcher.Stop()

	select {
	case <-pressed:
		fmt.Println("  PASS: hotkey detected")
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}
