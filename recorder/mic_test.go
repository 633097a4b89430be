package recorder

import (
	"encoding/binary"
	"errors"
	"os"
	"testing"
	"time"

	"murmur/audio"
	"murmur/encoder"
)

func pcmSeconds(s float64) []byte {
	n := int(s * encoder.SampleRate)
	data := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(i%2000-1000)))
	}
	return data
}

func newTestMic(t *testing.T, pcm []byte, format string) *MicRecorder {
	t.Helper()
	ctx := audio.NewFakeContextPCM(pcm)
	capture, err := ctx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewMic(capture, format, t.TempDir())
}

func TestMicRecordsToFile(t *testing.T) {
	m := newTestMic(t, pcmSeconds(1.0), "wav")
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	rec, err := m.Stop()
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Discard()

	if rec.Format != "wav" {
		t.Errorf("format = %q, want wav", rec.Format)
	}
	if rec.Frames != encoder.SampleRate {
		t.Errorf("frames = %d, want %d", rec.Frames, encoder.SampleRate)
	}
	info, err := os.Stat(rec.Path)
	if err != nil {
		t.Fatalf("recording file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("recording file is empty")
	}
}

func TestStartAcceptsDataWhileStarting(t *testing.T) {
	// The fake capture pushes its whole buffer into the callback from
	// inside Start. Start must not hold the recorder lock across that
	// call or the callback deadlocks against it.
	m := newTestMic(t, pcmSeconds(1.0), "wav")
	done := make(chan error, 1)
	go func() { done <- m.Start() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start blocked on its own data callback")
	}
	rec, err := m.Stop()
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Discard()
	if rec.Frames != encoder.SampleRate {
		t.Errorf("frames = %d, want %d", rec.Frames, encoder.SampleRate)
	}
}

func TestMicTooShortIsNoAudio(t *testing.T) {
	m := newTestMic(t, pcmSeconds(0.05), "wav")
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Stop(); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("err = %v, want ErrNoAudio", err)
	}
}

func TestMicDoubleStart(t *testing.T) {
	m := newTestMic(t, pcmSeconds(1.0), "wav")
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(); err == nil {
		t.Fatal("expected error on second Start")
	}
}

func TestMicFlacOutput(t *testing.T) {
	m := newTestMic(t, pcmSeconds(1.0), "flac")
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	rec, err := m.Stop()
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Discard()

	data, err := os.ReadFile(rec.Path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		t.Error("missing fLaC magic")
	}
}

func TestDiscardRemovesFile(t *testing.T) {
	m := newTestMic(t, pcmSeconds(0.5), "wav")
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	rec, err := m.Stop()
	if err != nil {
		t.Fatal(err)
	}
	rec.Discard()
	if _, err := os.Stat(rec.Path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Discard: %v", err)
	}
}
