package recorder

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	"murmur/audio"
	"murmur/encoder"
	"murmur/log"
)

// minFrames is roughly 100ms of audio; anything shorter is treated as
// an empty recording.
const minFrames = encoder.SampleRate / 10

// MicRecorder records from a capture device into an encoder and
// finalizes each recording as a temp file.
type MicRecorder struct {
	capture audio.CaptureDevice
	format  string
	dir     string

	// OnSilence, when set before Start, is called from a background
	// goroutine when voice activity drops out during a recording.
	OnSilence func(SilenceEvent)

	mu      sync.Mutex
	enc     encoder.Encoder
	pending []int16
	active  bool
	encErr  error
	started time.Time
	vad     *voiceDetector
	monStop chan struct{}
}

func NewMic(capture audio.CaptureDevice, format, dir string) *MicRecorder {
	if dir == "" {
		dir = os.TempDir()
	}
	return &MicRecorder{capture: capture, format: format, dir: dir}
}

func (m *MicRecorder) Start() error {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return fmt.Errorf("recorder already active")
	}

	enc, err := encoder.New(m.format)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.enc = enc
	m.pending = m.pending[:0]
	m.encErr = nil
	m.started = time.Now()
	m.active = true

	if m.OnSilence != nil {
		if vd, err := newVoiceDetector(); err != nil {
			log.Warnf("voice detection unavailable: %v", err)
		} else {
			m.vad = vd
			m.monStop = make(chan struct{})
			go m.monitorSilence(vd, m.monStop)
		}
	}
	m.mu.Unlock()

	// A capture backend may deliver PCM into onData from inside Start,
	// so the lock must not be held across this call.
	m.capture.SetCallback(m.onData)
	if err := m.capture.Start(); err != nil {
		m.capture.ClearCallback()
		m.mu.Lock()
		m.stopMonitorLocked()
		m.active = false
		m.mu.Unlock()
		return fmt.Errorf("starting capture: %w", err)
	}
	return nil
}

func (m *MicRecorder) monitorSilence(vd *voiceDetector, stop <-chan struct{}) {
	mon := newSilenceMonitor()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if ev := mon.Tick(vd.hasSpeechTick()); ev != SilenceNone {
				m.OnSilence(ev)
			}
		}
	}
}

func (m *MicRecorder) stopMonitorLocked() {
	if m.monStop != nil {
		close(m.monStop)
		m.monStop = nil
	}
	m.vad = nil
}

func (m *MicRecorder) onData(data []byte, _ uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active || m.encErr != nil {
		return
	}
	if m.vad != nil {
		m.vad.Process(data)
	}
	for i := 0; i+1 < len(data); i += 2 {
		m.pending = append(m.pending, int16(binary.LittleEndian.Uint16(data[i:])))
	}
	for len(m.pending) >= encoder.BlockSize {
		if err := m.enc.EncodeBlock(m.pending[:encoder.BlockSize]); err != nil {
			m.encErr = err
			return
		}
		m.pending = m.pending[encoder.BlockSize:]
	}
}

func (m *MicRecorder) Stop() (*Recording, error) {
	m.capture.Stop()
	m.capture.ClearCallback()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return nil, fmt.Errorf("recorder not active")
	}
	m.active = false
	m.stopMonitorLocked()

	if m.encErr != nil {
		return nil, fmt.Errorf("encoding: %w", m.encErr)
	}
	if len(m.pending) > 0 {
		if err := m.enc.EncodeBlock(m.pending); err != nil {
			return nil, fmt.Errorf("encoding: %w", err)
		}
		m.pending = m.pending[:0]
	}
	if err := m.enc.Close(); err != nil {
		return nil, fmt.Errorf("finalizing audio: %w", err)
	}

	frames := m.enc.TotalFrames()
	if frames < minFrames {
		return nil, ErrNoAudio
	}

	f, err := os.CreateTemp(m.dir, "rec-*."+m.enc.Ext())
	if err != nil {
		return nil, fmt.Errorf("creating recording file: %w", err)
	}
	if _, err := f.Write(m.enc.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("writing recording file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("closing recording file: %w", err)
	}

	return &Recording{
		Path:     f.Name(),
		Format:   m.enc.Ext(),
		Frames:   frames,
		Duration: time.Duration(float64(frames) / float64(encoder.SampleRate) * float64(time.Second)),
	}, nil
}
