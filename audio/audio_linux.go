//go:build linux

package audio

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

const (
	// Software gain on top of the boosted source volume. Dictation mics
	// at default levels sit well below full scale.
	captureGain = 8

	captureLatency = 0.05 // seconds

	// Source volume as a multiple of proto.VolumeNorm.
	volumeBoost = 3
)

type pulseContext struct {
	client *pulse.Client
}

// NewContext connects to the PulseAudio (or pipewire-pulse) daemon.
func NewContext() (Context, error) {
	client, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("connecting to pulseaudio: %w", err)
	}
	return &pulseContext{client: client}, nil
}

func (p *pulseContext) Devices() ([]DeviceInfo, error) {
	sources, err := p.client.ListSources()
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	devices := make([]DeviceInfo, 0, len(sources))
	for _, src := range sources {
		devices = append(devices, DeviceInfo{ID: src.ID(), Name: src.Name()})
	}
	return devices, nil
}

func (p *pulseContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	return &pulseCapture{client: p.client, device: device, config: config}, nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

// pulseCapture owns one record stream. The stream runs on its own
// goroutine between Start and Stop; the callback pointer is swappable
// while the stream runs.
type pulseCapture struct {
	client   *pulse.Client
	device   *DeviceInfo
	config   CaptureConfig
	callback atomic.Pointer[DataCallback]

	mu     sync.Mutex
	stream *pulse.RecordStream
	stop   chan struct{}
	done   chan struct{}
}

func (c *pulseCapture) SetCallback(cb DataCallback) {
	c.callback.Store(&cb)
}

func (c *pulseCapture) ClearCallback() {
	c.callback.Store(nil)
}

func (c *pulseCapture) DeviceName() string {
	if c.device != nil {
		return c.device.Name
	}
	return "system default"
}

// amplify applies captureGain, clipped to the s16 range.
func amplify(s int16) int16 {
	v := int32(s) * captureGain
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// writer converts each pulse buffer to little-endian bytes and hands it
// to the current callback. A cleared callback discards the buffer.
func (c *pulseCapture) writer() pulse.Int16Writer {
	return func(buf []int16) (int, error) {
		cb := c.callback.Load()
		if cb == nil || len(buf) == 0 {
			return len(buf), nil
		}
		data := make([]byte, len(buf)*2)
		for i, s := range buf {
			binary.LittleEndian.PutUint16(data[i*2:], uint16(amplify(s)))
		}
		(*cb)(data, uint32(len(buf)))
		return len(buf), nil
	}
}

func (c *pulseCapture) recordOptions() []pulse.RecordOption {
	opts := []pulse.RecordOption{
		pulse.RecordMono,
		pulse.RecordSampleRate(int(c.config.SampleRate)),
		pulse.RecordLatency(captureLatency),
		pulse.RecordRawOption(func(r *proto.CreateRecordStream) {
			r.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm) * volumeBoost}
		}),
	}
	if c.device != nil {
		if src, err := c.client.SourceByID(c.device.ID); err == nil && src != nil {
			opts = append(opts, pulse.RecordSource(src))
		}
	}
	return opts
}

func (c *pulseCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stream, err := c.client.NewRecord(c.writer(), c.recordOptions()...)
	if err != nil {
		return fmt.Errorf("opening record stream: %w", err)
	}
	c.stream = stream
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		stream.Start()
		<-c.stop
		stream.Stop()
		stream.Close()
	}()
	return nil
}

func (c *pulseCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return
	}
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	<-c.done
}

func (c *pulseCapture) Close() {
	c.Stop()
}
