package recorder

import (
	"sync"
	"time"
)

// FakeRecorder is an in-memory Recorder with injectable failures.
type FakeRecorder struct {
	StartErr error
	StopErr  error

	mu     sync.Mutex
	active bool
	starts int
	stops  int
}

func NewFakeRecorder() *FakeRecorder {
	return &FakeRecorder{}
}

func (f *FakeRecorder) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.StartErr != nil {
		return f.StartErr
	}
	f.active = true
	return nil
}

func (f *FakeRecorder) Stop() (*Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.active = false
	if f.StopErr != nil {
		return nil, f.StopErr
	}
	return &Recording{
		Path:     "", // nothing on disk to discard
		Format:   "wav",
		Frames:   16000,
		Duration: time.Second,
	}, nil
}

func (f *FakeRecorder) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *FakeRecorder) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}
