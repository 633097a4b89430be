package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"murmur/deliver"
	"murmur/gesture"
	"murmur/recorder"
	"murmur/transcriber"
)

type captureSink struct {
	mu     sync.Mutex
	states []State
	errs   []ErrorKind
}

func (c *captureSink) StateChanged(st State) {
	c.mu.Lock()
	c.states = append(c.states, st)
	c.mu.Unlock()
}

func (c *captureSink) SessionError(kind ErrorKind, _ string) {
	c.mu.Lock()
	c.errs = append(c.errs, kind)
	c.mu.Unlock()
}

func (c *captureSink) snapshot() []State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]State(nil), c.states...)
}

func (c *captureSink) errorKinds() []ErrorKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ErrorKind(nil), c.errs...)
}

func (c *captureSink) waitStates(t *testing.T, want ...State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := c.snapshot()
		if statesEqual(got, want) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state sequence = %v, want %v", c.snapshot(), want)
}

func statesEqual(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type countingTranscriber struct {
	inner *transcriber.FakeTranscriber
	calls atomic.Int32
}

func (c *countingTranscriber) Transcribe(ctx context.Context, rec *recorder.Recording) (string, error) {
	c.calls.Add(1)
	return c.inner.Transcribe(ctx, rec)
}

type harness struct {
	orch  *Orchestrator
	rec   *recorder.FakeRecorder
	trans *countingTranscriber
	del   *deliver.FakeDeliverer
	sink  *captureSink
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{
		rec:   recorder.NewFakeRecorder(),
		trans: &countingTranscriber{inner: transcriber.NewFake("hello world", nil)},
		del:   deliver.NewFake(),
		sink:  &captureSink{},
	}
	opts := Options{
		HoldThreshold: 40 * time.Millisecond,
		Recorder:      h.rec,
		Transcriber:   h.trans,
		Deliverer:     h.del,
		Status:        h.sink,
	}
	if mutate != nil {
		mutate(&opts)
	}
	h.orch = New(opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.orch.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func (h *harness) press(origin gesture.Origin) {
	h.orch.Post(gesture.Event{Kind: gesture.Down, Origin: origin, At: time.Now()})
}

func (h *harness) release(origin gesture.Origin) {
	h.orch.Post(gesture.Event{Kind: gesture.Up, Origin: origin, At: time.Now()})
}

func TestTapDoesNotRecord(t *testing.T) {
	h := newHarness(t, nil)
	h.press(gesture.Pointer)
	h.release(gesture.Pointer)

	h.sink.waitStates(t, StatePressed, StateIdle)
	// Wait past the threshold: the canceled timer must stay silent.
	time.Sleep(120 * time.Millisecond)
	h.sink.waitStates(t, StatePressed, StateIdle)
	if h.rec.Starts() != 0 {
		t.Fatalf("recorder started %d times after a tap", h.rec.Starts())
	}
}

func TestHoldDeliversTranscription(t *testing.T) {
	h := newHarness(t, nil)
	h.press(gesture.Pointer)
	time.Sleep(120 * time.Millisecond)
	h.release(gesture.Pointer)

	h.sink.waitStates(t, StatePressed, StateRecording, StateTranscribing, StateDelivering, StateIdle)
	if got := h.del.Texts(); len(got) != 1 || got[0] != "hello world" {
		t.Fatalf("delivered %v, want [hello world]", got)
	}
	if h.orch.Completed() != 1 {
		t.Fatalf("completed = %d, want 1", h.orch.Completed())
	}
}

func TestDuplicateDownIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.press(gesture.Pointer)
	time.Sleep(120 * time.Millisecond)
	h.press(gesture.Hotkey) // second source while recording
	h.press(gesture.Pointer)
	h.release(gesture.Pointer)

	h.sink.waitStates(t, StatePressed, StateRecording, StateTranscribing, StateDelivering, StateIdle)
	if h.rec.Starts() != 1 {
		t.Fatalf("recorder started %d times, want 1", h.rec.Starts())
	}
}

func TestRecorderStartFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.StartErr = errors.New("mic unavailable")
	h.press(gesture.Pointer)

	h.sink.waitStates(t, StatePressed, StateIdle)
	if kinds := h.sink.errorKinds(); len(kinds) != 1 || kinds[0] != ErrCapture {
		t.Fatalf("error kinds = %v, want [capture]", kinds)
	}
	if h.trans.calls.Load() != 0 {
		t.Fatal("transcriber invoked after capture failure")
	}
}

func TestRecorderStopFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.StopErr = errors.New("stream died")
	h.press(gesture.Pointer)
	time.Sleep(120 * time.Millisecond)
	h.release(gesture.Pointer)

	h.sink.waitStates(t, StatePressed, StateRecording, StateIdle)
	if kinds := h.sink.errorKinds(); len(kinds) != 1 || kinds[0] != ErrCapture {
		t.Fatalf("error kinds = %v, want [capture]", kinds)
	}
	if h.trans.calls.Load() != 0 {
		t.Fatal("transcriber invoked after capture failure")
	}
}

func TestTooShortRecordingIsQuiet(t *testing.T) {
	h := newHarness(t, nil)
	h.rec.StopErr = recorder.ErrNoAudio
	h.press(gesture.Pointer)
	time.Sleep(120 * time.Millisecond)
	h.release(gesture.Pointer)

	h.sink.waitStates(t, StatePressed, StateRecording, StateIdle)
	if kinds := h.sink.errorKinds(); len(kinds) != 0 {
		t.Fatalf("error kinds = %v, want none for a too-short recording", kinds)
	}
}

func TestTranscriptionFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.trans.inner.Err = errors.New("api unreachable")
	h.press(gesture.Pointer)
	time.Sleep(120 * time.Millisecond)
	h.release(gesture.Pointer)

	h.sink.waitStates(t, StatePressed, StateRecording, StateTranscribing, StateIdle)
	if kinds := h.sink.errorKinds(); len(kinds) != 1 || kinds[0] != ErrTranscription {
		t.Fatalf("error kinds = %v, want [transcription]", kinds)
	}
	if got := h.del.Texts(); len(got) != 0 {
		t.Fatalf("delivered %v after transcription failure", got)
	}
}

func TestDeliveryFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.del.Err = errors.New("clipboard busy")
	h.press(gesture.Pointer)
	time.Sleep(120 * time.Millisecond)
	h.release(gesture.Pointer)

	h.sink.waitStates(t, StatePressed, StateRecording, StateTranscribing, StateDelivering, StateIdle)
	if kinds := h.sink.errorKinds(); len(kinds) != 1 || kinds[0] != ErrDelivery {
		t.Fatalf("error kinds = %v, want [delivery]", kinds)
	}
}

func TestEmptyTranscriptionSkipsDelivery(t *testing.T) {
	h := newHarness(t, nil)
	h.trans.inner.Text = ""
	h.press(gesture.Pointer)
	time.Sleep(120 * time.Millisecond)
	h.release(gesture.Pointer)

	h.sink.waitStates(t, StatePressed, StateRecording, StateTranscribing, StateIdle)
	if got := h.del.Texts(); len(got) != 0 {
		t.Fatalf("delivered %v, want nothing for empty text", got)
	}
	if kinds := h.sink.errorKinds(); len(kinds) != 0 {
		t.Fatalf("error kinds = %v, want none", kinds)
	}
}

// A hotkey tap run through MinHold must produce the same state sequence
// as a held pointer press.
func TestHotkeyTapEqualsPointerHold(t *testing.T) {
	h := newHarness(t, nil)
	fake := gesture.NewFake(gesture.Hotkey)
	watcher := gesture.NewMinHold(fake, 40*time.Millisecond)
	if err := watcher.Start(h.orch.Post); err != nil {
		t.Fatal(err)
	}
	defer watcher.Stop()

	fake.SimDown()
	fake.SimUp() // instant tap, Up is synthesized past the threshold

	h.sink.waitStates(t, StatePressed, StateRecording, StateTranscribing, StateDelivering, StateIdle)
	if got := h.del.Texts(); len(got) != 1 {
		t.Fatalf("delivered %v, want one text", got)
	}
}

func TestStaleOutcomeDiscarded(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		slow := transcriber.NewFake("late text", nil)
		slow.Delay = 150 * time.Millisecond
		o.Transcriber = slow
	})
	h.press(gesture.Pointer)
	time.Sleep(120 * time.Millisecond)
	h.release(gesture.Pointer)
	h.sink.waitStates(t, StatePressed, StateRecording, StateTranscribing)

	// Session dies while the job is still in flight.
	h.orch.Abandon("test teardown")
	h.sink.waitStates(t, StatePressed, StateRecording, StateTranscribing, StateIdle)

	// A fresh press, still held while the late outcome lands: the
	// outcome belongs to the dead session and must be discarded.
	h.press(gesture.Pointer)
	time.Sleep(300 * time.Millisecond)

	if got := h.del.Texts(); len(got) != 0 {
		t.Fatalf("delivered %v, stale outcome leaked through", got)
	}
	h.sink.waitStates(t,
		StatePressed, StateRecording, StateTranscribing, StateIdle,
		StatePressed, StateRecording)
}

func TestSecondJobRejectedWhileBusy(t *testing.T) {
	w := &worker{
		transcriber: func() Transcriber {
			slow := transcriber.NewFake("x", nil)
			slow.Delay = 200 * time.Millisecond
			return slow
		}(),
		post: func(any) {},
	}
	if err := w.submit(uuid.New(), &recorder.Recording{}); err != nil {
		t.Fatal(err)
	}
	if err := w.submit(uuid.New(), &recorder.Recording{}); !errors.Is(err, errWorkerBusy) {
		t.Fatalf("second submit err = %v, want worker busy", err)
	}
}
