package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"

	"murmur/recorder"
)

var errWorkerBusy = errors.New("transcription already in flight")

// worker runs transcription off the event loop, at most one job at a
// time. The outcome is posted back into the loop so all session state
// stays single-threaded.
type worker struct {
	transcriber Transcriber
	post        func(any)
	busy        atomic.Bool
}

func (w *worker) submit(sid uuid.UUID, rec *recorder.Recording) error {
	if !w.busy.CompareAndSwap(false, true) {
		return errWorkerBusy
	}
	go func() {
		text, err := w.transcriber.Transcribe(context.Background(), rec)
		w.busy.Store(false)
		w.post(jobOutcome{session: sid, rec: rec, text: text, err: err})
	}()
	return nil
}
