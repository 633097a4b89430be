// Package orchestrator serializes gesture events, hold-timer fires and
// transcription outcomes through a single event loop. All session state
// lives on that loop, so there are no locks around it: watchers, timers
// and the transcription worker only ever post messages.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"murmur/gesture"
	"murmur/log"
	"murmur/recorder"
)

// Transcriber converts a finished recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, rec *recorder.Recording) (string, error)
}

// Deliverer hands the final text to the user.
type Deliverer interface {
	Deliver(text string) error
}

// DefaultHoldThreshold is how long a press must last before recording
// starts. Shorter presses are taps and do nothing.
const DefaultHoldThreshold = 350 * time.Millisecond

type Options struct {
	HoldThreshold time.Duration
	Recorder      recorder.Recorder
	Transcriber   Transcriber
	Deliverer     Deliverer
	Status        StatusSink
}

// internal loop messages
type holdElapsed struct {
	session uuid.UUID
}

type jobOutcome struct {
	session uuid.UUID
	rec     *recorder.Recording
	text    string
	err     error
}

type abandonReq struct {
	reason string
}

type session struct {
	id        uuid.UUID
	origin    gesture.Origin
	state     State
	timer     *time.Timer
	startedAt time.Time
}

type Orchestrator struct {
	opts      Options
	events    chan any
	worker    *worker
	cur       *session
	completed int
}

func New(opts Options) *Orchestrator {
	if opts.HoldThreshold <= 0 {
		opts.HoldThreshold = DefaultHoldThreshold
	}
	if opts.Status == nil {
		opts.Status = NopSink{}
	}
	o := &Orchestrator{
		opts:   opts,
		events: make(chan any, 64),
	}
	o.worker = &worker{transcriber: opts.Transcriber, post: o.post}
	return o
}

// Post enqueues a gesture event. It never blocks the caller: watchers
// run on their own goroutines and must not stall on a busy loop. A full
// queue drops the event, which only happens if the loop is wedged.
func (o *Orchestrator) Post(ev gesture.Event) {
	select {
	case o.events <- ev:
	default:
		log.Warnf("event queue full, dropping %s from %s", ev.Kind, ev.Origin)
	}
}

// Abandon tears down the active session, if any. Used on shutdown.
func (o *Orchestrator) Abandon(reason string) {
	o.post(abandonReq{reason: reason})
}

// Completed reports how many sessions delivered text so far. Only
// meaningful after Run has returned.
func (o *Orchestrator) Completed() int {
	return o.completed
}

// post is for internal producers (hold timer, worker) whose messages
// must not be lost. Unlike Post it blocks until the loop accepts.
func (o *Orchestrator) post(ev any) {
	o.events <- ev
}

// Run consumes events until ctx is canceled. It is the only goroutine
// that touches session state.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			o.abandon("shutdown")
			return
		case ev := <-o.events:
			switch ev := ev.(type) {
			case gesture.Event:
				o.handleGesture(ev)
			case holdElapsed:
				o.handleHoldElapsed(ev)
			case jobOutcome:
				o.handleJobOutcome(ev)
			case abandonReq:
				o.abandon(ev.reason)
			}
		}
	}
}

func (o *Orchestrator) handleGesture(ev gesture.Event) {
	switch ev.Kind {
	case gesture.Down:
		if o.cur != nil {
			log.Infof("ignoring %s down, session %s is %s", ev.Origin, o.cur.id, o.cur.state)
			return
		}
		s := &session{
			id:        uuid.New(),
			origin:    ev.Origin,
			startedAt: ev.At,
		}
		sid := s.id
		s.timer = time.AfterFunc(o.opts.HoldThreshold, func() {
			o.post(holdElapsed{session: sid})
		})
		o.cur = s
		log.SessionStart(sid.String(), ev.Origin.String())
		o.setState(StatePressed)
	case gesture.Up:
		if o.cur == nil {
			return
		}
		switch o.cur.state {
		case StatePressed:
			// Tap: released before the hold threshold.
			o.cur.timer.Stop()
			log.Infof("session %s: tap, no recording", o.cur.id)
			o.finish(StateIdle)
		case StateRecording:
			o.stopAndSubmit()
		default:
			// Release after the session already moved on.
		}
	}
}

func (o *Orchestrator) handleHoldElapsed(he holdElapsed) {
	if o.cur == nil || o.cur.id != he.session || o.cur.state != StatePressed {
		// Canceled by a tap, or a fire from an older session.
		return
	}
	if err := o.opts.Recorder.Start(); err != nil {
		o.fail(ErrCapture, err)
		return
	}
	o.setState(StateRecording)
}

func (o *Orchestrator) stopAndSubmit() {
	rec, err := o.opts.Recorder.Stop()
	if errors.Is(err, recorder.ErrNoAudio) {
		log.Infof("session %s: too short, no audio captured", o.cur.id)
		o.finish(StateIdle)
		return
	}
	if err != nil {
		o.fail(ErrCapture, err)
		return
	}
	o.setState(StateTranscribing)
	if err := o.worker.submit(o.cur.id, rec); err != nil {
		rec.Discard()
		o.fail(ErrTranscription, err)
	}
}

func (o *Orchestrator) handleJobOutcome(jo jobOutcome) {
	if jo.rec != nil {
		jo.rec.Discard()
	}
	if o.cur == nil || o.cur.id != jo.session || o.cur.state != StateTranscribing {
		log.Infof("discarding stale transcription outcome for session %s", jo.session)
		return
	}
	if jo.err != nil {
		o.fail(ErrTranscription, jo.err)
		return
	}
	if jo.text == "" {
		log.Infof("session %s: empty transcription, nothing to deliver", o.cur.id)
		o.finish(StateIdle)
		return
	}
	o.setState(StateDelivering)
	if err := o.opts.Deliverer.Deliver(jo.text); err != nil {
		o.fail(ErrDelivery, err)
		return
	}
	log.TranscriptionText(jo.text)
	o.completed++
	o.finish(StateIdle)
}

func (o *Orchestrator) abandon(reason string) {
	if o.cur == nil {
		return
	}
	log.Infof("session %s abandoned: %s", o.cur.id, reason)
	if o.cur.state == StateRecording {
		if rec, err := o.opts.Recorder.Stop(); err == nil && rec != nil {
			rec.Discard()
		}
	}
	o.finish(StateIdle)
}

func (o *Orchestrator) setState(st State) {
	log.StateChange(o.cur.id.String(), o.cur.state.String(), st.String())
	o.cur.state = st
	o.opts.Status.StateChanged(st)
}

// finish ends the current session and reports the terminal state, which
// is always Idle today.
func (o *Orchestrator) finish(st State) {
	if o.cur.timer != nil {
		o.cur.timer.Stop()
	}
	o.cur = nil
	o.opts.Status.StateChanged(st)
}

func (o *Orchestrator) fail(kind ErrorKind, err error) {
	log.SessionError(o.cur.id.String(), kind.String(), err.Error())
	o.opts.Status.SessionError(kind, err.Error())
	o.finish(StateIdle)
}
