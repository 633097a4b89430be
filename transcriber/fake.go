package transcriber

import (
	"context"
	"time"

	"murmur/recorder"
)

// FakeTranscriber returns canned text (or a canned error) after an
// optional delay, for orchestrator tests and the headless test mode.
type FakeTranscriber struct {
	Text  string
	Err   error
	Delay time.Duration
	lang  string
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{Text: text, Err: err}
}

func (f *FakeTranscriber) Name() string            { return "fake" }
func (f *FakeTranscriber) SetLanguage(lang string) { f.lang = lang }

func (f *FakeTranscriber) Transcribe(ctx context.Context, _ *recorder.Recording) (string, error) {
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}
