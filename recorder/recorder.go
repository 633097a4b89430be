// Package recorder owns the capture-to-file path of a recording session:
// start the microphone, stream PCM into an encoder, finalize to a file.
package recorder

import (
	"errors"
	"os"
	"time"
)

// ErrNoAudio is returned by Stop when the recording is too short to
// contain speech.
var ErrNoAudio = errors.New("recording too short")

// Recording is the finalized audio handle. It is owned by exactly one
// session at a time and released with Discard.
type Recording struct {
	Path     string
	Format   string
	Frames   uint64
	Duration time.Duration
}

func (r *Recording) Discard() {
	if r.Path != "" {
		os.Remove(r.Path)
	}
}

type Recorder interface {
	Start() error
	Stop() (*Recording, error)
}
