package orchestrator

// State is the lifecycle position of the current recording session.
// Transitions only ever happen on the orchestrator's event loop.
type State int

const (
	StateIdle State = iota
	StatePressed
	StateRecording
	StateTranscribing
	StateDelivering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePressed:
		return "pressed"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StateDelivering:
		return "delivering"
	default:
		return "unknown"
	}
}

// ErrorKind classifies which boundary a session died on.
type ErrorKind int

const (
	ErrCapture ErrorKind = iota
	ErrTranscription
	ErrDelivery
)

func (k ErrorKind) String() string {
	switch k {
	case ErrCapture:
		return "capture"
	case ErrTranscription:
		return "transcription"
	case ErrDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// StatusSink receives lifecycle notifications. Implementations must not
// block: they are called from the orchestrator's event loop.
type StatusSink interface {
	StateChanged(st State)
	SessionError(kind ErrorKind, detail string)
}

// NopSink discards all notifications.
type NopSink struct{}

func (NopSink) StateChanged(State)             {}
func (NopSink) SessionError(ErrorKind, string) {}

type fanoutSink struct {
	sinks []StatusSink
}

// Fanout combines several sinks into one.
func Fanout(sinks ...StatusSink) StatusSink {
	return &fanoutSink{sinks: sinks}
}

func (f *fanoutSink) StateChanged(st State) {
	for _, s := range f.sinks {
		s.StateChanged(st)
	}
}

func (f *fanoutSink) SessionError(kind ErrorKind, detail string) {
	for _, s := range f.sinks {
		s.SessionError(kind, detail)
	}
}
