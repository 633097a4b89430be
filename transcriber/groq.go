package transcriber

import (
	"context"
	"fmt"

	"murmur/recorder"
)

type Groq struct {
	whisperAPI
}

func NewGroq(apiKey string) *Groq {
	return &Groq{
		whisperAPI: newWhisperAPI(
			"https://api.groq.com/openai/v1/audio/transcriptions",
			apiKey,
			"whisper-large-v3-turbo",
		),
	}
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) Transcribe(ctx context.Context, rec *recorder.Recording) (string, error) {
	text, err := g.transcribe(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}
	return text, nil
}
