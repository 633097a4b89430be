package transcriber

import (
	"context"
	"fmt"

	"murmur/recorder"
)

type OpenAI struct {
	whisperAPI
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		whisperAPI: newWhisperAPI(
			"https://api.openai.com/v1/audio/transcriptions",
			apiKey,
			"gpt-4o-transcribe",
		),
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Transcribe(ctx context.Context, rec *recorder.Recording) (string, error) {
	text, err := o.transcribe(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	return text, nil
}
