// Package transcriber converts a finished recording into text. The call
// blocks for the duration of the provider round trip; the orchestrator
// offloads it to its worker.
package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"murmur/recorder"
)

type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	Transcribe(ctx context.Context, rec *recorder.Recording) (string, error)
}

// New picks a provider from the environment.
func New() (Transcriber, error) {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return NewGroq(key), nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAI(key), nil
	}
	return nil, fmt.Errorf("set GROQ_API_KEY or OPENAI_API_KEY environment variable")
}

type whisperAPI struct {
	client *http.Client
	apiURL string
	apiKey string
	model  string
	lang   string
}

func newWhisperAPI(apiURL, apiKey, model string) whisperAPI {
	return whisperAPI{
		client: &http.Client{Timeout: 60 * time.Second},
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
	}
}

func (w *whisperAPI) SetLanguage(lang string) { w.lang = lang }

func (w *whisperAPI) transcribe(ctx context.Context, rec *recorder.Recording) (string, error) {
	audioData, err := os.ReadFile(rec.Path)
	if err != nil {
		return "", fmt.Errorf("reading recording: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+rec.Format)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audioData); err != nil {
		return "", err
	}

	writer.WriteField("model", w.model)
	writer.WriteField("response_format", "json")
	if w.lang != "" {
		writer.WriteField("language", w.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", w.apiURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("response parse error: %w", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}
