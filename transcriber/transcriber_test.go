package transcriber

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"murmur/recorder"
)

func testRecording(t *testing.T) *recorder.Recording {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rec.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVE"), 0644); err != nil {
		t.Fatal(err)
	}
	return &recorder.Recording{Path: path, Format: "wav"}
}

func TestWhisperAPITranscribe(t *testing.T) {
	var gotModel, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"text": "  hello world \n"})
	}))
	defer srv.Close()

	api := newWhisperAPI(srv.URL, "test-key", "whisper-large-v3-turbo")
	text, err := api.transcribe(context.Background(), testRecording(t))
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello world" {
		t.Errorf("text = %q, want %q", text, "hello world")
	}
	if gotModel != "whisper-large-v3-turbo" {
		t.Errorf("model = %q", gotModel)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth = %q", gotAuth)
	}
}

func TestWhisperAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	api := newWhisperAPI(srv.URL, "test-key", "whisper-large-v3-turbo")
	if _, err := api.transcribe(context.Background(), testRecording(t)); err == nil {
		t.Fatal("expected error on 429 response")
	}
}

func TestWhisperAPILanguageField(t *testing.T) {
	var gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		gotLang = r.FormValue("language")
		json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
	}))
	defer srv.Close()

	api := newWhisperAPI(srv.URL, "k", "m")
	api.SetLanguage("de")
	if _, err := api.transcribe(context.Background(), testRecording(t)); err != nil {
		t.Fatal(err)
	}
	if gotLang != "de" {
		t.Errorf("language = %q, want de", gotLang)
	}
}

func TestNewRequiresKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New(); err == nil {
		t.Fatal("expected error without API keys")
	}

	t.Setenv("GROQ_API_KEY", "g")
	tr, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "groq" {
		t.Errorf("provider = %q, want groq", tr.Name())
	}
}
