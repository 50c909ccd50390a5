package xtts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"speakup-api/internal/apperr"
	"speakup-api/internal/service/tts"
)

var _ tts.Synthesizer = (*Client)(nil)

func TestName(t *testing.T) {
	client := New(Config{BaseURL: "http://localhost:8020"})
	if client.Name() != "xtts" {
		t.Errorf("expected name 'xtts', got %s", client.Name())
	}
}

func TestSynthesize_Success(t *testing.T) {
	var got synthesisRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/tts" {
			t.Errorf("expected path /tts, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write([]byte("RIFFfakewav"))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	wav, err := client.Synthesize(context.Background(), "привет", "Gracie Wise", "ru")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(wav) != "RIFFfakewav" {
		t.Errorf("expected verbatim audio bytes, got %q", wav)
	}
	if got.Text != "привет" {
		t.Errorf("expected text 'привет', got %q", got.Text)
	}
	if got.Speaker != "Gracie Wise" {
		t.Errorf("expected speaker 'Gracie Wise', got %q", got.Speaker)
	}
	if got.Language != "ru" {
		t.Errorf("expected language 'ru', got %q", got.Language)
	}
}

func TestSynthesize_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "synthesis failed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.Synthesize(context.Background(), "привет", "", "ru")
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.ReasonUpstreamError) {
		t.Errorf("expected upstream_error, got %v", apperr.ReasonOf(err))
	}
}

func TestSynthesize_Unreachable(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := client.Synthesize(context.Background(), "привет", "", "ru")
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.ReasonUpstreamUnavailable) {
		t.Errorf("expected upstream_unavailable, got %v", apperr.ReasonOf(err))
	}
}

func TestVoices_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/speakers" {
			t.Errorf("expected path /speakers, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]string{"Gracie Wise", "Ana Florence"})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	voices, err := client.Voices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(voices) != 2 || voices[0] != "Gracie Wise" {
		t.Errorf("unexpected voices: %v", voices)
	}
}

func TestVoices_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.Voices(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.ReasonUpstreamError) {
		t.Errorf("expected upstream_error, got %v", apperr.ReasonOf(err))
	}
}

func TestNew_DefaultTimeout(t *testing.T) {
	client := New(Config{BaseURL: "http://localhost:8020"})
	if client.client.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, client.client.Timeout)
	}
}
