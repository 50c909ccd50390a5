package mock

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"speakup-api/internal/audio"
	"speakup-api/internal/service/stt"
)

var _ stt.Recognizer = (*Adapter)(nil)

func testClip() audio.Clip {
	return audio.Clip{WAV: []byte("RIFFfakewav"), SampleRate: 16000, Duration: 2.0}
}

func TestAdapter_New(t *testing.T) {
	adapter := New()
	if adapter == nil {
		t.Fatal("expected non-nil adapter")
	}
	if adapter.Name() != "mock" {
		t.Errorf("expected name 'mock', got %s", adapter.Name())
	}
}

func TestRecognize_ReturnsUtterance(t *testing.T) {
	adapter := New()

	result, err := adapter.Recognize(context.Background(), testClip(), "ru")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Text == "" {
		t.Error("expected non-empty transcript")
	}
	if len(result.Events) == 0 {
		t.Fatal("expected recognition events")
	}
	if len(result.Events) != len(strings.Fields(result.Text)) {
		t.Errorf("expected one event per word: %d events for %q", len(result.Events), result.Text)
	}
}

func TestRecognize_CyclesThroughUtterances(t *testing.T) {
	adapter := New()

	seen := make(map[string]bool)
	for i := 0; i < len(DefaultUtterances); i++ {
		result, err := adapter.Recognize(context.Background(), testClip(), "ru")
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
		seen[result.Text] = true
	}

	if len(seen) != len(DefaultUtterances) {
		t.Errorf("expected %d distinct utterances, got %d", len(DefaultUtterances), len(seen))
	}

	// One more call wraps around to the first utterance
	result, err := adapter.Recognize(context.Background(), testClip(), "ru")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen[result.Text] {
		t.Errorf("expected cycle to wrap, got new utterance %q", result.Text)
	}
}

func TestRecognize_UnscoredWordsHaveNilConfidence(t *testing.T) {
	adapter := New()

	var sawNil, sawScored bool
	for i := 0; i < len(DefaultUtterances); i++ {
		result, err := adapter.Recognize(context.Background(), testClip(), "ru")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, ev := range result.Events {
			if ev.Confidence == nil {
				sawNil = true
			} else {
				sawScored = true
				if *ev.Confidence < 0 || *ev.Confidence > 1 {
					t.Errorf("confidence out of range: %v", *ev.Confidence)
				}
			}
		}
	}

	if !sawNil {
		t.Error("expected at least one utterance without scores")
	}
	if !sawScored {
		t.Error("expected at least one utterance with scores")
	}
}

func TestRecognize_ContextCanceled(t *testing.T) {
	adapter := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Recognize(ctx, testClip(), "ru")
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestRecognize_ThreadSafety(t *testing.T) {
	adapter := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			adapter.Recognize(ctx, testClip(), "ru")
		}()
	}
	wg.Wait()
}

func TestDefaultUtterances(t *testing.T) {
	if len(DefaultUtterances) != 5 {
		t.Errorf("expected 5 default utterances, got %d", len(DefaultUtterances))
	}

	for i, utt := range DefaultUtterances {
		if len(utt.Words) == 0 {
			t.Errorf("utterance %d has no words", i)
		}
		for j, word := range utt.Words {
			if word.Text == "" {
				t.Errorf("utterance %d word %d has empty text", i, j)
			}
			if word.Score > 1 {
				t.Errorf("utterance %d word %d has invalid score %f", i, j, word.Score)
			}
		}
	}
}
