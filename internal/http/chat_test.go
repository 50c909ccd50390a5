package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"speakup-api/internal/models"
	"speakup-api/internal/service/chat"
)

// capturedChatRequest mirrors the completion backend's wire shape.
type capturedChatRequest struct {
	Model    string                    `json:"model"`
	Stream   bool                      `json:"stream"`
	Messages []models.ConversationTurn `json:"messages"`
}

func chatRouter(t *testing.T, backendURL string) http.Handler {
	t.Helper()
	return newTestRouter(t, Dependencies{
		Relay: chat.New(chat.Config{BaseURL: backendURL, DefaultModel: "qwen2.5:1b"}),
	})
}

func TestChatSync_Success(t *testing.T) {
	var captured capturedChatRequest
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("backend path = %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding backend request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "Привет! Как дела?"},
		})
	}))
	defer backend.Close()

	router := chatRouter(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/chat/sync", strings.NewReader(`{"message":"привет"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[syncChatResponse](t, rec)
	if resp.Response != "Привет! Как дела?" {
		t.Errorf("response = %q", resp.Response)
	}

	if captured.Stream {
		t.Error("sync request went out with stream=true")
	}
	if captured.Model != "qwen2.5:1b" {
		t.Errorf("model = %q, want configured default", captured.Model)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != models.RoleUser {
		t.Errorf("messages = %+v, want single user turn", captured.Messages)
	}
}

// Metrics in the sync request must reach the backend as a composed system
// turn ahead of the user message.
func TestChatSync_MetricsComposeSystemTurn(t *testing.T) {
	var captured capturedChatRequest
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "ок"},
		})
	}))
	defer backend.Close()

	router := chatRouter(t, backend.URL)

	body := `{"message":"я хочу играть","metrics":{"avg_confidence":0.4,"wpm":40,"word_count":4,"clarity_level":"low"}}`
	req := httptest.NewRequest(http.MethodPost, "/chat/sync", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("backend got %d messages, want system + user", len(captured.Messages))
	}
	if captured.Messages[0].Role != models.RoleSystem {
		t.Errorf("first turn role = %q, want system", captured.Messages[0].Role)
	}
	if captured.Messages[1].Content != "я хочу играть" {
		t.Errorf("user turn = %q", captured.Messages[1].Content)
	}
}

func TestChatSync_BackendError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer backend.Close()

	router := chatRouter(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/chat/sync", strings.NewReader(`{"message":"привет"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[errorBody](t, rec)
	if resp.Error != "upstream_error" {
		t.Errorf("error = %q, want upstream_error", resp.Error)
	}
	if !strings.Contains(resp.Detail, "model exploded") {
		t.Errorf("detail = %q, want backend message included", resp.Detail)
	}
}

func TestChatSync_BackendUnreachable(t *testing.T) {
	router := chatRouter(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/chat/sync", strings.NewReader(`{"message":"привет"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[errorBody](t, rec)
	if resp.Error != "upstream_unavailable" {
		t.Errorf("error = %q, want upstream_unavailable", resp.Error)
	}
}

func TestChatSync_MissingMessage(t *testing.T) {
	router := chatRouter(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/chat/sync", strings.NewReader(`{"model":"qwen2.5:1b"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestChatSync_MalformedJSON(t *testing.T) {
	router := chatRouter(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/chat/sync", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

// The streaming endpoint relays backend chunks byte for byte.
func TestChatStream_RelaysVerbatim(t *testing.T) {
	chunks := []string{
		`{"message":{"role":"assistant","content":"При"},"done":false}` + "\n",
		`{"message":{"role":"assistant","content":"вет"},"done":true}` + "\n",
	}

	var captured capturedChatRequest
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		flusher := w.(http.Flusher)
		for _, chunk := range chunks {
			_, _ = w.Write([]byte(chunk))
			flusher.Flush()
		}
	}))
	defer backend.Close()

	router := chatRouter(t, backend.URL)

	body := `{"messages":[{"role":"user","content":"привет"}]}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/x-ndjson" {
		t.Errorf("content type = %q, want application/x-ndjson", got)
	}
	if rec.Body.String() != strings.Join(chunks, "") {
		t.Errorf("body = %q, want backend chunks verbatim", rec.Body.String())
	}
	if !captured.Stream {
		t.Error("backend request went out with stream=false")
	}
}

func TestChatStream_BackendError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer backend.Close()

	router := chatRouter(t, backend.URL)

	body := `{"messages":[{"role":"user","content":"привет"}]}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[errorBody](t, rec)
	if resp.Error != "upstream_error" {
		t.Errorf("error = %q, want upstream_error", resp.Error)
	}
}
