package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"speakup-api/internal/apperr"
	"speakup-api/internal/models"
)

// EventReplyCreated is the payload event type for reply events.
const EventReplyCreated = "speech.reply.created"

// syncChatRequest is the buffered-mode request used by mobile clients.
// Character is accepted from client payloads but does not alter composition.
type syncChatRequest struct {
	Message   string                `json:"message"`
	Model     string                `json:"model,omitempty"`
	Metrics   *models.SpeechMetrics `json:"metrics,omitempty"`
	Character string                `json:"character,omitempty"`
}

type syncChatResponse struct {
	Response string `json:"response"`
}

// handleChatStream relays the backend's ndjson stream verbatim: chunks are
// flushed as they arrive and never buffered into a full reply.
func (h *handlers) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req models.ConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Wrap(err, apperr.ReasonBadRequest, "decoding chat request"))
		return
	}

	start := time.Now()
	body, err := h.Relay.Stream(r.Context(), req)
	h.Metrics.RecordChat("stream", err, string(apperr.ReasonOf(err)), time.Since(start).Seconds())
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	n, err := flushingCopy(w, body)
	h.Metrics.RecordStreamBytes(n)
	if err != nil && r.Context().Err() == nil {
		h.log.Warn().Err(err).Int64("bytes", n).Msg("Chat stream interrupted")
	}
}

func (h *handlers) handleChatSync(w http.ResponseWriter, r *http.Request) {
	var req syncChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Wrap(err, apperr.ReasonBadRequest, "decoding chat request"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, apperr.New(apperr.ReasonBadRequest, "message is required"))
		return
	}

	start := time.Now()
	reply, err := h.Relay.Sync(r.Context(), req.Message, req.Model, req.Metrics)
	h.Metrics.RecordChat("sync", err, string(apperr.ReasonOf(err)), time.Since(start).Seconds())
	if err != nil {
		writeError(w, err)
		return
	}

	h.publishReply(r.Context(), req.Model, reply)

	writeJSON(w, http.StatusOK, syncChatResponse{Response: reply})
}

// publishReply emits the reply event once the reply is complete. Publish
// failures are logged, never surfaced.
func (h *handlers) publishReply(ctx context.Context, model, reply string) {
	if h.Publisher == nil {
		return
	}
	if model == "" {
		model = h.Cfg.Chat.DefaultModel
	}

	ev := models.ReplyEvent{
		EventType: EventReplyCreated,
		RequestID: chimw.GetReqID(ctx),
		Model:     model,
		Reply:     reply,
		Timestamp: time.Now().UnixMilli(),
	}
	// Publishing is decoupled from the request lifecycle.
	if err := h.Publisher.PublishReply(context.Background(), ev.RequestID, ev); err != nil {
		h.log.Error().Err(err).Str("requestId", ev.RequestID).Msg("Reply event publish failed")
	}
}

// flushingCopy relays src chunk by chunk, flushing after every write so
// tokens reach the client as the backend produces them.
func flushingCopy(w http.ResponseWriter, src io.Reader) (int64, error) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)

	var written int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
