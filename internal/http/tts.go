package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"speakup-api/internal/apperr"
	"speakup-api/internal/service/tts"
)

type ttsRequest struct {
	Text   string `json:"text"`
	Voice  string `json:"voice,omitempty"`
	Lang   string `json:"lang,omitempty"`
	Format string `json:"format,omitempty"`
}

type speakersResponse struct {
	Speakers []string `json:"speakers"`
	Default  string   `json:"default"`
}

func (h *handlers) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Wrap(err, apperr.ReasonBadRequest, "decoding synthesis request"))
		return
	}

	// Blank text answers a bare 400 with an empty body: audio clients treat
	// any response body as playable content.
	if strings.TrimSpace(req.Text) == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	data, mediaType, err := h.TTS.Render(r.Context(), tts.Request{
		Text:     req.Text,
		Voice:    req.Voice,
		Language: req.Lang,
		Format:   req.Format,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", mediaType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handlers) handleSpeakers(w http.ResponseWriter, r *http.Request) {
	voices, def, err := h.TTS.Speakers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, speakersResponse{Speakers: voices, Default: def})
}
