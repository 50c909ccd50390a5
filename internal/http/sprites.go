package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"speakup-api/internal/apperr"
	"speakup-api/internal/service/sprites"
)

// spriteFormSlack is headroom over the sprite byte cap for multipart framing,
// so the reader cap trips only on genuinely oversized image data.
const spriteFormSlack = 64 << 10

type spriteActionResponse struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
}

type spriteListResponse struct {
	UserID  string   `json:"user_id"`
	Sprites []string `json:"sprites"`
}

type spritePendingResponse struct {
	Pending map[string][]string `json:"pending"`
}

// requireSprites answers 503 while the sprite workflow is disabled, which is
// the case when object storage is not configured.
func (h *handlers) requireSprites(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.Sprites == nil {
			writeError(w, apperr.New(apperr.ReasonConfigurationMissing, "sprite storage is not configured"))
			return
		}
		next(w, r)
	}
}

func (h *handlers) handleSpriteUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.Limits.MaxSpriteBytes+spriteFormSlack)

	upload, err := readImageUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	filename, err := h.Sprites.SavePending(r.Context(), r.FormValue("user_id"), upload.data, upload.contentType, upload.filename)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, spriteActionResponse{
		OK:       true,
		Message:  "Sprite uploaded for review",
		Filename: filename,
	})
}

func (h *handlers) handleSpriteApprove(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.Limits.MaxSpriteBytes+spriteFormSlack)

	upload, err := readImageUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	userID := r.FormValue("user_id")
	spriteName := r.FormValue("sprite_name")
	if userID == "" || spriteName == "" {
		writeError(w, apperr.New(apperr.ReasonBadRequest, "user_id and sprite_name are required"))
		return
	}

	filename, err := h.Sprites.Approve(r.Context(), userID, spriteName, upload.data, upload.contentType, r.FormValue("pending_name"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, spriteActionResponse{
		OK:       true,
		Message:  fmt.Sprintf("Sprite approved for user %s", userID),
		Filename: filename,
	})
}

func (h *handlers) handleSpritePending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Sprites.ListPending(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spritePendingResponse{Pending: pending})
}

func (h *handlers) handleSpriteList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	names, err := h.Sprites.ListApproved(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spriteListResponse{UserID: userID, Sprites: names})
}

// handleSpriteImage serves a sprite, preferring a signed-URL redirect so the
// client fetches from the store directly; bytes are the fallback.
func (h *handlers) handleSpriteImage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	filename := chi.URLParam(r, "filename")
	pending := r.URL.Query().Get("pending") == "true"

	if url, err := h.Sprites.SpriteURL(r.Context(), userID, filename, pending); err == nil {
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
		return
	}

	data, err := h.Sprites.GetSprite(r.Context(), userID, filename, pending)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", sprites.MediaTypeFor(filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handlers) handleSpriteReject(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	filename := chi.URLParam(r, "filename")

	if err := h.Sprites.DeletePending(r.Context(), userID, filename); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spriteActionResponse{OK: true, Message: "Pending sprite deleted"})
}

type imageUpload struct {
	data        []byte
	contentType string
	filename    string
}

// readImageUpload pulls the image from the multipart "file" field. Parsing
// the form here also makes query and form values available to the handler.
func readImageUpload(r *http.Request) (imageUpload, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return imageUpload{}, mapUploadErr(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return imageUpload{}, mapUploadErr(err)
	}
	return imageUpload{
		data:        data,
		contentType: header.Header.Get("Content-Type"),
		filename:    header.Filename,
	}, nil
}
