package http

import (
	"errors"
	"io"
	"mime"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"speakup-api/internal/apperr"
	"speakup-api/internal/audio"
	"speakup-api/internal/models"
)

// sttMetrics is the boundary shape of speech metrics: avg_confidence and wpm
// carry presentation rounding, everything upstream stays unrounded.
type sttMetrics struct {
	AvgConfidence  float64             `json:"avg_confidence"`
	WordsPerMinute float64             `json:"wpm"`
	WordCount      int                 `json:"word_count"`
	ClarityLevel   models.ClarityLevel `json:"clarity_level"`
}

type sttResponse struct {
	Text     string     `json:"text"`
	Duration float64    `json:"duration"`
	Language string     `json:"language"`
	Metrics  sttMetrics `json:"metrics"`
}

func (h *handlers) handleSTT(w http.ResponseWriter, r *http.Request) {
	// The cap fires during body reads, so an oversized upload is rejected
	// before any decode or recognition work.
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.Limits.MaxAudioBytes)

	raw, formatHint, language, err := h.readAudioUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.Transcribe.Transcribe(r.Context(), raw, formatHint, language, chimw.GetReqID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sttResponse{
		Text:     result.Text,
		Duration: result.Duration,
		Language: result.Language,
		Metrics: sttMetrics{
			AvgConfidence:  roundTo(result.Metrics.AvgConfidence, 2),
			WordsPerMinute: roundTo(result.Metrics.WordsPerMinute, 1),
			WordCount:      result.Metrics.WordCount,
			ClarityLevel:   result.Metrics.ClarityLevel,
		},
	})
}

// readAudioUpload accepts either a multipart form with a "file" field or a
// raw audio body. The language comes from the query or the form, falling
// back to the configured default.
func (h *handlers) readAudioUpload(r *http.Request) (raw []byte, formatHint, language string, err error) {
	language = r.URL.Query().Get("language")

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			return nil, "", "", mapUploadErr(ferr)
		}
		defer file.Close()

		if raw, err = io.ReadAll(file); err != nil {
			return nil, "", "", mapUploadErr(err)
		}
		formatHint = audio.FormatFromContentType(header.Header.Get("Content-Type"))
		if language == "" {
			language = r.FormValue("language")
		}
	} else {
		if raw, err = io.ReadAll(r.Body); err != nil {
			return nil, "", "", mapUploadErr(err)
		}
		formatHint = audio.FormatFromContentType(mediaType)
	}

	if language == "" {
		language = h.Cfg.Service.DefaultLanguage
	}
	return raw, formatHint, language, nil
}

// mapUploadErr translates body-read failures; hitting the MaxBytesReader cap
// is a payload_too_large, not a generic bad request.
func mapUploadErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Newf(apperr.ReasonPayloadTooLarge, "upload exceeds %d bytes", tooLarge.Limit)
	}
	return apperr.Wrap(err, apperr.ReasonBadRequest, "reading upload")
}
