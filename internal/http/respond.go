package http

import (
	"encoding/json"
	"math"
	"net/http"

	"speakup-api/internal/apperr"
)

// errorBody is the uniform error envelope: a machine-readable reason plus a
// human-readable detail.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.HTTPStatus(err), errorBody{
		Error:  string(apperr.ReasonOf(err)),
		Detail: err.Error(),
	})
}

// roundTo rounds to the given number of decimal places. Rounding happens
// only here at the boundary; stored and published values stay unrounded.
func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
