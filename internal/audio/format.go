package audio

import "strings"

// formatMap maps Content-Type substrings to the codec tag handed to the
// decoder. Order matters only for readability; keys are disjoint enough
// that the first match wins.
var formatMap = []struct {
	substr string
	format string
}{
	{"wav", "wav"},
	{"mpeg", "mp3"},
	{"mp3", "mp3"},
	{"ogg", "ogg"},
	{"webm", "webm"},
	{"aac", "m4a"},
	{"mp4", "m4a"},
	{"m4a", "m4a"},
}

// FormatFromContentType guesses the audio container from a transport
// Content-Type header. An empty result means unknown, which triggers
// format auto-detection in the decoder.
func FormatFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	ct := strings.ToLower(contentType)
	for _, m := range formatMap {
		if strings.Contains(ct, m.substr) {
			return m.format
		}
	}
	return ""
}
