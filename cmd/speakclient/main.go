// speakclient exercises the full conversation loop against a running
// SpeakUP API: upload a recording, relay the transcript to the chat
// backend, then save the spoken reply.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type speechMetrics struct {
	AvgConfidence  float64 `json:"avg_confidence"`
	WordsPerMinute float64 `json:"wpm"`
	WordCount      int     `json:"word_count"`
	ClarityLevel   string  `json:"clarity_level"`
}

type sttResult struct {
	Text     string        `json:"text"`
	Duration float64       `json:"duration"`
	Language string        `json:"language"`
	Metrics  speechMetrics `json:"metrics"`
}

func main() {
	audioFile := flag.String("audio", "testdata/sample.wav", "Path to the recording to send")
	serverAddr := flag.String("server", "http://localhost:8000", "SpeakUP API base URL")
	language := flag.String("language", "ru", "Recognition language")
	voice := flag.String("voice", "", "Synthesis voice (empty = server default)")
	format := flag.String("format", "mp3", "Reply audio format (wav or mp3)")
	outFile := flag.String("out", "reply.mp3", "Where to save the spoken reply")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Minute}

	transcript := transcribe(client, *serverAddr, *audioFile, *language)
	log.Printf("Transcript (%.1fs): %q", transcript.Duration, transcript.Text)
	log.Printf("Metrics: clarity=%s confidence=%.2f wpm=%.1f words=%d",
		transcript.Metrics.ClarityLevel, transcript.Metrics.AvgConfidence,
		transcript.Metrics.WordsPerMinute, transcript.Metrics.WordCount)

	reply := chatSync(client, *serverAddr, transcript)
	log.Printf("Reply: %q", reply)

	audio := synthesize(client, *serverAddr, reply, *voice, *format)
	if err := os.WriteFile(*outFile, audio, 0o644); err != nil {
		log.Fatalf("Failed to save reply audio: %v", err)
	}
	log.Printf("Saved %d bytes of %s audio to %s", len(audio), *format, *outFile)
}

func transcribe(client *http.Client, base, path, language string) sttResult {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read audio file: %v", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		log.Fatalf("Failed to build upload: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		log.Fatalf("Failed to build upload: %v", err)
	}
	if err := mw.WriteField("language", language); err != nil {
		log.Fatalf("Failed to build upload: %v", err)
	}
	if err := mw.Close(); err != nil {
		log.Fatalf("Failed to build upload: %v", err)
	}

	body := post(client, base+"/stt", mw.FormDataContentType(), &buf)

	var result sttResult
	if err := json.Unmarshal(body, &result); err != nil {
		log.Fatalf("Failed to decode transcription response: %v", err)
	}
	return result
}

func chatSync(client *http.Client, base string, transcript sttResult) string {
	payload, err := json.Marshal(map[string]any{
		"message": transcript.Text,
		"metrics": transcript.Metrics,
	})
	if err != nil {
		log.Fatalf("Failed to encode chat request: %v", err)
	}

	body := post(client, base+"/chat/sync", "application/json", bytes.NewReader(payload))

	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		log.Fatalf("Failed to decode chat response: %v", err)
	}
	return out.Response
}

func synthesize(client *http.Client, base, text, voice, format string) []byte {
	payload, err := json.Marshal(map[string]string{
		"text":   text,
		"voice":  voice,
		"format": format,
	})
	if err != nil {
		log.Fatalf("Failed to encode synthesis request: %v", err)
	}
	return post(client, base+"/tts", "application/json", bytes.NewReader(payload))
}

func post(client *http.Client, url, contentType string, body io.Reader) []byte {
	resp, err := client.Post(url, contentType, body)
	if err != nil {
		log.Fatalf("Request to %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Reading response from %s failed: %v", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("%s returned %d: %s", url, resp.StatusCode, data)
	}
	return data
}
