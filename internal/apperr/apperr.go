// Package apperr defines the error taxonomy for the service and the mapping
// of each reason to an HTTP status. Adapters wrap their underlying failures
// into one of these reasons at the boundary; the original diagnostic message
// is preserved for operators and surfaced in the response detail.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason is a short machine-readable error reason.
type Reason string

const (
	ReasonUnknown Reason = "unknown"

	// ReasonDecode - the byte stream could not be parsed as any supported
	// audio container.
	ReasonDecode Reason = "decode_error"
	// ReasonPayloadTooLarge - upload exceeds the raw byte-size ceiling.
	ReasonPayloadTooLarge Reason = "payload_too_large"
	// ReasonAudioTooLong - decoded duration exceeds the ceiling.
	ReasonAudioTooLong Reason = "audio_too_long"
	// ReasonUpstreamUnavailable - transport-level failure reaching the
	// completion backend (connection refused, timeout).
	ReasonUpstreamUnavailable Reason = "upstream_unavailable"
	// ReasonUpstreamError - non-success status from the completion backend.
	ReasonUpstreamError Reason = "upstream_error"
	// ReasonConfigurationMissing - a required credential or endpoint is
	// absent; the dependent feature is disabled rather than crashing.
	ReasonConfigurationMissing Reason = "configuration_missing"
	// ReasonNotFound - referenced sprite or user does not exist.
	ReasonNotFound Reason = "not_found"
	// ReasonBadRequest - malformed client input outside the audio path.
	ReasonBadRequest Reason = "bad_request"
)

// Error wraps an underlying error with a reason from the taxonomy.
type Error struct {
	Reason Reason
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Reason)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a taxonomy error with a message.
func New(reason Reason, msg string) *Error {
	return &Error{Reason: reason, Msg: msg}
}

// Newf creates a taxonomy error with a formatted message.
func Newf(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a reason to err. A nil err returns nil; an err that already
// carries a reason is returned unchanged so the innermost classification wins.
func Wrap(err error, reason Reason, msg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Reason: reason, Msg: msg, Err: err}
}

// ReasonOf extracts the reason from err, or ReasonUnknown.
func ReasonOf(err error) Reason {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ReasonUnknown
}

// Is reports whether err carries the given reason.
func Is(err error, reason Reason) bool {
	return ReasonOf(err) == reason
}

// HTTPStatus maps an error to the status code reported to the client.
func HTTPStatus(err error) int {
	switch ReasonOf(err) {
	case ReasonDecode, ReasonAudioTooLong, ReasonBadRequest:
		return http.StatusBadRequest
	case ReasonPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ReasonNotFound:
		return http.StatusNotFound
	case ReasonUpstreamError:
		return http.StatusBadGateway
	case ReasonUpstreamUnavailable, ReasonConfigurationMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
