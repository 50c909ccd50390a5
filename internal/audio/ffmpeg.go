package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Runner executes an audio transcoding command, feeding stdin and returning
// stdout. Implementations must include the decoder's own diagnostics in the
// returned error so they can be surfaced to the client.
type Runner interface {
	Run(ctx context.Context, args []string, stdin []byte) ([]byte, error)
}

// FFmpegRunner shells out to ffmpeg. It is the only decode path in the
// service; ffmpeg handles container auto-detection when no format is forced.
type FFmpegRunner struct {
	// Binary overrides the ffmpeg executable path. Empty means "ffmpeg"
	// resolved from PATH.
	Binary string
}

func (r *FFmpegRunner) Run(ctx context.Context, args []string, stdin []byte) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := lastLine(stderr.String())
		log.Debug().
			Str("component", "audio").
			Str("binary", bin).
			Str("stderr", detail).
			Msg("ffmpeg failed")
		if detail == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", detail, err)
	}
	return stdout.Bytes(), nil
}

// lastLine extracts the final non-empty stderr line, which is where ffmpeg
// puts the actionable diagnostic.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
