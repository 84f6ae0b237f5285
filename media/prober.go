package media

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober reads the duration, in seconds, of a local media file. Errors that
// wrap ErrInvalidFile mean the file itself is unreadable; anything else is an
// internal failure.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFProbe shells out to ffprobe.
type FFProbe struct{}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, durationError(err)
	}
	return parseProbeDuration(out)
}

// probeError separates ffprobe rejecting the file (a normal non-zero exit)
// from ffprobe being missing, killed or otherwise unable to run.
func durationError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.Exited() {
		return errors.WithMessagef(ErrInvalidFile, "ffprobe rejected the video: %v", err)
	}
	return errors.WithMessage(err, "Failed to probe the video")
}

func parseProbeDuration(out string) (float64, error) {
	var probe probeOutput
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, errors.WithMessagef(ErrInvalidFile, "decode ffprobe output: %v", err)
	}
	if probe.Format.Duration == "" {
		return 0, errors.WithMessage(ErrInvalidFile, "ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, errors.WithMessagef(ErrInvalidFile, "parse duration: %v", err)
	}
	return d, nil
}
