package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SubtitleDuration is the length of the single subtitle segment.
const SubtitleDuration = 14400

// TranscodeSubtitle converts a subtitle file to WebVTT inside a new private
// directory under transcodeDir. The caller owns and removes dir.
func TranscodeSubtitle(ctx context.Context, ffmpegBinary, transcodeDir, subtitlePath string) (dir string, file string, err error) {
	if err := os.MkdirAll(transcodeDir, 0755); err != nil {
		return "", "", err
	}

	dir, err = os.MkdirTemp(transcodeDir, "subtitle-*")
	if err != nil {
		return "", "", err
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", subtitlePath,
		"-f", "segment",
		"-segment_time", fmt.Sprint(SubtitleDuration),
		"-segment_format", "webvtt",
		"-scodec", "webvtt",
		"-muxdelay", "0",
		filepath.Join(dir, "subtitle-%d.vtt"),
	}

	cmd := exec.CommandContext(ctx, ffmpegBinary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(dir)
		return "", "", fmt.Errorf("subtitle transcode failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	file = filepath.Join(dir, "subtitle-0.vtt")
	if _, err := os.Stat(file); err != nil {
		_ = os.RemoveAll(dir)
		return "", "", fmt.Errorf("subtitle transcode produced no output: %w", err)
	}

	return dir, file, nil
}
