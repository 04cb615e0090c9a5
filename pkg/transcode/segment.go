package transcode

import (
	"context"
	"fmt"
	"os"
	"time"
)

// DefaultPollInterval is how often segment readiness is checked.
const DefaultPollInterval = time.Second

// WaitForSegment blocks until segment exists in the output directory and
// returns its path. It gives up when the encoder is no longer running, the
// session is stopped, or ctx is done. Slow encoders are waited for.
func (s *SessionCtx) WaitForSegment(ctx context.Context, segment int, interval time.Duration) (string, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status := s.Status()

		if status.OutputDir != "" {
			path := segmentPath(status.OutputDir, segment)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if !status.Active() {
			if status.State == StateStopped {
				return "", ErrSessionStopped
			}
			return "", fmt.Errorf("segment %d: %w", segment, ErrSegmentNotProduced)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-s.stopped:
			return "", ErrSessionStopped
		case <-ticker.C:
		}
	}
}
