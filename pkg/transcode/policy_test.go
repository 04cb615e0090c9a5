package transcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func status(resolution Resolution, start, latest int) Status {
	return Status{
		State:         StateActive,
		Options:       Options{Resolution: resolution},
		StartSegment:  start,
		LatestSegment: latest,
	}
}

func TestNeedsRestart(t *testing.T) {
	tests := []struct {
		name       string
		status     Status
		segment    int
		resolution Resolution
		want       RestartReason
		restart    bool
	}{
		{"within tolerance", status(Resolution480p, 0, 3), 5, Resolution480p, "", false},
		{"at tolerance edge", status(Resolution480p, 0, 3), 13, Resolution480p, "", false},
		{"forward seek", status(Resolution480p, 0, 3), 20, Resolution480p, RestartSeekForward, true},
		{"backward seek", status(Resolution480p, 10, 12), 9, Resolution480p, RestartSeekBackward, true},
		{"at start", status(Resolution480p, 10, 12), 10, Resolution480p, "", false},
		{"quality switch", status(Resolution480p, 0, 3), 2, Resolution720p, RestartResolution, true},
		{"quality switch wins", status(Resolution480p, 0, 3), 40, Resolution720p, RestartResolution, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, restart := NeedsRestart(tt.status, tt.segment, tt.resolution, DefaultSeekTolerance)
			assert.Equal(t, tt.restart, restart)
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestNeedsRestart_Window(t *testing.T) {
	for start := 0; start < 30; start += 7 {
		for latest := start; latest < start+15; latest++ {
			st := status(Resolution1080p, start, latest)

			for segment := 0; segment < 60; segment++ {
				inWindow := segment >= start && segment <= latest+DefaultSeekTolerance
				_, restart := NeedsRestart(st, segment, Resolution1080p, DefaultSeekTolerance)
				assert.Equal(t, !inWindow, restart, "start=%d latest=%d segment=%d", start, latest, segment)
			}
		}
	}
}
