package transcode

type RestartReason string

const (
	RestartResolution   RestartReason = "resolution"
	RestartSeekForward  RestartReason = "seek-forward"
	RestartSeekBackward RestartReason = "seek-backward"
)

// DefaultSeekTolerance is how many segments ahead of the encoder a client may
// request before the encoder is restarted at the requested segment.
const DefaultSeekTolerance = 10

// NeedsRestart applies the restart policy for a segment request against the
// session status. Checks are evaluated in order and the first match wins.
func NeedsRestart(status Status, segment int, resolution Resolution, tolerance int) (RestartReason, bool) {
	switch {
	case status.Options.Resolution != resolution:
		return RestartResolution, true
	case segment > status.LatestSegment+tolerance:
		return RestartSeekForward, true
	case segment < status.StartSegment:
		return RestartSeekBackward, true
	}
	return "", false
}

// EnsureSegment applies the restart policy for a segment request and restarts
// the encoder when it matches. The policy is evaluated under the lifecycle
// lock, so concurrent requests judge the state left by the one before them.
func (s *SessionCtx) EnsureSegment(segment int, resolution Resolution, tolerance int) (RestartReason, bool, error) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.isStopped() {
		return "", false, ErrSessionStopped
	}

	reason, restart := NeedsRestart(s.Status(), segment, resolution, tolerance)
	if !restart {
		return "", false, nil
	}

	return reason, true, s.restart(segment, resolution)
}
