package transcode

import "errors"

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionExists         = errors.New("session already exists")
	ErrSessionStopped        = errors.New("session stopped")
	ErrSegmentNotProduced    = errors.New("encoder exited without producing segment")
	ErrUnsupportedResolution = errors.New("unsupported resolution")
	ErrUnsupportedCodec      = errors.New("unsupported codec")
	ErrUnsupportedPreset     = errors.New("unsupported preset")
)
