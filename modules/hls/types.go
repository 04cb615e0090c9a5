package hls

import (
	"context"
	"time"

	"github.com/dose-media/dose-stream/pkg/probe"
	"github.com/dose-media/dose-stream/pkg/transcode"
)

type Config struct {
	Transcode transcode.Config

	// prefix the routes are mounted at, used in playlist urls
	BaseURL string
	// codec used when the request does not name one
	Codec         transcode.VideoCodec
	PollInterval  time.Duration
	SeekTolerance int
}

func (c Config) withDefaultValues() Config {
	if c.BaseURL == "" {
		c.BaseURL = "/api/video"
	}
	if c.Codec == "" {
		c.Codec = transcode.H264
	}
	if c.PollInterval <= 0 {
		c.PollInterval = transcode.DefaultPollInterval
	}
	if c.SeekTolerance <= 0 {
		c.SeekTolerance = transcode.DefaultSeekTolerance
	}
	return c
}

type Prober interface {
	Probe(ctx context.Context, path string) (*probe.Media, error)
}
