package media

import (
	"context"

	"github.com/dose-media/dose-stream/pkg/probe"
)

const subtitleContentType = "text/vtt"

type Prober interface {
	Probe(ctx context.Context, path string) (*probe.Media, error)
}

type Language struct {
	Language string `json:"language"`
	Stream   int    `json:"stream"`
}

type Resolutions struct {
	Resolutions []string `json:"resolutions"`
	DirectPlay  bool     `json:"directplay"`
}
