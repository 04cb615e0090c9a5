package catalog

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type Kind string

const (
	KindMovie   Kind = "movie"
	KindEpisode Kind = "episode"
)

func ParseKind(kind string) (Kind, error) {
	switch Kind(kind) {
	case KindMovie, KindEpisode:
		return Kind(kind), nil
	}
	return "", fmt.Errorf("unknown content type %q", kind)
}

type Subtitle struct {
	ID       int
	Language string
}

// Catalog resolves catalog entries to files on disk.
type Catalog interface {
	ContentPath(ctx context.Context, kind Kind, id int) (string, error)
	Subtitles(ctx context.Context, kind Kind, id int) ([]Subtitle, error)
	SubtitlePath(ctx context.Context, subtitleID int) (string, error)
}
