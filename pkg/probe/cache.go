package probe

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const cacheFileSuffix = ".dose-probe"

// ProberCtx probes media files and keeps results in a cache directory.
type ProberCtx struct {
	logger        zerolog.Logger
	ffprobeBinary string
	cacheDir      string
}

// New returns a prober. With an empty cacheDir every call runs ffprobe.
func New(ffprobeBinary string, cacheDir string) *ProberCtx {
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}

	return &ProberCtx{
		logger:        log.With().Str("module", "probe").Logger(),
		ffprobeBinary: ffprobeBinary,
		cacheDir:      cacheDir,
	}
}

func (p *ProberCtx) Probe(ctx context.Context, path string) (*Media, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	cachePath := ""
	if p.cacheDir != "" {
		cachePath = filepath.Join(p.cacheDir, cacheKey(path, info)+cacheFileSuffix)

		if media, err := readCache(cachePath); err == nil {
			p.logger.Debug().Str("path", path).Msg("probe cache hit")
			return media, nil
		}
	}

	media, err := ProbeMedia(ctx, p.ffprobeBinary, path)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := writeCache(cachePath, media); err != nil {
			p.logger.Warn().Err(err).Str("path", cachePath).Msg("unable to write probe cache")
		}
	}

	return media, nil
}

// cacheKey changes whenever the file is replaced or modified.
func cacheKey(path string, info os.FileInfo) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s\x00%d\x00%d", path, info.Size(), info.ModTime().UnixNano())
	return fmt.Sprintf("%x", h.Sum(nil))
}

func readCache(path string) (*Media, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	media := &Media{}
	if err := json.Unmarshal(data, media); err != nil {
		return nil, err
	}
	return media, nil
}

func writeCache(path string, media *Media) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(media)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
