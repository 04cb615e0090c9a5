package hls

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dose-media/dose-stream/internal/auth"
	"github.com/dose-media/dose-stream/internal/catalog"
	"github.com/dose-media/dose-stream/internal/metrics"
	"github.com/dose-media/dose-stream/pkg/probe"
	"github.com/dose-media/dose-stream/pkg/transcode"
)

const movieID = 5

type fakeCatalog struct {
	paths         map[int]string
	subtitles     []catalog.Subtitle
	subtitlePaths map[int]string
}

func (c *fakeCatalog) ContentPath(ctx context.Context, kind catalog.Kind, id int) (string, error) {
	if p, ok := c.paths[id]; ok {
		return p, nil
	}
	return "", fmt.Errorf("content %d: %w", id, catalog.ErrNotFound)
}

func (c *fakeCatalog) Subtitles(ctx context.Context, kind catalog.Kind, id int) ([]catalog.Subtitle, error) {
	return c.subtitles, nil
}

func (c *fakeCatalog) SubtitlePath(ctx context.Context, subtitleID int) (string, error) {
	if p, ok := c.subtitlePaths[subtitleID]; ok {
		return p, nil
	}
	return "", fmt.Errorf("subtitle %d: %w", subtitleID, catalog.ErrNotFound)
}

type fakeProber struct {
	media *probe.Media
}

func (p *fakeProber) Probe(ctx context.Context, path string) (*probe.Media, error) {
	return p.media, nil
}

func encoder(script string) transcode.CommandFactory {
	return func(binary string, args []string) *exec.Cmd {
		return exec.Command("sh", append([]string{"-c", script, "ffmpeg"}, args...)...)
	}
}

// producingEncoder writes count segments starting at -start_number and keeps
// running afterwards.
func producingEncoder(count int) transcode.CommandFactory {
	return encoder(fmt.Sprintf(`
start=0
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -start_number) start="$2"; shift ;;
    -hls_segment_filename) out="$2"; shift ;;
  esac
  shift
done
dir=$(dirname "$out")
i=0
while [ $i -lt %d ]; do
  n=$((start + i))
  printf 'segment-%%d' $n > "$dir/tmp"
  mv "$dir/tmp" "$dir/$n.ts"
  printf 'out_time=00:00:%%02d.000000\n' $(( (i + 1) * 4 ))
  i=$((i + 1))
done
exec sleep 60
`, count))
}

func failingEncoder() transcode.CommandFactory {
	return encoder("echo 'no such stream' >&2; exit 1")
}

type harness struct {
	t       *testing.T
	module  *ModuleCtx
	router  chi.Router
	metrics *metrics.Metrics
	dir     string
	token   string
}

func newHarness(t *testing.T, factory transcode.CommandFactory) *harness {
	dir := t.TempDir()

	jwt := auth.NewJWT("secret", time.Hour)
	token, err := jwt.Sign("alice", 1)
	require.NoError(t, err)

	cat := &fakeCatalog{
		paths: map[int]string{movieID: "/media/movies/movie.mkv"},
		subtitles: []catalog.Subtitle{
			{ID: 3, Language: "eng"},
		},
		subtitlePaths: map[int]string{3: "/media/movies/movie.eng.srt"},
	}

	prober := &fakeProber{media: &probe.Media{
		Duration: 122 * time.Second,
		Video: &probe.Video{
			Codec:     "h264",
			Width:     1920,
			Height:    1080,
			FrameRate: "24000/1001",
		},
		Audio: []probe.Audio{{Index: 0, Codec: "aac", Language: "eng"}},
	}}

	m := metrics.New()
	module := New(&Config{
		Transcode: transcode.Config{
			TranscodeDir:   dir,
			FFmpegBinary:   writeFFmpeg(t),
			CommandFactory: factory,
		},
		PollInterval: 10 * time.Millisecond,
	}, cat, prober, jwt, m)
	t.Cleanup(module.Shutdown)

	router := chi.NewRouter()
	router.Route("/api/video", module.Mount)

	return &harness{
		t:       t,
		module:  module,
		router:  router,
		metrics: m,
		dir:     dir,
		token:   token,
	}
}

func (h *harness) do(method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func (h *harness) scrape() string {
	w := httptest.NewRecorder()
	h.metrics.Handler(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return w.Body.String()
}

// writeFFmpeg installs a fake ffmpeg that writes a WebVTT file next to the
// output pattern given as its last argument.
func writeFFmpeg(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := `#!/bin/sh
for last; do :; done
printf 'WEBVTT\n' > "$(dirname "$last")/subtitle-0.vtt"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}
