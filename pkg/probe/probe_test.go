package probe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ffprobeOutput = `{
  "streams": [
    {"index": 0, "codec_name": "hevc", "codec_type": "video", "width": 3840, "height": 1608, "r_frame_rate": "24000/1001"},
    {"index": 1, "codec_name": "eac3", "codec_type": "audio", "channels": 6, "tags": {"language": "eng"}},
    {"index": 2, "codec_name": "aac", "codec_type": "audio", "channels": 2, "tags": {"language": "swe"}},
    {"index": 3, "codec_name": "subrip", "codec_type": "subtitle", "tags": {"language": "eng"}},
    {"index": 4, "codec_name": "mjpeg", "codec_type": "video", "width": 600, "height": 900}
  ],
  "format": {"format_name": "matroska,webm", "duration": "7265.024000"}
}`

func TestParse(t *testing.T) {
	media, err := parse([]byte(ffprobeOutput))
	require.NoError(t, err)

	assert.Equal(t, []string{"matroska", "webm"}, media.FormatName)
	assert.Equal(t, 7265024*time.Millisecond, media.Duration)

	require.NotNil(t, media.Video)
	assert.Equal(t, "hevc", media.VideoCodec())
	assert.Equal(t, 3840, media.Video.Width)
	assert.Equal(t, "24000/1001", media.Video.FrameRate)

	require.Len(t, media.Audio, 2)
	assert.Equal(t, Audio{Index: 1, Codec: "aac", Language: "swe", Channels: 2}, media.Audio[1])
	assert.Equal(t, []string{"eac3", "aac"}, media.AudioCodecs())

	require.Len(t, media.Subtitles, 1)
	assert.Equal(t, "eng", media.Subtitles[0].Language)
}

func TestParse_Invalid(t *testing.T) {
	_, err := parse([]byte("not json"))
	assert.Error(t, err)

	_, err = parse([]byte(`{"format": {"duration": "abc"}}`))
	assert.Error(t, err)
}

func TestMedia_NoVideo(t *testing.T) {
	media, err := parse([]byte(`{"streams": [], "format": {}}`))
	require.NoError(t, err)
	assert.Equal(t, "unknown", media.VideoCodec())
	assert.Empty(t, media.AudioCodecs())
}

// fakeProbe writes an executable that prints the fixture and counts calls.
func fakeProbe(t *testing.T) (binary string, calls func() int) {
	dir := t.TempDir()
	counter := filepath.Join(dir, "calls")
	fixture := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(fixture, []byte(ffprobeOutput), 0644))

	binary = filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\necho x >> '" + counter + "'\ncat '" + fixture + "'\n"
	require.NoError(t, os.WriteFile(binary, []byte(script), 0755))

	return binary, func() int {
		data, err := os.ReadFile(counter)
		if err != nil {
			return 0
		}
		return strings.Count(string(data), "x")
	}
}

func TestProber_Cache(t *testing.T) {
	binary, calls := fakeProbe(t)

	source := filepath.Join(t.TempDir(), "movie.mkv")
	require.NoError(t, os.WriteFile(source, []byte("data"), 0644))

	p := New(binary, t.TempDir())

	first, err := p.Probe(context.Background(), source)
	require.NoError(t, err)
	second, err := p.Probe(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls())

	// modified files are probed again
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(source, later, later))

	_, err = p.Probe(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 2, calls())
}

func TestProber_NoCache(t *testing.T) {
	binary, calls := fakeProbe(t)

	source := filepath.Join(t.TempDir(), "movie.mkv")
	require.NoError(t, os.WriteFile(source, []byte("data"), 0644))

	p := New(binary, "")
	for i := 0; i < 2; i++ {
		_, err := p.Probe(context.Background(), source)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls())
}

func TestProber_MissingFile(t *testing.T) {
	p := New("ffprobe", "")
	_, err := p.Probe(context.Background(), filepath.Join(t.TempDir(), "missing.mkv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
