package transcode

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func argValue(args []string, flag string) (string, bool) {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1], true
		}
	}
	return "", false
}

func TestBuildArgs_Software(t *testing.T) {
	options := Options{
		SourcePath:  "/media/movie.mkv",
		Resolution:  Resolution720p,
		AudioStream: 1,
		Codec:       H264,
		Segment:     20,
	}
	settings := Settings{CRF: 23, Preset: PresetVeryfast, Threads: 4}

	args := buildArgs(options, settings, "/tmp/out")

	tests := map[string]string{
		"-ss":                   "80",
		"-i":                    "/media/movie.mkv",
		"-threads":              "4",
		"-c:v":                  "libx264",
		"-preset:v":             "veryfast",
		"-crf":                  "23",
		"-vf":                   "scale=1280:-2",
		"-b:v":                  "7500k",
		"-hls_time":             "4",
		"-start_number":         "20",
		"-force_key_frames":     "expr:gte(t,n_forced*4)",
		"-hls_segment_filename": filepath.Join("/tmp/out", "%d.ts"),
	}
	for flag, want := range tests {
		got, ok := argValue(args, flag)
		assert.True(t, ok, flag)
		assert.Equal(t, want, got, flag)
	}

	assert.Contains(t, args, "0:a:1?")
	assert.Equal(t, filepath.Join("/tmp/out", "index.m3u8"), args[len(args)-1])
}

func TestBuildArgs_Hardware(t *testing.T) {
	options := Options{
		SourcePath: "/media/movie.mkv",
		Resolution: Resolution1080p,
		Codec:      H264NVENC,
	}

	args := buildArgs(options, DefaultSettings(), "/tmp/out")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-hwaccel cuda")
	assert.Contains(t, joined, "scale_cuda=1920:-2")
	assert.Contains(t, joined, "-c:v h264_nvenc")
	assert.NotContains(t, joined, "-threads")
	assert.NotContains(t, joined, "-deadline")

	ss, _ := argValue(args, "-ss")
	assert.Equal(t, "0", ss)
}

func TestParseVideoCodec(t *testing.T) {
	codec, err := ParseVideoCodec("H265")
	assert.NoError(t, err)
	assert.Equal(t, H265, codec)
	assert.Equal(t, "libx265", codec.Encoder())

	_, err = ParseVideoCodec("vp9")
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
}

func TestParsePreset(t *testing.T) {
	preset, err := ParsePreset("Medium")
	assert.NoError(t, err)
	assert.Equal(t, PresetMedium, preset)

	_, err = ParsePreset("placebo")
	assert.ErrorIs(t, err, ErrUnsupportedPreset)
}

func TestResolutionsForWidth(t *testing.T) {
	names := func(profiles []ResolutionProfile) []Resolution {
		var out []Resolution
		for _, p := range profiles {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Empty(t, ResolutionsForWidth(0))
	assert.Equal(t, []Resolution{Resolution240p, Resolution360p}, names(ResolutionsForWidth(720)))
	assert.Equal(t,
		[]Resolution{Resolution240p, Resolution360p, Resolution480p, Resolution720p, Resolution1080p},
		names(ResolutionsForWidth(1920)))
	assert.Len(t, ResolutionsForWidth(8192), len(Resolutions))
}

func TestLookupResolution(t *testing.T) {
	profile, err := LookupResolution("4k")
	assert.NoError(t, err)
	assert.Equal(t, 3840, profile.Width)
	assert.Equal(t, 2160, profile.Height)

	_, err = LookupResolution("16k")
	assert.ErrorIs(t, err, ErrUnsupportedResolution)
}
