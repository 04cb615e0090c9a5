package transcode

import (
	"fmt"
	"strings"
	"time"
)

// SegmentDuration is the length of every produced segment.
const SegmentDuration = 4 * time.Second

type VideoCodec string

const (
	H264      VideoCodec = "h264"
	H265      VideoCodec = "h265"
	H264NVENC VideoCodec = "h264_nvenc"
)

var encoders = map[VideoCodec]string{
	H264:      "libx264",
	H265:      "libx265",
	H264NVENC: "h264_nvenc",
}

func ParseVideoCodec(codec string) (VideoCodec, error) {
	c := VideoCodec(strings.ToLower(codec))
	if _, ok := encoders[c]; !ok {
		return "", fmt.Errorf("%q: %w", codec, ErrUnsupportedCodec)
	}
	return c, nil
}

// Encoder returns the ffmpeg encoder implementing the codec.
func (c VideoCodec) Encoder() string {
	return encoders[c]
}

func (c VideoCodec) Hardware() bool {
	return c == H264NVENC
}

type Preset string

const (
	PresetUltrafast Preset = "ultrafast"
	PresetSuperfast Preset = "superfast"
	PresetVeryfast  Preset = "veryfast"
	PresetFaster    Preset = "faster"
	PresetFast      Preset = "fast"
	PresetMedium    Preset = "medium"
	PresetSlow      Preset = "slow"
	PresetSlower    Preset = "slower"
	PresetVeryslow  Preset = "veryslow"
)

var presets = []Preset{
	PresetUltrafast, PresetSuperfast, PresetVeryfast, PresetFaster, PresetFast,
	PresetMedium, PresetSlow, PresetSlower, PresetVeryslow,
}

func ParsePreset(preset string) (Preset, error) {
	for _, p := range presets {
		if string(p) == strings.ToLower(preset) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%q: %w", preset, ErrUnsupportedPreset)
}

type Settings struct {
	CRF     int    `mapstructure:"crf"`
	Preset  Preset `mapstructure:"preset"`
	Threads int    `mapstructure:"threads"`
}

func DefaultSettings() Settings {
	return Settings{
		CRF:     22,
		Preset:  PresetUltrafast,
		Threads: 8,
	}
}

func DefaultSettingsMap() map[VideoCodec]Settings {
	return map[VideoCodec]Settings{
		H264:      DefaultSettings(),
		H265:      DefaultSettings(),
		H264NVENC: DefaultSettings(),
	}
}

// Options describe the target of one encoder invocation.
type Options struct {
	SourcePath  string
	Resolution  Resolution
	AudioStream int
	Codec       VideoCodec
	Segment     int
}

func (o Options) Validate() error {
	if _, err := LookupResolution(string(o.Resolution)); err != nil {
		return err
	}
	if _, ok := encoders[o.Codec]; !ok {
		return fmt.Errorf("%q: %w", o.Codec, ErrUnsupportedCodec)
	}
	if o.AudioStream < 0 {
		return fmt.Errorf("audio stream %d out of range", o.AudioStream)
	}
	return nil
}

type State int

const (
	StateCreated State = iota
	StateStarting
	StateActive
	StateRestarting
	StateFinished
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateRestarting:
		return "restarting"
	case StateFinished:
		return "finished"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Status is a read only snapshot of a session.
type Status struct {
	ID            string
	State         State
	Options       Options
	OutputDir     string
	StartSegment  int
	LatestSegment int
}

// Active is true while an encoder is running or about to run.
func (s Status) Active() bool {
	switch s.State {
	case StateCreated, StateStarting, StateActive, StateRestarting:
		return true
	}
	return false
}

func (s Status) Finished() bool {
	return s.State == StateFinished
}
