package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

type Media struct {
	FormatName []string      `json:"format_name"`
	Duration   time.Duration `json:"duration"`

	Video     *Video     `json:"video,omitempty"`
	Audio     []Audio    `json:"audio"`
	Subtitles []Subtitle `json:"subtitles"`
}

type Video struct {
	Index     int    `json:"index"`
	Codec     string `json:"codec"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FrameRate string `json:"frame_rate"`
}

type Audio struct {
	// Index counts audio streams only, as used by 0:a:N stream specifiers.
	Index    int    `json:"index"`
	Codec    string `json:"codec"`
	Language string `json:"language"`
	Channels int    `json:"channels"`
}

type Subtitle struct {
	Index    int    `json:"index"`
	Codec    string `json:"codec"`
	Language string `json:"language"`
}

func (m *Media) AudioCodecs() []string {
	codecs := make([]string, 0, len(m.Audio))
	for _, audio := range m.Audio {
		if audio.Codec != "" {
			codecs = append(codecs, audio.Codec)
		}
	}
	return codecs
}

func (m *Media) VideoCodec() string {
	if m.Video == nil || m.Video.Codec == "" {
		return "unknown"
	}
	return m.Video.Codec
}

// ProbeMedia runs ffprobe on the input and collects stream information.
func ProbeMedia(ctx context.Context, ffprobeBinary string, inputFilePath string) (*Media, error) {
	args := []string{
		"-v", "error", // Hide debug information
		"-show_format",  // Show container information
		"-show_streams", // Show codec information
		"-of", "json",
		inputFilePath,
	}

	cmd := exec.CommandContext(ctx, ffprobeBinary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parse(stdout.Bytes())
}

func parse(data []byte) (*Media, error) {
	out := struct {
		Streams []struct {
			Index      int    `json:"index"`
			CodecName  string `json:"codec_name"`
			CodecType  string `json:"codec_type"`
			Width      int    `json:"width"`
			Height     int    `json:"height"`
			RFrameRate string `json:"r_frame_rate"`
			Channels   int    `json:"channels"`
			Tags       struct {
				Language string `json:"language"`
			} `json:"tags"`
		} `json:"streams"`
		Format struct {
			FormatName string `json:"format_name"`
			Duration   string `json:"duration"`
		} `json:"format"`
	}{}

	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unable to parse ffprobe output: %w", err)
	}

	media := Media{}
	for _, stream := range out.Streams {
		switch stream.CodecType {
		case "video":
			// first video stream wins, cover art comes later
			if media.Video != nil {
				continue
			}

			media.Video = &Video{
				Index:     stream.Index,
				Codec:     stream.CodecName,
				Width:     stream.Width,
				Height:    stream.Height,
				FrameRate: stream.RFrameRate,
			}
		case "audio":
			media.Audio = append(media.Audio, Audio{
				Index:    len(media.Audio),
				Codec:    stream.CodecName,
				Language: stream.Tags.Language,
				Channels: stream.Channels,
			})
		case "subtitle":
			media.Subtitles = append(media.Subtitles, Subtitle{
				Index:    stream.Index,
				Codec:    stream.CodecName,
				Language: stream.Tags.Language,
			})
		}
	}

	if out.Format.FormatName != "" {
		media.FormatName = strings.Split(out.Format.FormatName, ",")
	}

	if out.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse format duration: %w", err)
		}
		media.Duration = time.Duration(math.Round(seconds*1e6)) * time.Microsecond
	}

	return &media, nil
}
