package transcode

import (
	"fmt"
	"path/filepath"
	"strconv"
)

const (
	playlistName     = "index.m3u8"
	segmentPattern   = "%d.ts"
	keyframeInterval = 52
	audioBitrate     = "320k"
)

func segmentName(segment int) string {
	return fmt.Sprintf(segmentPattern, segment)
}

// seekSeconds is the input offset at which segment starts.
func seekSeconds(segment int) string {
	seconds := float64(segment) * SegmentDuration.Seconds()
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

func buildArgs(options Options, settings Settings, outputDir string) []string {
	profile, _ := LookupResolution(string(options.Resolution))
	segmentSeconds := strconv.Itoa(int(SegmentDuration.Seconds()))

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "warning",
		"-nostats",
		"-progress", "pipe:1",
		"-copyts",
		"-ss", seekSeconds(options.Segment),
	}

	if options.Codec.Hardware() {
		args = append(args,
			"-hwaccel", "cuda",
			"-hwaccel_output_format", "cuda",
		)
	} else {
		args = append(args, "-threads", strconv.Itoa(settings.Threads))
	}

	args = append(args,
		"-i", options.SourcePath,
		"-map", "0:V:0",
		"-map", fmt.Sprintf("0:a:%d?", options.AudioStream),
		"-c:v", options.Codec.Encoder(),
	)

	if options.Codec.Hardware() {
		args = append(args,
			"-cq", strconv.Itoa(settings.CRF),
			"-vf", fmt.Sprintf("scale_cuda=%d:-2", profile.ScaleWidth),
		)
	} else {
		args = append(args,
			"-preset:v", string(settings.Preset),
			"-deadline", "realtime",
			"-crf", strconv.Itoa(settings.CRF),
			"-vf", fmt.Sprintf("scale=%d:-2", profile.ScaleWidth),
		)
	}

	args = append(args,
		"-b:v", profile.Bitrate,
		"-g", strconv.Itoa(keyframeInterval),
		"-force_key_frames", fmt.Sprintf("expr:gte(t,n_forced*%s)", segmentSeconds),
		"-c:a", "aac",
		"-ac", "2",
		"-b:a", audioBitrate,
		"-sn",
		"-muxdelay", "0",
		"-strict", "1",
		"-f", "hls",
		"-hls_time", segmentSeconds,
		"-hls_playlist_type", "vod",
		"-hls_flags", "temp_file",
		"-start_number", strconv.Itoa(options.Segment),
		"-hls_segment_filename", filepath.Join(outputDir, segmentPattern),
		filepath.Join(outputDir, playlistName),
	)

	return args
}
