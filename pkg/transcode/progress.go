package transcode

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// parseTimemark parses HH:MM:SS.micro as reported by ffmpeg progress output.
// Negative or malformed values are rejected.
func parseTimemark(timemark string) (float64, bool) {
	timemark = strings.TrimSpace(timemark)
	if timemark == "" || strings.HasPrefix(timemark, "-") {
		return 0, false
	}

	parts := strings.Split(timemark, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}

	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || seconds >= 60 || math.IsNaN(seconds) {
		return 0, false
	}

	return float64(hours*3600+minutes*60) + seconds, true
}

// segmentAt converts elapsed encoder time into the absolute index of the
// last finished segment.
func segmentAt(startSegment int, elapsed float64) (int, bool) {
	if elapsed <= 0 {
		return 0, false
	}

	index := int(math.Floor(elapsed/SegmentDuration.Seconds())) - 1
	if index < 0 {
		index = 0
	}

	return startSegment + index, true
}

// readProgress consumes key=value lines of ffmpeg -progress output until EOF.
func readProgress(r io.Reader, onTime func(elapsed float64), onEnd func()) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}

		switch strings.TrimSpace(key) {
		case "out_time":
			if elapsed, ok := parseTimemark(value); ok {
				onTime(elapsed)
			}
		case "progress":
			if strings.TrimSpace(value) == "end" && onEnd != nil {
				onEnd()
			}
		}
	}

	// keep the pipe drained so the encoder never blocks on stdout
	_, _ = io.Copy(io.Discard, r)
}
