package playlist

import (
	"strconv"
	"strings"
)

const DefaultFrameRate = 24.0

// ParseFrameRate parses an ffprobe rate fraction such as "24000/1001".
func ParseFrameRate(rate string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(rate), "/")
	if !ok {
		den = "1"
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return DefaultFrameRate
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return DefaultFrameRate
	}

	return n / d
}
