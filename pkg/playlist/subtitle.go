package playlist

import (
	"fmt"
	"strings"

	"github.com/dose-media/dose-stream/pkg/transcode"
)

// SubtitlePlaylist renders a playlist with the whole track as one WebVTT segment.
func SubtitlePlaylist(segmentURL string) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n", transcode.SubtitleDuration)
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n")
	b.WriteString("#EXT-X-PLAYLIST-TYPE:VOD\n")
	fmt.Fprintf(&b, "#EXTINF:%d,\n", transcode.SubtitleDuration)
	b.WriteString(segmentURL)
	b.WriteString("\n")
	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String()
}
