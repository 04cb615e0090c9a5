// Package playlist renders HLS manifests for transcoded streams.
package playlist

import (
	"fmt"
	"math"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dose-media/dose-stream/pkg/transcode"
)

const ContentType = "application/vnd.apple.mpegurl"

// Stream identifies what the generated URLs refer to.
type Stream struct {
	BaseURL     string
	ContentID   string
	ContentType string
	AudioStream int
	Token       string
	Session     string
	Codec       transcode.VideoCodec
}

func (s Stream) query() url.Values {
	q := url.Values{}
	q.Set("audioStream", strconv.Itoa(s.AudioStream))
	q.Set("type", s.ContentType)
	q.Set("token", s.Token)
	q.Set("transcoding", s.Session)
	if s.Codec != "" {
		q.Set("codec", string(s.Codec))
	}
	return q
}

func (s Stream) url(query url.Values, elem ...string) string {
	p := path.Join(append([]string{"/", s.BaseURL, url.PathEscape(s.ContentID), "hls"}, elem...)...)
	return p + "?" + query.Encode()
}

// SegmentCount is the number of segments announced for a source.
func SegmentCount(duration time.Duration) int {
	count := int(math.Round(duration.Seconds()/transcode.SegmentDuration.Seconds())) - 1
	if count < 0 {
		return 0
	}
	return count
}

// Media lists every segment of one rendition. It is computed from the source
// duration alone, segments are produced once they are requested.
func Media(stream Stream, resolution transcode.Resolution, duration time.Duration) string {
	count := SegmentCount(duration)
	target := int(transcode.SegmentDuration.Seconds())

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n", target)
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n")
	b.WriteString("#EXT-X-PLAYLIST-TYPE:VOD\n")

	query := stream.query()
	query.Set("segments", strconv.Itoa(count))

	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, "#EXTINF:%d, nodesc\n", target)
		b.WriteString(stream.url(query, string(resolution), "segment", fmt.Sprintf("%d.ts", i)))
		b.WriteString("\n")
	}

	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String()
}
