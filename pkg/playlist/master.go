package playlist

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/dose-media/dose-stream/pkg/transcode"
)

// codecs advertised for every variant, h264 high profile and AAC LC
const variantCodecs = "avc1.640028,mp4a.40.2"

const subtitleGroup = "subs"

type Subtitle struct {
	ID       int
	Language string
}

type MasterOptions struct {
	Resolutions []transcode.ResolutionProfile
	FrameRate   float64
	Subtitles   []Subtitle
}

// Master lists one variant per resolution and the subtitle renditions.
func Master(stream Stream, options MasterOptions) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	b.WriteString("#EXT-X-INDEPENDENT-SEGMENTS\n")

	for _, subtitle := range options.Subtitles {
		fmt.Fprintf(&b,
			"#EXT-X-MEDIA:TYPE=SUBTITLES,GROUP-ID=%q,LANGUAGE=%q,NAME=%q,FORCED=NO,AUTOSELECT=NO,DEFAULT=NO,URI=%q\n",
			subtitleGroup, subtitle.Language, subtitle.Language, SubtitleURL(stream, subtitle.ID))
	}

	frameRate := options.FrameRate
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}

	query := stream.query()
	for _, profile := range options.Resolutions {
		fmt.Fprintf(&b,
			"#EXT-X-STREAM-INF:BANDWIDTH=%d,AVERAGE-BANDWIDTH=%d,VIDEO-RANGE=SDR,CODECS=%q,RESOLUTION=%dx%d,FRAME-RATE=%s,NAME=%q",
			profile.Bandwidth, profile.AverageBandwidth, variantCodecs,
			profile.Width, profile.Height,
			strconv.FormatFloat(frameRate, 'f', 3, 64),
			string(profile.Name))
		if len(options.Subtitles) > 0 {
			fmt.Fprintf(&b, ",SUBTITLES=%q", subtitleGroup)
		}
		b.WriteString("\n")
		b.WriteString(stream.url(query, string(profile.Name)))
		b.WriteString("\n")
	}

	return b.String()
}

// SubtitleURL points at the playlist of one subtitle track.
func SubtitleURL(stream Stream, subtitleID int) string {
	q := url.Values{}
	q.Set("token", stream.Token)
	return path.Join("/", stream.BaseURL, "hls", "subtitle", strconv.Itoa(subtitleID)) + "?" + q.Encode()
}
