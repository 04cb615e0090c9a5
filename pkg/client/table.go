package client

type Family string

const (
	FamilyApp              Family = "dose-app"
	FamilyChrome           Family = "chrome"
	FamilyFirefox          Family = "firefox"
	FamilyEdge             Family = "edge"
	FamilyInternetExplorer Family = "internet-explorer"
	FamilyOpera            Family = "opera"
	FamilySafari           Family = "safari"
	FamilyAndroidTV        Family = "android-tv"
	FamilyIPhone           Family = "iphone"
	FamilyUnknown          Family = "unknown"
)

type Kind int

const (
	KindVideo Kind = iota
	KindAudio
)

// Rule marks codec as playable by family starting with MinVersion.
type Rule struct {
	Family     Family
	MinVersion Version
	Kind       Kind
	Codec      string
}

type group struct {
	family     Family
	minVersion Version
	video      []string
	audio      []string
}

// groups is the human maintained form of the rule table, one entry per
// version where a family gained codecs. Version 0.0 is the baseline.
var groups = []group{
	{FamilyApp, Version{0, 0},
		[]string{"h263", "h264", "h265", "hevc", "avc", "mpeg", "mpeg-4", "mpeg-4 sp"},
		[]string{"aac", "amr", "mp3", "midi", "pcm", "wave", "vorbis"}},

	{FamilyChrome, Version{0, 0}, nil, []string{"aac", "flac", "mp3"}},
	{FamilyChrome, Version{3, 0}, []string{"theora"}, nil},
	{FamilyChrome, Version{4, 0}, []string{"h264", "avc", "ogg"}, []string{"vorbis"}},
	{FamilyChrome, Version{25, 0}, []string{"vp8"}, nil},
	{FamilyChrome, Version{29, 0}, []string{"vp9"}, nil},
	{FamilyChrome, Version{33, 0}, nil, []string{"opus"}},
	{FamilyChrome, Version{70, 0}, []string{"av1"}, nil},
	{FamilyChrome, Version{107, 0}, []string{"hevc"}, nil},

	{FamilyFirefox, Version{0, 0}, nil, []string{"aac", "mp3"}},
	{FamilyFirefox, Version{3, 0}, []string{"theora", "ogg"}, []string{"vorbis"}},
	{FamilyFirefox, Version{4, 0}, []string{"vp8"}, nil},
	{FamilyFirefox, Version{15, 0}, nil, []string{"opus"}},
	{FamilyFirefox, Version{28, 0}, []string{"vp9"}, nil},
	{FamilyFirefox, Version{35, 0}, []string{"avc", "h264"}, nil},
	{FamilyFirefox, Version{51, 0}, nil, []string{"flac"}},
	{FamilyFirefox, Version{67, 0}, []string{"av1"}, nil},

	{FamilyEdge, Version{0, 0}, []string{"theora", "ogg"}, []string{"aac", "flac", "mp3"}},
	{FamilyEdge, Version{12, 0}, []string{"avc", "h264"}, nil},
	{FamilyEdge, Version{14, 0}, []string{"vp8", "vp9"}, []string{"opus"}},
	{FamilyEdge, Version{17, 0}, nil, []string{"vorbis"}},
	{FamilyEdge, Version{18, 0}, []string{"hevc", "h265"}, nil},
	{FamilyEdge, Version{75, 0}, []string{"av1"}, nil},

	{FamilyInternetExplorer, Version{9, 0}, []string{"avc", "h264"}, []string{"aac", "mp3"}},
	{FamilyInternetExplorer, Version{11, 0}, []string{"hevc", "h265", "vp8"}, nil},

	{FamilyOpera, Version{0, 0}, nil, []string{"aac", "mp3"}},
	{FamilyOpera, Version{10, 0}, []string{"theora", "vp9"}, nil},
	{FamilyOpera, Version{11, 0}, nil, []string{"vorbis"}},
	{FamilyOpera, Version{16, 0}, []string{"vp8"}, nil},
	{FamilyOpera, Version{20, 0}, nil, []string{"opus"}},
	{FamilyOpera, Version{25, 0}, []string{"avc", "h264"}, nil},
	{FamilyOpera, Version{57, 0}, []string{"av1"}, nil},

	{FamilySafari, Version{0, 0}, []string{"mpeg-1", "mpeg-2"}, []string{"alac"}},
	{FamilySafari, Version{3, 0}, []string{"avc", "h264"}, []string{"aac", "mp3"}},
	{FamilySafari, Version{11, 0}, []string{"hevc", "h265"}, []string{"flac"}},

	{FamilyAndroidTV, Version{0, 0},
		[]string{"h263", "h264", "avc", "mpeg", "mpeg-4", "mpeg-4 sp", "hevc"},
		[]string{"aac", "amr", "mp3", "midi", "pcm", "wave", "vorbis"}},
	{FamilyAndroidTV, Version{2, 3}, []string{"vp8"}, nil},
	{FamilyAndroidTV, Version{3, 1}, nil, []string{"flac"}},
	{FamilyAndroidTV, Version{4, 4}, []string{"vp9"}, nil},
	{FamilyAndroidTV, Version{5, 0}, []string{"h265"}, []string{"opus"}},
	{FamilyAndroidTV, Version{9, 0}, nil, []string{"xhe-aac"}},
	{FamilyAndroidTV, Version{10, 0}, []string{"av1"}, nil},

	{FamilyIPhone, Version{0, 0}, []string{"h264", "ogg"}, []string{"aac", "mp3"}},
}

// Rules is the flattened capability table.
var Rules = flatten(groups)

func flatten(groups []group) []Rule {
	var rules []Rule
	for _, g := range groups {
		for _, codec := range g.video {
			rules = append(rules, Rule{g.family, g.minVersion, KindVideo, codec})
		}
		for _, codec := range g.audio {
			rules = append(rules, Rule{g.family, g.minVersion, KindAudio, codec})
		}
	}
	return rules
}
