package client

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Profile struct {
	logger  zerolog.Logger
	family  Family
	version Version

	video map[string]struct{}
	audio map[string]struct{}
}

// NewProfile builds the codec sets of family at version from the rule table.
func NewProfile(family Family, version Version) *Profile {
	return newProfile(Rules, family, version)
}

func newProfile(rules []Rule, family Family, version Version) *Profile {
	p := &Profile{
		logger: log.With().
			Str("module", "client").
			Str("family", string(family)).
			Str("version", version.String()).
			Logger(),
		family:  family,
		version: version,
		video:   map[string]struct{}{},
		audio:   map[string]struct{}{},
	}

	for _, rule := range rules {
		if rule.Family != family || version.Less(rule.MinVersion) {
			continue
		}

		codec := strings.ToLower(rule.Codec)
		switch rule.Kind {
		case KindVideo:
			p.video[codec] = struct{}{}
		case KindAudio:
			p.audio[codec] = struct{}{}
		}
	}

	return p
}

func (p *Profile) Family() Family {
	return p.family
}

func (p *Profile) Version() Version {
	return p.version
}

func (p *Profile) VideoCodecs() []string {
	return keys(p.video)
}

func (p *Profile) AudioCodecs() []string {
	return keys(p.audio)
}

func (p *Profile) IsVideoCodecSupported(codec string) bool {
	_, ok := p.video[strings.ToLower(codec)]
	p.logger.Debug().Str("codec", codec).Bool("supported", ok).Msg("video codec support check")
	return ok
}

func (p *Profile) IsAudioCodecSupported(codec string) bool {
	_, ok := p.audio[strings.ToLower(codec)]
	p.logger.Debug().Str("codec", codec).Bool("supported", ok).Msg("audio codec support check")
	return ok
}

// CanDirectPlay reports whether the source can be sent unmodified.
func (p *Profile) CanDirectPlay(videoCodec string, audioCodecs []string) bool {
	if !p.IsVideoCodecSupported(videoCodec) {
		return false
	}

	for _, codec := range audioCodecs {
		if !p.IsAudioCodecSupported(codec) {
			return false
		}
	}

	return true
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
