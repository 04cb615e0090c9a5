package hls

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dose-media/dose-stream/internal/auth"
	"github.com/dose-media/dose-stream/pkg/playlist"
	"github.com/dose-media/dose-stream/pkg/transcode"
)

func (m *ModuleCtx) master(w http.ResponseWriter, r *http.Request) {
	c, err := parseContent(r)
	if err != nil {
		http.Error(w, "400 "+err.Error(), http.StatusBadRequest)
		return
	}

	codec, err := m.codec(r)
	if err != nil {
		http.Error(w, "400 "+err.Error(), http.StatusBadRequest)
		return
	}

	path, ok := m.contentPath(w, r, c)
	if !ok {
		return
	}

	media, err := m.prober.Probe(r.Context(), path)
	if err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("unable to probe media")
		http.Error(w, "500 unable to probe media", http.StatusInternalServerError)
		return
	}

	subtitles, err := m.catalog.Subtitles(r.Context(), c.kind, c.id)
	if err != nil {
		m.logger.Warn().Err(err).Int("content", c.id).Msg("unable to list subtitles")
		http.Error(w, "500 unable to list subtitles", http.StatusInternalServerError)
		return
	}

	options := playlist.MasterOptions{
		FrameRate: playlist.DefaultFrameRate,
	}
	if media.Video != nil {
		options.Resolutions = transcode.ResolutionsForWidth(media.Video.Width)
		options.FrameRate = playlist.ParseFrameRate(media.Video.FrameRate)
	}
	for _, subtitle := range subtitles {
		options.Subtitles = append(options.Subtitles, playlist.Subtitle{
			ID:       subtitle.ID,
			Language: subtitle.Language,
		})
	}

	session := uuid.NewString()
	stream := playlist.Stream{
		BaseURL:     m.config.BaseURL,
		ContentID:   strconv.Itoa(c.id),
		ContentType: string(c.kind),
		AudioStream: c.audioStream,
		Token:       auth.FromRequest(r),
		Session:     session,
		Codec:       codec,
	}

	m.logger.Debug().
		Str("session", session).
		Int("content", c.id).
		Int("variants", len(options.Resolutions)).
		Msg("serving master playlist")

	w.Header().Set("Content-Type", playlist.ContentType)
	_, _ = w.Write([]byte(playlist.Master(stream, options)))
}

func (m *ModuleCtx) media(w http.ResponseWriter, r *http.Request) {
	c, err := parseContent(r)
	if err != nil {
		http.Error(w, "400 "+err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := transcode.LookupResolution(chi.URLParam(r, "resolution"))
	if err != nil {
		http.Error(w, "400 "+err.Error(), http.StatusBadRequest)
		return
	}

	codec, err := m.codec(r)
	if err != nil {
		http.Error(w, "400 "+err.Error(), http.StatusBadRequest)
		return
	}

	session := r.URL.Query().Get("transcoding")
	if session == "" {
		http.Error(w, "400 missing transcoding id", http.StatusBadRequest)
		return
	}

	path, ok := m.contentPath(w, r, c)
	if !ok {
		return
	}

	media, err := m.prober.Probe(r.Context(), path)
	if err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("unable to probe media")
		http.Error(w, "500 unable to probe media", http.StatusInternalServerError)
		return
	}

	stream := playlist.Stream{
		BaseURL:     m.config.BaseURL,
		ContentID:   strconv.Itoa(c.id),
		ContentType: string(c.kind),
		AudioStream: c.audioStream,
		Token:       auth.FromRequest(r),
		Session:     session,
		Codec:       codec,
	}

	w.Header().Set("Content-Type", playlist.ContentType)
	_, _ = w.Write([]byte(playlist.Media(stream, profile.Name, media.Duration)))
}
