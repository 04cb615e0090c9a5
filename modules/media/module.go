package media

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/asticode/go-astisub"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dose-media/dose-stream/internal/auth"
	"github.com/dose-media/dose-stream/internal/catalog"
	"github.com/dose-media/dose-stream/pkg/client"
	"github.com/dose-media/dose-stream/pkg/probe"
	"github.com/dose-media/dose-stream/pkg/transcode"
)

type ModuleCtx struct {
	logger zerolog.Logger

	catalog  catalog.Catalog
	prober   Prober
	verifier auth.Verifier
}

func New(catalog catalog.Catalog, prober Prober, verifier auth.Verifier) *ModuleCtx {
	return &ModuleCtx{
		logger: log.With().Str("module", "media").Logger(),

		catalog:  catalog,
		prober:   prober,
		verifier: verifier,
	}
}

func (m *ModuleCtx) Cleanup() {}

func (m *ModuleCtx) Shutdown() {}

func (m *ModuleCtx) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(m.verifier))

		r.Get("/{id}/directplay", m.directPlay)
		r.Get("/directplay/subtitle/{subtitleId}", m.directPlaySubtitle)
		r.Get("/{id}/resolutions", m.resolutions)
		r.Get("/{id}/languages", m.languages)
	})
}

// contentPath resolves the requested content, writing the error response
// when it cannot.
func (m *ModuleCtx) contentPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	kind, err := catalog.ParseKind(r.URL.Query().Get("type"))
	if err != nil {
		http.Error(w, "400 "+err.Error(), http.StatusBadRequest)
		return "", false
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "400 invalid content id", http.StatusBadRequest)
		return "", false
	}

	path, err := m.catalog.ContentPath(r.Context(), kind, id)
	if errors.Is(err, catalog.ErrNotFound) {
		http.Error(w, "404 content not found", http.StatusNotFound)
		return "", false
	}
	if err != nil {
		m.logger.Warn().Err(err).Int("content", id).Msg("unable to resolve content path")
		http.Error(w, "500 unable to resolve content", http.StatusInternalServerError)
		return "", false
	}

	return path, true
}

func (m *ModuleCtx) probe(w http.ResponseWriter, r *http.Request) (*probe.Media, bool) {
	path, ok := m.contentPath(w, r)
	if !ok {
		return nil, false
	}

	media, err := m.prober.Probe(r.Context(), path)
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "404 media not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("unable to probe media")
		http.Error(w, "500 unable to probe media", http.StatusInternalServerError)
		return nil, false
	}

	return media, true
}

func (m *ModuleCtx) directPlay(w http.ResponseWriter, r *http.Request) {
	path, ok := m.contentPath(w, r)
	if !ok {
		return
	}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		http.Error(w, "404 media not found", http.StatusNotFound)
		return
	}
	if err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("unable to open media")
		http.Error(w, "500 unable to open media", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("unable to stat media")
		http.Error(w, "500 unable to open media", http.StatusInternalServerError)
		return
	}

	// players expect a partial response even for the first request
	if r.Header.Get("Range") == "" && info.Size() > 0 {
		r = r.Clone(r.Context())
		r.Header.Set("Range", "bytes=0-")
	}

	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), file)
}

// directPlaySubtitle converts a subtitle file (srt, ssa, ass, ttml, stl or
// vtt) to WebVTT for players showing it next to the direct play stream.
func (m *ModuleCtx) directPlaySubtitle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "subtitleId"))
	if err != nil || id < 0 {
		http.Error(w, "400 invalid subtitle id", http.StatusBadRequest)
		return
	}

	path, err := m.catalog.SubtitlePath(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		http.Error(w, "404 subtitle not found", http.StatusNotFound)
		return
	}
	if err != nil {
		m.logger.Warn().Err(err).Int("subtitle", id).Msg("unable to resolve subtitle path")
		http.Error(w, "500 unable to resolve subtitle", http.StatusInternalServerError)
		return
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		http.Error(w, "404 subtitle not found", http.StatusNotFound)
		return
	}

	subs, err := astisub.OpenFile(path)
	if err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("unable to read subtitle")
		http.Error(w, "500 unable to convert subtitle", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := subs.WriteToWebVTT(&buf); err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("unable to convert subtitle")
		http.Error(w, "500 unable to convert subtitle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", subtitleContentType)
	_, _ = w.Write(buf.Bytes())
}

func (m *ModuleCtx) resolutions(w http.ResponseWriter, r *http.Request) {
	media, ok := m.probe(w, r)
	if !ok {
		return
	}

	res := Resolutions{
		Resolutions: []string{},
	}
	if media.Video != nil {
		for _, profile := range transcode.ResolutionsForWidth(media.Video.Width) {
			res.Resolutions = append(res.Resolutions, string(profile.Name))
		}
	}

	profile := client.Resolve(client.ParseUserAgent(r.UserAgent()))
	res.DirectPlay = profile.CanDirectPlay(media.VideoCodec(), media.AudioCodecs())

	m.writeJSON(w, res)
}

func (m *ModuleCtx) languages(w http.ResponseWriter, r *http.Request) {
	media, ok := m.probe(w, r)
	if !ok {
		return
	}

	languages := make([]Language, 0, len(media.Audio))
	for _, audio := range media.Audio {
		languages = append(languages, Language{
			Language: audio.Language,
			Stream:   audio.Index,
		})
	}

	m.writeJSON(w, languages)
}

func (m *ModuleCtx) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.logger.Warn().Err(err).Msg("unable to write response")
	}
}
