package hls

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dose-media/dose-stream/internal/auth"
	"github.com/dose-media/dose-stream/internal/catalog"
	"github.com/dose-media/dose-stream/pkg/playlist"
	"github.com/dose-media/dose-stream/pkg/transcode"
)

const subtitleContentType = "text/vtt"

func (m *ModuleCtx) subtitlePath(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "subtitleId"))
	if err != nil {
		http.Error(w, "400 invalid subtitle id", http.StatusBadRequest)
		return "", 0, false
	}

	p, err := m.catalog.SubtitlePath(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		http.Error(w, "404 subtitle not found", http.StatusNotFound)
		return "", 0, false
	}
	if err != nil {
		m.logger.Warn().Err(err).Int("subtitle", id).Msg("unable to resolve subtitle path")
		http.Error(w, "500 unable to resolve subtitle", http.StatusInternalServerError)
		return "", 0, false
	}

	return p, id, true
}

func (m *ModuleCtx) subtitlePlaylist(w http.ResponseWriter, r *http.Request) {
	_, id, ok := m.subtitlePath(w, r)
	if !ok {
		return
	}

	query := url.Values{}
	query.Set("token", auth.FromRequest(r))
	segmentURL := path.Join("/", m.config.BaseURL, "hls", "subtitle", strconv.Itoa(id), "0.vtt") + "?" + query.Encode()

	w.Header().Set("Content-Type", playlist.ContentType)
	_, _ = w.Write([]byte(playlist.SubtitlePlaylist(segmentURL)))
}

func (m *ModuleCtx) subtitleFile(w http.ResponseWriter, r *http.Request) {
	source, id, ok := m.subtitlePath(w, r)
	if !ok {
		return
	}

	config := m.manager.Config()

	dir, file, err := transcode.TranscodeSubtitle(r.Context(), config.FFmpegBinary, config.TranscodeDir, source)
	if err != nil {
		m.logger.Warn().Err(err).Int("subtitle", id).Msg("unable to transcode subtitle")
		http.Error(w, "500 unable to transcode subtitle", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			m.logger.Warn().Err(err).Str("dir", dir).Msg("unable to remove subtitle dir")
		}
	}()

	w.Header().Set("Content-Type", subtitleContentType)
	http.ServeFile(w, r, file)
}
