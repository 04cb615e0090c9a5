package hls

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dose-media/dose-stream/pkg/transcode"
)

const segmentContentType = "video/MP2T"

func (m *ModuleCtx) segment(w http.ResponseWriter, r *http.Request) {
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

	segment, err := strconv.Atoi(chi.URLParam(r, "segment"))
	if err != nil || segment < 0 {
		http.Error(w, "400 invalid segment", http.StatusBadRequest)
		return
	}

	id := r.URL.Query().Get("transcoding")
	if id == "" {
		http.Error(w, "400 missing transcoding id", http.StatusBadRequest)
		return
	}

	logger := m.logger.With().
		Str("session", id).
		Str("resolution", string(profile.Name)).
		Int("segment", segment).
		Logger()

	session, ok := m.manager.Get(id)
	if !ok {
		path, ok := m.contentPath(w, r, c)
		if !ok {
			return
		}

		session, err = m.manager.GetOrCreate(id, transcode.Options{
			SourcePath:  path,
			Resolution:  profile.Name,
			AudioStream: c.audioStream,
			Codec:       codec,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("unable to create session")
			http.Error(w, "500 unable to start transcoding", http.StatusInternalServerError)
			return
		}
	}

	if err := m.manager.Touch(id); err != nil {
		http.Error(w, "404 segment not found", http.StatusNotFound)
		return
	}

	reason, restarted, err := session.EnsureSegment(segment, profile.Name, m.config.SeekTolerance)
	if restarted {
		logger.Info().Str("reason", string(reason)).Msg("restarted session for segment")
		m.metrics.IncRestarts(string(reason))
	}
	if err != nil {
		logger.Warn().Err(err).Msg("unable to restart session")
		http.Error(w, "404 segment not found", http.StatusNotFound)
		return
	}

	path, err := session.WaitForSegment(r.Context(), segment, m.config.PollInterval)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Debug().Msg("client went away while waiting for segment")
		return
	}
	if err != nil {
		logger.Warn().Err(err).Msg("segment not produced")
		http.Error(w, "404 segment not found", http.StatusNotFound)
		return
	}

	m.metrics.IncSegmentsServed()

	w.Header().Set("Content-Type", segmentContentType)
	http.ServeFile(w, r, path)
}

func (m *ModuleCtx) ping(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("transcoding")

	if err := m.manager.Touch(id); err != nil {
		http.Error(w, "400 unknown transcoding", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (m *ModuleCtx) stop(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	if m.manager.Remove(id) {
		m.logger.Info().Str("session", id).Msg("session stopped by client")
	}

	w.WriteHeader(http.StatusOK)
}
