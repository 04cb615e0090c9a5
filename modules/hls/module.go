package hls

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dose-media/dose-stream/internal/auth"
	"github.com/dose-media/dose-stream/internal/catalog"
	"github.com/dose-media/dose-stream/internal/metrics"
	"github.com/dose-media/dose-stream/pkg/transcode"
)

type ModuleCtx struct {
	logger zerolog.Logger
	config Config

	manager  *transcode.ManagerCtx
	catalog  catalog.Catalog
	prober   Prober
	verifier auth.Verifier
	metrics  *metrics.Metrics
}

func New(config *Config, catalog catalog.Catalog, prober Prober, verifier auth.Verifier, metrics *metrics.Metrics) *ModuleCtx {
	module := &ModuleCtx{
		logger: log.With().Str("module", "hls").Logger(),
		config: config.withDefaultValues(),

		manager:  transcode.New(config.Transcode),
		catalog:  catalog,
		prober:   prober,
		verifier: verifier,
		metrics:  metrics,
	}

	module.manager.OnCreate(func(id string) {
		module.metrics.IncSessionsCreated()
	})
	module.manager.OnEvict(func(id string) {
		module.metrics.IncSessionsEvicted()
	})
	module.manager.OnFailure(func(id string, err error) {
		module.metrics.IncEncoderFailures()
	})

	return module
}

// Start schedules the idle session sweep.
func (m *ModuleCtx) Start() error {
	return m.manager.Start()
}

func (m *ModuleCtx) Shutdown() {
	m.manager.Shutdown()
}

// ConfigReload applies new encoder settings to sessions created afterwards.
func (m *ModuleCtx) ConfigReload(settings map[transcode.VideoCodec]transcode.Settings) {
	m.manager.SetSettings(settings)
	m.logger.Info().Msg("transcoding settings reloaded")
}

func (m *ModuleCtx) Cleanup() {
	m.manager.Cleanup()
}

// Sessions is the number of registered transcoding sessions.
func (m *ModuleCtx) Sessions() int {
	return m.manager.Len()
}

func (m *ModuleCtx) Mount(r chi.Router) {
	r.Delete("/hls/stop", m.stop)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(m.verifier))

		r.Post("/hls/ping", m.ping)
		r.Get("/hls/subtitle/{subtitleId}", m.subtitlePlaylist)
		r.Get("/hls/subtitle/{subtitleId}/0.vtt", m.subtitleFile)

		r.Get("/{id}/hls/master", m.master)
		r.Get("/{id}/hls/{resolution}", m.media)
		r.Get("/{id}/hls/{resolution}/segment/{segment}.ts", m.segment)
	})
}

type content struct {
	kind        catalog.Kind
	id          int
	audioStream int
}

func parseContent(r *http.Request) (content, error) {
	query := r.URL.Query()

	kind, err := catalog.ParseKind(query.Get("type"))
	if err != nil {
		return content{}, err
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return content{}, fmt.Errorf("invalid content id %q", chi.URLParam(r, "id"))
	}

	audioStream := 0
	if value := query.Get("audioStream"); value != "" {
		audioStream, err = strconv.Atoi(value)
		if err != nil || audioStream < 0 {
			return content{}, fmt.Errorf("invalid audio stream %q", value)
		}
	}

	return content{
		kind:        kind,
		id:          id,
		audioStream: audioStream,
	}, nil
}

func (m *ModuleCtx) codec(r *http.Request) (transcode.VideoCodec, error) {
	if value := r.URL.Query().Get("codec"); value != "" {
		return transcode.ParseVideoCodec(value)
	}
	return m.config.Codec, nil
}

func (m *ModuleCtx) contentPath(w http.ResponseWriter, r *http.Request, c content) (string, bool) {
	path, err := m.catalog.ContentPath(r.Context(), c.kind, c.id)
	if errors.Is(err, catalog.ErrNotFound) {
		http.Error(w, "404 content not found", http.StatusNotFound)
		return "", false
	}
	if err != nil {
		m.logger.Warn().Err(err).Int("content", c.id).Msg("unable to resolve content path")
		http.Error(w, "500 unable to resolve content", http.StatusInternalServerError)
		return "", false
	}
	return path, true
}
