package serve

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dose-media/dose-stream/internal/auth"
	"github.com/dose-media/dose-stream/internal/catalog"
	"github.com/dose-media/dose-stream/internal/metrics"
	"github.com/dose-media/dose-stream/internal/server"
	"github.com/dose-media/dose-stream/modules"
	"github.com/dose-media/dose-stream/modules/hls"
	"github.com/dose-media/dose-stream/modules/media"
	"github.com/dose-media/dose-stream/pkg/probe"
	"github.com/dose-media/dose-stream/pkg/transcode"
)

const apiPrefix = "/api/video"

func NewCommand() *Main {
	return &Main{
		ServerConfig:      &server.Config{},
		TranscodingConfig: &TranscodingConfig{},
		ProbeConfig:       &ProbeConfig{},
		CatalogConfig:     &CatalogConfig{},
		AuthConfig:        &AuthConfig{},
	}
}

type Main struct {
	ServerConfig      *server.Config
	TranscodingConfig *TranscodingConfig
	ProbeConfig       *ProbeConfig
	CatalogConfig     *CatalogConfig
	AuthConfig        *AuthConfig

	logger  zerolog.Logger
	server  *server.ServerManagerCtx
	metrics *metrics.Metrics
	hls     *hls.ModuleCtx
	media   *media.ModuleCtx
	modules []modules.Module
}

func (main *Main) Preflight() {
	main.logger = log.With().Str("service", "main").Logger()
}

func (main *Main) start() {
	if main.AuthConfig.Secret == "" {
		main.logger.Panic().Msg("auth.secret must be set")
	}

	db, err := catalog.Open(catalog.Config{
		Driver: main.CatalogConfig.Driver,
		DSN:    main.CatalogConfig.DSN,
	})
	if err != nil {
		main.logger.Panic().Err(err).Str("driver", main.CatalogConfig.Driver).Msg("unable to open catalog")
	}
	cat := catalog.NewDatabase(db)

	verifier := auth.NewJWT(main.AuthConfig.Secret, main.AuthConfig.TTL)
	prober := probe.New(main.TranscodingConfig.FFprobeBinary, main.ProbeConfig.CacheDir)

	main.metrics = metrics.New()
	main.server = server.New(main.ServerConfig, main.metrics)

	config := main.TranscodingConfig
	main.hls = hls.New(&hls.Config{
		Transcode: transcode.Config{
			TranscodeDir:  config.Dir,
			FFmpegBinary:  config.FFmpegBinary,
			Settings:      config.Settings,
			IdleTimeout:   config.IdleTimeout,
			SweepInterval: config.SweepInterval,
		},
		BaseURL:       apiPrefix,
		Codec:         config.Codec,
		PollInterval:  config.PollInterval,
		SeekTolerance: config.SeekTolerance,
	}, cat, prober, verifier, main.metrics)

	if err := main.hls.Start(); err != nil {
		main.logger.Panic().Err(err).Msg("unable to start hls module")
	}

	main.media = media.New(cat, prober, verifier)
	main.modules = []modules.Module{main.hls, main.media}

	main.server.Mount(apiPrefix, func(r chi.Router) {
		for _, module := range main.modules {
			module.Mount(r)
		}
	})
	main.logger.Info().Str("prefix", apiPrefix).Msg("video api registered")

	if main.ServerConfig.Metrics {
		main.server.Handle("/metrics", main.metrics.Handler(func() {
			main.metrics.SetSessionsActive(main.hls.Sessions())
		}))
		main.logger.Info().Msg("with metrics endpoint at /metrics")
	}

	main.server.Static()
	main.server.Start()
}

// ConfigReload applies reloaded transcoding settings. An invalid config keeps
// the previous settings.
func (main *Main) ConfigReload() {
	if err := main.TranscodingConfig.Load(); err != nil {
		main.logger.Error().Err(err).Msg("invalid transcoding config, keeping previous settings")
		return
	}

	if main.hls == nil {
		return
	}

	main.hls.ConfigReload(main.TranscodingConfig.Settings)
}

func (main *Main) shutdown() {
	err := main.server.Shutdown()
	main.logger.Err(err).Msg("http manager shutdown")

	for _, module := range main.modules {
		module.Shutdown()
	}
	main.logger.Info().Msg("modules shutdown")
}

func (main *Main) Run(cmd *cobra.Command, args []string) {
	main.logger.Info().Msg("starting main server")
	main.start()
	main.logger.Info().Msg("main ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit

	main.logger.Warn().Msgf("received %s, attempting graceful shutdown", sig)
	main.shutdown()
	main.logger.Info().Msg("shutdown complete")
}
