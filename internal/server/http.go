package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dose-media/dose-stream/internal/metrics"
)

type ServerManagerCtx struct {
	logger zerolog.Logger
	config *Config
	router *chi.Mux
	server *http.Server
}

func New(config *Config, metrics *metrics.Metrics) *ServerManagerCtx {
	logger := log.With().Str("module", "server").Logger()

	router := chi.NewRouter()
	router.Use(middleware.RequestID) // Create a request ID for each request

	// get real users ip
	if config.Proxy {
		router.Use(middleware.RealIP)
	}

	// add http logger
	router.Use(middleware.RequestLogger(&logformatter{logger}))
	router.Use(middleware.Recoverer) // Recover from panics without crashing server

	if config.Metrics && metrics != nil {
		router.Use(metrics.RequestMiddleware)
	}

	// mount pprof endpoint
	if config.PProf {
		withPProf(router)
		logger.Info().Msgf("with pprof endpoint at %s", pprofPath)
	}

	// use custom 404
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 not found", http.StatusNotFound)
	})

	return &ServerManagerCtx{
		logger: logger,
		config: config,
		router: router,
		server: &http.Server{
			Addr:    config.Bind,
			Handler: router,
		},
	}
}

// Static serves client files for every path no route matched. It must be
// called after all routes are mounted.
func (s *ServerManagerCtx) Static() {
	if s.config.Static == "" {
		return
	}

	fs := http.FileServer(http.Dir(s.config.Static))
	s.router.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(s.config.Static + r.URL.Path); os.IsNotExist(err) {
			http.StripPrefix(r.URL.Path, fs).ServeHTTP(w, r)
		} else {
			fs.ServeHTTP(w, r)
		}
	})

	s.logger.Info().Str("static", s.config.Static).Msg("serving static files")
}

func (s *ServerManagerCtx) Start() {
	if s.config.SSLCert != "" && s.config.SSLKey != "" {
		s.logger.Warn().Msg("TLS support is provided for convenience, but you should never use it in production. Use a reverse proxy (apache nginx caddy) instead!")
		go func() {
			if err := s.server.ListenAndServeTLS(s.config.SSLCert, s.config.SSLKey); err != http.ErrServerClosed {
				s.logger.Panic().Err(err).Msg("unable to start https server")
			}
		}()
		s.logger.Info().Msgf("https listening on %s", s.server.Addr)
	} else {
		go func() {
			if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
				s.logger.Panic().Err(err).Msg("unable to start http server")
			}
		}()
		s.logger.Info().Msgf("http listening on %s", s.server.Addr)
	}
}

func (s *ServerManagerCtx) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *ServerManagerCtx) Handle(pattern string, handler http.Handler) {
	s.router.Handle(pattern, handler)
}

func (s *ServerManagerCtx) Mount(pattern string, fn func(r chi.Router)) {
	s.router.Route(pattern, fn)
}

func (s *ServerManagerCtx) Handler() http.Handler {
	return s.router
}
