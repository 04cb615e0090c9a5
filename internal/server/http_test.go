package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dose-media/dose-stream/internal/metrics"
)

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestServer_Routes(t *testing.T) {
	m := metrics.New()
	s := New(&Config{Metrics: true, PProf: true}, m)

	s.Mount("/api/video", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("pong"))
		})
		r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})
	})
	s.Handle("/metrics", m.Handler(nil))

	w := get(s.Handler(), "/api/video/ping")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	assert.Equal(t, http.StatusNotFound, get(s.Handler(), "/nothing").Code)
	assert.Equal(t, http.StatusInternalServerError, get(s.Handler(), "/api/video/panic").Code)
	assert.Equal(t, http.StatusOK, get(s.Handler(), "/debug/pprof/").Code)

	body := get(s.Handler(), "/metrics").Body.String()
	assert.Contains(t, body, `dose_stream_http_requests_total{method="GET",status="200"}`)
	assert.Contains(t, body, `dose_stream_http_requests_total{method="GET",status="404"} 1`)
}

func TestServer_Static(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("app"), 0644))

	s := New(&Config{Static: dir}, nil)
	s.Mount("/api/video", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("pong"))
		})
	})
	s.Static()

	assert.Equal(t, "app", get(s.Handler(), "/app.js").Body.String())
	assert.Equal(t, "pong", get(s.Handler(), "/api/video/ping").Body.String())

	// unknown client routes fall back to the index
	w := get(s.Handler(), "/movies/5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html></html>", w.Body.String())
}
