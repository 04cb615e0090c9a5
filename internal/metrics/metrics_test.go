package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T, h http.Handler) string {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestHandler(t *testing.T) {
	m := New()
	m.IncSessionsCreated()
	m.IncRestarts("seek-forward")
	m.IncRestarts("seek-forward")
	m.IncSegmentsServed()

	body := scrape(t, m.Handler(func() {
		m.SetSessionsActive(3)
	}))

	assert.Contains(t, body, "dose_stream_sessions_active 3")
	assert.Contains(t, body, "dose_stream_sessions_created_total 1")
	assert.Contains(t, body, `dose_stream_session_restarts_total{reason="seek-forward"} 2`)
	assert.Contains(t, body, "dose_stream_segments_served_total 1")
}

func TestRequestMiddleware(t *testing.T) {
	m := New()

	h := m.RequestMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "404 not found", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, p := range []string{"/", "/", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	body := scrape(t, m.Handler(nil))
	assert.Contains(t, body, `dose_stream_http_requests_total{method="GET",status="200"} 2`)
	assert.Contains(t, body, `dose_stream_http_requests_total{method="GET",status="404"} 1`)
}
