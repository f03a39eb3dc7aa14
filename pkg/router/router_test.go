package router

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestRouter() (*Router, *bytes.Buffer) {
	r := New()
	buf := &bytes.Buffer{}
	r.SetLogger(log.New(buf, "", 0))
	return r, buf
}

func serve(r *Router, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestMatchWildcardRoute(t *testing.T) {
	assert.True(t, matchWildcardRoute("/api/v1/runs/abc", "/api/v1/runs/*"))
	assert.True(t, matchWildcardRoute("/swagger/index.html", "/swagger/*"))
	assert.True(t, matchWildcardRoute("/swagger/a/b/c.js", "/swagger/*"))
	assert.True(t, matchWildcardRoute("/api/v1/runs/abc/months", "/api/v1/runs/*/months"))
	assert.False(t, matchWildcardRoute("/api/v1/runs/abc/other", "/api/v1/runs/*/months"))
	assert.False(t, matchWildcardRoute("/api/v1/trips", "/api/v1/runs/*"))
}

func TestRouterDispatch(t *testing.T) {
	r, logs := newTestRouter()
	r.GET("/api/v1/runs", func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "list") })
	r.GET("/api/v1/runs/*", func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "one") })

	rec := serve(r, http.MethodGet, "/api/v1/runs")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "list", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(r, http.MethodGet, "/api/v1/runs/42")
	assert.Equal(t, "one", rec.Body.String())

	rec = serve(r, http.MethodPost, "/api/v1/runs")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(r, http.MethodGet, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Contains(t, logs.String(), "/api/v1/runs/42")
	assert.Len(t, r.Routes(), 2)
	assert.True(t, r.Paths()["/api/v1/runs/*"])
}

func TestRouterPreflight(t *testing.T) {
	r, _ := newTestRouter()
	r.GET("/api/v1/trips/kpis", func(w http.ResponseWriter, _ *http.Request) {})

	rec := serve(r, http.MethodOptions, "/api/v1/trips/kpis")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET")
}

func TestRouterHandle(t *testing.T) {
	r, _ := newTestRouter()
	r.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := serve(r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
