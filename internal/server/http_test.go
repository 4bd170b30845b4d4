package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	httpdelivery "linktrack/internal/analytics/delivery/http"
	"linktrack/internal/analytics/usecase"
	"linktrack/internal/conf"
	"linktrack/internal/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
)

// panickyShortURLs fails every lookup with a panic.
type panickyShortURLs struct{}

func (panickyShortURLs) FindByShortURI(context.Context, string) (*usecase.ShortURL, error) {
	panic("registry exploded")
}

func (panickyShortURLs) FindByID(context.Context, uint64) (*usecase.ShortURL, error) {
	return nil, usecase.ErrShortURLNotFound
}

func (panickyShortURLs) IncrementClickCount(context.Context, uint64) error { return nil }

type noopTracker struct{}

func (noopTracker) TrackClick(context.Context, usecase.ClickInput) error { return nil }

func (noopTracker) Submit(usecase.ClickInput) error { return nil }

func (noopTracker) ComprehensiveStats(context.Context, uint64, int) *usecase.StatsReport {
	return &usecase.StatsReport{}
}

func (noopTracker) RecentClicks(context.Context, uint64, int) []usecase.Row { return []usecase.Row{} }

func newTestServer() http.Handler {
	registry := metrics.NewRegistry()
	metrics.NewMetrics(registry).RecordIngest(metrics.OutcomeTracked)

	handler := httpdelivery.NewHandler(panickyShortURLs{}, noopTracker{}, noopTracker{}, noopTracker{}, nil, log.DefaultLogger)
	c := &conf.Server{Http: &conf.Server_HTTP{Addr: "127.0.0.1:0"}}
	return NewHTTPServer(c, handler, registry, log.DefaultLogger)
}

func TestHTTPServer_Metrics(t *testing.T) {
	srv := newTestServer()

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `linktrack_ingest_total{outcome="tracked"} 1`)
}

func TestHTTPServer_RoutesRunThroughMiddleware(t *testing.T) {
	srv := newTestServer()

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/short_urls/9/stats", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	// The recovery middleware turns the registry panic into a 500.
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/r/abc12", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
