package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"linktrack/internal/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus"
)

// fakeClickRepo is an in-memory ClickRepository.
type fakeClickRepo struct {
	mu sync.Mutex

	unavailable bool
	insertErr   error
	// insertHook runs inside InsertClick before the event is recorded.
	insertHook func(ctx context.Context)
	inserted   []*ClickEvent

	total    int64
	totalErr error
	rows     map[string][]Row
	errs     map[string]error
	panics   map[string]bool
	days     map[string]int
	calls    map[string]int

	recentLimit int
}

func newFakeClickRepo() *fakeClickRepo {
	return &fakeClickRepo{
		rows:   make(map[string][]Row),
		errs:   make(map[string]error),
		panics: make(map[string]bool),
		days:   make(map[string]int),
		calls:  make(map[string]int),
	}
}

func (f *fakeClickRepo) Available() bool {
	return !f.unavailable
}

func (f *fakeClickRepo) InsertClick(ctx context.Context, event *ClickEvent) error {
	if f.insertHook != nil {
		f.insertHook(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["insert"]++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, event)
	return nil
}

func (f *fakeClickRepo) insertedEvents() []*ClickEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ClickEvent(nil), f.inserted...)
}

func (f *fakeClickRepo) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClickRepo) CountClicks(ctx context.Context, shortURLID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[MetricTotalClicks]++
	return f.total, f.totalErr
}

func (f *fakeClickRepo) breakdown(name string, days int) ([]Row, error) {
	f.mu.Lock()
	f.calls[name]++
	if days != 0 {
		f.days[name] = days
	}
	shouldPanic := f.panics[name]
	rows, err := f.rows[name], f.errs[name]
	f.mu.Unlock()

	if shouldPanic {
		panic("boom: " + name)
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *fakeClickRepo) ClicksByURLType(ctx context.Context, id uint64) ([]Row, error) {
	return f.breakdown(MetricURLTypeBreakdown, 0)
}

func (f *fakeClickRepo) ClicksOverTime(ctx context.Context, id uint64, days int) ([]Row, error) {
	return f.breakdown(MetricClicksOverTime, days)
}

func (f *fakeClickRepo) GeographicStats(ctx context.Context, id uint64) ([]Row, error) {
	return f.breakdown(MetricGeographicStats, 0)
}

func (f *fakeClickRepo) DeviceStats(ctx context.Context, id uint64) ([]Row, error) {
	return f.breakdown(MetricDeviceStats, 0)
}

func (f *fakeClickRepo) BrowserStats(ctx context.Context, id uint64) ([]Row, error) {
	return f.breakdown(MetricBrowserStats, 0)
}

func (f *fakeClickRepo) ReferrerStats(ctx context.Context, id uint64) ([]Row, error) {
	return f.breakdown(MetricReferrerStats, 0)
}

func (f *fakeClickRepo) HourlyPattern(ctx context.Context, id uint64, days int) ([]Row, error) {
	return f.breakdown(MetricHourlyPattern, days)
}

func (f *fakeClickRepo) UTMCampaignStats(ctx context.Context, id uint64) ([]Row, error) {
	return f.breakdown(MetricUTMCampaignStats, 0)
}

func (f *fakeClickRepo) UTMSourceStats(ctx context.Context, id uint64) ([]Row, error) {
	return f.breakdown(MetricUTMSourceStats, 0)
}

func (f *fakeClickRepo) UTMMediumStats(ctx context.Context, id uint64) ([]Row, error) {
	return f.breakdown(MetricUTMMediumStats, 0)
}

func (f *fakeClickRepo) RecentClicks(ctx context.Context, id uint64, limit int) ([]Row, error) {
	f.mu.Lock()
	f.recentLimit = limit
	f.mu.Unlock()
	return f.breakdown("recent_clicks", 0)
}

type fixedIDs struct {
	next uint64
}

func (g *fixedIDs) NextID() uint64 {
	g.next++
	return g.next
}

func newTestMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()
	return metrics.NewMetrics(prometheus.NewRegistry())
}

var (
	testLogger = log.DefaultLogger
	fixedNow   = time.Date(2024, 5, 1, 12, 30, 45, 500_000_000, time.UTC)
)
