package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linktrack/internal/analytics/usecase"
	ch "linktrack/internal/pkg/clickhouse"
	"linktrack/internal/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/samber/lo"
)

// ProviderSet is click repository providers.
var ProviderSet = wire.NewSet(
	NewClickRepository,
	wire.Bind(new(usecase.ClickRepository), new(*ClickRepository)),
)

// ClickRepository implements usecase.ClickRepository on top of the store's
// HTTP query interface.
type ClickRepository struct {
	client  *ch.Client
	metrics *metrics.Metrics
	log     *log.Helper
}

var _ usecase.ClickRepository = (*ClickRepository)(nil)

// NewClickRepository accepts a nil client, in which case Available reports
// false and every call returns usecase.ErrStoreNotConfigured.
func NewClickRepository(client *ch.Client, m *metrics.Metrics, logger log.Logger) *ClickRepository {
	return &ClickRepository{
		client:  client,
		metrics: m,
		log:     log.NewHelper(log.With(logger, "module", "repository/clickhouse")),
	}
}

func (r *ClickRepository) Available() bool {
	return r.client != nil
}

// EnsureSchema creates the url_clicks table when it does not exist.
func (r *ClickRepository) EnsureSchema(ctx context.Context) error {
	q, err := ch.Build(createTableSQL)
	if err != nil {
		return err
	}
	return r.exec(ctx, "create_table", q)
}

// InsertClick appends a single event.
func (r *ClickRepository) InsertClick(ctx context.Context, event *usecase.ClickEvent) error {
	q, err := insertClickQuery(event)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	return r.exec(ctx, "insert_click", q)
}

// CountClicks returns the all-time number of clicks for a short URL.
func (r *ClickRepository) CountClicks(ctx context.Context, shortURLID uint64) (int64, error) {
	rows, err := r.selectRows(ctx, usecase.MetricTotalClicks, totalClicksSQL, shortURLID)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	total, ok := ch.Row(rows[0]).Int64("total")
	if !ok {
		return 0, fmt.Errorf("unexpected total row %v", rows[0])
	}
	return total, nil
}

func (r *ClickRepository) ClicksByURLType(ctx context.Context, shortURLID uint64) ([]usecase.Row, error) {
	return r.selectRows(ctx, usecase.MetricURLTypeBreakdown, clicksByURLTypeSQL, shortURLID)
}

func (r *ClickRepository) ClicksOverTime(ctx context.Context, shortURLID uint64, days int) ([]usecase.Row, error) {
	return r.selectRows(ctx, usecase.MetricClicksOverTime, clicksOverTimeSQL, shortURLID, ch.Int(days))
}

func (r *ClickRepository) GeographicStats(ctx context.Context, shortURLID uint64) ([]usecase.Row, error) {
	return r.selectRows(ctx, usecase.MetricGeographicStats, geographicStatsSQL, shortURLID, ch.Int(geoLimit))
}

func (r *ClickRepository) DeviceStats(ctx context.Context, shortURLID uint64) ([]usecase.Row, error) {
	return r.selectRows(ctx, usecase.MetricDeviceStats, deviceStatsSQL, shortURLID)
}

func (r *ClickRepository) BrowserStats(ctx context.Context, shortURLID uint64) ([]usecase.Row, error) {
	return r.selectRows(ctx, usecase.MetricBrowserStats, browserStatsSQL, shortURLID, ch.Int(breakdownLimit))
}

func (r *ClickRepository) ReferrerStats(ctx context.Context, shortURLID uint64) ([]usecase.Row, error) {
	return r.selectRows(ctx, usecase.MetricReferrerStats, referrerStatsSQL, shortURLID, ch.Int(breakdownLimit))
}

func (r *ClickRepository) HourlyPattern(ctx context.Context, shortURLID uint64, days int) ([]usecase.Row, error) {
	return r.selectRows(ctx, usecase.MetricHourlyPattern, hourlyPatternSQL, shortURLID, ch.Int(days))
}

func (r *ClickRepository) UTMCampaignStats(ctx context.Context, shortURLID uint64) ([]usecase.Row, error) {
	return r.selectRows(ctx, usecase.MetricUTMCampaignStats, utmCampaignStatsSQL, shortURLID, ch.Int(breakdownLimit))
}

func (r *ClickRepository) UTMSourceStats(ctx context.Context, shortURLID uint64) ([]usecase.Row, error) {
	return r.selectRows(ctx, usecase.MetricUTMSourceStats, utmSourceStatsSQL, shortURLID, ch.Int(breakdownLimit))
}

func (r *ClickRepository) UTMMediumStats(ctx context.Context, shortURLID uint64) ([]usecase.Row, error) {
	return r.selectRows(ctx, usecase.MetricUTMMediumStats, utmMediumStatsSQL, shortURLID, ch.Int(breakdownLimit))
}

// RecentClicks returns raw events, newest first.
func (r *ClickRepository) RecentClicks(ctx context.Context, shortURLID uint64, limit int) ([]usecase.Row, error) {
	return r.selectRows(ctx, "recent_clicks", recentClicksSQL, shortURLID, ch.Int(limit))
}

func (r *ClickRepository) selectRows(ctx context.Context, operation, sql string, shortURLID uint64, extra ...ch.Value) ([]usecase.Row, error) {
	if r.client == nil {
		return nil, usecase.ErrStoreNotConfigured
	}
	q, err := byShortURL(sql, shortURLID, extra...)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", operation, err)
	}

	started := time.Now()
	rows, err := r.client.Select(ctx, q)
	r.metrics.RecordStoreQuery(operation, started, errorKind(err))
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row ch.Row, _ int) usecase.Row { return usecase.Row(row) }), nil
}

func (r *ClickRepository) exec(ctx context.Context, operation string, q ch.Query) error {
	if r.client == nil {
		return usecase.ErrStoreNotConfigured
	}
	started := time.Now()
	err := r.client.Exec(ctx, q)
	r.metrics.RecordStoreQuery(operation, started, errorKind(err))
	return err
}

// errorKind labels a store failure for metrics. It is empty for nil.
func errorKind(err error) string {
	if err == nil {
		return ""
	}
	var storeErr *ch.StoreError
	var parseErr *ch.ParseError
	switch {
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &storeErr) && storeErr.Timeout():
		return "timeout"
	case errors.As(err, &storeErr) && storeErr.StatusCode != 0:
		return "status"
	default:
		return "transport"
	}
}
