package usecase

import (
	"context"
	"fmt"

	"linktrack/internal/analytics/enrichment"
	"linktrack/internal/conf"
	"linktrack/internal/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDays        = 30
	DefaultRecentLimit = 100

	defaultStatsParallelism = 4
)

// Stats metric names, as they appear in StatsReport.
const (
	MetricTotalClicks      = "total_clicks"
	MetricURLTypeBreakdown = "url_type_breakdown"
	MetricClicksOverTime   = "clicks_over_time"
	MetricGeographicStats  = "geographic_stats"
	MetricDeviceStats      = "device_stats"
	MetricBrowserStats     = "browser_stats"
	MetricReferrerStats    = "referrer_stats"
	MetricHourlyPattern    = "hourly_pattern"
	MetricUTMCampaignStats = "utm_campaign_stats"
	MetricUTMSourceStats   = "utm_source_stats"
	MetricUTMMediumStats   = "utm_medium_stats"
)

// StatsReport is the full analytics view of one short URL. A breakdown whose
// query failed is empty, never nil.
type StatsReport struct {
	TotalClicks      int64 `json:"total_clicks"`
	URLTypeBreakdown []Row `json:"url_type_breakdown"`
	ClicksOverTime   []Row `json:"clicks_over_time"`
	GeographicStats  []Row `json:"geographic_stats"`
	DeviceStats      []Row `json:"device_stats"`
	BrowserStats     []Row `json:"browser_stats"`
	ReferrerStats    []Row `json:"referrer_stats"`
	HourlyPattern    []Row `json:"hourly_pattern"`
	UTMCampaignStats []Row `json:"utm_campaign_stats"`
	UTMSourceStats   []Row `json:"utm_source_stats"`
	UTMMediumStats   []Row `json:"utm_medium_stats"`
}

func newEmptyReport() *StatsReport {
	return &StatsReport{
		URLTypeBreakdown: []Row{},
		ClicksOverTime:   []Row{},
		GeographicStats:  []Row{},
		DeviceStats:      []Row{},
		BrowserStats:     []Row{},
		ReferrerStats:    []Row{},
		HourlyPattern:    []Row{},
		UTMCampaignStats: []Row{},
		UTMSourceStats:   []Row{},
		UTMMediumStats:   []Row{},
	}
}

// StatsService answers analytics queries. It never returns an error: a
// failing metric is logged, counted and left empty.
type StatsService struct {
	repo        ClickRepository
	sources     *enrichment.RefererClassifier
	parallelism int
	metrics     *metrics.Metrics
	log         *log.Helper
}

func NewStatsService(repo ClickRepository, c *conf.Tracking, m *metrics.Metrics, logger log.Logger) *StatsService {
	parallelism := defaultStatsParallelism
	if c != nil && c.StatsParallelism > 0 {
		parallelism = c.StatsParallelism
	}
	return &StatsService{
		repo:        repo,
		sources:     enrichment.NewRefererClassifier(),
		parallelism: parallelism,
		metrics:     m,
		log:         log.NewHelper(log.With(logger, "module", "usecase/stats")),
	}
}

type breakdown struct {
	name  string
	dst   *[]Row
	fetch func(ctx context.Context) ([]Row, error)
}

// ComprehensiveStats runs every breakdown concurrently. days bounds only the
// daily and hourly series and defaults to DefaultDays.
func (s *StatsService) ComprehensiveStats(ctx context.Context, shortURLID uint64, days int) *StatsReport {
	if days <= 0 {
		days = DefaultDays
	}

	report := newEmptyReport()
	if !s.repo.Available() {
		s.log.WithContext(ctx).Warnf("stats for short url %d skipped: %v", shortURLID, ErrStoreNotConfigured)
		return report
	}

	byID := func(fn func(context.Context, uint64) ([]Row, error)) func(context.Context) ([]Row, error) {
		return func(ctx context.Context) ([]Row, error) { return fn(ctx, shortURLID) }
	}
	windowed := func(fn func(context.Context, uint64, int) ([]Row, error)) func(context.Context) ([]Row, error) {
		return func(ctx context.Context) ([]Row, error) { return fn(ctx, shortURLID, days) }
	}

	breakdowns := []breakdown{
		{name: MetricURLTypeBreakdown, dst: &report.URLTypeBreakdown, fetch: byID(s.repo.ClicksByURLType)},
		{name: MetricClicksOverTime, dst: &report.ClicksOverTime, fetch: windowed(s.repo.ClicksOverTime)},
		{name: MetricGeographicStats, dst: &report.GeographicStats, fetch: byID(s.repo.GeographicStats)},
		{name: MetricDeviceStats, dst: &report.DeviceStats, fetch: byID(s.repo.DeviceStats)},
		{name: MetricBrowserStats, dst: &report.BrowserStats, fetch: byID(s.repo.BrowserStats)},
		{name: MetricReferrerStats, dst: &report.ReferrerStats, fetch: s.withSource(byID(s.repo.ReferrerStats))},
		{name: MetricHourlyPattern, dst: &report.HourlyPattern, fetch: windowed(s.repo.HourlyPattern)},
		{name: MetricUTMCampaignStats, dst: &report.UTMCampaignStats, fetch: byID(s.repo.UTMCampaignStats)},
		{name: MetricUTMSourceStats, dst: &report.UTMSourceStats, fetch: byID(s.repo.UTMSourceStats)},
		{name: MetricUTMMediumStats, dst: &report.UTMMediumStats, fetch: byID(s.repo.UTMMediumStats)},
	}

	var g errgroup.Group
	g.SetLimit(s.parallelism)

	g.Go(func() error {
		s.isolate(ctx, shortURLID, MetricTotalClicks, func() error {
			total, err := s.repo.CountClicks(ctx, shortURLID)
			if err != nil {
				return err
			}
			report.TotalClicks = total
			return nil
		})
		return nil
	})

	for _, b := range breakdowns {
		g.Go(func() error {
			s.isolate(ctx, shortURLID, b.name, func() error {
				rows, err := b.fetch(ctx)
				if err != nil {
					return err
				}
				if rows != nil {
					*b.dst = rows
				}
				return nil
			})
			return nil
		})
	}

	_ = g.Wait()
	return report
}

// withSource tags each referrer row with its traffic source category.
func (s *StatsService) withSource(fetch func(context.Context) ([]Row, error)) func(context.Context) ([]Row, error) {
	return func(ctx context.Context) ([]Row, error) {
		rows, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			domain, _ := row["referrer_domain"].(string)
			row["source"] = s.sources.ClassifyDomain(domain)
		}
		return rows, nil
	}
}

// isolate runs fn so that neither its error nor a panic reaches the caller.
// Each fn writes to its own field of the report, so no locking is needed.
func (s *StatsService) isolate(ctx context.Context, shortURLID uint64, metric string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.metricFailed(ctx, shortURLID, metric, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		s.metricFailed(ctx, shortURLID, metric, err)
	}
}

func (s *StatsService) metricFailed(ctx context.Context, shortURLID uint64, metric string, err error) {
	s.metrics.RecordStatsFailure(metric)
	s.log.WithContext(ctx).Errorw(
		"msg", "stats metric failed",
		"metric", metric,
		"short_url_id", shortURLID,
		"error", err,
	)
}

// RecentClicks returns the newest raw events, or an empty list on failure.
func (s *StatsService) RecentClicks(ctx context.Context, shortURLID uint64, limit int) []Row {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if !s.repo.Available() {
		return []Row{}
	}

	rows, err := s.repo.RecentClicks(ctx, shortURLID, limit)
	if err != nil {
		s.metricFailed(ctx, shortURLID, "recent_clicks", err)
		return []Row{}
	}
	if rows == nil {
		return []Row{}
	}
	return rows
}
