package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"linktrack/internal/analytics/usecase"
	"linktrack/internal/conf"
	"linktrack/internal/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	shortURLCachePrefix = "short_url:"
	defaultCacheTTL     = 10 * time.Minute
)

// ShortURLCache caches registry lookups by short URI.
// Implementations handle misses and backend failures by returning nil, nil.
type ShortURLCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context, shortURI string) (*usecase.ShortURL, error)
	Set(ctx context.Context, s *usecase.ShortURL) error
}

var (
	_ ShortURLCache = (*RedisShortURLCache)(nil)
	_ ShortURLCache = (*noopShortURLCache)(nil)
)

// RedisShortURLCache implements ShortURLCache using Redis.
type RedisShortURLCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *log.Helper
}

// NewShortURLCache returns a no-op cache when Redis is not configured.
func NewShortURLCache(d *Data, c *conf.Data, m *metrics.Metrics, logger log.Logger) ShortURLCache {
	if d.rdb == nil {
		return &noopShortURLCache{}
	}
	ttl := defaultCacheTTL
	if c != nil && c.Redis != nil && c.Redis.CacheTtl.AsDuration() > 0 {
		ttl = c.Redis.CacheTtl.AsDuration()
	}
	return &RedisShortURLCache{
		rdb:     d.rdb,
		ttl:     ttl,
		metrics: m,
		log:     log.NewHelper(log.With(logger, "module", "data/cache")),
	}
}

// cachedShortURL is the serialization format for cached short URLs.
type cachedShortURL struct {
	ID         uint64    `json:"id"`
	TrackingID string    `json:"tracking_id"`
	ShortURI   string    `json:"short_uri"`
	URL1       string    `json:"url1"`
	URL2       *string   `json:"url2,omitempty"`
	UserID     *uint64   `json:"user_id,omitempty"`
	ClickCount int64     `json:"click_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *RedisShortURLCache) cacheKey(shortURI string) string {
	return shortURLCachePrefix + shortURI
}

func (c *RedisShortURLCache) Get(ctx context.Context, shortURI string) (*usecase.ShortURL, error) {
	data, err := c.rdb.Get(ctx, c.cacheKey(shortURI)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.metrics.RecordCache("miss")
			return nil, nil
		}
		c.metrics.RecordCache("error")
		c.log.WithContext(ctx).Warnf("Failed to get short url from cache: %v", err)
		return nil, nil
	}

	var cached cachedShortURL
	if err := json.Unmarshal(data, &cached); err != nil {
		c.metrics.RecordCache("error")
		c.log.WithContext(ctx).Warnf("Failed to unmarshal cached short url: %v", err)
		return nil, nil
	}

	c.metrics.RecordCache("hit")
	return &usecase.ShortURL{
		ID:         cached.ID,
		TrackingID: cached.TrackingID,
		ShortURI:   cached.ShortURI,
		URL1:       cached.URL1,
		URL2:       cached.URL2,
		UserID:     cached.UserID,
		ClickCount: cached.ClickCount,
		CreatedAt:  cached.CreatedAt,
		UpdatedAt:  cached.UpdatedAt,
	}, nil
}

func (c *RedisShortURLCache) Set(ctx context.Context, s *usecase.ShortURL) error {
	data, err := json.Marshal(cachedShortURL{
		ID:         s.ID,
		TrackingID: s.TrackingID,
		ShortURI:   s.ShortURI,
		URL1:       s.URL1,
		URL2:       s.URL2,
		UserID:     s.UserID,
		ClickCount: s.ClickCount,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	})
	if err != nil {
		c.log.WithContext(ctx).Warnf("Failed to marshal short url for cache: %v", err)
		return nil
	}

	if err := c.rdb.Set(ctx, c.cacheKey(s.ShortURI), data, c.ttl).Err(); err != nil {
		c.log.WithContext(ctx).Warnf("Failed to cache short url: %v", err)
	}
	return nil
}

type noopShortURLCache struct{}

func (noopShortURLCache) Get(context.Context, string) (*usecase.ShortURL, error) { return nil, nil }

func (noopShortURLCache) Set(context.Context, *usecase.ShortURL) error { return nil }
