package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"linktrack/internal/analytics/usecase"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-kratos/kratos/v2/log"
)

const shortURLTable = "short_urls"

var shortURLColumns = []string{
	"id", "tracking_id", "short_uri", "url1", "url2", "user_id", "click_count", "created_at", "updated_at",
}

// shortURLRepo reads the registry with SQL built by ent's dialect builder.
type shortURLRepo struct {
	data *Data
	log  *log.Helper
}

func newShortURLRepo(d *Data, logger log.Logger) *shortURLRepo {
	return &shortURLRepo{
		data: d,
		log:  log.NewHelper(log.With(logger, "module", "data/short_url")),
	}
}

func (r *shortURLRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.data.dialect)
}

func (r *shortURLRepo) findOne(ctx context.Context, p *entsql.Predicate) (*usecase.ShortURL, error) {
	query, args := r.builder().
		Select(shortURLColumns...).
		From(entsql.Table(shortURLTable)).
		Where(p).
		Limit(1).
		Query()

	var (
		s      usecase.ShortURL
		url2   sql.NullString
		userID sql.NullInt64
	)
	err := r.data.db.QueryRowContext(ctx, query, args...).Scan(
		&s.ID, &s.TrackingID, &s.ShortURI, &s.URL1, &url2, &userID, &s.ClickCount, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrShortURLNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query short url: %w", err)
	}

	if url2.Valid && url2.String != "" {
		s.URL2 = &url2.String
	}
	if userID.Valid {
		id := uint64(userID.Int64)
		s.UserID = &id
	}
	return &s, nil
}

func (r *shortURLRepo) FindByShortURI(ctx context.Context, shortURI string) (*usecase.ShortURL, error) {
	normalized, ok := usecase.NormalizeShortURI(shortURI)
	if !ok {
		return nil, usecase.ErrShortURLNotFound
	}
	return r.findOne(ctx, entsql.EQ("short_uri", normalized))
}

func (r *shortURLRepo) FindByID(ctx context.Context, id uint64) (*usecase.ShortURL, error) {
	return r.findOne(ctx, entsql.EQ("id", id))
}

// IncrementClickCount bumps the denormalized counter in a single statement.
func (r *shortURLRepo) IncrementClickCount(ctx context.Context, id uint64) error {
	query, args := r.builder().
		Update(shortURLTable).
		Add("click_count", 1).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)).
		Query()

	res, err := r.data.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("increment click count: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment click count: %w", err)
	}
	if n == 0 {
		return usecase.ErrShortURLNotFound
	}
	return nil
}

var _ usecase.ShortURLRepository = (*CachedShortURLRepository)(nil)

// CachedShortURLRepository puts a cache in front of short URI lookups.
// Counter increments do not invalidate the entry, so a cached ClickCount may
// lag by up to the cache TTL.
type CachedShortURLRepository struct {
	repo  *shortURLRepo
	cache ShortURLCache
}

// NewShortURLRepo creates the cached registry repository.
func NewShortURLRepo(d *Data, cache ShortURLCache, logger log.Logger) usecase.ShortURLRepository {
	return &CachedShortURLRepository{
		repo:  newShortURLRepo(d, logger),
		cache: cache,
	}
}

func (r *CachedShortURLRepository) FindByShortURI(ctx context.Context, shortURI string) (*usecase.ShortURL, error) {
	normalized, ok := usecase.NormalizeShortURI(shortURI)
	if !ok {
		return nil, usecase.ErrShortURLNotFound
	}

	if cached, err := r.cache.Get(ctx, normalized); err == nil && cached != nil {
		return cached, nil
	}

	s, err := r.repo.FindByShortURI(ctx, normalized)
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, s)
	return s, nil
}

// FindByID is not cached; it serves the stats endpoints only.
func (r *CachedShortURLRepository) FindByID(ctx context.Context, id uint64) (*usecase.ShortURL, error) {
	return r.repo.FindByID(ctx, id)
}

func (r *CachedShortURLRepository) IncrementClickCount(ctx context.Context, id uint64) error {
	return r.repo.IncrementClickCount(ctx, id)
}
