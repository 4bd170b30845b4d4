//go:build integration

package data

import (
	"context"
	"testing"
	"time"

	"linktrack/internal/analytics/usecase"
	"linktrack/internal/conf"
	"linktrack/internal/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// IntegrationTestSuite runs the registry repository against real PostgreSQL and Redis.
type IntegrationTestSuite struct {
	suite.Suite
	ctx            context.Context
	pgContainer    *postgres.PostgresContainer
	redisContainer *tcredis.RedisContainer
	data           *Data
	cleanup        func()
	repo           usecase.ShortURLRepository
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer

	redisContainer, err := tcredis.Run(s.ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(s.T(), err)
	s.redisContainer = redisContainer

	pgConnStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)
	redisEndpoint, err := redisContainer.Endpoint(s.ctx, "")
	require.NoError(s.T(), err)

	c := &conf.Data{
		Database: &conf.Data_Database{Driver: "postgres", Source: pgConnStr, AutoMigrate: true},
		Redis:    &conf.Data_Redis{Addr: redisEndpoint, CacheTtl: &conf.Duration{Duration: time.Minute}},
	}
	s.data, s.cleanup, err = NewData(c, log.DefaultLogger)
	require.NoError(s.T(), err)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	s.repo = NewShortURLRepo(s.data, NewShortURLCache(s.data, c, m, log.DefaultLogger), log.DefaultLogger)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.cleanup != nil {
		s.cleanup()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
	if s.redisContainer != nil {
		_ = s.redisContainer.Terminate(s.ctx)
	}
}

func (s *IntegrationTestSuite) TearDownTest() {
	_, err := s.data.db.ExecContext(s.ctx, "TRUNCATE short_urls RESTART IDENTITY")
	s.Require().NoError(err)
	s.Require().NoError(s.data.rdb.FlushAll(s.ctx).Err())
}

func TestIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) insert(shortURI, url1 string, url2 *string) uint64 {
	var id uint64
	err := s.data.db.QueryRowContext(s.ctx,
		`INSERT INTO short_urls (user_id, url1, url2, short_uri, tracking_id) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		7, url1, url2, shortURI, shortURI+"-tracking",
	).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *IntegrationTestSuite) TestFindByShortURI_Exists() {
	url2 := "https://example.com/b"
	id := s.insert("find123", "https://example.com/a", &url2)

	found, err := s.repo.FindByShortURI(s.ctx, "FIND123")

	require.NoError(s.T(), err)
	assert.Equal(s.T(), id, found.ID)
	assert.Equal(s.T(), "https://example.com/a", found.URL1)
	require.NotNil(s.T(), found.URL2)
	assert.Equal(s.T(), url2, *found.URL2)
	require.NotNil(s.T(), found.UserID)
	assert.Equal(s.T(), uint64(7), *found.UserID)
}

func (s *IntegrationTestSuite) TestFindByShortURI_NotFound() {
	_, err := s.repo.FindByShortURI(s.ctx, "notexist")
	assert.ErrorIs(s.T(), err, usecase.ErrShortURLNotFound)
}

func (s *IntegrationTestSuite) TestFindByShortURI_UsesCache() {
	id := s.insert("cached1", "https://cached.com", nil)

	_, err := s.repo.FindByShortURI(s.ctx, "cached1")
	require.NoError(s.T(), err)

	_, err = s.data.db.ExecContext(s.ctx, "DELETE FROM short_urls WHERE id = $1", id)
	require.NoError(s.T(), err)

	found, err := s.repo.FindByShortURI(s.ctx, "cached1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), id, found.ID)
}

func (s *IntegrationTestSuite) TestIncrementClickCount() {
	id := s.insert("clicks1", "https://clicks.com", nil)

	for range 3 {
		require.NoError(s.T(), s.repo.IncrementClickCount(s.ctx, id))
	}

	found, err := s.repo.FindByID(s.ctx, id)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(3), found.ClickCount)
}

func (s *IntegrationTestSuite) TestIncrementClickCount_UnknownID() {
	err := s.repo.IncrementClickCount(s.ctx, 9999)
	assert.ErrorIs(s.T(), err, usecase.ErrShortURLNotFound)
}
