package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"linktrack/internal/conf"

	"entgo.io/ent/dialect"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(NewData, NewClickHouseClient, NewShortURLCache, NewShortURLRepo)

const (
	defaultDriver = dialect.SQLite
	defaultSource = "file:linktrack?mode=memory&cache=shared"
)

// Data holds the connections shared by the repositories.
type Data struct {
	db      *sql.DB
	dialect string
	rdb     *redis.Client
}

// NewData opens the registry database and, when configured, Redis.
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(log.With(logger, "module", "data"))

	driver, source, autoMigrate := defaultDriver, defaultSource, false
	if c != nil && c.Database != nil {
		if c.Database.Driver != "" {
			driver = c.Database.Driver
		}
		if c.Database.Source != "" {
			source = c.Database.Source
		}
		autoMigrate = c.Database.AutoMigrate
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}

	d := &Data{db: db, dialect: driver}
	if autoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	if c != nil && c.Redis != nil && c.Redis.Addr != "" {
		d.rdb = redis.NewClient(&redis.Options{
			Addr:         c.Redis.Addr,
			Password:     c.Redis.Password,
			DB:           c.Redis.Db,
			ReadTimeout:  c.Redis.ReadTimeout.AsDuration(),
			WriteTimeout: c.Redis.WriteTimeout.AsDuration(),
		})
	} else {
		helper.Info("redis not configured, short url cache disabled")
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		if err := d.db.Close(); err != nil {
			helper.Error(err)
		}
		if d.rdb != nil {
			if err := d.rdb.Close(); err != nil {
				helper.Error(err)
			}
		}
	}

	return d, cleanup, nil
}

var shortURLsDDL = map[string]string{
	dialect.Postgres: `CREATE TABLE IF NOT EXISTS short_urls (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    url1 TEXT NOT NULL,
    url2 TEXT,
    short_uri VARCHAR(255) NOT NULL UNIQUE,
    tracking_id VARCHAR(32) UNIQUE,
    click_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	dialect.SQLite: `CREATE TABLE IF NOT EXISTS short_urls (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER,
    url1 TEXT NOT NULL,
    url2 TEXT,
    short_uri TEXT NOT NULL UNIQUE,
    tracking_id TEXT UNIQUE,
    click_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
}

// migrate creates the short_urls table for local development databases.
// The registry schema is owned elsewhere in production.
func (d *Data) migrate(ctx context.Context) error {
	ddl, ok := shortURLsDDL[d.dialect]
	if !ok {
		return fmt.Errorf("auto migrate: unsupported driver %q", d.dialect)
	}
	if _, err := d.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
