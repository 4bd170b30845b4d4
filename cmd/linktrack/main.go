package main

import (
	"context"
	"flag"
	"os"

	chrepo "linktrack/internal/analytics/repository/clickhouse"
	"linktrack/internal/analytics/usecase"
	"linktrack/internal/conf"
	"linktrack/internal/pkg/zaplog"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/joho/godotenv"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "linktrack"
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs", "config path, eg: -conf config.yaml")
}

func newApp(
	logger log.Logger,
	hs *http.Server,
	dispatcher *usecase.Dispatcher,
	clicks *chrepo.ClickRepository,
	c *conf.Data,
) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
			dispatcher,
		),
		kratos.BeforeStart(func(ctx context.Context) error {
			if c == nil || c.Clickhouse == nil || !c.Clickhouse.CreateTable || !clicks.Available() {
				return nil
			}
			// A store that is down at boot only disables tracking.
			if err := clicks.EnsureSchema(ctx); err != nil {
				log.NewHelper(logger).Errorf("failed to create click table: %v", err)
			}
			return nil
		}),
	)
}

func main() {
	flag.Parse()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	c := config.New(
		config.WithSource(
			env.NewSource("LINKTRACK_"),
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	zl, err := zaplog.New(bc.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = zl.Sync() }()

	logger := log.With(zl,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	app, cleanup, err := wireApp(bc.Server, bc.Data, bc.Tracking, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
