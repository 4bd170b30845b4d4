//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	httpdelivery "linktrack/internal/analytics/delivery/http"
	chrepo "linktrack/internal/analytics/repository/clickhouse"
	"linktrack/internal/analytics/usecase"
	"linktrack/internal/conf"
	"linktrack/internal/data"
	"linktrack/internal/pkg/metrics"
	"linktrack/internal/server"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Tracking, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		metrics.ProviderSet,
		data.ProviderSet,
		chrepo.ProviderSet,
		usecase.ProviderSet,
		httpdelivery.ProviderSet,
		newApp,
	))
}
