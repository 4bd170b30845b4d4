package http

import (
	"context"
	"net/http"

	"linktrack/internal/analytics/usecase"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
)

// ProviderSet is the click API providers.
var ProviderSet = wire.NewSet(
	NewHandler,
	wire.Bind(new(ClickTracker), new(*usecase.TrackingService)),
	wire.Bind(new(ClickSubmitter), new(*usecase.Dispatcher)),
	wire.Bind(new(StatsProvider), new(*usecase.StatsService)),
)

// RegisterHTTPServer registers the click tracking, redirect and stats routes
// on srv. Every route runs through the server's middleware chain.
func RegisterHTTPServer(srv *khttp.Server, handler *Handler) {
	r := srv.Route("/")

	r.GET("/r/{short_uri}", withMiddleware(handler.Redirect))
	r.HEAD("/r/{short_uri}", withMiddleware(handler.Redirect))

	r.POST("/api/track/{short_uri}", withMiddleware(handler.TrackClick))
	r.GET("/api/short_urls/{id}/stats", withMiddleware(handler.GetStats))
	r.GET("/api/short_urls/{id}/clicks", withMiddleware(handler.GetRecentClicks))
}

// withMiddleware adapts a net/http handler to a kratos route handler. The
// handler writes its own response; middleware errors, such as a recovered
// panic, are encoded by the server.
func withMiddleware(h http.HandlerFunc) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		next := ctx.Middleware(func(c context.Context, req any) (any, error) {
			h(ctx.Response(), ctx.Request().WithContext(c))
			return nil, nil
		})
		_, err := next(ctx, ctx.Request())
		return err
	}
}
