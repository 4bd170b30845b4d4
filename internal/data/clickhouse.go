package data

import (
	"linktrack/internal/conf"
	ch "linktrack/internal/pkg/clickhouse"

	"github.com/go-kratos/kratos/v2/log"
)

// NewClickHouseClient returns nil when no store host is configured. Tracking
// and stats then degrade to no-ops instead of failing startup.
func NewClickHouseClient(c *conf.Data, logger log.Logger) *ch.Client {
	helper := log.NewHelper(log.With(logger, "module", "data/clickhouse"))

	if c == nil || c.Clickhouse == nil {
		helper.Warn("click store not configured, tracking and stats are disabled")
		return nil
	}

	cfg := c.Clickhouse
	client, err := ch.NewClient(ch.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Database: cfg.Database,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout.AsDuration(),
	})
	if err != nil {
		helper.Warnf("click store disabled: %v", err)
		return nil
	}

	helper.Infof("click store endpoint %s", client.Endpoint())
	return client
}
