package usecase

import (
	"linktrack/internal/analytics/clickid"
	"linktrack/internal/analytics/enrichment"

	"github.com/google/wire"
)

// ProviderSet is usecase providers.
var ProviderSet = wire.NewSet(
	NewTrackingService,
	NewStatsService,
	NewDispatcher,
	NewIDGenerator,
	enrichment.NewDeviceDetector,
)

// IDGenerator produces click event ids.
type IDGenerator interface {
	NextID() uint64
}

func NewIDGenerator() IDGenerator {
	return clickid.New()
}
