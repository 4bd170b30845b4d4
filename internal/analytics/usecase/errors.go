package usecase

import (
	"errors"
	"fmt"

	"linktrack/internal/pkg/metrics"
)

var (
	ErrInvalidInput       = errors.New("invalid click parameters")
	ErrStoreNotConfigured = errors.New("click store not configured")
	ErrShortURLNotFound   = errors.New("short url not found")
	ErrQueueFull          = errors.New("click queue is full")
	ErrDispatcherStopped  = errors.New("click dispatcher is not running")
)

// Reasons an ingestion attempt can fail. They double as metric outcomes.
const (
	ReasonInvalidInput  = metrics.OutcomeInvalidInput
	ReasonNotConfigured = metrics.OutcomeNotConfigured
	ReasonStore         = metrics.OutcomeStoreError
)

// IngestError is returned by TrackClick for every dropped event.
type IngestError struct {
	Reason   string
	ShortURI string
	Err      error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("track click %q: %s: %v", e.ShortURI, e.Reason, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}
