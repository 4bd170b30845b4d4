package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linktrack/internal/analytics/enrichment"
	"linktrack/internal/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
)

// TrackingService turns request metadata into enriched click events and
// appends them to the click store.
type TrackingService struct {
	repo     ClickRepository
	ids      IDGenerator
	detector *enrichment.DeviceDetector
	metrics  *metrics.Metrics
	log      *log.Helper
	now      func() time.Time
}

func NewTrackingService(
	repo ClickRepository,
	ids IDGenerator,
	detector *enrichment.DeviceDetector,
	m *metrics.Metrics,
	logger log.Logger,
) *TrackingService {
	return &TrackingService{
		repo:     repo,
		ids:      ids,
		detector: detector,
		metrics:  m,
		log:      log.NewHelper(log.With(logger, "module", "usecase/tracking")),
		now:      time.Now,
	}
}

// TrackClick records one click. Every failure is logged, counted and
// returned as *IngestError; nothing is retried.
func (s *TrackingService) TrackClick(ctx context.Context, in ClickInput) error {
	if err := validateInput(in); err != nil {
		return s.fail(ctx, in, ReasonInvalidInput, err)
	}
	if !s.repo.Available() {
		return s.fail(ctx, in, ReasonNotConfigured, ErrStoreNotConfigured)
	}

	event := s.buildEvent(in)
	if err := s.repo.InsertClick(ctx, event); err != nil {
		return s.fail(ctx, in, ReasonStore, err)
	}

	s.metrics.RecordIngest(metrics.OutcomeTracked)
	s.log.WithContext(ctx).Debugw(
		"msg", "click tracked",
		"id", event.ID,
		"short_uri", event.ShortURI,
		"url_type", event.URLType,
	)
	return nil
}

func validateInput(in ClickInput) error {
	if in.ShortURL == nil {
		return fmt.Errorf("%w: missing short url", ErrInvalidInput)
	}
	if !in.URLType.Valid() {
		return fmt.Errorf("%w: url_type %q", ErrInvalidInput, in.URLType)
	}
	if strings.TrimSpace(in.RedirectedURL) == "" {
		return fmt.Errorf("%w: redirected_url is required", ErrInvalidInput)
	}
	return nil
}

func (s *TrackingService) fail(ctx context.Context, in ClickInput, reason string, err error) error {
	ingestErr := &IngestError{Reason: reason, Err: err}
	if in.ShortURL != nil {
		ingestErr.ShortURI = in.ShortURL.ShortURI
	}

	s.metrics.RecordIngest(reason)
	if reason == ReasonInvalidInput {
		s.log.WithContext(ctx).Warnf("click rejected: %v", ingestErr)
	} else {
		s.log.WithContext(ctx).Errorf("click dropped: %v", ingestErr)
	}
	return ingestErr
}

func (s *TrackingService) buildEvent(in ClickInput) *ClickEvent {
	now := s.now().UTC().Truncate(time.Second)
	clickedAt := now
	if !in.ClickedAt.IsZero() {
		clickedAt = in.ClickedAt.UTC().Truncate(time.Second)
	}

	userAgent := lo.CoalesceOrEmpty(in.UserAgent, enrichment.Unknown)
	client := s.detector.Detect(userAgent)

	utm := enrichment.ExtractUTM(in.Query)
	if utm.IsZero() {
		utm = enrichment.ExtractUTMFromURL(in.RedirectedURL)
	}

	return &ClickEvent{
		ID:              s.ids.NextID(),
		ShortURLID:      in.ShortURL.ID,
		TrackingID:      in.ShortURL.TrackingID,
		ShortURI:        in.ShortURL.ShortURI,
		RedirectedToURL: in.RedirectedURL,
		URLType:         in.URLType,
		UserID:          in.UserID,
		SessionID:       lo.EmptyableToPtr(lo.CoalesceOrEmpty(in.VisitorID, in.SessionID)),

		UserAgent:      userAgent,
		Browser:        client.Browser,
		BrowserVersion: client.BrowserVersion,
		DeviceType:     client.DeviceType,
		OS:             client.OS,
		OSVersion:      client.OSVersion,

		IPAddress: in.IPAddress,

		Referrer:       lo.EmptyableToPtr(in.Referrer),
		ReferrerDomain: enrichment.ExtractReferrerDomain(in.Referrer),

		UTMSource:   utm.Source,
		UTMMedium:   utm.Medium,
		UTMCampaign: utm.Campaign,
		UTMTerm:     utm.Term,
		UTMContent:  utm.Content,

		ClickedAt: clickedAt,
		CreatedAt: now,
	}
}
