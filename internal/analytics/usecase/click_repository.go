package usecase

import (
	"context"
	"net/url"
	"time"
)

// URLType tells which of a short URL's two destinations was followed.
type URLType string

const (
	URLTypePrimary   URLType = "url1"
	URLTypeSecondary URLType = "url2"
)

func (t URLType) Valid() bool {
	return t == URLTypePrimary || t == URLTypeSecondary
}

// ShortURL is the registry record a click refers to. Only the fields needed
// for tracking are loaded.
type ShortURL struct {
	ID         uint64
	TrackingID string
	ShortURI   string
	URL1       string
	URL2       *string
	UserID     *uint64
	ClickCount int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Destination returns the target for t, or false when t is not set up.
func (s *ShortURL) Destination(t URLType) (string, bool) {
	switch t {
	case URLTypePrimary:
		return s.URL1, s.URL1 != ""
	case URLTypeSecondary:
		if s.URL2 == nil || *s.URL2 == "" {
			return "", false
		}
		return *s.URL2, true
	default:
		return "", false
	}
}

// ClickEvent is one immutable row of the click log.
type ClickEvent struct {
	ID              uint64
	ShortURLID      uint64
	TrackingID      string
	ShortURI        string
	RedirectedToURL string
	URLType         URLType
	UserID          *uint64
	SessionID       *string

	UserAgent      string
	Browser        string
	BrowserVersion string
	DeviceType     string
	OS             string
	OSVersion      string

	// Country, City and Region are always empty; there is no geolocation.
	IPAddress string
	Country   string
	City      string
	Region    string

	Referrer       *string
	ReferrerDomain *string

	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	UTMTerm     *string
	UTMContent  *string

	ClickedAt time.Time
	CreatedAt time.Time
}

// ClickInput is everything the transport layer knows about a click.
type ClickInput struct {
	ShortURL      *ShortURL
	URLType       URLType
	RedirectedURL string
	// VisitorID, when set, replaces SessionID on the stored event.
	VisitorID string
	SessionID string
	UserID    *uint64

	UserAgent string
	IPAddress string
	Referrer  string
	// Query holds the request's query parameters, searched for utm_* values.
	Query url.Values
	// ClickedAt defaults to the time of tracking.
	ClickedAt time.Time
}

// Row is one aggregated or raw record returned by the click store.
type Row map[string]any

// ClickRepository reads and appends click events.
type ClickRepository interface {
	// Available reports whether a click store is configured.
	Available() bool
	// InsertClick appends a single event.
	InsertClick(ctx context.Context, event *ClickEvent) error
	// CountClicks returns the all-time number of clicks.
	CountClicks(ctx context.Context, shortURLID uint64) (int64, error)
	// ClicksByURLType returns url_type, count and unique_visitors.
	ClicksByURLType(ctx context.Context, shortURLID uint64) ([]Row, error)
	// ClicksOverTime returns date, url_type, clicks and unique_visitors for the last days.
	ClicksOverTime(ctx context.Context, shortURLID uint64, days int) ([]Row, error)
	// GeographicStats returns country, city, clicks and unique_visitors.
	GeographicStats(ctx context.Context, shortURLID uint64) ([]Row, error)
	// DeviceStats returns device_type, clicks and unique_visitors.
	DeviceStats(ctx context.Context, shortURLID uint64) ([]Row, error)
	// BrowserStats returns browser, browser_version and clicks.
	BrowserStats(ctx context.Context, shortURLID uint64) ([]Row, error)
	// ReferrerStats returns referrer_domain, clicks and unique_visitors.
	ReferrerStats(ctx context.Context, shortURLID uint64) ([]Row, error)
	// HourlyPattern returns hour and clicks for the last days.
	HourlyPattern(ctx context.Context, shortURLID uint64, days int) ([]Row, error)
	// UTMCampaignStats returns utm_source, utm_medium, utm_campaign, clicks and unique_visitors.
	UTMCampaignStats(ctx context.Context, shortURLID uint64) ([]Row, error)
	// UTMSourceStats returns utm_source, clicks and unique_visitors.
	UTMSourceStats(ctx context.Context, shortURLID uint64) ([]Row, error)
	// UTMMediumStats returns utm_medium, clicks and unique_visitors.
	UTMMediumStats(ctx context.Context, shortURLID uint64) ([]Row, error)
	// RecentClicks returns raw events, newest first.
	RecentClicks(ctx context.Context, shortURLID uint64, limit int) ([]Row, error)
}

// ShortURLRepository is the read and counter side of the short URL registry.
type ShortURLRepository interface {
	// FindByShortURI returns ErrShortURLNotFound for unknown or malformed slugs.
	FindByShortURI(ctx context.Context, shortURI string) (*ShortURL, error)
	FindByID(ctx context.Context, id uint64) (*ShortURL, error)
	IncrementClickCount(ctx context.Context, id uint64) error
}
