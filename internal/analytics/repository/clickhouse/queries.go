package clickhouse

import (
	"strings"

	"linktrack/internal/analytics/usecase"
	ch "linktrack/internal/pkg/clickhouse"
)

const (
	geoLimit       = 50
	breakdownLimit = 20
)

var insertColumns = []string{
	"id", "short_url_id", "tracking_id", "short_uri", "redirected_to_url", "url_type",
	"user_id", "session_id",
	"user_agent", "browser", "browser_version", "device_type", "os", "os_version",
	"ip_address", "country", "city", "region",
	"referrer", "referrer_domain",
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"clicked_at", "created_at",
}

var insertTemplate = "INSERT INTO url_clicks (" + strings.Join(insertColumns, ", ") +
	") VALUES (" + ch.Placeholders(len(insertColumns)) + ")"

func insertClickQuery(e *usecase.ClickEvent) (ch.Query, error) {
	return ch.Build(insertTemplate,
		ch.UInt64(e.ID),
		ch.UInt64(e.ShortURLID),
		ch.String(e.TrackingID),
		ch.String(e.ShortURI),
		ch.String(e.RedirectedToURL),
		ch.String(string(e.URLType)),
		ch.NullableUInt64(e.UserID),
		ch.NullableString(e.SessionID),
		ch.String(e.UserAgent),
		ch.String(e.Browser),
		ch.String(e.BrowserVersion),
		ch.String(e.DeviceType),
		ch.String(e.OS),
		ch.String(e.OSVersion),
		ch.String(e.IPAddress),
		ch.String(e.Country),
		ch.String(e.City),
		ch.String(e.Region),
		ch.NullableString(e.Referrer),
		ch.NullableString(e.ReferrerDomain),
		ch.NullableString(e.UTMSource),
		ch.NullableString(e.UTMMedium),
		ch.NullableString(e.UTMCampaign),
		ch.NullableString(e.UTMTerm),
		ch.NullableString(e.UTMContent),
		ch.DateTime(e.ClickedAt),
		ch.DateTime(e.CreatedAt),
	)
}

const (
	totalClicksSQL = `SELECT count() AS total
FROM url_clicks
WHERE short_url_id = ?
FORMAT JSONEachRow`

	clicksByURLTypeSQL = `SELECT url_type, count() AS count, uniq(ip_address) AS unique_visitors
FROM url_clicks
WHERE short_url_id = ?
GROUP BY url_type
FORMAT JSONEachRow`

	clicksOverTimeSQL = `SELECT toDate(clicked_at) AS date, url_type, count() AS clicks, uniq(ip_address) AS unique_visitors
FROM url_clicks
WHERE short_url_id = ?
  AND clicked_at >= today() - ?
GROUP BY date, url_type
ORDER BY date DESC
FORMAT JSONEachRow`

	geographicStatsSQL = `SELECT country, city, count() AS clicks, uniq(ip_address) AS unique_visitors
FROM url_clicks
WHERE short_url_id = ?
  AND country != ''
GROUP BY country, city
ORDER BY clicks DESC
LIMIT ?
FORMAT JSONEachRow`

	deviceStatsSQL = `SELECT device_type, count() AS clicks, uniq(ip_address) AS unique_visitors
FROM url_clicks
WHERE short_url_id = ?
GROUP BY device_type
ORDER BY clicks DESC
FORMAT JSONEachRow`

	browserStatsSQL = `SELECT browser, browser_version, count() AS clicks
FROM url_clicks
WHERE short_url_id = ?
  AND browser != ''
GROUP BY browser, browser_version
ORDER BY clicks DESC
LIMIT ?
FORMAT JSONEachRow`

	referrerStatsSQL = `SELECT referrer_domain, count() AS clicks, uniq(ip_address) AS unique_visitors
FROM url_clicks
WHERE short_url_id = ?
  AND referrer_domain != ''
GROUP BY referrer_domain
ORDER BY clicks DESC
LIMIT ?
FORMAT JSONEachRow`

	hourlyPatternSQL = `SELECT toHour(clicked_at) AS hour, count() AS clicks
FROM url_clicks
WHERE short_url_id = ?
  AND clicked_at >= today() - ?
GROUP BY hour
ORDER BY hour
FORMAT JSONEachRow`

	utmCampaignStatsSQL = `SELECT utm_source, utm_medium, utm_campaign, count() AS clicks, uniq(ip_address) AS unique_visitors
FROM url_clicks
WHERE short_url_id = ?
  AND utm_campaign IS NOT NULL
GROUP BY utm_source, utm_medium, utm_campaign
ORDER BY clicks DESC
LIMIT ?
FORMAT JSONEachRow`

	utmSourceStatsSQL = `SELECT utm_source, count() AS clicks, uniq(ip_address) AS unique_visitors
FROM url_clicks
WHERE short_url_id = ?
  AND utm_source IS NOT NULL
GROUP BY utm_source
ORDER BY clicks DESC
LIMIT ?
FORMAT JSONEachRow`

	utmMediumStatsSQL = `SELECT utm_medium, count() AS clicks, uniq(ip_address) AS unique_visitors
FROM url_clicks
WHERE short_url_id = ?
  AND utm_medium IS NOT NULL
GROUP BY utm_medium
ORDER BY clicks DESC
LIMIT ?
FORMAT JSONEachRow`

	recentClicksSQL = `SELECT *
FROM url_clicks
WHERE short_url_id = ?
ORDER BY clicked_at DESC
LIMIT ?
FORMAT JSONEachRow`
)

// createTableSQL mirrors the layout the read queries rely on: monthly
// partitions sorted by (short_url_id, clicked_at, id).
const createTableSQL = `CREATE TABLE IF NOT EXISTS url_clicks (
    id UInt64,
    short_url_id UInt64,
    tracking_id String,
    short_uri String,
    redirected_to_url String,
    url_type String,
    user_id Nullable(UInt64),
    session_id Nullable(String),
    user_agent Nullable(String),
    browser Nullable(String),
    browser_version Nullable(String),
    device_type Nullable(String),
    os Nullable(String),
    os_version Nullable(String),
    ip_address Nullable(String),
    country Nullable(String),
    city Nullable(String),
    region Nullable(String),
    referrer Nullable(String),
    referrer_domain Nullable(String),
    utm_source Nullable(String),
    utm_medium Nullable(String),
    utm_campaign Nullable(String),
    utm_term Nullable(String),
    utm_content Nullable(String),
    clicked_at DateTime,
    created_at DateTime DEFAULT now(),
    properties String DEFAULT '{}'
)
ENGINE = MergeTree()
PARTITION BY toYYYYMM(clicked_at)
ORDER BY (short_url_id, clicked_at, id)
SETTINGS index_granularity = 8192`

func byShortURL(sql string, shortURLID uint64, extra ...ch.Value) (ch.Query, error) {
	return ch.Build(sql, append([]ch.Value{ch.UInt64(shortURLID)}, extra...)...)
}
