package clickhouse

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort    = 8443
	DefaultTimeout = 10 * time.Second
)

// Config holds the connection settings for the store's HTTPS query interface.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Timeout  time.Duration
}

// Client sends queries to the store over HTTPS. It holds no connection state
// besides the underlying http.Client and is safe for concurrent use.
type Client struct {
	endpoint string
	cfg      Config
	hc       *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default TLS-verifying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// NewClient returns ErrNotConfigured when cfg.Host is empty.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	endpoint := url.URL{
		Scheme: "https",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/",
	}
	c := &Client{
		endpoint: endpoint.String(),
		cfg:      cfg,
		hc: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	if c.hc.Timeout == 0 {
		c.hc.Timeout = cfg.Timeout
	}
	return c, nil
}

// Endpoint is the URL every query is posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Execute posts q and returns the raw response body. Any non-2xx status,
// transport failure or timeout is reported as *StoreError. There are no retries.
func (c *Client) Execute(ctx context.Context, q Query) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(q.String()))
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	req.Header.Set("Content-Type", "text/plain")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	if c.cfg.Database != "" {
		req.Header.Set("X-ClickHouse-Database", c.cfg.Database)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StoreError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StoreError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// Exec runs a statement whose result body is not needed.
func (c *Client) Exec(ctx context.Context, q Query) error {
	_, err := c.Execute(ctx, q)
	return err
}

// Select runs a FORMAT JSONEachRow query and decodes its rows.
func (c *Client) Select(ctx context.Context, q Query) ([]Row, error) {
	body, err := c.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	return DecodeRows(body)
}
