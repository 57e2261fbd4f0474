package aareguru

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/aareguru-monitor/internal/domain"
	"github.com/couchcryptid/aareguru-monitor/internal/observability"
)

const (
	DefaultBaseURL = "https://aareguru.existenz.ch/v2018"
	DefaultApp     = "aareguru-monitor"
	DefaultVersion = "1.0"

	// maxBodyBytes bounds the response read; a full "current" payload is ~20 KiB.
	maxBodyBytes = 1 << 20
)

// Client fetches current telemetry from the Aare.guru API.
type Client struct {
	baseURL    string
	app        string
	version    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Options configures a Client. Empty fields take the package defaults.
type Options struct {
	BaseURL string
	App     string
	Version string
	Timeout time.Duration
}

// NewClient creates an Aare.guru API client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(orDefault(opts.BaseURL, DefaultBaseURL), "/"),
		app:        orDefault(opts.App, DefaultApp),
		version:    orDefault(opts.Version, DefaultVersion),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// Fetch requests the current readings for locationID. Errors are always
// *domain.FetchError. An empty location fails with KindConfig before any
// request is made.
func (c *Client) Fetch(ctx context.Context, locationID string) (domain.Snapshot, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		c.metrics.FetchRequests.WithLabelValues(domain.KindConfig.String()).Inc()
		return domain.Snapshot{}, domain.NewConfigError("no location configured")
	}

	start := time.Now()
	snap, err := c.doRequest(ctx, locationID)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(domain.ErrorKind(err).String()).Inc()
		return domain.Snapshot{}, err
	}
	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.logger.Debug("telemetry fetched", "location", locationID, "duration", time.Since(start))
	return snap, nil
}

func (c *Client) requestURL(locationID string) string {
	params := url.Values{
		"city":    {locationID},
		"app":     {c.app},
		"version": {c.version},
	}
	return c.baseURL + "/current?" + params.Encode()
}

func (c *Client) doRequest(ctx context.Context, locationID string) (domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(locationID), nil)
	if err != nil {
		return domain.Snapshot{}, domain.NewConfigError("create request: " + err.Error())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Snapshot{}, domain.NewNetworkError("current request", unwrapURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return domain.Snapshot{}, domain.NewHTTPStatusError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Snapshot{}, domain.NewNetworkError("read response", err)
	}

	return domain.ParsePayload(body)
}

// unwrapURLError drops the *url.Error wrapper, which repeats the full request
// URL in every message.
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
