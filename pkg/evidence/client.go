// Package evidence fetches evidence bundles from the upstream gathering
// service. The scorers never see this package; they operate on bundles
// only. The client wraps the HTTP calls with a rate limiter and a
// circuit breaker so a struggling upstream degrades batch throughput
// instead of collapsing it.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// Client fetches evidence bundles over HTTP.
type Client struct {
	baseURL      string
	apiKey       string
	cacheDir     string
	halfLifeDays int
	httpClient   *http.Client
	rateLimit    *rate.Limiter
	breaker      *gobreaker.CircuitBreaker
	retryCount   int
	logger       *logrus.Logger
}

// ClientConfig configures the evidence client.
type ClientConfig struct {
	BaseURL      string        `json:"base_url"`
	APIKey       string        `json:"api_key"`
	Timeout      time.Duration `json:"timeout"`
	RateLimit    int           `json:"rate_limit"` // requests per second
	RetryCount   int           `json:"retry_count"`
	HalfLifeDays int           `json:"half_life_days"`

	// CacheDir is where the gathering service caches raw source data.
	// The engine never reads it; it is forwarded on each request.
	CacheDir string `json:"cache_dir"`
}

// NewClient creates an evidence client with defaults filled in.
func NewClient(config ClientConfig, logger *logrus.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10
	}
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "evidence-service",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &Client{
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		apiKey:       config.APIKey,
		cacheDir:     config.CacheDir,
		halfLifeDays: config.HalfLifeDays,
		httpClient:   &http.Client{Timeout: config.Timeout},
		rateLimit:    rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		breaker:      breaker,
		retryCount:   config.RetryCount,
		logger:       logger,
	}
}

// FetchBundle retrieves the evidence bundle for one subject.
func (c *Client) FetchBundle(ctx context.Context, subject string) (*domain.EvidenceBundle, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, domain.NewValidationError("subject", "subject cannot be empty", subject)
	}

	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchWithRetry(ctx, subject)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.EvidenceBundle), nil
}

func (c *Client) fetchWithRetry(ctx context.Context, subject string) (*domain.EvidenceBundle, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		bundle, retryable, err := c.fetchOnce(ctx, subject)
		if err == nil {
			return bundle, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.logger.WithFields(logrus.Fields{
			"subject": subject,
			"attempt": attempt + 1,
		}).Debug("Evidence fetch failed, retrying")
	}
	return nil, fmt.Errorf("fetching evidence for %s: %w", subject, lastErr)
}

// fetchOnce performs a single request. The second return reports whether
// the failure is worth retrying (5xx and transport errors are, 4xx not).
func (c *Client) fetchOnce(ctx context.Context, subject string) (*domain.EvidenceBundle, bool, error) {
	endpoint := fmt.Sprintf("%s/evidence/%s", c.baseURL, url.PathEscape(subject))
	query := url.Values{}
	if c.halfLifeDays > 0 {
		query.Set("half_life_days", fmt.Sprintf("%d", c.halfLifeDays))
	}
	if c.cacheDir != "" {
		query.Set("cache_dir", c.cacheDir)
	}
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("evidence request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("subject %s: %w", subject, domain.ErrNotFound)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("evidence service returned %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("evidence service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading response: %w", err)
	}

	bundle := &domain.EvidenceBundle{}
	if err := json.Unmarshal(body, bundle); err != nil {
		return nil, false, fmt.Errorf("decoding evidence bundle: %w", err)
	}
	if bundle.Subject == "" {
		bundle.Subject = subject
	}
	if bundle.GatheredAt.IsZero() {
		bundle.GatheredAt = time.Now().UTC()
	}
	return bundle, false, nil
}
