// Package resilience provides a resilient HTTP client with circuit breaking,
// timeouts, and retry logic for upstream roster and archive calls.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming.
	Name string

	// Timeout is the request timeout for individual HTTP calls.
	// Default: 30 seconds.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts. Default: 3.
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 100ms.
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 5 seconds.
	MaxInterval time.Duration

	// BreakerTimeout is the period of open state before the circuit
	// switches to half-open. Default: 60 seconds.
	BreakerTimeout time.Duration
}

// Client is a resilient HTTP client. Transient failures (5xx, network
// errors) are retried with exponential backoff; sustained failure opens the
// circuit and fails calls fast until the upstream recovers. Every attempt's
// outcome is recorded so the ops surface can report when the upstream was
// last seen healthy.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig

	mu            sync.Mutex
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// Observation is a snapshot of the client's recorded request outcomes.
type Observation struct {
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// Do executes an HTTP request with circuit breaker protection and retry
// logic. Returns immediately with ErrCircuitOpen if the circuit is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes an HTTP request with the given context.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retry count is the only bound

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		// 5xx responses are surfaced as errors so they both trip the
		// breaker and trigger a retry.
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				// The request never reached the upstream, so no
				// outcome is recorded.
				return backoff.Permanent(ErrCircuitOpen)
			}
			c.recordFailure(err)
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		c.recordSuccess()
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		// A 5xx that exhausted retries still carries a response the caller
		// can report; hand it over instead of the wrapped error.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}

	return lastResp, nil
}

// Observe returns a snapshot of the client's recorded request outcomes.
func (c *Client) Observe() Observation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Observation{
		LastSuccessAt: c.lastSuccessAt,
		LastFailureAt: c.lastFailureAt,
		LastError:     c.lastError,
	}
}

func (c *Client) recordSuccess() {
	now := time.Now().UTC()
	c.mu.Lock()
	c.lastSuccessAt = &now
	c.mu.Unlock()
}

func (c *Client) recordFailure(err error) {
	now := time.Now().UTC()
	c.mu.Lock()
	c.lastFailureAt = &now
	c.lastError = err.Error()
	c.mu.Unlock()
}

// State returns the current circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the current circuit breaker counts.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}
