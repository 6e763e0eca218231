package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultBase = "https://query1.finance.yahoo.com"

	// El endpoint de chart no documenta límites; 2 req/s evita los 429
	// que aparecen al bajar varios tickers seguidos.
	chartRatePerSec = 2

	defaultMaxRetries = 3
	baseRetryWait     = 500 * time.Millisecond
)

// Client es el HTTP client del endpoint de chart de Yahoo Finance con
// rate limiting y retries.
type Client struct {
	http       *http.Client
	base       string
	limiter    *rate.Limiter
	maxRetries uint64
	retryWait  time.Duration
}

// Option ajusta un Client.
type Option func(*Client)

// WithRetry cambia el número de reintentos y la espera inicial del backoff.
func WithRetry(maxRetries uint64, initialWait time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryWait = initialWait
	}
}

// WithRateLimit cambia las requests por segundo permitidas.
func WithRateLimit(perSec float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

// NewClient crea un Client con el base URL dado.
// Si base está vacío, usa el URL de producción.
func NewClient(base string, opts ...Option) *Client {
	if base == "" {
		base = defaultBase
	}
	c := &Client{
		http:       &http.Client{Timeout: 15 * time.Second},
		base:       base,
		limiter:    rate.NewLimiter(chartRatePerSec, 1),
		maxRetries: defaultMaxRetries,
		retryWait:  baseRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError es una respuesta HTTP no exitosa.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// get hace un GET con rate limiting y backoff exponencial.
// Los 429 y 5xx se reintentan; el resto de 4xx falla inmediatamente.
func (c *Client) get(ctx context.Context, url string, out any) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryWait
	policy.MaxElapsedTime = 0 // el tope lo pone maxRetries
	b := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "gas-spread-arb/1.0")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			slog.Warn("rate limited by API", "attempt", attempt)
			return &StatusError{StatusCode: resp.StatusCode}
		case resp.StatusCode >= 500:
			return &StatusError{StatusCode: resp.StatusCode}
		case resp.StatusCode >= 400:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: string(body)})
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	err := backoff.Retry(operation, b)
	if err == nil {
		return nil
	}
	var se *StatusError
	if errors.As(err, &se) && (se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests) {
		return fmt.Errorf("request failed after %d attempts: %w", attempt, err)
	}
	return err
}
