package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config is the retry and breaker policy shared by the Ollama, Qdrant and
// NATS calls. Zero fields take the value from Defaults.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func Defaults() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// Validate rejects explicitly set values that cannot describe a policy.
func (c Config) Validate() error {
	var errs []error
	if c.RetryMaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry max attempts must not be negative, got %d", c.RetryMaxAttempts))
	}
	if c.RetryInitialBackoff < 0 || c.RetryMaxBackoff < 0 {
		errs = append(errs, errors.New("retry backoff must not be negative"))
	}
	if c.RetryMultiplier != 0 && c.RetryMultiplier < 1 {
		errs = append(errs, fmt.Errorf("retry multiplier must be at least 1, got %v", c.RetryMultiplier))
	}
	if c.BreakerFailureRatio < 0 || c.BreakerFailureRatio > 1 {
		errs = append(errs, fmt.Errorf("breaker failure ratio must be within [0,1], got %v", c.BreakerFailureRatio))
	}
	if c.BreakerOpenTimeout < 0 {
		errs = append(errs, errors.New("breaker open timeout must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) withDefaults() Config {
	out := c
	def := Defaults()

	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryInitialBackoff <= 0 {
		out.RetryInitialBackoff = def.RetryInitialBackoff
	}
	if out.RetryMaxBackoff <= 0 {
		out.RetryMaxBackoff = def.RetryMaxBackoff
	}
	if out.RetryMaxBackoff < out.RetryInitialBackoff {
		out.RetryMaxBackoff = out.RetryInitialBackoff
	}
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}
	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}
	return out
}

// backoff is the wait after the given failed attempt, starting at 1.
func (c Config) backoff(attempt int) time.Duration {
	wait := c.RetryInitialBackoff
	for i := 1; i < attempt && wait < c.RetryMaxBackoff; i++ {
		wait = time.Duration(float64(wait) * c.RetryMultiplier)
	}
	return min(wait, c.RetryMaxBackoff)
}

// tripped reports whether the observed failures open the breaker.
func (c Config) tripped(counts gobreaker.Counts) bool {
	if counts.Requests == 0 || counts.Requests < c.BreakerMinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.BreakerFailureRatio
}

// IsRetryableHTTPStatus reports statuses worth another attempt against an HTTP dependency.
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
