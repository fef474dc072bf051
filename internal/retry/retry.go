// Package retry implements the backoff discipline every remote model call
// passes through. Transient server failures (HTTP 500/503 or an "internal
// error" marker) are retried with exponential backoff; everything else is
// terminal and re-raised immediately without consuming the retry budget.
package retry

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"docent/internal/logging"
)

// Policy controls the retry loop. The zero value is not useful; start from
// DefaultPolicy and override as needed.
type Policy struct {
	// MaxRetries is the number of retries beyond the first attempt.
	MaxRetries int
	// InitialDelay is the suspension before the first retry.
	InitialDelay time.Duration
	// Multiplier scales the delay after each retry.
	Multiplier float64
}

// DefaultPolicy returns the standard policy: 3 retries, 1 s initial delay,
// delay doubled per retry, no jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		Multiplier:   2.0,
	}
}

// IsTransient classifies an error as a retryable transient server failure.
// Only HTTP-class 500 and 503, or an equivalent internal-error marker in the
// message, qualify. nil and everything else are terminal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 500 || apiErr.Code == 503
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "internal error") {
		return true
	}
	return transientCodePattern.MatchString(msg)
}

// transientCodePattern matches 500/503 as a standalone status code, not as
// digits inside a port number or a token count.
var transientCodePattern = regexp.MustCompile(`\b(500|503)\b`)

// Do runs op under the policy. On a transient failure with remaining budget
// it suspends for the current delay, scales the delay, and retries; the last
// error is returned once the budget is exhausted. Terminal failures are
// returned immediately. The backoff sleep respects ctx cancellation.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	delay := p.InitialDelay
	if delay <= 0 {
		delay = time.Second
	}
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		if attempt >= p.MaxRetries {
			logging.Retry("budget exhausted after %d attempts: %v", attempt+1, lastErr)
			return lastErr
		}

		logging.RetryDebug("transient failure (attempt %d/%d), backing off %v: %v",
			attempt+1, p.MaxRetries+1, delay, lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		delay = time.Duration(float64(delay) * multiplier)
	}
}

// DoValue runs a value-returning operation under the policy.
func DoValue[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}
