package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"aidocs-backend/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

// ResilientClient wraps a Client with a single retry for transient failures
// and a circuit breaker so a failing provider stops consuming requests.
type ResilientClient struct {
	base    Client
	breaker *gobreaker.CircuitBreaker[string]
}

// NewResilientClient wraps base. A nil base returns nil.
func NewResilientClient(base Client) *ResilientClient {
	if base == nil {
		return nil
	}
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "completion-api",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &ResilientClient{base: base, breaker: breaker}
}

// Complete executes the request through the breaker, retrying once on
// transient transport failures.
func (r *ResilientClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return r.breaker.Execute(func() (string, error) {
		out, err := r.base.Complete(ctx, req)
		if err == nil || !shouldRetry(err) {
			return out, err
		}

		telemetry.Warn("llm.retry", map[string]any{"error": err.Error()})
		select {
		case <-time.After(retryBaseDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}

		return r.base.Complete(ctx, req)
	})
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}

var _ Client = (*ResilientClient)(nil)
