package github

import (
	"context"
	"io"
	"net/http"
	"time"

	interr "ghpool-go/internal/errors"
	"ghpool-go/internal/monitoring"
	"ghpool-go/internal/monitoring/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Do runs one logical request with bounded retries. Every 4xx outcome logs a
// diagnostic reason, triggers a reactive rotation and consumes one attempt.
// Any non-4xx response is returned immediately; if its quota signal is at or
// below the threshold a proactive rotation prepares the next call first.
// Once the budget is exhausted the last response is returned as-is — callers
// inspect status codes, only transport failures come back as errors.
func (c *Client) Do(ctx context.Context, method, endpoint string, opts *RequestOptions) (*http.Response, error) {
	ctx, span := tracing.StartSpan(ctx, "github", "github.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("ghpool.endpoint", endpoint),
	)

	rid := uuid.NewString()
	entry := log.WithFields(log.Fields{
		"request_id": rid,
		"method":     method,
		"endpoint":   endpoint,
	})

	var resp *http.Response
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, interr.NewRequestError(method, endpoint, err)
			}
		}

		// A new attempt abandons the previous error response.
		if resp != nil {
			drainAndClose(resp)
		}

		token := c.ring.Current()
		req, err := c.newRequest(ctx, method, endpoint, opts)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err = c.cli.Do(req)
		monitoring.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		if err != nil {
			reqErr := interr.NewRequestError(method, endpoint, err)
			monitoring.RequestsTotal.WithLabelValues(method, "error").Inc()
			c.recordRequest(token, method, 0, true)
			span.RecordError(reqErr)
			span.SetStatus(codes.Error, string(reqErr.Kind))
			return nil, reqErr
		}

		monitoring.RequestsTotal.WithLabelValues(method, interr.StatusClass(resp.StatusCode)).Inc()
		c.recordRequest(token, method, resp.StatusCode, false)

		if resp.StatusCode/100 == 4 {
			reason := interr.ReasonForStatus(resp.StatusCode)
			monitoring.RetryAttemptsTotal.WithLabelValues("rotate").Inc()
			entry.WithFields(log.Fields{
				"status":  resp.StatusCode,
				"reason":  reason,
				"token":   token.Masked(),
				"attempt": attempt + 1,
			}).Info("request failed, retrying with the next token")
			c.rotate(ctx, TriggerReactive)
			continue
		}

		if remaining, ok := remainingFromResponse(resp); ok {
			c.recordRemaining(token, remaining)
			monitoring.PoolRemaining.WithLabelValues(token.Masked()).Set(float64(remaining))
			if remaining <= c.threshold() {
				entry.WithFields(log.Fields{
					"remaining": remaining,
					"token":     token.Masked(),
				}).Info("remaining quota reached the rotation limit, switching token")
				c.rotate(ctx, TriggerProactive)
			}
		}

		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		return resp, nil
	}

	monitoring.RetryAttemptsTotal.WithLabelValues("exhausted").Inc()
	entry.WithField("attempts", c.maxRetries).Warn("retry budget exhausted, returning last response")
	if resp != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}
	return resp, nil
}

// Get issues a GET request through the resilient executor.
func (c *Client) Get(ctx context.Context, endpoint string, opts *RequestOptions) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, endpoint, opts)
}

// Put issues a PUT request through the resilient executor.
func (c *Client) Put(ctx context.Context, endpoint string, opts *RequestOptions) (*http.Response, error) {
	return c.Do(ctx, http.MethodPut, endpoint, opts)
}

// Post issues a POST request through the resilient executor.
func (c *Client) Post(ctx context.Context, endpoint string, opts *RequestOptions) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, endpoint, opts)
}

// Delete issues a DELETE request through the resilient executor.
func (c *Client) Delete(ctx context.Context, endpoint string, opts *RequestOptions) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, endpoint, opts)
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, probeBodyLimit))
	_ = resp.Body.Close()
}
