package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ghpool-go/internal/constants"
	interr "ghpool-go/internal/errors"
	"ghpool-go/internal/monitoring"
	"ghpool-go/internal/monitoring/tracing"
	"ghpool-go/internal/tokenring"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
)

const probeBodyLimit = 1 << 20

// remainingFromResponse reads the remaining-quota header. A missing or
// malformed header yields no signal, never an error.
func remainingFromResponse(resp *http.Response) (int, bool) {
	raw := resp.Header.Get(constants.RateLimitRemainingHeader)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.WithField("value", raw).Debug("malformed rate limit header, ignoring")
		return 0, false
	}
	return n, true
}

// ProbeRateLimit asks the quota endpoint for the remaining quota of one
// token. The probe goes straight to the transport: it must not re-enter the
// rotation logic it serves. The endpoint itself does not consume quota.
func (c *Client) ProbeRateLimit(ctx context.Context, token tokenring.Token) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "github", "github.rate_limit_probe")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+constants.RateLimitEndpoint, nil)
	if err != nil {
		return 0, err
	}
	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Authorization", token.AuthorizationHeader())

	start := time.Now()
	resp, err := c.cli.Do(req)
	monitoring.ProbeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		reqErr := interr.NewRequestError(http.MethodGet, constants.RateLimitEndpoint, err)
		monitoring.ProbeErrors.WithLabelValues(string(reqErr.Kind)).Inc()
		span.RecordError(reqErr)
		return 0, reqErr
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate limit probe returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, probeBodyLimit))
	if err != nil {
		return 0, fmt.Errorf("read rate limit response: %w", err)
	}

	remaining := gjson.GetBytes(body, "rate.remaining")
	if !remaining.Exists() {
		return 0, fmt.Errorf("rate limit response missing rate.remaining")
	}

	n := int(remaining.Int())
	span.SetAttributes(attribute.Int("ghpool.remaining", n))
	c.recordRemaining(token, n)
	monitoring.PoolRemaining.WithLabelValues(token.Masked()).Set(float64(n))
	return n, nil
}
