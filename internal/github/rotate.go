package github

import (
	"context"

	"ghpool-go/internal/monitoring"

	log "github.com/sirupsen/logrus"
)

const (
	// TriggerReactive marks rotations driven by a 4xx outcome.
	TriggerReactive = "reactive"
	// TriggerProactive marks rotations driven by a low quota signal on a
	// successful call.
	TriggerProactive = "proactive"
)

// rotate walks the ring at most one full cycle, probing each token's
// remaining quota, and commits the first one probing above the threshold.
// When no token qualifies the cursor stays put: the request path keeps
// burning its retry budget with the same token, which is a degraded-service
// outcome rather than a failure. Given unchanged remote quotas the pass is
// idempotent.
func (c *Client) rotate(ctx context.Context, trigger string) {
	c.rotateMu.Lock()
	defer c.rotateMu.Unlock()

	from := c.ring.Current()
	for _, token := range c.ring.All() {
		remaining, err := c.ProbeRateLimit(ctx, token)
		if err != nil {
			if ctx.Err() != nil {
				// Caller is gone; abandon without touching the cursor.
				return
			}
			log.WithError(err).WithField("token", token.Masked()).Warn("quota probe failed, skipping token")
			continue
		}

		if remaining > c.rotateAt {
			c.ring.SetCurrent(token)
			monitoring.RotationsTotal.WithLabelValues(trigger).Inc()
			c.recordRotation(from, token, trigger)
			log.WithFields(log.Fields{
				"trigger":   trigger,
				"from":      from.Masked(),
				"to":        token.Masked(),
				"remaining": remaining,
			}).Info("rotated to token")
			return
		}

		log.WithFields(log.Fields{
			"token":     token.Masked(),
			"remaining": remaining,
			"threshold": c.rotateAt,
		}).Debug("token below rotation threshold")
	}

	monitoring.RotationExhaustedTotal.Inc()
	log.WithField("trigger", trigger).Warn("all tokens probed at or below rotation threshold, keeping current token")
}
