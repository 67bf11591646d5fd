package usage

import (
	"context"
	"sync"
	"time"

	interr "ghpool-go/internal/errors"
	"ghpool-go/internal/tokenring"

	log "github.com/sirupsen/logrus"
)

const defaultPersistInterval = 60 * time.Second

// Tracker collects per-token usage and persists it in the background. It
// satisfies the client's Recorder interface.
type Tracker struct {
	mu      sync.RWMutex
	stats   *Stats
	storage Storage

	persistInterval time.Duration
	stopCh          chan struct{}
	wg              sync.WaitGroup
}

// NewTracker creates a tracker over the given storage. A nil storage
// disables persistence.
func NewTracker(storage Storage, persistInterval time.Duration) *Tracker {
	if storage == nil {
		storage = NopStorage{}
	}
	if persistInterval <= 0 {
		persistInterval = defaultPersistInterval
	}
	return &Tracker{
		stats:           NewStats(),
		storage:         storage,
		persistInterval: persistInterval,
		stopCh:          make(chan struct{}),
	}
}

// Start loads any persisted snapshot and begins the persistence loop.
func (t *Tracker) Start(ctx context.Context) error {
	loaded, err := t.storage.Load(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to load usage statistics, starting fresh")
	} else if loaded != nil {
		t.mu.Lock()
		t.stats = loaded
		t.mu.Unlock()
	}

	t.wg.Add(1)
	go t.persistWorker(ctx)

	log.Info("usage tracker started")
	return nil
}

// Stop ends the loop and writes a final snapshot.
func (t *Tracker) Stop(ctx context.Context) error {
	close(t.stopCh)
	t.wg.Wait()

	if err := t.save(ctx); err != nil {
		log.WithError(err).Error("failed to save final usage statistics")
		return err
	}
	log.Info("usage tracker stopped")
	return nil
}

func (t *Tracker) persistWorker(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.persistInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := t.save(ctx); err != nil {
				log.WithError(err).Warn("periodic usage persist failed")
			}
		case <-t.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (t *Tracker) save(ctx context.Context) error {
	return t.storage.Save(ctx, t.Snapshot())
}

// RecordRequest counts one attempt's outcome for a token.
func (t *Tracker) RecordRequest(token tokenring.Token, method string, status int, transportErr bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.TotalRequests++
	u := t.stats.tokenUsage(token.Masked())
	u.Requests++
	u.LastUsed = time.Now()

	switch {
	case transportErr:
		t.stats.TotalFailures++
		u.TransportErrors++
	case status >= 400:
		t.stats.TotalFailures++
		u.Failures++
		u.StatusClasses[interr.StatusClass(status)]++
	default:
		u.StatusClasses[interr.StatusClass(status)]++
	}
}

// RecordRotation counts a cursor move.
func (t *Tracker) RecordRotation(from, to tokenring.Token, trigger string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Rotations++
	t.stats.tokenUsage(from.Masked()).RotationsAway++
	t.stats.tokenUsage(to.Masked()).RotationsTo++
}

// RecordRemaining stores the last observed quota signal for a token.
func (t *Tracker) RecordRemaining(token tokenring.Token, remaining int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.tokenUsage(token.Masked()).LastRemaining = remaining
}

// Snapshot returns a deep copy of the current aggregate.
func (t *Tracker) Snapshot() *Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats.Clone()
}
