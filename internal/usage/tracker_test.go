package usage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsRequests(t *testing.T) {
	tracker := NewTracker(nil, time.Hour)

	tracker.RecordRequest("ghp_aaaaaaaaaa", "GET", 200, false)
	tracker.RecordRequest("ghp_aaaaaaaaaa", "GET", 403, false)
	tracker.RecordRequest("ghp_bbbbbbbbbb", "POST", 0, true)
	tracker.RecordRemaining("ghp_aaaaaaaaaa", 1234)

	stats := tracker.Snapshot()
	assert.EqualValues(t, 3, stats.TotalRequests)
	assert.EqualValues(t, 2, stats.TotalFailures)

	a := stats.Tokens["ghp_****aaaa"]
	require.NotNil(t, a)
	assert.EqualValues(t, 2, a.Requests)
	assert.EqualValues(t, 1, a.Failures)
	assert.EqualValues(t, 1, a.StatusClasses["2xx"])
	assert.EqualValues(t, 1, a.StatusClasses["4xx"])
	assert.Equal(t, 1234, a.LastRemaining)

	b := stats.Tokens["ghp_****bbbb"]
	require.NotNil(t, b)
	assert.EqualValues(t, 1, b.TransportErrors)
}

func TestTrackerRecordsRotations(t *testing.T) {
	tracker := NewTracker(nil, time.Hour)

	tracker.RecordRotation("ghp_aaaaaaaaaa", "ghp_bbbbbbbbbb", "reactive")
	tracker.RecordRotation("ghp_aaaaaaaaaa", "ghp_cccccccccc", "proactive")

	stats := tracker.Snapshot()
	assert.EqualValues(t, 2, stats.Rotations)
	assert.EqualValues(t, 2, stats.Tokens["ghp_****aaaa"].RotationsAway)
	assert.EqualValues(t, 1, stats.Tokens["ghp_****bbbb"].RotationsTo)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	tracker := NewTracker(nil, time.Hour)
	tracker.RecordRequest("ghp_aaaaaaaaaa", "GET", 200, false)

	snap := tracker.Snapshot()
	snap.Tokens["ghp_****aaaa"].Requests = 999
	snap.Tokens["ghp_****aaaa"].StatusClasses["2xx"] = 999

	fresh := tracker.Snapshot()
	assert.EqualValues(t, 1, fresh.Tokens["ghp_****aaaa"].Requests)
	assert.EqualValues(t, 1, fresh.Tokens["ghp_****aaaa"].StatusClasses["2xx"])
}

func TestTrackerPersistsOnStop(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "usage.json")
	storage := NewFileStorage(path)

	tracker := NewTracker(storage, time.Hour)
	require.NoError(t, tracker.Start(ctx))
	tracker.RecordRequest("ghp_aaaaaaaaaa", "GET", 200, false)
	require.NoError(t, tracker.Stop(ctx))

	// a fresh tracker resumes from the snapshot
	reloaded := NewTracker(NewFileStorage(path), time.Hour)
	require.NoError(t, reloaded.Start(ctx))
	t.Cleanup(func() { _ = reloaded.Stop(ctx) })

	stats := reloaded.Snapshot()
	assert.EqualValues(t, 1, stats.TotalRequests)
}

func TestFileStorageLoadMissing(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "absent.json"))
	stats, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stats)
}
