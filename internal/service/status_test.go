package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/tune-keeper/models"
)

func TestStatusTracker_RunLifecycle(t *testing.T) {
	tracker := NewStatusTracker()

	initial := tracker.Snapshot()
	assert.False(t, initial.IsRunning)
	assert.True(t, initial.LastSyncCompletedAt.IsZero())
	assert.Empty(t, initial.Errors)

	tracker.StartSync("periodic")
	status := tracker.Snapshot()
	assert.True(t, status.IsRunning)
	assert.Equal(t, "periodic", status.CurrentOperation)

	tracker.EndSync()
	status = tracker.Snapshot()
	assert.False(t, status.IsRunning)
	assert.Empty(t, status.CurrentOperation)
	assert.False(t, status.LastSyncCompletedAt.IsZero())
}

func TestStatusTracker_ErrorsClearedOnNextRun(t *testing.T) {
	tracker := NewStatusTracker()

	tracker.StartSync("first")
	tracker.RecordError("upload favorites: boom")
	tracker.RecordError("download playlists: boom")
	tracker.EndSync()

	// errors survive until the next run starts
	assert.Len(t, tracker.Snapshot().Errors, 2)

	tracker.StartSync("second")
	assert.Empty(t, tracker.Snapshot().Errors)
}

func TestStatusTracker_SnapshotIsolation(t *testing.T) {
	tracker := NewStatusTracker()
	tracker.StartSync("run")
	tracker.RecordError("original")

	snapshot := tracker.Snapshot()
	snapshot.Errors[0] = "mutated"
	snapshot.Errors = append(snapshot.Errors, "extra")

	assert.Equal(t, []string{"original"}, tracker.Snapshot().Errors)
}

func TestStatusTracker_PendingEstimates(t *testing.T) {
	tracker := NewStatusTracker()

	tracker.SetPendingEstimates(4, 2)
	status := tracker.Snapshot()
	assert.Equal(t, 4, status.PendingUploads)
	assert.Equal(t, 2, status.PendingDownloads)
}

func TestStatusTracker_SubscribersGetFullSnapshots(t *testing.T) {
	tracker := NewStatusTracker()

	var seen []models.SyncStatus
	tracker.Subscribe(func(s models.SyncStatus) { seen = append(seen, s) })

	tracker.StartSync("run")
	tracker.RecordError("boom")
	tracker.EndSync()

	require.Len(t, seen, 3)
	assert.True(t, seen[0].IsRunning)
	assert.Equal(t, []string{"boom"}, seen[1].Errors)
	assert.False(t, seen[2].IsRunning)
}

func TestStatusTracker_UnsubscribeDuringNotification(t *testing.T) {
	tracker := NewStatusTracker()

	first := 0
	var unsubscribe func()
	unsubscribe = tracker.Subscribe(func(models.SyncStatus) {
		first++
		unsubscribe()
	})

	second := 0
	tracker.Subscribe(func(models.SyncStatus) { second++ })

	tracker.StartSync("run")
	tracker.EndSync()

	// the self-unsubscriber saw only the first mutation; the other
	// subscriber was not skipped
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestStatusTracker_IsRunning(t *testing.T) {
	tracker := NewStatusTracker()
	assert.False(t, tracker.IsRunning())

	tracker.StartSync("run")
	assert.True(t, tracker.IsRunning())

	tracker.EndSync()
	assert.False(t, tracker.IsRunning())
}
