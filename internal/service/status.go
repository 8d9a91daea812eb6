package service

import (
	"sync"
	"time"

	"github.com/MKhiriev/tune-keeper/models"
)

// StatusTracker is the process-wide observable sync state. Mutated only by
// the sync engine, read and subscribed to from arbitrary goroutines. Every
// mutation synchronously notifies all current subscribers with a full
// snapshot.
type StatusTracker struct {
	mu     sync.Mutex
	status models.SyncStatus

	nextID int
	subs   map[int]func(models.SyncStatus)
}

// NewStatusTracker returns a tracker in the idle zero state.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		subs: make(map[int]func(models.SyncStatus)),
	}
}

// StartSync marks the tracker running, clears the previous run's errors and
// records the operation label.
func (t *StatusTracker) StartSync(label string) {
	t.mutate(func(s *models.SyncStatus) {
		s.IsRunning = true
		s.CurrentOperation = label
		s.Errors = nil
	})
}

// EndSync returns the tracker to idle and stamps the completion time.
// Errors recorded during the run are kept until the next StartSync.
func (t *StatusTracker) EndSync() {
	t.mutate(func(s *models.SyncStatus) {
		s.IsRunning = false
		s.CurrentOperation = ""
		s.LastSyncCompletedAt = time.Now().UTC()
	})
}

// RecordError appends a message to the current run's error list without
// changing the run state.
func (t *StatusTracker) RecordError(message string) {
	t.mutate(func(s *models.SyncStatus) {
		s.Errors = append(s.Errors, message)
	})
}

// SetPendingEstimates refreshes the best-effort pending counters. Called
// once per run, not continuously.
func (t *StatusTracker) SetPendingEstimates(uploads, downloads int) {
	t.mutate(func(s *models.SyncStatus) {
		s.PendingUploads = uploads
		s.PendingDownloads = downloads
	})
}

// IsRunning reports whether a run is currently in flight.
func (t *StatusTracker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status.IsRunning
}

// Snapshot returns a copy of the current status. The error list is cloned so
// the caller can never observe a status mid-mutation.
func (t *StatusTracker) Snapshot() models.SyncStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneStatus(t.status)
}

// Subscribe registers fn for every future mutation and returns an
// unsubscribe handle. Unsubscribing during a notification is safe and does
// not skip other subscribers.
func (t *StatusTracker) Subscribe(fn func(models.SyncStatus)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.subs[id] = fn

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

func (t *StatusTracker) mutate(apply func(*models.SyncStatus)) {
	t.mu.Lock()
	apply(&t.status)
	snapshot := cloneStatus(t.status)
	callbacks := make([]func(models.SyncStatus), 0, len(t.subs))
	for _, fn := range t.subs {
		callbacks = append(callbacks, fn)
	}
	t.mu.Unlock()

	// outside the lock so a subscriber may unsubscribe from its callback
	for _, fn := range callbacks {
		fn(snapshot)
	}
}

func cloneStatus(s models.SyncStatus) models.SyncStatus {
	out := s
	if s.Errors != nil {
		out.Errors = make([]string, len(s.Errors))
		copy(out.Errors, s.Errors)
	}
	return out
}
