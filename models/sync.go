package models

import (
	"math"
	"time"
)

// SyncTrigger names what caused a sync run to start.
type SyncTrigger string

const (
	TriggerStartup   SyncTrigger = "startup"
	TriggerPeriodic  SyncTrigger = "periodic"
	TriggerLifecycle SyncTrigger = "lifecycle"
	TriggerUser      SyncTrigger = "user_action"
	TriggerManual    SyncTrigger = "manual"
	TriggerForced    SyncTrigger = "forced_full"
)

// ConflictContext selects the conflict-resolution policy for a download
// phase.
type ConflictContext string

const (
	// ContextStartup makes the remote side win wholesale; used when the app
	// launches or regains connectivity and the server is assumed
	// authoritative for steady state.
	ContextStartup ConflictContext = "startup"
	// ContextUserAction makes the local side win wholesale; used right after
	// the user mutated data so their intent is never silently discarded.
	ContextUserAction ConflictContext = "user_action"
	// ContextTimestamp picks the side with the later updated_at (created_at
	// when absent). Available to callers, never auto-selected.
	ContextTimestamp ConflictContext = "timestamp"
)

// SyncStatus is the process-wide observable sync state. Zero value is the
// valid initial state: idle, never completed, no errors.
type SyncStatus struct {
	IsRunning           bool
	CurrentOperation    string
	LastSyncCompletedAt time.Time
	PendingUploads      int
	PendingDownloads    int
	Errors              []string
}

// SyncRun describes one completed or in-flight execution of the sync
// algorithm. It is ephemeral and never persisted.
type SyncRun struct {
	Trigger             SyncTrigger
	StartedAt           time.Time
	OperationsAttempted int
	OperationsFailed    int
	Errors              []string
}

// SyncProgress is the aggregate local sync completion estimate.
type SyncProgress struct {
	TotalUnsynced      int `json:"total_unsynced"`
	TotalSynced        int `json:"total_synced"`
	ProgressPercentage int `json:"progress_percentage"`
}

// NewSyncProgress computes the percentage from the raw counts. An empty
// store counts as fully synced.
func NewSyncProgress(synced, unsynced int) SyncProgress {
	total := synced + unsynced
	pct := 100
	if total > 0 {
		pct = int(math.Round(float64(synced) / float64(total) * 100))
	}
	return SyncProgress{TotalUnsynced: unsynced, TotalSynced: synced, ProgressPercentage: pct}
}
