package service

import (
	"context"

	"github.com/MKhiriev/tune-keeper/models"
)

// SyncEngine owns the sync lifecycle: the periodic schedule, lifecycle and
// user triggers, and the per-kind upload and download phases.
type SyncEngine interface {
	// Start performs one immediate run, arms the periodic timer and
	// subscribes to app lifecycle events. Idempotent.
	Start(ctx context.Context)

	// Stop disarms the timer, unsubscribes from lifecycle events and waits
	// for any in-flight run to complete. Idempotent.
	Stop()

	// TriggerManualSync runs a user-action sync once, outside the periodic
	// cadence: the upload phase completes for every kind before any download
	// starts, and downloads resolve conflicts in favour of local data.
	// Returns ErrSyncInProgress when a run is already in flight.
	TriggerManualSync(ctx context.Context) error

	// ForceSyncAll runs a full upload-then-download pass in the startup
	// conflict context, even when nothing is pending. Additive: already
	// synced local data is reconciled, never wiped.
	// Returns ErrSyncInProgress when a run is already in flight.
	ForceSyncAll(ctx context.Context) error

	// GetStatus returns a snapshot of the current sync status.
	GetStatus() models.SyncStatus

	// GetUnsyncedCount counts local records of one kind still awaiting
	// upload.
	GetUnsyncedCount(ctx context.Context, kind models.EntityKind) (int, error)

	// GetSyncProgress aggregates synced and unsynced counts over all kinds
	// for the signed-in user.
	GetSyncProgress(ctx context.Context) (models.SyncProgress, error)

	// Subscribe registers a listener for status snapshots and returns an
	// unsubscribe handle.
	Subscribe(fn func(models.SyncStatus)) func()
}
