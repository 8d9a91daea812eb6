package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/tune-keeper/internal/adapter"
	"github.com/MKhiriev/tune-keeper/internal/auth"
	"github.com/MKhiriev/tune-keeper/internal/config"
	"github.com/MKhiriev/tune-keeper/internal/lifecycle"
	"github.com/MKhiriev/tune-keeper/internal/logger"
	"github.com/MKhiriev/tune-keeper/internal/store"
	"github.com/MKhiriev/tune-keeper/models"
)

const defaultSyncInterval = 5 * time.Minute

type syncEngine struct {
	records  store.RecordStore
	remote   adapter.RemoteStore
	identity auth.IdentityProvider
	events   *lifecycle.Notifier

	resolver *ConflictResolver
	status   *StatusTracker

	descriptors []models.EntityDescriptor
	interval    time.Duration
	logger      *logger.Logger

	// inFlight guarantees at most one run at a time; triggers arriving
	// while a run is active are dropped, not queued.
	inFlight atomic.Bool

	mu          sync.Mutex
	started     bool
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewSyncEngine wires a [SyncEngine] over the given collaborators. The
// engine is idle until Start is called.
func NewSyncEngine(
	records store.RecordStore,
	remote adapter.RemoteStore,
	identity auth.IdentityProvider,
	events *lifecycle.Notifier,
	workersCfg config.Workers,
	log *logger.Logger,
) SyncEngine {
	interval := workersCfg.SyncInterval
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	return &syncEngine{
		records:     records,
		remote:      remote,
		identity:    identity,
		events:      events,
		resolver:    NewConflictResolver(log),
		status:      NewStatusTracker(),
		descriptors: models.Descriptors(),
		interval:    interval,
		logger:      log,
	}
}

// Start implements [SyncEngine]. It performs one immediate run, then arms
// the periodic ticker and subscribes to app lifecycle events. Calling Start
// on a started engine is a no-op.
func (e *syncEngine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}

	engineCtx, cancel := context.WithCancel(ctx)
	e.started = true
	e.cancel = cancel
	e.unsubscribe = e.events.Subscribe(func(event lifecycle.Event) {
		e.spawnRun(engineCtx, models.TriggerLifecycle, string(event))
	})
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()

		e.performSync(engineCtx, models.TriggerStartup, "startup")

		t := time.NewTicker(e.interval)
		defer t.Stop()

		for {
			select {
			case <-engineCtx.Done():
				return
			case <-t.C:
				// the ticker re-fires regardless of run duration; the
				// in-flight guard inside performSync skips overlapping runs
				e.performSync(engineCtx, models.TriggerPeriodic, "periodic")
			}
		}
	}()
}

// Stop implements [SyncEngine]. New runs are prevented immediately; a run
// already in flight completes to its natural end before Stop returns.
func (e *syncEngine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	cancel := e.cancel
	unsubscribe := e.unsubscribe
	e.cancel = nil
	e.unsubscribe = nil
	e.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
}

// spawnRun launches a tracked background run unless the engine is stopped.
func (e *syncEngine) spawnRun(ctx context.Context, trigger models.SyncTrigger, label string) {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		e.performSync(ctx, trigger, label)
	}()
}

// performSync is the scheduled-run entry point: startup conflict context,
// kinds fanned out concurrently within parent-before-child stages. Errors
// are recorded in the status tracker and never returned.
func (e *syncEngine) performSync(ctx context.Context, trigger models.SyncTrigger, label string) {
	if !e.inFlight.CompareAndSwap(false, true) {
		e.logger.Debug().
			Str("func", "syncEngine.performSync").
			Str("trigger", string(trigger)).
			Msg("sync already in flight, trigger dropped")
		return
	}
	defer e.inFlight.Store(false)

	_ = e.run(ctx, trigger, label, models.ContextStartup, false)
}

// TriggerManualSync implements [SyncEngine].
func (e *syncEngine) TriggerManualSync(ctx context.Context) error {
	return e.manualRun(ctx, models.TriggerManual, "manual sync", models.ContextUserAction)
}

// ForceSyncAll implements [SyncEngine].
func (e *syncEngine) ForceSyncAll(ctx context.Context) error {
	return e.manualRun(ctx, models.TriggerForced, "full resync", models.ContextStartup)
}

func (e *syncEngine) manualRun(ctx context.Context, trigger models.SyncTrigger, label string, conflictCtx models.ConflictContext) error {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer e.inFlight.Store(false)

	// user-initiated runs complete every upload before any download so the
	// user's own edits are durable before remote data can touch local state
	return e.run(ctx, trigger, label, conflictCtx, true)
}

// run executes one full sync pass. Caller holds the in-flight guard.
// uploadsFirst selects the user-action variant: all upload phases complete
// before any download phase starts.
func (e *syncEngine) run(ctx context.Context, trigger models.SyncTrigger, label string, conflictCtx models.ConflictContext, uploadsFirst bool) error {
	log := e.logger

	e.status.StartSync(label)
	defer e.status.EndSync()

	identity, err := e.identity.CurrentIdentity(ctx)
	if err != nil {
		e.status.RecordError(fmt.Sprintf("resolve identity: %v", err))
		log.Err(err).Str("func", "syncEngine.run").Msg("failed to resolve identity")
		return err
	}
	if identity == nil {
		// signed out: expected no-op, not an error
		log.Debug().Str("func", "syncEngine.run").Str("trigger", string(trigger)).Msg("no signed-in user, skipping run")
		return nil
	}

	e.refreshEstimates(ctx, identity.UserID)

	// record is called from concurrent per-kind goroutines
	var (
		errsMu  sync.Mutex
		runErrs []error
	)
	record := func(err error) {
		e.status.RecordError(err.Error())
		errsMu.Lock()
		runErrs = append(runErrs, err)
		errsMu.Unlock()
	}

	stages := stageDescriptors(e.descriptors)

	if uploadsFirst {
		e.forEachKind(stages, func(d models.EntityDescriptor) {
			if err := e.uploadKind(ctx, d, identity.UserID); err != nil {
				record(err)
			}
		})
		e.forEachKind(stages, func(d models.EntityDescriptor) {
			if err := e.downloadKind(ctx, d, identity.UserID, conflictCtx); err != nil {
				record(err)
			}
		})
	} else {
		e.forEachKind(stages, func(d models.EntityDescriptor) {
			if err := e.uploadKind(ctx, d, identity.UserID); err != nil {
				record(err)
			}
			if err := e.downloadKind(ctx, d, identity.UserID, conflictCtx); err != nil {
				record(err)
			}
		})
	}

	log.Info().
		Str("func", "syncEngine.run").
		Str("trigger", string(trigger)).
		Int("errors", len(runErrs)).
		Msg("sync run finished")

	return errors.Join(runErrs...)
}

// forEachKind fans fn out over the descriptors stage by stage: kinds within
// a stage run concurrently, a stage starts only after its parents' stage has
// fully finished. fn must do its own error recording; one kind's failure
// never aborts the others.
func (e *syncEngine) forEachKind(stages [][]models.EntityDescriptor, fn func(models.EntityDescriptor)) {
	for _, stage := range stages {
		var wg sync.WaitGroup
		for _, d := range stage {
			wg.Add(1)
			go func(d models.EntityDescriptor) {
				defer wg.Done()
				fn(d)
			}(d)
		}
		wg.Wait()
	}
}

// uploadKind pushes every pending local record of the kind to the remote,
// then clears the pending flags of exactly those records in one statement.
// A record turning pending while the upload is in flight keeps its flag.
// Failure leaves all records pending; the phase is retried wholesale on the
// next run.
func (e *syncEngine) uploadKind(ctx context.Context, d models.EntityDescriptor, ownerID string) error {
	pending, err := e.records.FindPending(ctx, d, ownerID)
	if err != nil {
		return fmt.Errorf("upload %s: %w", d.Kind, err)
	}
	if len(pending) == 0 {
		return nil
	}

	if d.AppendOnly {
		err = e.remote.InsertMany(ctx, d, ownerID, pending)
	} else {
		err = e.remote.UpsertMany(ctx, d, ownerID, pending)
	}
	if err != nil {
		return fmt.Errorf("upload %s: %w", d.Kind, err)
	}

	ids := make([]string, len(pending))
	for i, record := range pending {
		ids[i] = record.ID
	}
	if err := e.records.MarkUploaded(ctx, d, ownerID, ids); err != nil {
		return fmt.Errorf("upload %s: clear pending flags: %w", d.Kind, err)
	}

	e.logger.Debug().
		Str("func", "syncEngine.uploadKind").
		Str("kind", string(d.Kind)).
		Int("records", len(pending)).
		Msg("uploaded pending records")

	return nil
}

// downloadKind pulls the owner's remote records of the kind and reconciles
// them into the local store: counterparts go through conflict resolution,
// new records are inserted as already synced, append-only kinds dedupe
// instead of resolving.
func (e *syncEngine) downloadKind(ctx context.Context, d models.EntityDescriptor, ownerID string, conflictCtx models.ConflictContext) error {
	filter := adapter.QueryFilter{
		Limit:      d.DownloadLimit,
		NotDeleted: d.SkipDeleted,
	}

	remoteRecords, err := e.remote.QueryAll(ctx, d, ownerID, filter)
	if err != nil {
		return fmt.Errorf("download %s: %w", d.Kind, err)
	}

	for _, remote := range remoteRecords {
		if d.AppendOnly {
			if err := e.absorbAppendOnly(ctx, d, ownerID, remote); err != nil {
				return fmt.Errorf("download %s: %w", d.Kind, err)
			}
			continue
		}
		if err := e.reconcile(ctx, d, ownerID, remote, conflictCtx); err != nil {
			return fmt.Errorf("download %s: %w", d.Kind, err)
		}
	}

	return nil
}

// reconcile applies one remote record of an upsertable kind to the local
// store.
func (e *syncEngine) reconcile(ctx context.Context, d models.EntityDescriptor, ownerID string, remote models.RemoteRecord, conflictCtx models.ConflictContext) error {
	keys := keyValues(d, remote)

	local, err := e.records.FindByOwnerAndKeys(ctx, d, ownerID, keys)
	if errors.Is(err, store.ErrRecordNotFound) {
		_, createErr := e.records.Create(ctx, d, newLocalFromRemote(d, ownerID, remote))
		return createErr
	}
	if err != nil {
		return err
	}

	resolved := e.resolver.Resolve(*local, remote, conflictCtx)
	return e.records.Update(ctx, d, resolved)
}

// absorbAppendOnly inserts a remote append-only entry unless a local entry
// with the same natural key already exists within the dedupe window.
func (e *syncEngine) absorbAppendOnly(ctx context.Context, d models.EntityDescriptor, ownerID string, remote models.RemoteRecord) error {
	keys := keyValues(d, remote)

	center := remote.CreatedAt
	if d.DedupeField != "" {
		if ts := remote.Field(d.DedupeField); ts.Valid() {
			center = ts.Time()
		}
	}

	exists, err := e.records.ExistsWithinWindow(ctx, d, ownerID, keys, d.DedupeField, center, d.DedupeWindow)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = e.records.Create(ctx, d, newLocalFromRemote(d, ownerID, remote))
	return err
}

// GetStatus implements [SyncEngine].
func (e *syncEngine) GetStatus() models.SyncStatus {
	return e.status.Snapshot()
}

// Subscribe implements [SyncEngine].
func (e *syncEngine) Subscribe(fn func(models.SyncStatus)) func() {
	return e.status.Subscribe(fn)
}

// GetUnsyncedCount implements [SyncEngine]. Returns zero when signed out.
func (e *syncEngine) GetUnsyncedCount(ctx context.Context, kind models.EntityKind) (int, error) {
	identity, err := e.identity.CurrentIdentity(ctx)
	if err != nil {
		return 0, err
	}
	if identity == nil {
		return 0, nil
	}

	d, ok := models.DescriptorFor(kind)
	if !ok {
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}

	return e.records.CountPending(ctx, d, identity.UserID)
}

// GetSyncProgress implements [SyncEngine]. An empty store (or a signed-out
// user) reports as fully synced.
func (e *syncEngine) GetSyncProgress(ctx context.Context) (models.SyncProgress, error) {
	identity, err := e.identity.CurrentIdentity(ctx)
	if err != nil {
		return models.SyncProgress{}, err
	}
	if identity == nil {
		return models.NewSyncProgress(0, 0), nil
	}

	totalSynced, totalUnsynced := 0, 0
	for _, d := range e.descriptors {
		total, err := e.records.Count(ctx, d, identity.UserID)
		if err != nil {
			return models.SyncProgress{}, fmt.Errorf("count %s: %w", d.Kind, err)
		}
		pending, err := e.records.CountPending(ctx, d, identity.UserID)
		if err != nil {
			return models.SyncProgress{}, fmt.Errorf("count pending %s: %w", d.Kind, err)
		}
		totalSynced += total - pending
		totalUnsynced += pending
	}

	return models.NewSyncProgress(totalSynced, totalUnsynced), nil
}

// refreshEstimates recomputes the best-effort pending counters shown in the
// status. Count failures are logged, not recorded as run errors.
func (e *syncEngine) refreshEstimates(ctx context.Context, ownerID string) {
	uploads := 0
	for _, d := range e.descriptors {
		count, err := e.records.CountPending(ctx, d, ownerID)
		if err != nil {
			e.logger.Warn().Err(err).
				Str("func", "syncEngine.refreshEstimates").
				Str("kind", string(d.Kind)).
				Msg("failed to count pending records")
			continue
		}
		uploads += count
	}

	// downloads are unknowable without querying the remote; the counter is
	// a display estimate only and resets once the run completes
	e.status.SetPendingEstimates(uploads, 0)
}

// stageDescriptors groups descriptors into dependency stages: a kind is
// placed after the stage containing its parent, everything else lands in the
// first stage.
func stageDescriptors(descriptors []models.EntityDescriptor) [][]models.EntityDescriptor {
	placed := make(map[models.EntityKind]int, len(descriptors))
	var stages [][]models.EntityDescriptor

	remaining := make([]models.EntityDescriptor, len(descriptors))
	copy(remaining, descriptors)

	for len(remaining) > 0 {
		var stage []models.EntityDescriptor
		var next []models.EntityDescriptor

		for _, d := range remaining {
			if d.Parent == "" {
				stage = append(stage, d)
				continue
			}
			if _, ok := placed[d.Parent]; ok {
				stage = append(stage, d)
				continue
			}
			next = append(next, d)
		}

		if len(stage) == 0 {
			// orphaned parent reference; run the leftovers rather than loop
			stage = next
			next = nil
		}

		for _, d := range stage {
			placed[d.Kind] = len(stages)
		}
		stages = append(stages, stage)
		remaining = next
	}

	return stages
}

// keyValues extracts the natural-key values of a remote record, keyed by
// local field name.
func keyValues(d models.EntityDescriptor, remote models.RemoteRecord) map[string]models.Value {
	keys := make(map[string]models.Value, len(d.KeyFields))
	for _, field := range d.KeyFields {
		keys[field] = remote.Field(field)
	}
	return keys
}

// newLocalFromRemote builds the local insert-as-synced copy of a remote
// record.
func newLocalFromRemote(d models.EntityDescriptor, ownerID string, remote models.RemoteRecord) models.Record {
	record := models.Record{
		OwnerID:       ownerID,
		Fields:        make(map[string]models.Value, len(remote.Fields)),
		CreatedAt:     remote.CreatedAt,
		PendingUpload: false,
	}
	for name, value := range remote.Fields {
		record.Fields[name] = value
	}
	if d.HasUpdatedAt {
		record.UpdatedAt = remote.UpdatedAt
	}
	return record
}
