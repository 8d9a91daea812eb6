package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/tune-keeper/internal/logger"
	"github.com/MKhiriev/tune-keeper/models"
)

func newTestResolver() *ConflictResolver {
	return NewConflictResolver(logger.Nop())
}

func localFavorite(title string, pending bool) models.Record {
	return models.Record{
		ID:      "rec-1",
		OwnerID: "u1",
		Fields: map[string]models.Value{
			"songId": models.String("s1"),
			"title":  models.String(title),
			"source": models.String("streaming"),
		},
		CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		PendingUpload: pending,
	}
}

func remoteFavorite(title string, updatedAt time.Time) models.RemoteRecord {
	return models.RemoteRecord{
		OwnerID: "u1",
		Fields: map[string]models.Value{
			"songId": models.String("s1"),
			"title":  models.String(title),
			"source": models.String("streaming"),
		},
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: updatedAt,
	}
}

// ── conflict detection ───────────────────────────────────────────────────────

func TestDetectConflict(t *testing.T) {
	local := localFavorite("Old", false)

	t.Run("differing title is a conflict", func(t *testing.T) {
		assert.True(t, detectConflict(local, remoteFavorite("New", time.Now())))
	})

	t.Run("equal detector fields is no conflict", func(t *testing.T) {
		assert.False(t, detectConflict(local, remoteFavorite("Old", time.Now())))
	})

	t.Run("both sides absent is no conflict", func(t *testing.T) {
		bare := models.Record{Fields: map[string]models.Value{"songId": models.String("s1")}}
		remote := models.RemoteRecord{Fields: map[string]models.Value{"songId": models.String("s1")}}
		assert.False(t, detectConflict(bare, remote))
	})

	t.Run("one side absent is a conflict", func(t *testing.T) {
		remote := remoteFavorite("Old", time.Now())
		delete(remote.Fields, "title")
		assert.True(t, detectConflict(local, remote))
	})

	t.Run("non-detector fields never conflict", func(t *testing.T) {
		remote := remoteFavorite("Old", time.Now())
		remote.Fields["artist"] = models.String("Someone Else")
		assert.False(t, detectConflict(local, remote))
	})
}

// ── startup context ──────────────────────────────────────────────────────────

func TestResolve_StartupRemoteWins(t *testing.T) {
	r := newTestResolver()
	local := localFavorite("Old", false)
	remote := remoteFavorite("New", time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC))

	resolved := r.Resolve(local, remote, models.ContextStartup)

	assert.Equal(t, "New", resolved.Field("title").Str())
	assert.False(t, resolved.PendingUpload)
	// local bookkeeping survives
	assert.Equal(t, "rec-1", resolved.ID)
	assert.Equal(t, local.CreatedAt, resolved.CreatedAt)
	assert.Equal(t, remote.UpdatedAt, resolved.UpdatedAt)
}

// ── user-action context ──────────────────────────────────────────────────────

func TestResolve_UserActionLocalWins(t *testing.T) {
	r := newTestResolver()
	local := localFavorite("Old", true)
	remote := remoteFavorite("New", time.Now())

	resolved := r.Resolve(local, remote, models.ContextUserAction)

	assert.Equal(t, "Old", resolved.Field("title").Str())
	// the pending flag is left as-is, not forced false
	assert.True(t, resolved.PendingUpload)
}

// ── timestamp context ────────────────────────────────────────────────────────

func TestResolve_TimestampLaterSideWins(t *testing.T) {
	r := newTestResolver()

	t.Run("local is later", func(t *testing.T) {
		local := localFavorite("Old", true)
		remote := remoteFavorite("New", local.UpdatedAt.Add(-time.Hour))

		resolved := r.Resolve(local, remote, models.ContextTimestamp)
		assert.Equal(t, "Old", resolved.Field("title").Str())
		assert.True(t, resolved.PendingUpload)
	})

	t.Run("remote is later", func(t *testing.T) {
		local := localFavorite("Old", true)
		remote := remoteFavorite("New", local.UpdatedAt.Add(time.Hour))

		resolved := r.Resolve(local, remote, models.ContextTimestamp)
		assert.Equal(t, "New", resolved.Field("title").Str())
		assert.False(t, resolved.PendingUpload)
	})

	t.Run("equal timestamps tie-break to remote", func(t *testing.T) {
		local := localFavorite("Old", true)
		remote := remoteFavorite("New", local.UpdatedAt)

		resolved := r.Resolve(local, remote, models.ContextTimestamp)
		assert.Equal(t, "New", resolved.Field("title").Str())
	})

	t.Run("falls back to created_at when updated_at absent", func(t *testing.T) {
		local := localFavorite("Old", true)
		local.UpdatedAt = time.Time{}
		remote := remoteFavorite("New", time.Time{})
		remote.CreatedAt = local.CreatedAt.Add(time.Hour)

		resolved := r.Resolve(local, remote, models.ContextTimestamp)
		assert.Equal(t, "New", resolved.Field("title").Str())
	})
}

// ── non-conflicting refresh ──────────────────────────────────────────────────

func TestResolve_NoConflictTakesRemoteRefresh(t *testing.T) {
	r := newTestResolver()
	local := localFavorite("Same", false)
	remote := remoteFavorite("Same", time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC))
	remote.Fields["artist"] = models.String("Queen")

	resolved := r.Resolve(local, remote, models.ContextUserAction)

	assert.Equal(t, "Queen", resolved.Field("artist").Str())
	assert.False(t, resolved.PendingUpload)
}

// ── explicit presence during application ─────────────────────────────────────

func TestApplyFields_PresenceNotTruthiness(t *testing.T) {
	base := map[string]models.Value{
		"autoPlay": models.Bool(true),
		"theme":    models.String("dark"),
		"count":    models.Int(5),
	}
	overlay := map[string]models.Value{
		"autoPlay": models.Bool(false),
		"theme":    models.String(""),
		"count":    models.Int(0),
		"language": models.Null(models.KindString),
	}

	out := applyFields(base, overlay)

	// falsy values are real values and must overwrite
	require.True(t, out["autoPlay"].Valid())
	assert.False(t, out["autoPlay"].Bool())
	require.True(t, out["theme"].Valid())
	assert.Equal(t, "", out["theme"].Str())
	assert.Equal(t, int64(0), out["count"].Int())

	// an absent overlay value never clobbers the base
	_, present := out["language"]
	assert.False(t, present)
}

func TestResolve_RemoteAbsentFieldKeepsLocalValue(t *testing.T) {
	r := newTestResolver()
	local := localFavorite("Old", false)
	local.Fields["artist"] = models.String("Queen")
	remote := remoteFavorite("New", time.Now())
	// remote carries no artist column at all

	resolved := r.Resolve(local, remote, models.ContextStartup)

	assert.Equal(t, "New", resolved.Field("title").Str())
	assert.Equal(t, "Queen", resolved.Field("artist").Str())
}

// ── metadata merge ───────────────────────────────────────────────────────────

func TestMerge(t *testing.T) {
	r := newTestResolver()
	local := localFavorite("Old", true)
	remote := remoteFavorite("New", local.UpdatedAt.Add(time.Hour))

	merged := r.Merge(local, remote)

	// payload comes from the remote side
	assert.Equal(t, "New", merged.Field("title").Str())
	// local bookkeeping survives, including the pending flag
	assert.Equal(t, "rec-1", merged.ID)
	assert.True(t, merged.PendingUpload)
	assert.Equal(t, local.CreatedAt, merged.CreatedAt)
	// the later of the two update times wins
	assert.Equal(t, remote.UpdatedAt, merged.UpdatedAt)

	t.Run("local update time kept when later", func(t *testing.T) {
		older := remoteFavorite("New", local.UpdatedAt.Add(-time.Hour))
		merged := r.Merge(local, older)
		assert.Equal(t, local.UpdatedAt, merged.UpdatedAt)
	})
}
