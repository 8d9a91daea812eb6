package service

import (
	"github.com/MKhiriev/tune-keeper/internal/logger"
	"github.com/MKhiriev/tune-keeper/models"
)

// conflictDetectorFields are the identity-adjacent payload fields whose
// disagreement counts as a conflict. Other field differences are treated as
// a non-conflicting refresh.
var conflictDetectorFields = []string{"name", "content", "description", "title"}

// ConflictResolver decides, per record, which side wins when local and
// remote disagree. Pure: no storage or network access.
type ConflictResolver struct {
	logger *logger.Logger
}

func NewConflictResolver(logger *logger.Logger) *ConflictResolver {
	return &ConflictResolver{logger: logger}
}

// Resolve returns the record that should be stored locally after comparing
// local and remote under the given context.
//
// Local bookkeeping (id, owner, creation time) always survives from the
// local side. When the remote side wins the result is marked as synced; when
// the local side wins the pending flag is left untouched so unuploaded
// mutations are not forgotten.
func (r *ConflictResolver) Resolve(local models.Record, remote models.RemoteRecord, context models.ConflictContext) models.Record {
	if !detectConflict(local, remote) {
		// no detector field differs; take the remote values as a refresh
		return r.remoteWins(local, remote)
	}

	switch context {
	case models.ContextUserAction:
		return local
	case models.ContextTimestamp:
		localTS := local.EffectiveTimestamp()
		remoteTS := remote.EffectiveTimestamp()
		if localTS.After(remoteTS) {
			return local
		}
		if localTS.Equal(remoteTS) {
			// deterministic tie-break: remote wins
			r.logger.Warn().
				Str("func", "ConflictResolver.Resolve").
				Str("record_id", local.ID).
				Time("timestamp", localTS).
				Msg("conflict timestamps are equal, remote wins")
		}
		return r.remoteWins(local, remote)
	default:
		// ContextStartup: server is authoritative
		return r.remoteWins(local, remote)
	}
}

// Merge overlays local bookkeeping on top of the remote record and keeps the
// later of the two update times. Metadata merge only: payload fields come
// from the remote side wholesale.
func (r *ConflictResolver) Merge(local models.Record, remote models.RemoteRecord) models.Record {
	merged := models.Record{
		ID:            local.ID,
		OwnerID:       local.OwnerID,
		Fields:        applyFields(local.Fields, remote.Fields),
		CreatedAt:     local.CreatedAt,
		UpdatedAt:     local.UpdatedAt,
		PendingUpload: local.PendingUpload,
	}
	if remote.UpdatedAt.After(merged.UpdatedAt) {
		merged.UpdatedAt = remote.UpdatedAt
	}
	return merged
}

func (r *ConflictResolver) remoteWins(local models.Record, remote models.RemoteRecord) models.Record {
	result := models.Record{
		ID:            local.ID,
		OwnerID:       local.OwnerID,
		Fields:        applyFields(local.Fields, remote.Fields),
		CreatedAt:     local.CreatedAt,
		UpdatedAt:     remote.EffectiveTimestamp(),
		PendingUpload: false,
	}
	return result
}

// detectConflict reports whether any detector field differs between the two
// sides. Comparison is presence-aware: false, zero and the empty string are
// real values, only an absent value compares equal to another absent value.
func detectConflict(local models.Record, remote models.RemoteRecord) bool {
	for _, field := range conflictDetectorFields {
		localValue := local.Field(field)
		remoteValue := remote.Field(field)
		if !localValue.Valid() && !remoteValue.Valid() {
			continue
		}
		if !localValue.Equal(remoteValue) {
			return true
		}
	}
	return false
}

// applyFields overlays present values from overlay onto base. Absence is
// tested explicitly via Value.Valid, never by comparing against zero values,
// so a remote false or empty string overwrites the local value while a truly
// missing remote column leaves the local value in place.
func applyFields(base, overlay map[string]models.Value) map[string]models.Value {
	out := make(map[string]models.Value, len(base)+len(overlay))
	for name, value := range base {
		out[name] = value
	}
	for name, value := range overlay {
		if value.Valid() {
			out[name] = value
		}
	}
	return out
}
