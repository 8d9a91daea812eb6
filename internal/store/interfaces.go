// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/tune-keeper/models"
)

// RecordStore is the local persistence layer the sync engine reads and writes.
// All methods take the entity descriptor of the kind they operate on; the
// store derives table and column names from it and holds no per-kind code.
type RecordStore interface {
	// FindPending returns every record of the kind owned by ownerID that
	// still carries unuploaded mutations, ordered by creation time.
	FindPending(ctx context.Context, d models.EntityDescriptor, ownerID string) ([]models.Record, error)

	// FindByOwnerAndKeys locates the single record matching the owner and
	// the natural key values. For kinds with no key fields the owner alone
	// identifies the record. Returns ErrRecordNotFound when no row matches.
	FindByOwnerAndKeys(ctx context.Context, d models.EntityDescriptor, ownerID string, keys map[string]models.Value) (*models.Record, error)

	// ExistsWithinWindow reports whether a record matching the owner and
	// natural key exists whose field timestamp lies within the given window
	// around center. A zero window degrades to an exact key match.
	ExistsWithinWindow(ctx context.Context, d models.EntityDescriptor, ownerID string, keys map[string]models.Value, field string, center time.Time, window time.Duration) (bool, error)

	// Create persists a new record, assigning its ID and creation time when
	// unset, and returns the stored copy.
	Create(ctx context.Context, d models.EntityDescriptor, record models.Record) (models.Record, error)

	// Update rewrites the payload fields, update time and pending flag of an
	// existing record identified by record.ID.
	Update(ctx context.Context, d models.EntityDescriptor, record models.Record) error

	// MarkUploaded clears the pending flag on the identified records of the
	// kind owned by ownerID, in a single statement. Records that turned
	// pending after ids was collected are left untouched.
	MarkUploaded(ctx context.Context, d models.EntityDescriptor, ownerID string, ids []string) error

	// Count returns the total number of records of the kind owned by ownerID.
	Count(ctx context.Context, d models.EntityDescriptor, ownerID string) (int, error)

	// CountPending returns the number of records of the kind owned by ownerID
	// that still await upload.
	CountPending(ctx context.Context, d models.EntityDescriptor, ownerID string) (int, error)

	// Close releases the underlying storage resources.
	Close() error
}
