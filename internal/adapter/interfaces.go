// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"

	"github.com/MKhiriev/tune-keeper/models"
)

// QueryFilter narrows a remote table query.
type QueryFilter struct {
	// Limit bounds the number of returned rows. Zero means no limit.
	Limit int

	// NotDeleted filters out soft-deleted rows server-side.
	NotDeleted bool
}

// RemoteStore is the hosted backend the sync engine uploads to and downloads
// from. Implementations translate descriptor-driven records to the backend's
// wire format; the engine never sees remote column names or row ids.
type RemoteStore interface {
	// UpsertMany writes the records to the remote table, merging with
	// existing rows on the table's unique key. Used by kinds with
	// update-in-place semantics.
	UpsertMany(ctx context.Context, d models.EntityDescriptor, ownerID string, records []models.Record) error

	// InsertMany appends the records to the remote table without merging.
	// Used by append-only kinds.
	InsertMany(ctx context.Context, d models.EntityDescriptor, ownerID string, records []models.Record) error

	// QueryAll fetches the owner's rows from the remote table, translated to
	// local field names.
	QueryAll(ctx context.Context, d models.EntityDescriptor, ownerID string, filter QueryFilter) ([]models.RemoteRecord, error)
}
