package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MKhiriev/tune-keeper/models"
)

// MemoryRecordStore is a map-backed [RecordStore] used in tests and first-run
// scenarios where no database file exists yet. All records live in process
// memory, guarded by a single mutex.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[models.EntityKind][]models.Record

	// Fail injects the given error into every operation on the kind.
	// Set by tests to exercise per-kind failure handling.
	Fail map[models.EntityKind]error
}

// NewMemoryRecordStore returns an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		records: make(map[models.EntityKind][]models.Record),
	}
}

func (m *MemoryRecordStore) failure(kind models.EntityKind) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail[kind]
}

func (m *MemoryRecordStore) FindPending(_ context.Context, d models.EntityDescriptor, ownerID string) ([]models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure(d.Kind); err != nil {
		return nil, err
	}

	pending := make([]models.Record, 0)
	for _, record := range m.records[d.Kind] {
		if record.OwnerID == ownerID && record.PendingUpload {
			pending = append(pending, cloneRecord(record))
		}
	}
	return pending, nil
}

func (m *MemoryRecordStore) FindByOwnerAndKeys(_ context.Context, d models.EntityDescriptor, ownerID string, keys map[string]models.Value) (*models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure(d.Kind); err != nil {
		return nil, err
	}

	for _, record := range m.records[d.Kind] {
		if record.OwnerID != ownerID {
			continue
		}
		if matchesKeys(d, record, keys) {
			found := cloneRecord(record)
			return &found, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *MemoryRecordStore) ExistsWithinWindow(_ context.Context, d models.EntityDescriptor, ownerID string, keys map[string]models.Value, field string, center time.Time, window time.Duration) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure(d.Kind); err != nil {
		return false, err
	}

	for _, record := range m.records[d.Kind] {
		if record.OwnerID != ownerID || !matchesKeys(d, record, keys) {
			continue
		}
		if field == "" || window <= 0 {
			return true, nil
		}
		ts := record.Field(field)
		if !ts.Valid() {
			continue
		}
		diff := ts.Time().Sub(center)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRecordStore) Create(_ context.Context, d models.EntityDescriptor, record models.Record) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure(d.Kind); err != nil {
		return models.Record{}, err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	m.records[d.Kind] = append(m.records[d.Kind], cloneRecord(record))
	return record, nil
}

func (m *MemoryRecordStore) Update(_ context.Context, d models.EntityDescriptor, record models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure(d.Kind); err != nil {
		return err
	}

	for i, existing := range m.records[d.Kind] {
		if existing.ID == record.ID && existing.OwnerID == record.OwnerID {
			m.records[d.Kind][i] = cloneRecord(record)
			return nil
		}
	}
	return ErrRecordNotFound
}

func (m *MemoryRecordStore) MarkUploaded(_ context.Context, d models.EntityDescriptor, ownerID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure(d.Kind); err != nil {
		return err
	}

	uploaded := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		uploaded[id] = struct{}{}
	}

	for i, record := range m.records[d.Kind] {
		if record.OwnerID != ownerID {
			continue
		}
		if _, ok := uploaded[record.ID]; ok {
			record.PendingUpload = false
			m.records[d.Kind][i] = record
		}
	}
	return nil
}

func (m *MemoryRecordStore) Count(_ context.Context, d models.EntityDescriptor, ownerID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure(d.Kind); err != nil {
		return 0, err
	}

	count := 0
	for _, record := range m.records[d.Kind] {
		if record.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRecordStore) CountPending(_ context.Context, d models.EntityDescriptor, ownerID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure(d.Kind); err != nil {
		return 0, err
	}

	count := 0
	for _, record := range m.records[d.Kind] {
		if record.OwnerID == ownerID && record.PendingUpload {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRecordStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[models.EntityKind][]models.Record)
	return nil
}

// All returns copies of every stored record of the kind, in insertion order.
// Test helper.
func (m *MemoryRecordStore) All(kind models.EntityKind) []models.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Record, 0, len(m.records[kind]))
	for _, record := range m.records[kind] {
		out = append(out, cloneRecord(record))
	}
	return out
}

func matchesKeys(d models.EntityDescriptor, record models.Record, keys map[string]models.Value) bool {
	for _, keyField := range d.KeyFields {
		if !record.Field(keyField).Equal(keys[keyField]) {
			return false
		}
	}
	return true
}

func cloneRecord(record models.Record) models.Record {
	record.Fields = record.CloneFields()
	return record
}
