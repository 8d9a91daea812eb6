package adapter

import (
	"fmt"
	"time"

	"github.com/MKhiriev/tune-keeper/models"
)

// Remote rows are flat JSON objects keyed by the descriptor's remote column
// names, framed by the ownership and timestamp columns below. Timestamps on
// the wire are RFC 3339 strings.
const (
	remoteColumnOwner     = "user_id"
	remoteColumnCreatedAt = "created_at"
	remoteColumnUpdatedAt = "updated_at"
)

// encodeRecord translates a local record into its remote row representation.
// Absent payload values are sent as explicit nulls so an upsert clears stale
// remote data instead of silently keeping it.
func encodeRecord(d models.EntityDescriptor, ownerID string, record models.Record) map[string]any {
	row := make(map[string]any, len(d.Fields)+3)
	row[remoteColumnOwner] = ownerID

	for _, f := range d.Fields {
		row[f.Remote] = wireValue(record.Field(f.Local))
	}

	if !record.CreatedAt.IsZero() {
		row[remoteColumnCreatedAt] = record.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if d.HasUpdatedAt && !record.UpdatedAt.IsZero() {
		row[remoteColumnUpdatedAt] = record.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	return row
}

func encodeRecords(d models.EntityDescriptor, ownerID string, records []models.Record) []map[string]any {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		rows = append(rows, encodeRecord(d, ownerID, record))
	}
	return rows
}

// decodeRow translates one remote row into a [models.RemoteRecord] with local
// field names. Null and missing columns become absent values. A column whose
// JSON type contradicts the descriptor is an error: silently dropping it
// would later read as a deliberate deletion during conflict resolution.
func decodeRow(d models.EntityDescriptor, row map[string]any) (models.RemoteRecord, error) {
	record := models.RemoteRecord{
		Fields: make(map[string]models.Value, len(d.Fields)),
	}

	if owner, ok := row[remoteColumnOwner].(string); ok {
		record.OwnerID = owner
	}

	for _, f := range d.Fields {
		raw, present := row[f.Remote]
		if !present || raw == nil {
			continue
		}
		value, err := parseWireValue(f.Kind, raw)
		if err != nil {
			return models.RemoteRecord{}, fmt.Errorf("%s: column %q: %w", d.Kind, f.Remote, err)
		}
		record.Fields[f.Local] = value
	}

	if ts, err := parseWireTime(row[remoteColumnCreatedAt]); err == nil {
		record.CreatedAt = ts
	}
	if ts, err := parseWireTime(row[remoteColumnUpdatedAt]); err == nil {
		record.UpdatedAt = ts
	}

	return record, nil
}

func decodeRows(d models.EntityDescriptor, rows []map[string]any) ([]models.RemoteRecord, error) {
	records := make([]models.RemoteRecord, 0, len(rows))
	for _, row := range rows {
		record, err := decodeRow(d, row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func wireValue(v models.Value) any {
	if !v.Valid() {
		return nil
	}
	if v.Kind() == models.KindTime {
		return v.Time().UTC().Format(time.RFC3339Nano)
	}
	return v.Any()
}

func parseWireValue(kind models.FieldKind, raw any) (models.Value, error) {
	switch kind {
	case models.KindString:
		s, ok := raw.(string)
		if !ok {
			return models.Value{}, fmt.Errorf("expected string, got %T", raw)
		}
		return models.String(s), nil
	case models.KindInt:
		f, ok := raw.(float64)
		if !ok {
			return models.Value{}, fmt.Errorf("expected number, got %T", raw)
		}
		return models.Int(int64(f)), nil
	case models.KindFloat:
		f, ok := raw.(float64)
		if !ok {
			return models.Value{}, fmt.Errorf("expected number, got %T", raw)
		}
		return models.Float(f), nil
	case models.KindBool:
		b, ok := raw.(bool)
		if !ok {
			return models.Value{}, fmt.Errorf("expected bool, got %T", raw)
		}
		return models.Bool(b), nil
	case models.KindTime:
		ts, err := parseWireTime(raw)
		if err != nil {
			return models.Value{}, err
		}
		return models.Time(ts), nil
	}
	return models.Value{}, fmt.Errorf("unknown field kind %d", kind)
}

func parseWireTime(raw any) (time.Time, error) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("expected timestamp string, got %T", raw)
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// some backends drop the timezone designator
		ts, err = time.Parse("2006-01-02T15:04:05.999999999", s)
		if err != nil {
			return time.Time{}, err
		}
		ts = ts.UTC()
	}
	return ts.UTC(), nil
}
