package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/tune-keeper/models"
)

// Local tables mirror the remote column naming: payload columns use the
// remote snake_case names from the descriptor, framed by the bookkeeping
// columns below. Timestamps are stored as unix milliseconds.
const (
	columnID            = "id"
	columnOwnerID       = "owner_id"
	columnCreatedAt     = "created_at"
	columnUpdatedAt     = "updated_at"
	columnPendingUpload = "pending_upload"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// recordColumns returns the full select column list for a kind, in scan order.
func recordColumns(d models.EntityDescriptor) []string {
	cols := make([]string, 0, len(d.Fields)+5)
	cols = append(cols, columnID, columnOwnerID)
	for _, f := range d.Fields {
		cols = append(cols, f.Remote)
	}
	cols = append(cols, columnCreatedAt, columnUpdatedAt, columnPendingUpload)
	return cols
}

func selectRecords(d models.EntityDescriptor) sq.SelectBuilder {
	return builder.Select(recordColumns(d)...).From(d.LocalTable)
}

func buildFindPending(d models.EntityDescriptor, ownerID string) (string, []any, error) {
	return selectRecords(d).
		Where(sq.Eq{columnOwnerID: ownerID, columnPendingUpload: true}).
		OrderBy(columnCreatedAt + " ASC").
		ToSql()
}

func buildFindByOwnerAndKeys(d models.EntityDescriptor, ownerID string, keys map[string]models.Value) (string, []any, error) {
	query := selectRecords(d).Where(sq.Eq{columnOwnerID: ownerID})
	for _, keyField := range d.KeyFields {
		def, ok := d.Field(keyField)
		if !ok {
			return "", nil, ErrBuildingSQLQuery
		}
		query = query.Where(sq.Eq{def.Remote: sqlValue(keys[keyField])})
	}
	return query.Limit(1).ToSql()
}

func buildExistsWithinWindow(d models.EntityDescriptor, ownerID string, keys map[string]models.Value, field string, center time.Time, window time.Duration) (string, []any, error) {
	query := builder.Select("COUNT(*)").
		From(d.LocalTable).
		Where(sq.Eq{columnOwnerID: ownerID})

	for _, keyField := range d.KeyFields {
		def, ok := d.Field(keyField)
		if !ok {
			return "", nil, ErrBuildingSQLQuery
		}
		query = query.Where(sq.Eq{def.Remote: sqlValue(keys[keyField])})
	}

	if field != "" && window > 0 {
		def, ok := d.Field(field)
		if !ok {
			return "", nil, ErrBuildingSQLQuery
		}
		query = query.
			Where(sq.GtOrEq{def.Remote: center.Add(-window).UnixMilli()}).
			Where(sq.LtOrEq{def.Remote: center.Add(window).UnixMilli()})
	}

	return query.ToSql()
}

func buildInsert(d models.EntityDescriptor, record models.Record) (string, []any, error) {
	cols := make([]string, 0, len(d.Fields)+5)
	vals := make([]any, 0, len(d.Fields)+5)

	cols = append(cols, columnID, columnOwnerID)
	vals = append(vals, record.ID, record.OwnerID)

	for _, f := range d.Fields {
		cols = append(cols, f.Remote)
		vals = append(vals, sqlValue(record.Field(f.Local)))
	}

	cols = append(cols, columnCreatedAt, columnUpdatedAt, columnPendingUpload)
	vals = append(vals, record.CreatedAt.UnixMilli(), sqlTimestamp(record.UpdatedAt), record.PendingUpload)

	return builder.Insert(d.LocalTable).Columns(cols...).Values(vals...).ToSql()
}

func buildUpdate(d models.EntityDescriptor, record models.Record) (string, []any, error) {
	query := builder.Update(d.LocalTable)
	for _, f := range d.Fields {
		query = query.Set(f.Remote, sqlValue(record.Field(f.Local)))
	}
	return query.
		Set(columnUpdatedAt, sqlTimestamp(record.UpdatedAt)).
		Set(columnPendingUpload, record.PendingUpload).
		Where(sq.Eq{columnID: record.ID, columnOwnerID: record.OwnerID}).
		ToSql()
}

func buildMarkUploaded(d models.EntityDescriptor, ownerID string, ids []string) (string, []any, error) {
	return builder.Update(d.LocalTable).
		Set(columnPendingUpload, false).
		Where(sq.Eq{columnOwnerID: ownerID, columnID: ids}).
		ToSql()
}

func buildCount(d models.EntityDescriptor, ownerID string) (string, []any, error) {
	return builder.Select("COUNT(*)").
		From(d.LocalTable).
		Where(sq.Eq{columnOwnerID: ownerID}).
		ToSql()
}

func buildCountPending(d models.EntityDescriptor, ownerID string) (string, []any, error) {
	return builder.Select("COUNT(*)").
		From(d.LocalTable).
		Where(sq.Eq{columnOwnerID: ownerID, columnPendingUpload: true}).
		ToSql()
}

// sqlValue converts a payload value to its driver representation.
// Absent values map to NULL, times to unix milliseconds.
func sqlValue(v models.Value) any {
	if !v.Valid() {
		return nil
	}
	if v.Kind() == models.KindTime {
		return v.Time().UnixMilli()
	}
	return v.Any()
}

// sqlTimestamp converts a bookkeeping timestamp, mapping the zero time to
// NULL so append-only kinds carry no update time.
func sqlTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}
