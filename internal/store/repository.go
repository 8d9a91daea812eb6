package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MKhiriev/tune-keeper/internal/logger"
	"github.com/MKhiriev/tune-keeper/models"
)

// recordRepository is the SQLite-backed implementation of [RecordStore]. One
// instance serves all registered entity kinds: table and column names come
// from the descriptor passed into each call, so adding a kind requires no
// repository change.
type recordRepository struct {
	*DB
	logger *logger.Logger
}

// NewRecordStore constructs a [RecordStore] backed by the provided database
// connection and logger.
func NewRecordStore(db *DB, logger *logger.Logger) RecordStore {
	return &recordRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *recordRepository) FindPending(ctx context.Context, d models.EntityDescriptor, ownerID string) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindPending(d, ownerID)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.FindPending").
			Str("kind", string(d.Kind)).
			Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.FindPending").
			Str("kind", string(d.Kind)).
			Msg("failed to execute query for pending records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	results := make([]models.Record, 0, 50)

	for rows.Next() {
		record, scanErr := scanRecord(d, rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recordRepository.FindPending").
				Str("kind", string(d.Kind)).
				Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		results = append(results, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "recordRepository.FindPending").
			Str("kind", string(d.Kind)).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return results, nil
}

func (r *recordRepository) FindByOwnerAndKeys(ctx context.Context, d models.EntityDescriptor, ownerID string, keys map[string]models.Value) (*models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindByOwnerAndKeys(d, ownerID, keys)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.FindByOwnerAndKeys").
			Str("kind", string(d.Kind)).
			Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.DB.QueryRowContext(ctx, query, args...)

	record, scanErr := scanRecord(d, row.Scan)
	if scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		log.Err(scanErr).
			Str("func", "recordRepository.FindByOwnerAndKeys").
			Str("kind", string(d.Kind)).
			Msg("failed to scan record row")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return &record, nil
}

func (r *recordRepository) ExistsWithinWindow(ctx context.Context, d models.EntityDescriptor, ownerID string, keys map[string]models.Value, field string, center time.Time, window time.Duration) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildExistsWithinWindow(d, ownerID, keys, field, center, window)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ExistsWithinWindow").
			Str("kind", string(d.Kind)).
			Msg("failed to build query")
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if scanErr := r.DB.QueryRowContext(ctx, query, args...).Scan(&count); scanErr != nil {
		log.Err(scanErr).
			Str("func", "recordRepository.ExistsWithinWindow").
			Str("kind", string(d.Kind)).
			Msg("failed to execute count query")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, scanErr)
	}

	return count > 0, nil
}

func (r *recordRepository) Create(ctx context.Context, d models.EntityDescriptor, record models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query, args, err := buildInsert(d, record)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Create").
			Str("kind", string(d.Kind)).
			Msg("failed to build insert")
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Create").
			Str("kind", string(d.Kind)).
			Str("record_id", record.ID).
			Msg("failed to insert record")
		return models.Record{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected, raErr := result.RowsAffected(); raErr == nil && affected == 0 {
		return models.Record{}, ErrRecordNotSaved
	}

	return record, nil
}

func (r *recordRepository) Update(ctx context.Context, d models.EntityDescriptor, record models.Record) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdate(d, record)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Update").
			Str("kind", string(d.Kind)).
			Msg("failed to build update")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Update").
			Str("kind", string(d.Kind)).
			Str("record_id", record.ID).
			Msg("failed to update record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected, raErr := result.RowsAffected(); raErr == nil && affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (r *recordRepository) MarkUploaded(ctx context.Context, d models.EntityDescriptor, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	log := logger.FromContext(ctx)

	query, args, err := buildMarkUploaded(d, ownerID, ids)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.MarkUploaded").
			Str("kind", string(d.Kind)).
			Msg("failed to build update")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "recordRepository.MarkUploaded").
			Str("kind", string(d.Kind)).
			Msg("failed to clear pending flags")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *recordRepository) Count(ctx context.Context, d models.EntityDescriptor, ownerID string) (int, error) {
	query, args, err := buildCount(d, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.scanCount(ctx, d, query, args)
}

func (r *recordRepository) CountPending(ctx context.Context, d models.EntityDescriptor, ownerID string) (int, error) {
	query, args, err := buildCountPending(d, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.scanCount(ctx, d, query, args)
}

func (r *recordRepository) scanCount(ctx context.Context, d models.EntityDescriptor, query string, args []any) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "recordRepository.scanCount").
			Str("kind", string(d.Kind)).
			Msg("failed to execute count query")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

func (r *recordRepository) Close() error {
	return r.DB.Close()
}

// scanRecord reads one row in [recordColumns] order into a [models.Record].
// Payload columns are scanned through sql.Null* wrappers so NULLs become
// absent values rather than zero values.
func scanRecord(d models.EntityDescriptor, scan func(dest ...any) error) (models.Record, error) {
	var (
		id      string
		ownerID string
		created int64
		updated sql.NullInt64
		pending bool
	)

	payload := make([]any, len(d.Fields))
	for i, f := range d.Fields {
		switch f.Kind {
		case models.KindString:
			payload[i] = new(sql.NullString)
		case models.KindInt, models.KindTime:
			payload[i] = new(sql.NullInt64)
		case models.KindFloat:
			payload[i] = new(sql.NullFloat64)
		case models.KindBool:
			payload[i] = new(sql.NullBool)
		}
	}

	dests := make([]any, 0, len(d.Fields)+5)
	dests = append(dests, &id, &ownerID)
	dests = append(dests, payload...)
	dests = append(dests, &created, &updated, &pending)

	if err := scan(dests...); err != nil {
		return models.Record{}, err
	}

	fields := make(map[string]models.Value, len(d.Fields))
	for i, f := range d.Fields {
		switch f.Kind {
		case models.KindString:
			if v := payload[i].(*sql.NullString); v.Valid {
				fields[f.Local] = models.String(v.String)
			}
		case models.KindInt:
			if v := payload[i].(*sql.NullInt64); v.Valid {
				fields[f.Local] = models.Int(v.Int64)
			}
		case models.KindTime:
			if v := payload[i].(*sql.NullInt64); v.Valid {
				fields[f.Local] = models.Time(time.UnixMilli(v.Int64).UTC())
			}
		case models.KindFloat:
			if v := payload[i].(*sql.NullFloat64); v.Valid {
				fields[f.Local] = models.Float(v.Float64)
			}
		case models.KindBool:
			if v := payload[i].(*sql.NullBool); v.Valid {
				fields[f.Local] = models.Bool(v.Bool)
			}
		}
	}

	record := models.Record{
		ID:            id,
		OwnerID:       ownerID,
		Fields:        fields,
		CreatedAt:     time.UnixMilli(created).UTC(),
		PendingUpload: pending,
	}
	if updated.Valid {
		record.UpdatedAt = time.UnixMilli(updated.Int64).UTC()
	}

	return record, nil
}
