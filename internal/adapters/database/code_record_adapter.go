package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"

	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/entities"
	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/repositories"
	"github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/clients/sqlite"
	"github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/observability"
	apperrors "github.com/sjwitcher/obd2-explorer/backend/pkg/errors"
)

// timestampLayouts accepted for ai_last_updated. Records written by earlier
// loaders carry bare ISO timestamps without a zone suffix.
var timestampLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999999"}

// CodeRecordAdapter implements CodeRecordRepository on SQLite.
type CodeRecordAdapter struct {
	client  *sqlite.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewCodeRecordAdapter creates a new adapter. Metrics may be nil.
func NewCodeRecordAdapter(client *sqlite.Client, metrics *observability.Metrics) repositories.CodeRecordRepository {
	return &CodeRecordAdapter{
		client:  client,
		db:      goqu.New("sqlite3", client.DB()),
		metrics: metrics,
	}
}

// GetByCode retrieves one code record by its normalized code.
func (a *CodeRecordAdapter) GetByCode(ctx context.Context, code string) (*entities.CodeRecord, error) {
	query, args, err := a.db.Select(
		"code",
		"description",
		"summary",
		"diy_checks",
		"source",
		"ai_last_updated",
	).
		From("obd_codes").
		Where(goqu.Ex{"code": code}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build code query", err)
	}

	var description, summary, diyChecks, source, aiLastUpdated sql.NullString
	record := &entities.CodeRecord{}

	start := time.Now()
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&record.Code,
		&description,
		&summary,
		&diyChecks,
		&source,
		&aiLastUpdated,
	)
	observability.RecordDBMetric(ctx, a.metrics, "get_code", time.Since(start))

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("code %s not found", code))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get code record", err)
	}

	record.Description = description.String
	record.Summary = summary.String
	record.DiyChecks = diyChecks.String
	record.Source = source.String

	if aiLastUpdated.Valid && aiLastUpdated.String != "" {
		ts, err := parseTimestamp(aiLastUpdated.String)
		if err != nil {
			return nil, apperrors.NewInternalError(
				fmt.Sprintf("malformed ai_last_updated for code %s", code), err)
		}
		record.AILastUpdated = &ts
	}

	return record, nil
}

// UpdateGuidance persists regenerated guidance and its timestamp in a single
// statement so readers never see one without the other.
func (a *CodeRecordAdapter) UpdateGuidance(ctx context.Context, code string, update repositories.GuidanceUpdate) error {
	fields := goqu.Record{
		"diy_checks":      update.DiyChecks,
		"ai_last_updated": update.AILastUpdated.UTC().Format(time.RFC3339),
	}
	if update.Summary != "" {
		fields["summary"] = update.Summary
	}

	query, args, err := a.db.Update("obd_codes").
		Set(fields).
		Where(goqu.Ex{"code": code}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build guidance update", err)
	}

	start := time.Now()
	result, err := a.client.DB().ExecContext(ctx, query, args...)
	observability.RecordDBMetric(ctx, a.metrics, "update_guidance", time.Since(start))
	if err != nil {
		return apperrors.NewInternalError("failed to update guidance", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("code %s not found", code))
	}
	return nil
}

// Upsert inserts or updates a code record. Guidance columns are only
// overwritten when the incoming record carries values for them, so a reload
// of descriptions does not wipe generated guidance.
func (a *CodeRecordAdapter) Upsert(ctx context.Context, record *entities.CodeRecord) error {
	if record == nil || record.Code == "" {
		return apperrors.NewValidationError("record with a code is required")
	}

	query := `
		INSERT INTO obd_codes (code, description, summary, diy_checks, source, ai_last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (code)
		DO UPDATE SET
			description = excluded.description,
			source = excluded.source,
			summary = COALESCE(NULLIF(excluded.summary, ''), obd_codes.summary),
			diy_checks = COALESCE(NULLIF(excluded.diy_checks, ''), obd_codes.diy_checks),
			ai_last_updated = COALESCE(excluded.ai_last_updated, obd_codes.ai_last_updated)
	`

	var aiLastUpdated any
	if record.AILastUpdated != nil {
		aiLastUpdated = record.AILastUpdated.UTC().Format(time.RFC3339)
	}

	start := time.Now()
	_, err := a.client.DB().ExecContext(
		ctx,
		query,
		record.Code,
		record.Description,
		record.Summary,
		record.DiyChecks,
		record.Source,
		aiLastUpdated,
	)
	observability.RecordDBMetric(ctx, a.metrics, "upsert_code", time.Since(start))
	if err != nil {
		return apperrors.NewInternalError("failed to upsert code record", err)
	}
	return nil
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
