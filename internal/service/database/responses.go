package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/kapu/sdg-pulse/internal/domain"
	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
	"go.uber.org/zap"
)

const createResponsesTable = `
CREATE TABLE IF NOT EXISTS trend_responses (
	id            BIGSERIAL PRIMARY KEY,
	run_id        UUID        NOT NULL,
	trend         TEXT        NOT NULL,
	sdg           TEXT        NOT NULL,
	emotion       TEXT        NOT NULL,
	message       TEXT        NOT NULL,
	response_type TEXT        NOT NULL,
	sdg_link      TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createResponsesRunIndex = `CREATE INDEX IF NOT EXISTS idx_trend_responses_run_id ON trend_responses (run_id)`

const insertResponse = `
INSERT INTO trend_responses (run_id, trend, sdg, emotion, message, response_type, sdg_link)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// ResponseRepository stores final responses, one batch per run id.
type ResponseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewResponseRepository(ps *PostgresService, logger *zap.Logger) *ResponseRepository {
	return &ResponseRepository{db: ps.DB(), logger: logger}
}

func (r *ResponseRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createResponsesTable, createResponsesRunIndex} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return apperrors.NewServiceError("failed to ensure schema", "postgres", "schema", err)
		}
	}
	return nil
}

// InsertResponses writes all rows in one transaction. Either every row lands or none.
func (r *ResponseRepository) InsertResponses(ctx context.Context, runID uuid.UUID, rows []domain.ResponseForTrend) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewServiceError("failed to begin transaction", "postgres", "begin", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, insertResponse)
	if err != nil {
		return 0, apperrors.NewServiceError("failed to prepare insert", "postgres", "prepare", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		var link sql.NullString
		if row.Response.SDGLink != nil {
			link = sql.NullString{String: *row.Response.SDGLink, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			runID.String(),
			row.Trend,
			string(row.SDG),
			string(row.Emotion),
			row.Response.Message,
			string(row.Response.Type),
			link,
		); err != nil {
			return 0, apperrors.NewServiceError(fmt.Sprintf("failed to insert response for %s/%s", row.Trend, row.SDG), "postgres", "insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewServiceError("failed to commit responses", "postgres", "commit", err)
	}

	r.logger.Info("Responses exported",
		zap.String("run_id", runID.String()),
		zap.Int("rows", len(rows)),
	)
	return len(rows), nil
}

// CountByRun returns how many rows a run stored.
func (r *ResponseRepository) CountByRun(ctx context.Context, runID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trend_responses WHERE run_id = $1`, runID.String()).Scan(&n)
	if err != nil {
		return 0, apperrors.NewServiceError("failed to count responses", "postgres", "count", err)
	}
	return n, nil
}
