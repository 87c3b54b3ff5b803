package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/kapu/sdg-pulse/internal/domain"
	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRepo(t *testing.T) (*ResponseRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ps := NewPostgresServiceFromDB(db, zap.NewNop())
	return NewResponseRepository(ps, zap.NewNop()), mock
}

func sampleRows() []domain.ResponseForTrend {
	link := "https://sdgs.un.org/goals/goal13"
	return []domain.ResponseForTrend{
		{
			Trend: "heatwave", SDG: domain.SDGClimateAction, Emotion: domain.EmotionFear,
			Response: domain.Response{Message: "stay safe", Type: domain.ResponseEmotionalSupport, SDGLink: &link},
		},
		{
			Trend: "jobs", SDG: domain.SDG("Unknown"), Emotion: domain.EmotionHope,
			Response: domain.Response{Message: "keep going", Type: domain.ResponseMotivational},
		},
	}
}

func TestInsertResponses(t *testing.T) {
	repo, mock := newRepo(t)
	runID := uuid.New()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO trend_responses"))
	prep.ExpectExec().
		WithArgs(runID.String(), "heatwave", "Climate Action", "Fear", "stay safe", "emotional_support", "https://sdgs.un.org/goals/goal13").
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(runID.String(), "jobs", "Unknown", "Hope", "keep going", "motivational", nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	n, err := repo.InsertResponses(context.Background(), runID, sampleRows())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertResponsesRollsBack(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO trend_responses"))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	n, err := repo.InsertResponses(context.Background(), uuid.New(), sampleRows())
	require.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())

	var serr *apperrors.ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "insert", serr.Operation)
	assert.ErrorContains(t, err, "disk full")
}

func TestInsertResponsesEmpty(t *testing.T) {
	repo, mock := newRepo(t)

	n, err := repo.InsertResponses(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS trend_responses")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_trend_responses_run_id")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByRun(t *testing.T) {
	repo, mock := newRepo(t)
	runID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM trend_responses WHERE run_id = $1")).
		WithArgs(runID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountByRun(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "sdg"}
	assert.Equal(t, "postgres://u:p@db:5432/sdg?sslmode=disable", cfg.DSN())

	cfg.Password = "p w"
	cfg.SSLMode = "require"
	assert.Equal(t, "postgres://u:p%20w@db:5432/sdg?sslmode=require", cfg.DSN())
}
