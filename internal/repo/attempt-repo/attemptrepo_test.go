package attemptrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
)

var columns = []string{"id", "user_id", "exam_id", "served_questions", "credits_used", "status", "started_at", "finished_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_FindInProgress(t *testing.T) {
	repo, mock := NewMock(t)
	startedAt := time.Now()
	query := regexp.QuoteMeta("SELECT " + attemptColumns + " FROM exam_attempts WHERE user_id = $1 AND exam_id = $2 AND status = 'IN_PROGRESS'")

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.ExamAttempt
	}{
		{
			name: "Open attempt exists",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(1, 10).
					WillReturnRows(pgxmock.NewRows(columns).
						AddRow(5, 1, 10, []int{3, 1, 2}, 30, "IN_PROGRESS", startedAt, nil))
			},
			result: &domain.ExamAttempt{
				ID:              5,
				UserID:          1,
				ExamID:          10,
				ServedQuestions: []int{3, 1, 2},
				CreditsUsed:     30,
				Status:          domain.AttemptInProgress,
				StartedAt:       startedAt,
			},
		},
		{
			name: "No open attempt",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(1, 10).WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(1, 10).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			attempt, err := repo.FindInProgress(context.Background(), 1, 10)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, attempt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	startedAt := time.Now()
	query := regexp.QuoteMeta("INSERT INTO exam_attempts (user_id, exam_id, served_questions, credits_used, status) VALUES ($1, $2, $3, $4, $5) RETURNING id, started_at")

	t.Run("Attempt created", func(t *testing.T) {
		attempt := &domain.ExamAttempt{
			UserID:          1,
			ExamID:          10,
			ServedQuestions: []int{1, 2},
			CreditsUsed:     0,
			Status:          domain.AttemptInProgress,
		}
		mock.ExpectQuery(query).
			WithArgs(1, 10, []int{1, 2}, 0, "IN_PROGRESS").
			WillReturnRows(pgxmock.NewRows([]string{"id", "started_at"}).AddRow(42, startedAt))

		err := repo.Create(context.Background(), attempt)
		assert.NoError(t, err)
		assert.Equal(t, 42, attempt.ID)
		assert.Equal(t, startedAt, attempt.StartedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unique violation", func(t *testing.T) {
		attempt := &domain.ExamAttempt{UserID: 1, ExamID: 10, ServedQuestions: []int{1}, Status: domain.AttemptInProgress}
		mock.ExpectQuery(query).
			WithArgs(1, 10, []int{1}, 0, "IN_PROGRESS").
			WillReturnError(errors.New("duplicate key value violates unique constraint"))

		err := repo.Create(context.Background(), attempt)
		assert.Error(t, err)
		assert.Zero(t, attempt.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Finish(t *testing.T) {
	repo, mock := NewMock(t)
	at := time.Now()
	query := regexp.QuoteMeta("UPDATE exam_attempts SET status = $2, finished_at = $3 WHERE id = $1 AND status = 'IN_PROGRESS'")

	t.Run("Open attempt finished", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(5, "COMPLETED", at).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		ok, err := repo.Finish(context.Background(), 5, domain.AttemptCompleted, at)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Already finished", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(5, "ABANDONED", at).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		ok, err := repo.Finish(context.Background(), 5, domain.AttemptAbandoned, at)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
