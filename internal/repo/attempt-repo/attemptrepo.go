package attemptrepo

import (
	"context"
	"errors"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const attemptColumns = "id, user_id, exam_id, served_questions, credits_used, status, started_at, finished_at"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanAttempt(row pgx.Row) (*domain.ExamAttempt, error) {
	var (
		attempt domain.ExamAttempt
		status  string
	)
	err := row.Scan(
		&attempt.ID, &attempt.UserID, &attempt.ExamID, &attempt.ServedQuestions,
		&attempt.CreditsUsed, &status, &attempt.StartedAt, &attempt.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	attempt.Status = domain.AttemptStatus(status)
	return &attempt, nil
}

func (repo *Repository) find(ctx context.Context, query string, args ...any) (*domain.ExamAttempt, error) {
	attempt, err := scanAttempt(repo.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get exam attempt", zap.Any("args", args), zap.Error(err))
		return nil, err
	}
	return attempt, nil
}

// FindInProgress returns the open attempt of the user for the exam, if any.
func (repo *Repository) FindInProgress(ctx context.Context, userID, examID int) (*domain.ExamAttempt, error) {
	query := "SELECT " + attemptColumns + " FROM exam_attempts WHERE user_id = $1 AND exam_id = $2 AND status = 'IN_PROGRESS'"
	return repo.find(ctx, query, userID, examID)
}

func (repo *Repository) GetByID(ctx context.Context, attemptID int) (*domain.ExamAttempt, error) {
	query := "SELECT " + attemptColumns + " FROM exam_attempts WHERE id = $1"
	return repo.find(ctx, query, attemptID)
}

// Create inserts the attempt and fills in its id and start time. A second
// open attempt for the same user and exam violates a unique index.
func (repo *Repository) Create(ctx context.Context, attempt *domain.ExamAttempt) error {
	query := `
		INSERT INTO exam_attempts (user_id, exam_id, served_questions, credits_used, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, started_at
	`
	err := repo.db.QueryRow(ctx, query,
		attempt.UserID, attempt.ExamID, attempt.ServedQuestions, attempt.CreditsUsed, string(attempt.Status),
	).Scan(&attempt.ID, &attempt.StartedAt)
	if err != nil {
		zap.L().Error("can't create exam attempt",
			zap.Int("userID", attempt.UserID), zap.Int("examID", attempt.ExamID), zap.Error(err))
		return err
	}
	return nil
}

// Finish moves an open attempt to a terminal status. It reports false when
// the attempt was not open.
func (repo *Repository) Finish(ctx context.Context, attemptID int, status domain.AttemptStatus, at time.Time) (bool, error) {
	query := `
		UPDATE exam_attempts
		SET status = $2, finished_at = $3
		WHERE id = $1 AND status = 'IN_PROGRESS'
	`
	tag, err := repo.db.Exec(ctx, query, attemptID, string(status), at)
	if err != nil {
		zap.L().Error("can't finish exam attempt", zap.Int("attemptID", attemptID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
