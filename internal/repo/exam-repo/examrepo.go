package examrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (repo *Repository) GetByID(ctx context.Context, examID int) (*domain.Exam, error) {
	query := `
		SELECT id, title, price, is_free, questions_to_serve, is_active
		FROM exams
		WHERE id = $1
	`
	var exam domain.Exam
	err := repo.db.QueryRow(ctx, query, examID).Scan(
		&exam.ID, &exam.Title, &exam.Price, &exam.IsFree, &exam.QuestionsToServe, &exam.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get exam", zap.Int("examID", examID), zap.Error(err))
		return nil, err
	}
	return &exam, nil
}

// ListQuestionIDs returns up to limit question ids of the exam in their
// configured order.
func (repo *Repository) ListQuestionIDs(ctx context.Context, examID int, limit int) ([]int, error) {
	query := `
		SELECT question_id
		FROM exam_questions
		WHERE exam_id = $1
		ORDER BY position, question_id
		LIMIT $2
	`
	rows, err := repo.db.Query(ctx, query, examID, limit)
	if err != nil {
		zap.L().Error("can't list exam questions", zap.Int("examID", examID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0, limit)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			zap.L().Error("can't scan question id", zap.Error(err))
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
