package userrepo

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

func (repo *Repository) GetByID(ctx context.Context, userID int) (*domain.User, error) {
	return repo.find(ctx, "SELECT id, credits, created_at FROM users WHERE id = $1", userID)
}

// LockByID reads the user row and holds its lock until the surrounding
// transaction ends. Every credit mutation of a user is ordered by this lock.
func (repo *Repository) LockByID(ctx context.Context, userID int) (*domain.User, error) {
	return repo.find(ctx, "SELECT id, credits, created_at FROM users WHERE id = $1 FOR UPDATE", userID)
}

func (repo *Repository) find(ctx context.Context, query string, userID int) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Credits, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// Debit subtracts credits only when the balance covers them and reports
// whether the row changed.
func (repo *Repository) Debit(ctx context.Context, userID int, credits int) (bool, error) {
	query := `
		UPDATE users
		SET credits = credits - $2
		WHERE id = $1 AND credits >= $2
	`
	tag, err := repo.db.Exec(ctx, query, userID, credits)
	if err != nil {
		zap.L().Error("can't debit user credits", zap.Int("userID", userID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (repo *Repository) Credit(ctx context.Context, userID int, credits int) error {
	query := `
		UPDATE users
		SET credits = credits + $2
		WHERE id = $1
	`
	tag, err := repo.db.Exec(ctx, query, userID, credits)
	if err != nil {
		zap.L().Error("can't credit user", zap.Int("userID", userID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
