package userrepo

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

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := NewMock(t)
	createdAt := time.Now()

	tests := []struct {
		name      string
		userID    int
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name:   "User exists",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, credits, created_at FROM users WHERE id = $1")).
					WithArgs(1).
					WillReturnRows(pgxmock.NewRows([]string{"id", "credits", "created_at"}).AddRow(1, 50, createdAt))
			},
			result: &domain.User{ID: 1, Credits: 50, CreatedAt: createdAt},
		},
		{
			name:   "User does not exist",
			userID: 2,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, credits, created_at FROM users WHERE id = $1")).
					WithArgs(2).
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name:   "Database error",
			userID: 3,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, credits, created_at FROM users WHERE id = $1")).
					WithArgs(3).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.GetByID(context.Background(), tt.userID)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_LockByID(t *testing.T) {
	repo, mock := NewMock(t)
	createdAt := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, credits, created_at FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"id", "credits", "created_at"}).AddRow(7, 0, createdAt))

	user, err := repo.LockByID(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 7, Credits: 0, CreatedAt: createdAt}, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Debit(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		mockSetup func()
		applied   bool
		expectErr bool
	}{
		{
			name: "Balance covers the debit",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET credits = credits - $2 WHERE id = $1 AND credits >= $2")).
					WithArgs(1, 30).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			applied: true,
		},
		{
			name: "Balance too low",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET credits = credits - $2 WHERE id = $1 AND credits >= $2")).
					WithArgs(1, 30).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			applied: false,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET credits = credits - $2")).
					WithArgs(1, 30).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			applied, err := repo.Debit(context.Background(), 1, 30)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.applied, applied)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Credit(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name        string
		mockSetup   func()
		expectedErr error
		expectErr   bool
	}{
		{
			name: "Credits added",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET credits = credits + $2 WHERE id = $1")).
					WithArgs(1, 50).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "Unknown user",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET credits = credits + $2 WHERE id = $1")).
					WithArgs(1, 50).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			expectedErr: domain.ErrUserNotFound,
			expectErr:   true,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET credits = credits + $2 WHERE id = $1")).
					WithArgs(1, 50).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.Credit(context.Background(), 1, 50)

			if tt.expectErr {
				assert.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
