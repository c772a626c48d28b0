package repo

import (
	"testing"

	"github.com/GlebRadaev/examledger/internal/pg"
	attemptrepo "github.com/GlebRadaev/examledger/internal/repo/attempt-repo"
	examrepo "github.com/GlebRadaev/examledger/internal/repo/exam-repo"
	transactionrepo "github.com/GlebRadaev/examledger/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/examledger/internal/repo/user-repo"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	ctrl := gomock.NewController(t)
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	return New(mockDB, pg.NewMockTXManager(ctrl)), mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.IsType(t, &userrepo.Repository{}, repo.UserRepo)
	assert.IsType(t, &examrepo.Repository{}, repo.ExamRepo)
	assert.IsType(t, &attemptrepo.Repository{}, repo.AttemptRepo)
	assert.IsType(t, &transactionrepo.Repository{}, repo.TransactionRepo)
	assert.NotNil(t, repo.TxManager)

	assert.NoError(t, mock.ExpectationsWereMet())
}
