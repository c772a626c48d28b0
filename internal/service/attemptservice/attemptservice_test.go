package attemptservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	exams    *MockExamRepo
	attempts *MockAttemptRepo
	users    *MockUserRepo
	ledger   *MockLedger
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		exams:    NewMockExamRepo(ctrl),
		attempts: NewMockAttemptRepo(ctrl),
		users:    NewMockUserRepo(ctrl),
		ledger:   NewMockLedger(ctrl),
	}
	return New(m.exams, m.attempts, m.users, m.ledger), m
}

func TestStartOrResumeAttempt(t *testing.T) {
	exam := &domain.Exam{ID: 10, Title: "Go", Price: 30, QuestionsToServe: 3, IsActive: true}
	open := &domain.ExamAttempt{ID: 5, UserID: 1, ExamID: 10, ServedQuestions: []int{9, 8, 7}, CreditsUsed: 30, Status: domain.AttemptInProgress}

	tests := []struct {
		name        string
		prepareMock func(m *mocks)
		expected    *Session
		expectedErr error
	}{
		{
			name: "New attempt",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(exam, nil)
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(nil, nil)
				m.users.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Credits: 50}, nil)
				m.exams.EXPECT().ListQuestionIDs(gomock.Any(), 10, 3).Return([]int{1, 2, 3}, nil)
				m.ledger.EXPECT().CommitAttempt(gomock.Any(), 1, 10, []int{1, 2, 3}, 30, false).Return(&domain.ExamAttempt{
					ID: 6, UserID: 1, ExamID: 10, ServedQuestions: []int{1, 2, 3}, CreditsUsed: 30, Status: domain.AttemptInProgress,
				}, true, nil)
			},
			expected: &Session{
				Exam: exam,
				Attempt: &domain.ExamAttempt{
					ID: 6, UserID: 1, ExamID: 10, ServedQuestions: []int{1, 2, 3}, CreditsUsed: 30, Status: domain.AttemptInProgress,
				},
				Questions: []int{1, 2, 3},
			},
		},
		{
			name: "Open attempt is resumed without charging",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(exam, nil)
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(open, nil)
			},
			expected: &Session{Exam: exam, Attempt: open, Questions: []int{9, 8, 7}, Resumed: true},
		},
		{
			name: "Concurrent start resolved by the ledger",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(exam, nil)
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(nil, nil)
				m.users.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Credits: 50}, nil)
				m.exams.EXPECT().ListQuestionIDs(gomock.Any(), 10, 3).Return([]int{1, 2, 3}, nil)
				m.ledger.EXPECT().CommitAttempt(gomock.Any(), 1, 10, []int{1, 2, 3}, 30, false).Return(open, false, nil)
			},
			expected: &Session{Exam: exam, Attempt: open, Questions: []int{9, 8, 7}, Resumed: true},
		},
		{
			name: "Unique index conflict resumes the winner",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(exam, nil)
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(nil, nil)
				m.users.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Credits: 50}, nil)
				m.exams.EXPECT().ListQuestionIDs(gomock.Any(), 10, 3).Return([]int{1, 2, 3}, nil)
				m.ledger.EXPECT().CommitAttempt(gomock.Any(), 1, 10, []int{1, 2, 3}, 30, false).
					Return(nil, false, &pgconn.PgError{Code: "23505"})
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(open, nil)
			},
			expected: &Session{Exam: exam, Attempt: open, Questions: []int{9, 8, 7}, Resumed: true},
		},
		{
			name: "Exam not found",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(nil, nil)
			},
			expectedErr: domain.ErrExamNotFound,
		},
		{
			name: "Exam inactive",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(&domain.Exam{ID: 10, Price: 30, QuestionsToServe: 3}, nil)
			},
			expectedErr: domain.ErrExamInactive,
		},
		{
			name: "Not enough credits",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(exam, nil)
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(nil, nil)
				m.users.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Credits: 0}, nil)
			},
			expectedErr: domain.ErrInsufficientCredits,
		},
		{
			name: "Free exam with empty balance",
			prepareMock: func(m *mocks) {
				free := &domain.Exam{ID: 10, Price: 30, IsFree: true, QuestionsToServe: 1, IsActive: true}
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(free, nil)
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(nil, nil)
				m.users.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Credits: 0}, nil)
				m.exams.EXPECT().ListQuestionIDs(gomock.Any(), 10, 1).Return([]int{4}, nil)
				m.ledger.EXPECT().CommitAttempt(gomock.Any(), 1, 10, []int{4}, 30, true).Return(&domain.ExamAttempt{
					ID: 7, UserID: 1, ExamID: 10, ServedQuestions: []int{4}, Status: domain.AttemptInProgress,
				}, true, nil)
			},
			expected: &Session{
				Exam:      &domain.Exam{ID: 10, Price: 30, IsFree: true, QuestionsToServe: 1, IsActive: true},
				Attempt:   &domain.ExamAttempt{ID: 7, UserID: 1, ExamID: 10, ServedQuestions: []int{4}, Status: domain.AttemptInProgress},
				Questions: []int{4},
			},
		},
		{
			name: "Fewer questions than required",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(exam, nil)
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(nil, nil)
				m.users.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Credits: 50}, nil)
				m.exams.EXPECT().ListQuestionIDs(gomock.Any(), 10, 3).Return([]int{1, 2}, nil)
			},
			expectedErr: domain.ErrInsufficientContent,
		},
		{
			name: "Exam configured to serve nothing",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(&domain.Exam{ID: 10, IsActive: true, IsFree: true}, nil)
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(nil, nil)
				m.users.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
			},
			expectedErr: domain.ErrInsufficientContent,
		},
		{
			name: "Unknown user",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(exam, nil)
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(nil, nil)
				m.users.EXPECT().GetByID(gomock.Any(), 1).Return(nil, nil)
			},
			expectedErr: domain.ErrUserNotFound,
		},
		{
			name: "Balance race lost in the ledger",
			prepareMock: func(m *mocks) {
				m.exams.EXPECT().GetByID(gomock.Any(), 10).Return(exam, nil)
				m.attempts.EXPECT().FindInProgress(gomock.Any(), 1, 10).Return(nil, nil)
				m.users.EXPECT().GetByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Credits: 30}, nil)
				m.exams.EXPECT().ListQuestionIDs(gomock.Any(), 10, 3).Return([]int{1, 2, 3}, nil)
				m.ledger.EXPECT().CommitAttempt(gomock.Any(), 1, 10, []int{1, 2, 3}, 30, false).
					Return(nil, false, domain.ErrInsufficientCredits)
			},
			expectedErr: domain.ErrInsufficientCredits,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			session, err := service.StartOrResumeAttempt(context.Background(), 1, 10)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, session)
		})
	}
}

func TestFinishAttempt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	open := func() *domain.ExamAttempt {
		return &domain.ExamAttempt{ID: 5, UserID: 1, ExamID: 10, Status: domain.AttemptInProgress}
	}

	tests := []struct {
		name        string
		userID      int
		status      domain.AttemptStatus
		prepareMock func(m *mocks)
		expectedErr error
	}{
		{
			name:   "Completed",
			userID: 1,
			status: domain.AttemptCompleted,
			prepareMock: func(m *mocks) {
				m.attempts.EXPECT().GetByID(gomock.Any(), 5).Return(open(), nil)
				m.attempts.EXPECT().Finish(gomock.Any(), 5, domain.AttemptCompleted, now).Return(true, nil)
			},
		},
		{
			name:        "Back to in progress is not allowed",
			userID:      1,
			status:      domain.AttemptInProgress,
			prepareMock: func(m *mocks) {},
			expectedErr: domain.ErrInvalidStatus,
		},
		{
			name:   "Attempt of another user",
			userID: 2,
			status: domain.AttemptAbandoned,
			prepareMock: func(m *mocks) {
				m.attempts.EXPECT().GetByID(gomock.Any(), 5).Return(open(), nil)
			},
			expectedErr: domain.ErrAttemptNotFound,
		},
		{
			name:   "Already finished",
			userID: 1,
			status: domain.AttemptAbandoned,
			prepareMock: func(m *mocks) {
				a := open()
				a.Status = domain.AttemptCompleted
				m.attempts.EXPECT().GetByID(gomock.Any(), 5).Return(a, nil)
			},
			expectedErr: domain.ErrAttemptFinished,
		},
		{
			name:   "Finished concurrently",
			userID: 1,
			status: domain.AttemptAbandoned,
			prepareMock: func(m *mocks) {
				m.attempts.EXPECT().GetByID(gomock.Any(), 5).Return(open(), nil)
				m.attempts.EXPECT().Finish(gomock.Any(), 5, domain.AttemptAbandoned, now).Return(false, nil)
			},
			expectedErr: domain.ErrAttemptFinished,
		},
		{
			name:   "Database error",
			userID: 1,
			status: domain.AttemptCompleted,
			prepareMock: func(m *mocks) {
				m.attempts.EXPECT().GetByID(gomock.Any(), 5).Return(nil, errors.New("db error"))
			},
			expectedErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			service.now = func() time.Time { return now }
			tt.prepareMock(m)

			attempt, err := service.FinishAttempt(context.Background(), tt.userID, 5, tt.status)
			if tt.expectedErr != nil {
				assert.EqualError(t, err, tt.expectedErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, attempt.Status)
			require.NotNil(t, attempt.FinishedAt)
			assert.Equal(t, now, *attempt.FinishedAt)
		})
	}
}
