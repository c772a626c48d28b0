package attemptservice

import (
	"context"
	"errors"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

//go:generate mockgen -source=attemptservice.go -destination=mock_attemptservice.go -package=attemptservice

type ExamRepo interface {
	GetByID(ctx context.Context, examID int) (*domain.Exam, error)
	ListQuestionIDs(ctx context.Context, examID int, limit int) ([]int, error)
}

type AttemptRepo interface {
	FindInProgress(ctx context.Context, userID, examID int) (*domain.ExamAttempt, error)
	GetByID(ctx context.Context, attemptID int) (*domain.ExamAttempt, error)
	Finish(ctx context.Context, attemptID int, status domain.AttemptStatus, at time.Time) (bool, error)
}

type UserRepo interface {
	GetByID(ctx context.Context, userID int) (*domain.User, error)
}

type Ledger interface {
	CommitAttempt(ctx context.Context, userID, examID int, questionIDs []int, price int, isFree bool) (*domain.ExamAttempt, bool, error)
}

// Session is what a user gets when starting an exam: the attempt and the
// question ids it is bound to.
type Session struct {
	Exam      *domain.Exam
	Attempt   *domain.ExamAttempt
	Questions []int
	Resumed   bool
}

type Service struct {
	exams    ExamRepo
	attempts AttemptRepo
	users    UserRepo
	ledger   Ledger
	now      func() time.Time
}

func New(exams ExamRepo, attempts AttemptRepo, users UserRepo, ledger Ledger) *Service {
	return &Service{
		exams:    exams,
		attempts: attempts,
		users:    users,
		ledger:   ledger,
		now:      time.Now,
	}
}

const uniqueViolation = "23505"

// StartOrResumeAttempt returns the user's open attempt of the exam or starts
// a new one. Repeating the call never charges twice and always yields the same
// questions until the attempt is finished.
func (s *Service) StartOrResumeAttempt(ctx context.Context, userID, examID int) (*Session, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, domain.ErrExamNotFound
	}
	if !exam.IsActive {
		return nil, domain.ErrExamInactive
	}

	existing, err := s.attempts.FindInProgress(ctx, userID, examID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return resumed(exam, existing), nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.Credits < exam.Cost() {
		return nil, domain.ErrInsufficientCredits
	}

	if exam.QuestionsToServe <= 0 {
		return nil, domain.ErrInsufficientContent
	}
	questions, err := s.exams.ListQuestionIDs(ctx, examID, exam.QuestionsToServe)
	if err != nil {
		return nil, err
	}
	if len(questions) < exam.QuestionsToServe {
		zap.L().Warn("exam has fewer questions than it serves",
			zap.Int("examID", examID), zap.Int("available", len(questions)), zap.Int("required", exam.QuestionsToServe))
		return nil, domain.ErrInsufficientContent
	}

	attempt, created, err := s.ledger.CommitAttempt(ctx, userID, examID, questions, exam.Price, exam.IsFree)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return s.resumeAfterConflict(ctx, exam, userID)
		}
		return nil, err
	}
	if !created {
		return resumed(exam, attempt), nil
	}

	zap.L().Info("exam attempt started",
		zap.Int("userID", userID), zap.Int("examID", examID),
		zap.Int("attemptID", attempt.ID), zap.Int("creditsUsed", attempt.CreditsUsed))
	return &Session{Exam: exam, Attempt: attempt, Questions: attempt.ServedQuestions}, nil
}

func (s *Service) resumeAfterConflict(ctx context.Context, exam *domain.Exam, userID int) (*Session, error) {
	existing, err := s.attempts.FindInProgress(ctx, userID, exam.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("attempt vanished after a concurrent start")
	}
	return resumed(exam, existing), nil
}

func resumed(exam *domain.Exam, attempt *domain.ExamAttempt) *Session {
	return &Session{Exam: exam, Attempt: attempt, Questions: attempt.ServedQuestions, Resumed: true}
}

// FinishAttempt closes the user's open attempt as COMPLETED or ABANDONED.
func (s *Service) FinishAttempt(ctx context.Context, userID, attemptID int, status domain.AttemptStatus) (*domain.ExamAttempt, error) {
	if status != domain.AttemptCompleted && status != domain.AttemptAbandoned {
		return nil, domain.ErrInvalidStatus
	}

	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil || attempt.UserID != userID {
		return nil, domain.ErrAttemptNotFound
	}
	if attempt.Status != domain.AttemptInProgress {
		return nil, domain.ErrAttemptFinished
	}

	at := s.now()
	ok, err := s.attempts.Finish(ctx, attemptID, status, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAttemptFinished
	}
	attempt.Status = status
	attempt.FinishedAt = &at
	return attempt, nil
}
