// Package ledgerservice owns every change of a user's credit balance.
//
// Each operation runs as one database transaction that first locks the
// user's row, so concurrent mutations of one balance are serialized and the
// balance can never go negative.
package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/pg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=ledgerservice.go -destination=mock_ledgerservice.go -package=ledgerservice

type UserRepo interface {
	GetByID(ctx context.Context, userID int) (*domain.User, error)
	LockByID(ctx context.Context, userID int) (*domain.User, error)
	Debit(ctx context.Context, userID int, credits int) (bool, error)
	Credit(ctx context.Context, userID int, credits int) error
}

type AttemptRepo interface {
	FindInProgress(ctx context.Context, userID, examID int) (*domain.ExamAttempt, error)
	Create(ctx context.Context, attempt *domain.ExamAttempt) error
}

type TransactionRepo interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, txnID int) (*domain.Transaction, error)
	Complete(ctx context.Context, txnID int, g domain.Gateway, paymentID string, at time.Time, event domain.TransactionEvent) (*domain.Transaction, error)
}

var ErrInvalidCredits = errors.New("credits must be positive")

const sourceLedger = "ledger"

type Service struct {
	users     UserRepo
	attempts  AttemptRepo
	txns      TransactionRepo
	txManager pg.TXManager
	now       func() time.Time
}

func New(users UserRepo, attempts AttemptRepo, txns TransactionRepo, txManager pg.TXManager) *Service {
	return &Service{
		users:     users,
		attempts:  attempts,
		txns:      txns,
		txManager: txManager,
		now:       time.Now,
	}
}

func (s *Service) Balance(ctx context.Context, userID int) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, domain.ErrUserNotFound
	}
	return user.Credits, nil
}

// CommitAttempt creates the IN_PROGRESS attempt and charges its price in one
// unit. When another request already created the attempt, that attempt is
// returned with created == false and nothing is charged.
func (s *Service) CommitAttempt(
	ctx context.Context, userID, examID int, questionIDs []int, price int, isFree bool,
) (*domain.ExamAttempt, bool, error) {
	var (
		attempt *domain.ExamAttempt
		created bool
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.users.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}

		existing, err := s.attempts.FindInProgress(ctx, userID, examID)
		if err != nil {
			return err
		}
		if existing != nil {
			attempt = existing
			return nil
		}

		cost := price
		if isFree {
			cost = 0
		}
		if cost > 0 {
			ok, err := s.users.Debit(ctx, userID, cost)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrInsufficientCredits
			}
		}

		newAttempt := &domain.ExamAttempt{
			UserID:          userID,
			ExamID:          examID,
			ServedQuestions: questionIDs,
			CreditsUsed:     cost,
			Status:          domain.AttemptInProgress,
		}
		if err := s.attempts.Create(ctx, newAttempt); err != nil {
			return err
		}

		if cost > 0 {
			now := s.now()
			payment := &domain.Transaction{
				UserID:      userID,
				Type:        domain.TransactionExamPayment,
				Amount:      decimal.Zero,
				Credits:     cost,
				Status:      domain.TransactionCompleted,
				AttemptID:   &newAttempt.ID,
				CompletedAt: &now,
				Metadata: domain.AuditLog{{
					Source:     sourceLedger,
					Type:       "exam.started",
					ExternalID: strconv.Itoa(examID),
					Outcome:    domain.OutcomeApplied,
					At:         now,
				}},
			}
			if err := s.txns.Create(ctx, payment); err != nil {
				return err
			}
		}

		attempt = newAttempt
		created = true
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientCredits) && !errors.Is(err, domain.ErrUserNotFound) {
			zap.L().Error("failed to commit exam attempt",
				zap.Int("userID", userID), zap.Int("examID", examID), zap.Error(err))
		}
		return nil, false, err
	}
	return attempt, created, nil
}

// SettlePurchase completes a PENDING purchase and credits its buyer. It
// reports false without touching the balance when the transaction was no
// longer PENDING.
func (s *Service) SettlePurchase(
	ctx context.Context, txnID int, g domain.Gateway, paymentID string, record domain.TransactionEvent,
) (bool, error) {
	var applied bool
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		txn, err := s.txns.GetByID(ctx, txnID)
		if err != nil {
			return err
		}
		if txn == nil {
			return domain.ErrTransactionNotFound
		}
		if txn.Status != domain.TransactionPending {
			return nil
		}
		// user before transaction, the same order CreateOrder takes
		if _, err := s.users.LockByID(ctx, txn.UserID); err != nil {
			return err
		}

		completed, err := s.txns.Complete(ctx, txnID, g, paymentID, s.now(), record)
		if err != nil {
			return err
		}
		if completed == nil {
			return nil
		}
		if err := s.users.Credit(ctx, completed.UserID, completed.Credits); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		zap.L().Error("failed to settle purchase", zap.Int("txnID", txnID), zap.Error(err))
		return false, err
	}
	return applied, nil
}

// GrantCredits adds credits outside of any payment, e.g. for support cases.
func (s *Service) GrantCredits(ctx context.Context, userID, credits int, reason string) (*domain.Transaction, error) {
	if credits <= 0 {
		return nil, ErrInvalidCredits
	}

	var grant *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.users.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		if err := s.users.Credit(ctx, userID, credits); err != nil {
			return err
		}

		now := s.now()
		grant = &domain.Transaction{
			UserID:      userID,
			Type:        domain.TransactionAdminCredit,
			Amount:      decimal.Zero,
			Credits:     credits,
			Status:      domain.TransactionCompleted,
			CompletedAt: &now,
			Metadata: domain.AuditLog{{
				Source:  "admin",
				Type:    "credits.granted",
				Outcome: domain.OutcomeApplied,
				Detail:  reason,
				At:      now,
			}},
		}
		return s.txns.Create(ctx, grant)
	})
	if err != nil {
		return nil, fmt.Errorf("grant credits: %w", err)
	}
	zap.L().Info("credits granted", zap.Int("userID", userID), zap.Int("credits", credits), zap.String("reason", reason))
	return grant, nil
}
