// Package paymentservice reconciles payment gateway events against the
// ledger.
//
// Gateways deliver notifications at least once, in any order, and possibly
// concurrently with the client's own capture call. Every path funnels into
// Apply, which is safe to call any number of times with the same event: a
// purchase is credited only by the single caller that moves its transaction
// from PENDING to COMPLETED.
package paymentservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/gateway"
	"github.com/GlebRadaev/examledger/internal/pg"
	"github.com/GlebRadaev/examledger/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=paymentservice.go -destination=mock_paymentservice.go -package=paymentservice

type TransactionRepo interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, txnID int) (*domain.Transaction, error)
	LockByID(ctx context.Context, txnID int) (*domain.Transaction, error)
	FindByGatewayOrder(ctx context.Context, g domain.Gateway, orderID string) (*domain.Transaction, error)
	FindReusablePending(ctx context.Context, userID int, g domain.Gateway, amount decimal.Decimal, currency string, credits int) (*domain.Transaction, error)
	RecordAttempt(ctx context.Context, txnID int, at time.Time) error
	SetGatewayOrder(ctx context.Context, txnID int, g domain.Gateway, orderID string, event domain.TransactionEvent) (bool, error)
	RecordFailure(ctx context.Context, txnID int, reason string, at time.Time, event domain.TransactionEvent) error
	Fail(ctx context.Context, txnID int, reason string, event domain.TransactionEvent) (bool, error)
	AppendEvent(ctx context.Context, txnID int, event domain.TransactionEvent) error
}

type UserRepo interface {
	LockByID(ctx context.Context, userID int) (*domain.User, error)
}

type Ledger interface {
	SettlePurchase(ctx context.Context, txnID int, g domain.Gateway, paymentID string, record domain.TransactionEvent) (bool, error)
}

type Gateways interface {
	Get(g domain.Gateway) (gateway.Adapter, error)
}

type Outcome string

const (
	OutcomeApplied         Outcome = domain.OutcomeApplied
	OutcomeDuplicate       Outcome = domain.OutcomeDuplicate
	OutcomeFailureRecorded Outcome = domain.OutcomeFailureRecorded
	OutcomeFailed          Outcome = domain.OutcomeFailed
	OutcomeRecorded        Outcome = domain.OutcomeRecorded
	OutcomeNeedsReview     Outcome = domain.OutcomeNeedsReview
	OutcomeIgnored         Outcome = "ignored"
	OutcomeUnknownOrder    Outcome = "unknown_order"
)

const sourceLedger = "ledger"

// FailurePolicy decides when repeated payment failures close a purchase.
type FailurePolicy struct {
	MaxFailures int
	StaleAfter  time.Duration
}

// Escalate reports whether a purchase that has now failed failures times, and
// whose previous attempt happened at prev, must be failed for good.
func (p FailurePolicy) Escalate(failures int, prev *time.Time, now time.Time) bool {
	return failures > p.MaxFailures && prev != nil && now.Sub(*prev) > p.StaleAfter
}

type OrderRequest struct {
	Amount   decimal.Decimal
	Currency string
	Credits  int
}

type OrderResult struct {
	TransactionID  int
	GatewayOrderID string
	ApprovalURL    string
	Reused         bool
}

type Service struct {
	txns      TransactionRepo
	users     UserRepo
	ledger    Ledger
	gateways  Gateways
	txManager pg.TXManager
	policy    FailurePolicy
	now       func() time.Time
}

func New(txns TransactionRepo, users UserRepo, ledger Ledger, gateways Gateways, txManager pg.TXManager, policy FailurePolicy) *Service {
	return &Service{
		txns:      txns,
		users:     users,
		ledger:    ledger,
		gateways:  gateways,
		txManager: txManager,
		policy:    policy,
		now:       time.Now,
	}
}

// HandleWebhook authenticates a raw gateway delivery before anything is read
// from it, then applies it.
func (s *Service) HandleWebhook(ctx context.Context, g domain.Gateway, header http.Header, body []byte) (Outcome, error) {
	adapter, err := s.gateways.Get(g)
	if err != nil {
		return "", err
	}
	if err := adapter.VerifySignature(ctx, header, body); err != nil {
		zap.L().Warn("webhook rejected", zap.String("gateway", string(g)), zap.Error(err))
		return "", err
	}
	event, err := adapter.NormalizeEvent(header, body)
	if err != nil {
		zap.L().Warn("webhook payload rejected", zap.String("gateway", string(g)), zap.Error(err))
		return "", err
	}
	return s.Apply(ctx, event)
}

// Apply moves the purchase the event refers to through its state machine.
// It is idempotent: replaying an event records it in the audit trail and
// changes nothing else.
func (s *Service) Apply(ctx context.Context, event *gateway.Event) (Outcome, error) {
	log := zap.L().With(
		zap.String("gateway", string(event.Gateway)),
		zap.String("eventType", event.Type),
		zap.String("eventID", event.ID),
		zap.String("orderID", event.OrderID),
	)
	if event.Kind == gateway.EventIgnored {
		log.Debug("gateway event ignored")
		return OutcomeIgnored, nil
	}

	txn, err := s.txns.FindByGatewayOrder(ctx, event.Gateway, event.OrderID)
	if err != nil {
		return "", err
	}
	if txn == nil {
		log.Warn("gateway event for unknown order dropped")
		return OutcomeUnknownOrder, nil
	}
	log = log.With(zap.Int("txnID", txn.ID))

	var outcome Outcome
	switch event.Kind {
	case gateway.EventSucceeded:
		outcome, err = s.applySuccess(ctx, txn, event, log)
	case gateway.EventFailed:
		outcome, err = s.applyFailure(ctx, txn, event, log)
	case gateway.EventDenied:
		outcome, err = s.applyDenial(ctx, txn, event, log)
	default:
		outcome, err = OutcomeRecorded, s.txns.AppendEvent(ctx, txn.ID, event.AuditRecord(domain.OutcomeRecorded, s.now()))
	}
	if err != nil {
		log.Error("failed to apply gateway event", zap.Error(err))
		return "", err
	}
	log.Info("gateway event applied", zap.String("outcome", string(outcome)))
	return outcome, nil
}

func (s *Service) applySuccess(ctx context.Context, txn *domain.Transaction, event *gateway.Event, log *zap.Logger) (Outcome, error) {
	if txn.Status == domain.TransactionPending {
		applied, err := s.ledger.SettlePurchase(ctx, txn.ID, event.Gateway, event.PaymentID, event.AuditRecord(domain.OutcomeApplied, s.now()))
		if err != nil {
			return "", err
		}
		if applied {
			log.Info("purchase credited", zap.Int("userID", txn.UserID), zap.Int("credits", txn.Credits))
			return OutcomeApplied, nil
		}
		// someone else closed it first
		if txn, err = s.txns.GetByID(ctx, txn.ID); err != nil {
			return "", err
		}
		if txn == nil {
			return "", domain.ErrTransactionNotFound
		}
	}

	if txn.Status == domain.TransactionFailed {
		log.Error("payment captured for a failed purchase, manual review required",
			zap.Int("userID", txn.UserID), zap.String("paymentID", event.PaymentID))
		return OutcomeNeedsReview, s.txns.AppendEvent(ctx, txn.ID, event.AuditRecord(domain.OutcomeNeedsReview, s.now()))
	}
	return OutcomeDuplicate, s.txns.AppendEvent(ctx, txn.ID, event.AuditRecord(domain.OutcomeDuplicate, s.now()))
}

func (s *Service) applyFailure(ctx context.Context, txn *domain.Transaction, event *gateway.Event, log *zap.Logger) (Outcome, error) {
	var outcome Outcome
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.txns.LockByID(ctx, txn.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrTransactionNotFound
		}
		now := s.now()
		if locked.Status != domain.TransactionPending {
			outcome = OutcomeRecorded
			return s.txns.AppendEvent(ctx, locked.ID, event.AuditRecord(domain.OutcomeRecorded, now))
		}

		reason := event.Reason
		if reason == "" {
			reason = event.Type
		}
		failures := locked.FailureCount + 1
		if !s.policy.Escalate(failures, locked.LastAttemptAt, now) {
			outcome = OutcomeFailureRecorded
			return s.txns.RecordFailure(ctx, locked.ID, reason, now, event.AuditRecord(domain.OutcomeFailureRecorded, now))
		}

		if err := s.txns.RecordFailure(ctx, locked.ID, reason, now, event.AuditRecord(domain.OutcomeFailed, now)); err != nil {
			return err
		}
		escalation := domain.TransactionEvent{
			Source:  sourceLedger,
			Type:    "escalation",
			Outcome: domain.OutcomeFailed,
			Detail: fmt.Sprintf("%d failures, previous attempt %s ago",
				failures, now.Sub(*locked.LastAttemptAt).Round(time.Second)),
			At: now,
		}
		if _, err := s.txns.Fail(ctx, locked.ID, reason, escalation); err != nil {
			return err
		}
		log.Warn("purchase failed after repeated payment failures", zap.Int("failures", failures))
		outcome = OutcomeFailed
		return nil
	})
	return outcome, err
}

func (s *Service) applyDenial(ctx context.Context, txn *domain.Transaction, event *gateway.Event, log *zap.Logger) (Outcome, error) {
	now := s.now()
	reason := event.Reason
	if reason == "" {
		reason = event.Type
	}
	if txn.Status == domain.TransactionPending {
		failed, err := s.txns.Fail(ctx, txn.ID, reason, event.AuditRecord(domain.OutcomeFailed, now))
		if err != nil {
			return "", err
		}
		if failed {
			return OutcomeFailed, nil
		}
		if txn, err = s.txns.GetByID(ctx, txn.ID); err != nil {
			return "", err
		}
		if txn == nil {
			return "", domain.ErrTransactionNotFound
		}
	}

	if txn.Status == domain.TransactionCompleted {
		log.Error("payment denied for a completed purchase, manual review required", zap.Int("userID", txn.UserID))
		return OutcomeNeedsReview, s.txns.AppendEvent(ctx, txn.ID, event.AuditRecord(domain.OutcomeNeedsReview, now))
	}
	return OutcomeDuplicate, s.txns.AppendEvent(ctx, txn.ID, event.AuditRecord(domain.OutcomeDuplicate, now))
}

func validateOrder(req OrderRequest) error {
	if req.Credits <= 0 {
		return fmt.Errorf("credits must be positive: %w", domain.ErrInvalidOrder)
	}
	if len(req.Currency) != 3 {
		return fmt.Errorf("currency must be an ISO 4217 code: %w", domain.ErrInvalidOrder)
	}
	if _, err := money.ToMinorUnits(req.Amount, req.Currency); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidOrder)
	}
	return nil
}

// CreateOrder opens a credit purchase with the gateway. A PENDING purchase
// with identical parameters is reused instead of creating a second one. The
// gateway is called only after the database unit has committed.
func (s *Service) CreateOrder(ctx context.Context, userID int, g domain.Gateway, req OrderRequest) (*OrderResult, error) {
	req.Currency = strings.ToUpper(req.Currency)
	if err := validateOrder(req); err != nil {
		return nil, err
	}
	adapter, err := s.gateways.Get(g)
	if err != nil {
		return nil, err
	}

	var (
		txn    *domain.Transaction
		reused bool
	)
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.users.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}

		now := s.now()
		existing, err := s.txns.FindReusablePending(ctx, userID, g, req.Amount, req.Currency, req.Credits)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.txns.RecordAttempt(ctx, existing.ID, now); err != nil {
				return err
			}
			existing.AttemptCount++
			existing.LastAttemptAt = &now
			txn, reused = existing, true
			return nil
		}

		txn = &domain.Transaction{
			UserID:        userID,
			Type:          domain.TransactionCreditPurchase,
			Amount:        req.Amount,
			Currency:      req.Currency,
			Credits:       req.Credits,
			Status:        domain.TransactionPending,
			Gateway:       &g,
			AttemptCount:  1,
			LastAttemptAt: &now,
			Metadata: domain.AuditLog{{
				Source:  sourceLedger,
				Type:    "order.requested",
				Outcome: domain.OutcomeRecorded,
				Detail:  money.Format(req.Amount, req.Currency) + " " + req.Currency,
				At:      now,
			}},
		}
		return s.txns.Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	result := &OrderResult{TransactionID: txn.ID, Reused: reused}
	if orderID := txn.GatewayOrderID(); orderID != "" {
		// the payer continues with the order already issued for this purchase
		result.GatewayOrderID = orderID
		return result, nil
	}

	order, err := adapter.CreateOrder(ctx, gateway.OrderRequest{
		Reference: fmt.Sprintf("txn-%d", txn.ID),
		Amount:    req.Amount,
		Currency:  req.Currency,
		Credits:   req.Credits,
	})
	if err != nil {
		zap.L().Error("gateway order creation failed",
			zap.String("gateway", string(g)), zap.Int("txnID", txn.ID), zap.Error(err))
		return nil, err
	}

	stored, err := s.txns.SetGatewayOrder(ctx, txn.ID, g, order.ID, domain.TransactionEvent{
		Source:     string(g),
		Type:       "order.created",
		ExternalID: order.ID,
		Outcome:    domain.OutcomeRecorded,
		At:         s.now(),
	})
	if err != nil {
		return nil, err
	}
	if !stored {
		current, err := s.txns.GetByID(ctx, txn.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, domain.ErrTransactionNotFound
		}
		zap.L().Warn("purchase already has a gateway order, discarding the new one",
			zap.Int("txnID", txn.ID), zap.String("discarded", order.ID), zap.String("kept", current.GatewayOrderID()))
		result.GatewayOrderID = current.GatewayOrderID()
		return result, nil
	}

	result.GatewayOrderID = order.ID
	result.ApprovalURL = order.ApprovalURL
	zap.L().Info("purchase order created",
		zap.Int("userID", userID), zap.Int("txnID", txn.ID), zap.String("gateway", string(g)), zap.String("orderID", order.ID))
	return result, nil
}

// CaptureOrder finishes a payment the user approved in the client checkout.
// The gateway result goes through Apply like any webhook.
func (s *Service) CaptureOrder(ctx context.Context, userID int, g domain.Gateway, req gateway.CaptureRequest) (*domain.Transaction, error) {
	adapter, err := s.gateways.Get(g)
	if err != nil {
		return nil, err
	}
	txn, err := s.txns.FindByGatewayOrder(ctx, g, req.OrderID)
	if err != nil {
		return nil, err
	}
	if txn == nil || txn.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	if txn.Status != domain.TransactionPending {
		return txn, nil
	}

	event, err := adapter.CaptureOrder(ctx, req)
	if err != nil {
		if errors.Is(err, gateway.ErrUnavailable) {
			zap.L().Warn("capture outcome unknown, purchase stays pending",
				zap.Int("txnID", txn.ID), zap.Error(err))
		}
		return nil, err
	}
	if event.OrderID == "" {
		event.OrderID = req.OrderID
	}
	if _, err := s.Apply(ctx, event); err != nil {
		return nil, err
	}

	current, err := s.txns.GetByID(ctx, txn.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrTransactionNotFound
	}
	return current, nil
}
