package transactionrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const transactionColumns = `id, user_id, type, amount::text, currency, credits, status, gateway, attempt_id,
	paypal_order_id, paypal_capture_id, razorpay_order_id, razorpay_payment_id,
	attempt_count, failure_count, last_failure_reason, last_attempt_at, completed_at,
	metadata, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func orderColumn(g domain.Gateway) (string, error) {
	switch g {
	case domain.GatewayPayPal:
		return "paypal_order_id", nil
	case domain.GatewayRazorpay:
		return "razorpay_order_id", nil
	}
	return "", domain.ErrUnsupportedGateway
}

func paymentColumn(g domain.Gateway) (string, error) {
	switch g {
	case domain.GatewayPayPal:
		return "paypal_capture_id", nil
	case domain.GatewayRazorpay:
		return "razorpay_payment_id", nil
	}
	return "", domain.ErrUnsupportedGateway
}

// encodeEvent renders a single audit entry as a one-element jsonb array, the
// right-hand side of metadata || $n.
func encodeEvent(event domain.TransactionEvent) (string, error) {
	raw, err := json.Marshal(domain.AuditLog{event})
	if err != nil {
		return "", fmt.Errorf("encode audit event: %w", err)
	}
	return string(raw), nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn      domain.Transaction
		txType   string
		status   string
		amount   string
		gateway  *string
		metadata []byte
	)
	err := row.Scan(
		&txn.ID, &txn.UserID, &txType, &amount, &txn.Currency, &txn.Credits, &status, &gateway, &txn.AttemptID,
		&txn.PayPalOrderID, &txn.PayPalCaptureID, &txn.RazorpayOrderID, &txn.RazorpayPaymentID,
		&txn.AttemptCount, &txn.FailureCount, &txn.LastFailureReason, &txn.LastAttemptAt, &txn.CompletedAt,
		&metadata, &txn.CreatedAt, &txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Type = domain.TransactionType(txType)
	txn.Status = domain.TransactionStatus(status)
	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if gateway != nil {
		g := domain.Gateway(*gateway)
		txn.Gateway = &g
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &txn.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &txn, nil
}

func (repo *Repository) find(ctx context.Context, query string, args ...any) (*domain.Transaction, error) {
	txn, err := scanTransaction(repo.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get transaction", zap.Any("args", args), zap.Error(err))
		return nil, err
	}
	return txn, nil
}

func (repo *Repository) Create(ctx context.Context, txn *domain.Transaction) error {
	metadata := txn.Metadata
	if metadata == nil {
		metadata = domain.AuditLog{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	var gateway *string
	if txn.Gateway != nil {
		g := string(*txn.Gateway)
		gateway = &g
	}

	query := `
		INSERT INTO transactions (user_id, type, amount, currency, credits, status, gateway, attempt_id,
			paypal_order_id, razorpay_order_id, attempt_count, last_attempt_at, completed_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14::jsonb)
		RETURNING id, created_at, updated_at
	`
	err = repo.db.QueryRow(ctx, query,
		txn.UserID, string(txn.Type), txn.Amount.String(), txn.Currency, txn.Credits, string(txn.Status),
		gateway, txn.AttemptID, txn.PayPalOrderID, txn.RazorpayOrderID, txn.AttemptCount,
		txn.LastAttemptAt, txn.CompletedAt, string(raw),
	).Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
	if err != nil {
		zap.L().Error("can't create transaction",
			zap.Int("userID", txn.UserID), zap.String("type", string(txn.Type)), zap.Error(err))
		return err
	}
	txn.Metadata = metadata
	return nil
}

func (repo *Repository) GetByID(ctx context.Context, txnID int) (*domain.Transaction, error) {
	return repo.find(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = $1", txnID)
}

func (repo *Repository) LockByID(ctx context.Context, txnID int) (*domain.Transaction, error) {
	return repo.find(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = $1 FOR UPDATE", txnID)
}

// FindByGatewayOrder resolves a gateway's order id to its transaction. The
// order id columns are unique, so there is at most one match.
func (repo *Repository) FindByGatewayOrder(ctx context.Context, g domain.Gateway, orderID string) (*domain.Transaction, error) {
	column, err := orderColumn(g)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM transactions WHERE %s = $1", transactionColumns, column)
	return repo.find(ctx, query, orderID)
}

// FindReusablePending locks the newest PENDING purchase of the user matching
// the order parameters exactly.
func (repo *Repository) FindReusablePending(
	ctx context.Context, userID int, g domain.Gateway, amount decimal.Decimal, currency string, credits int,
) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND gateway = $2 AND amount = $3::numeric AND currency = $4 AND credits = $5
			AND status = 'PENDING' AND type = 'CREDIT_PURCHASE'
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE`
	return repo.find(ctx, query, userID, string(g), amount.String(), currency, credits)
}

func (repo *Repository) RecordAttempt(ctx context.Context, txnID int, at time.Time) error {
	query := `
		UPDATE transactions
		SET attempt_count = attempt_count + 1, last_attempt_at = $2, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := repo.db.Exec(ctx, query, txnID, at); err != nil {
		zap.L().Error("can't record purchase attempt", zap.Int("txnID", txnID), zap.Error(err))
		return err
	}
	return nil
}

// SetGatewayOrder attaches the gateway order id unless the transaction
// already has one. It reports whether the id was stored.
func (repo *Repository) SetGatewayOrder(
	ctx context.Context, txnID int, g domain.Gateway, orderID string, event domain.TransactionEvent,
) (bool, error) {
	column, err := orderColumn(g)
	if err != nil {
		return false, err
	}
	entry, err := encodeEvent(event)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`
		UPDATE transactions
		SET %[1]s = $2, gateway = $3, metadata = metadata || $4::jsonb, updated_at = NOW()
		WHERE id = $1 AND %[1]s IS NULL
	`, column)
	tag, err := repo.db.Exec(ctx, query, txnID, orderID, string(g), entry)
	if err != nil {
		zap.L().Error("can't attach gateway order", zap.Int("txnID", txnID), zap.String("orderID", orderID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Complete moves a PENDING transaction to COMPLETED and returns the updated
// row. It returns nil when the row was not PENDING; exactly one caller can
// ever observe a non-nil result for a given transaction.
func (repo *Repository) Complete(
	ctx context.Context, txnID int, g domain.Gateway, paymentID string, at time.Time, event domain.TransactionEvent,
) (*domain.Transaction, error) {
	column, err := paymentColumn(g)
	if err != nil {
		return nil, err
	}
	entry, err := encodeEvent(event)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		UPDATE transactions
		SET status = 'COMPLETED', completed_at = $3, %[1]s = COALESCE(NULLIF($2, ''), %[1]s),
			metadata = metadata || $4::jsonb, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING %[2]s
	`, column, transactionColumns)
	return repo.find(ctx, query, txnID, paymentID, at, entry)
}

// RecordFailure bumps the failure counters of a PENDING transaction.
func (repo *Repository) RecordFailure(
	ctx context.Context, txnID int, reason string, at time.Time, event domain.TransactionEvent,
) error {
	entry, err := encodeEvent(event)
	if err != nil {
		return err
	}
	query := `
		UPDATE transactions
		SET failure_count = failure_count + 1, last_failure_reason = $2, last_attempt_at = $3,
			metadata = metadata || $4::jsonb, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
	`
	if _, err := repo.db.Exec(ctx, query, txnID, reason, at, entry); err != nil {
		zap.L().Error("can't record payment failure", zap.Int("txnID", txnID), zap.Error(err))
		return err
	}
	return nil
}

// Fail moves a PENDING transaction to FAILED and reports whether it did.
func (repo *Repository) Fail(ctx context.Context, txnID int, reason string, event domain.TransactionEvent) (bool, error) {
	entry, err := encodeEvent(event)
	if err != nil {
		return false, err
	}
	query := `
		UPDATE transactions
		SET status = 'FAILED', last_failure_reason = $2, metadata = metadata || $3::jsonb, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
	`
	tag, err := repo.db.Exec(ctx, query, txnID, reason, entry)
	if err != nil {
		zap.L().Error("can't fail transaction", zap.Int("txnID", txnID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (repo *Repository) AppendEvent(ctx context.Context, txnID int, event domain.TransactionEvent) error {
	entry, err := encodeEvent(event)
	if err != nil {
		return err
	}
	query := `
		UPDATE transactions
		SET metadata = metadata || $2::jsonb, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := repo.db.Exec(ctx, query, txnID, entry); err != nil {
		zap.L().Error("can't append transaction event", zap.Int("txnID", txnID), zap.Error(err))
		return err
	}
	return nil
}

// FindStalePending lists PENDING purchases with a gateway order that were
// created before olderThan, oldest first.
func (repo *Repository) FindStalePending(ctx context.Context, olderThan time.Time, limit uint32) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = 'PENDING' AND type = 'CREDIT_PURCHASE'
			AND (paypal_order_id IS NOT NULL OR razorpay_order_id IS NOT NULL)
			AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`
	rows, err := repo.db.Query(ctx, query, olderThan, limit)
	if err != nil {
		zap.L().Error("can't list stale pending transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			zap.L().Error("can't scan transaction", zap.Error(err))
			return nil, err
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}
