package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:generate mockgen -source=txmanager.go -destination=mock_txmanager.go -package=pg

type TransactionalFn func(ctx context.Context) error

// TXManager runs fn inside a single database transaction. A nested Begin joins
// the transaction already carried by ctx.
type TXManager interface {
	Begin(ctx context.Context, fn TransactionalFn) error
}

type TxManager struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

func NewTXManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{
		pool: pool,
		opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
	}
}

func (m *TxManager) Begin(ctx context.Context, fn TransactionalFn) (err error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.pool.BeginTx(ctx, m.opts)
	if err != nil {
		zap.L().Error("can't begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			zap.L().Error("can't rollback transaction", zap.Error(rbErr))
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		zap.L().Error("can't commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
