// Package reconcile polls gateways for purchases whose webhooks never arrived.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GlebRadaev/examledger/internal/config"
	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/gateway"
	"github.com/GlebRadaev/examledger/internal/service/paymentservice"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=reconcile.go -destination=mock_reconcile.go -package=reconcile

const (
	maxRetries    = 3
	retryInterval = time.Second
)

type TransactionRepo interface {
	FindStalePending(ctx context.Context, olderThan time.Time, limit uint32) ([]domain.Transaction, error)
}

type Gateways interface {
	Get(g domain.Gateway) (gateway.Adapter, error)
}

type Payments interface {
	Apply(ctx context.Context, event *gateway.Event) (paymentservice.Outcome, error)
}

// Summary describes one sweep.
type Summary struct {
	Checked int
	Applied int
}

type Service struct {
	txns           TransactionRepo
	gateways       Gateways
	payments       Payments
	workerPool     WorkerPoolI
	inFlight       sync.Map
	wg             sync.WaitGroup
	limit          uint32
	after          time.Duration
	updateInterval time.Duration
	retryInterval  time.Duration
	now            func() time.Time
}

func New(cfg config.Reconcile, txns TransactionRepo, gateways Gateways, payments Payments) *Service {
	return &Service{
		txns:           txns,
		gateways:       gateways,
		payments:       payments,
		workerPool:     NewWorkerPool(cfg.Workers),
		limit:          cfg.Batch,
		after:          cfg.After,
		updateInterval: cfg.Interval,
		retryInterval:  retryInterval,
		now:            time.Now,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("reconciler started", zap.Duration("interval", s.updateInterval))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping reconciler")
			return
		case <-ticker.C:
			summary, err := s.Sweep(ctx)
			if err != nil {
				zap.L().Error("reconcile sweep failed", zap.Error(err))
			}
			if summary.Applied > 0 {
				zap.L().Info("reconcile sweep finished",
					zap.Int("checked", summary.Checked),
					zap.Int("applied", summary.Applied))
			}
		}
	}
}

// Close waits for the loop started by Start to return and then drains the
// worker pool. The context passed to Start must be done first.
func (s *Service) Close() {
	s.wg.Wait()
	s.workerPool.Close()
}

// Sweep asks the gateways about old PENDING purchases. Only terminal gateway
// states are applied; a purchase is never failed for being quiet. It returns
// once every queued check is done.
func (s *Service) Sweep(ctx context.Context) (Summary, error) {
	var summary Summary

	txns, err := s.txns.FindStalePending(ctx, s.now().Add(-s.after), atomic.LoadUint32(&s.limit))
	if err != nil {
		return summary, fmt.Errorf("load pending purchases: %w", err)
	}

	var (
		g       errgroup.Group
		checked atomic.Int32
		applied atomic.Int32
	)
	for _, txn := range txns {
		txn := txn

		if _, loaded := s.inFlight.LoadOrStore(txn.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			done := make(chan error, 1)
			err := s.workerPool.AddTask(ctx, func() error {
				defer s.inFlight.Delete(txn.ID)
				ok, err := s.handleTransaction(ctx, txn)
				checked.Add(1)
				if ok {
					applied.Add(1)
				}
				done <- err
				return err
			})
			if err != nil {
				s.inFlight.Delete(txn.ID)
				return err
			}
			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	err = g.Wait()
	summary.Checked = int(checked.Load())
	summary.Applied = int(applied.Load())
	return summary, err
}

// handleTransaction reports whether a terminal gateway state was applied.
func (s *Service) handleTransaction(ctx context.Context, txn domain.Transaction) (bool, error) {
	if txn.Gateway == nil {
		return false, nil
	}
	orderID := txn.GatewayOrderID()
	adapter, err := s.gateways.Get(*txn.Gateway)
	if err != nil {
		return false, err
	}

	event, err := s.fetchOrder(ctx, adapter, orderID)
	if err != nil {
		return false, fmt.Errorf("fetch order %s of transaction %d: %w", orderID, txn.ID, err)
	}

	switch event.Kind {
	case gateway.EventSucceeded, gateway.EventDenied:
	default:
		zap.L().Debug("order still open at the gateway",
			zap.Int("txnID", txn.ID), zap.String("orderID", orderID), zap.String("type", event.Type))
		return false, nil
	}

	if event.OrderID == "" {
		event.OrderID = orderID
	}
	outcome, err := s.payments.Apply(ctx, event)
	if err != nil {
		return false, err
	}
	zap.L().Info("pending purchase reconciled",
		zap.Int("txnID", txn.ID), zap.String("orderID", orderID), zap.String("outcome", string(outcome)))
	return true, nil
}

func (s *Service) fetchOrder(ctx context.Context, adapter gateway.Adapter, orderID string) (*gateway.Event, error) {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var event *gateway.Event
		event, err = adapter.FetchOrder(ctx, orderID)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, gateway.ErrUnavailable) || attempt == maxRetries {
			break
		}

		retryAfter := s.retryInterval * time.Duration(attempt)
		zap.L().Warn("gateway unavailable, retrying",
			zap.String("orderID", orderID), zap.Int("attempt", attempt), zap.Duration("retryAfter", retryAfter))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryAfter):
		}
	}
	return nil, err
}
