// Package memstore is an in-memory ledger store for tests. It implements the
// repositories and the transaction manager with one store-wide lock, so every
// transaction runs serializably and rolls back on error.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/pg"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type txKey struct{}

var errUniqueViolation = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

type state struct {
	users     map[int]domain.User
	exams     map[int]domain.Exam
	questions map[int][]int
	attempts  map[int]domain.ExamAttempt
	txns      map[int]domain.Transaction
	nextID    int
}

func (st *state) clone() *state {
	c := &state{
		users:     make(map[int]domain.User, len(st.users)),
		exams:     st.exams,
		questions: st.questions,
		attempts:  make(map[int]domain.ExamAttempt, len(st.attempts)),
		txns:      make(map[int]domain.Transaction, len(st.txns)),
		nextID:    st.nextID,
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.attempts {
		c.attempts[k] = v
	}
	for k, v := range st.txns {
		c.txns[k] = v
	}
	return c
}

type Store struct {
	mu  sync.Mutex
	st  *state
	Now func() time.Time
}

func New() *Store {
	return &Store{
		st: &state{
			users:     make(map[int]domain.User),
			exams:     make(map[int]domain.Exam),
			questions: make(map[int][]int),
			attempts:  make(map[int]domain.ExamAttempt),
			txns:      make(map[int]domain.Transaction),
		},
		Now: time.Now,
	}
}

var _ pg.TXManager = (*Store)(nil)

// Begin runs fn holding the store lock and restores the previous state when
// fn fails.
func (s *Store) Begin(ctx context.Context, fn pg.TransactionalFn) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) with(ctx context.Context, fn func(st *state)) {
	if ctx.Value(txKey{}) == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn(s.st)
}

func (st *state) id() int {
	st.nextID++
	return st.nextID
}

func (s *Store) AddUser(userID, credits int) {
	s.with(context.Background(), func(st *state) {
		st.users[userID] = domain.User{ID: userID, Credits: credits, CreatedAt: s.Now()}
	})
}

// AddExam stores the exam with its questions in serving order.
func (s *Store) AddExam(exam domain.Exam, questionIDs ...int) {
	s.with(context.Background(), func(st *state) {
		st.exams[exam.ID] = exam
		st.questions[exam.ID] = append([]int(nil), questionIDs...)
	})
}

func (s *Store) Credits(userID int) int {
	var credits int
	s.with(context.Background(), func(st *state) {
		credits = st.users[userID].Credits
	})
	return credits
}

// Transactions returns all stored transactions ordered by id.
func (s *Store) Transactions() []domain.Transaction {
	var out []domain.Transaction
	s.with(context.Background(), func(st *state) {
		for _, t := range st.txns {
			out = append(out, t)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Attempts returns all stored attempts ordered by id.
func (s *Store) Attempts() []domain.ExamAttempt {
	var out []domain.ExamAttempt
	s.with(context.Background(), func(st *state) {
		for _, a := range st.attempts {
			out = append(out, a)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Backdate moves the last attempt time of a transaction, as if it happened at.
func (s *Store) Backdate(txnID int, at time.Time) {
	s.with(context.Background(), func(st *state) {
		t := st.txns[txnID]
		t.LastAttemptAt = &at
		t.CreatedAt = at
		st.txns[txnID] = t
	})
}

func (s *Store) Users() *Users {
	return &Users{s}
}

func (s *Store) Exams() *Exams {
	return &Exams{s}
}

func (s *Store) AttemptRepo() *Attempts {
	return &Attempts{s}
}

func (s *Store) TransactionRepo() *Txns {
	return &Txns{s}
}

func ptr[T any](v T) *T {
	return &v
}

func appendEvent(log domain.AuditLog, e domain.TransactionEvent) domain.AuditLog {
	return append(append(domain.AuditLog{}, log...), e)
}

type Users struct{ s *Store }

func (u *Users) GetByID(ctx context.Context, userID int) (*domain.User, error) {
	var out *domain.User
	u.s.with(ctx, func(st *state) {
		if user, ok := st.users[userID]; ok {
			out = &user
		}
	})
	return out, nil
}

func (u *Users) LockByID(ctx context.Context, userID int) (*domain.User, error) {
	return u.GetByID(ctx, userID)
}

func (u *Users) Debit(ctx context.Context, userID int, credits int) (bool, error) {
	var ok bool
	u.s.with(ctx, func(st *state) {
		user, found := st.users[userID]
		if !found || user.Credits < credits {
			return
		}
		user.Credits -= credits
		st.users[userID] = user
		ok = true
	})
	return ok, nil
}

func (u *Users) Credit(ctx context.Context, userID int, credits int) error {
	var err error
	u.s.with(ctx, func(st *state) {
		user, found := st.users[userID]
		if !found {
			err = domain.ErrUserNotFound
			return
		}
		user.Credits += credits
		st.users[userID] = user
	})
	return err
}

type Exams struct{ s *Store }

func (e *Exams) GetByID(ctx context.Context, examID int) (*domain.Exam, error) {
	var out *domain.Exam
	e.s.with(ctx, func(st *state) {
		if exam, ok := st.exams[examID]; ok {
			out = &exam
		}
	})
	return out, nil
}

func (e *Exams) ListQuestionIDs(ctx context.Context, examID int, limit int) ([]int, error) {
	var out []int
	e.s.with(ctx, func(st *state) {
		q := st.questions[examID]
		if len(q) > limit {
			q = q[:limit]
		}
		out = append([]int{}, q...)
	})
	return out, nil
}

type Attempts struct{ s *Store }

func (a *Attempts) FindInProgress(ctx context.Context, userID, examID int) (*domain.ExamAttempt, error) {
	var out *domain.ExamAttempt
	a.s.with(ctx, func(st *state) {
		for _, at := range st.attempts {
			if at.UserID == userID && at.ExamID == examID && at.Status == domain.AttemptInProgress {
				out = ptr(at)
				return
			}
		}
	})
	return out, nil
}

func (a *Attempts) GetByID(ctx context.Context, attemptID int) (*domain.ExamAttempt, error) {
	var out *domain.ExamAttempt
	a.s.with(ctx, func(st *state) {
		if at, ok := st.attempts[attemptID]; ok {
			out = &at
		}
	})
	return out, nil
}

func (a *Attempts) Create(ctx context.Context, attempt *domain.ExamAttempt) error {
	var err error
	a.s.with(ctx, func(st *state) {
		for _, at := range st.attempts {
			if at.UserID == attempt.UserID && at.ExamID == attempt.ExamID && at.Status == domain.AttemptInProgress {
				err = errUniqueViolation
				return
			}
		}
		attempt.ID = st.id()
		attempt.StartedAt = a.s.Now()
		stored := *attempt
		stored.ServedQuestions = append([]int(nil), attempt.ServedQuestions...)
		st.attempts[attempt.ID] = stored
	})
	return err
}

func (a *Attempts) Finish(ctx context.Context, attemptID int, status domain.AttemptStatus, at time.Time) (bool, error) {
	var ok bool
	a.s.with(ctx, func(st *state) {
		attempt, found := st.attempts[attemptID]
		if !found || attempt.Status != domain.AttemptInProgress {
			return
		}
		attempt.Status = status
		attempt.FinishedAt = &at
		st.attempts[attemptID] = attempt
		ok = true
	})
	return ok, nil
}

type Txns struct{ s *Store }

func orderOf(t domain.Transaction, g domain.Gateway) *string {
	switch g {
	case domain.GatewayPayPal:
		return t.PayPalOrderID
	case domain.GatewayRazorpay:
		return t.RazorpayOrderID
	}
	return nil
}

func (r *Txns) Create(ctx context.Context, txn *domain.Transaction) error {
	var err error
	r.s.with(ctx, func(st *state) {
		for _, t := range st.txns {
			for _, g := range []domain.Gateway{domain.GatewayPayPal, domain.GatewayRazorpay} {
				if a, b := orderOf(t, g), orderOf(*txn, g); a != nil && b != nil && *a == *b {
					err = errUniqueViolation
					return
				}
			}
		}
		now := r.s.Now()
		txn.ID = st.id()
		txn.CreatedAt, txn.UpdatedAt = now, now
		if txn.Metadata == nil {
			txn.Metadata = domain.AuditLog{}
		}
		st.txns[txn.ID] = *txn
	})
	return err
}

func (r *Txns) GetByID(ctx context.Context, txnID int) (*domain.Transaction, error) {
	var out *domain.Transaction
	r.s.with(ctx, func(st *state) {
		if t, ok := st.txns[txnID]; ok {
			out = &t
		}
	})
	return out, nil
}

func (r *Txns) LockByID(ctx context.Context, txnID int) (*domain.Transaction, error) {
	return r.GetByID(ctx, txnID)
}

func (r *Txns) FindByGatewayOrder(ctx context.Context, g domain.Gateway, orderID string) (*domain.Transaction, error) {
	var out *domain.Transaction
	r.s.with(ctx, func(st *state) {
		for _, t := range st.txns {
			if id := orderOf(t, g); id != nil && *id == orderID {
				out = ptr(t)
				return
			}
		}
	})
	return out, nil
}

func (r *Txns) FindReusablePending(
	ctx context.Context, userID int, g domain.Gateway, amount decimal.Decimal, currency string, credits int,
) (*domain.Transaction, error) {
	var out *domain.Transaction
	r.s.with(ctx, func(st *state) {
		for _, t := range st.txns {
			if t.UserID != userID || t.Gateway == nil || *t.Gateway != g || t.Status != domain.TransactionPending ||
				t.Type != domain.TransactionCreditPurchase || !t.Amount.Equal(amount) || t.Currency != currency || t.Credits != credits {
				continue
			}
			if out == nil || t.ID > out.ID {
				out = ptr(t)
			}
		}
	})
	return out, nil
}

func (r *Txns) update(ctx context.Context, txnID int, fn func(t *domain.Transaction) bool) bool {
	var changed bool
	r.s.with(ctx, func(st *state) {
		t, ok := st.txns[txnID]
		if !ok || !fn(&t) {
			return
		}
		t.UpdatedAt = r.s.Now()
		st.txns[txnID] = t
		changed = true
	})
	return changed
}

func (r *Txns) RecordAttempt(ctx context.Context, txnID int, at time.Time) error {
	r.update(ctx, txnID, func(t *domain.Transaction) bool {
		t.AttemptCount++
		t.LastAttemptAt = &at
		return true
	})
	return nil
}

func (r *Txns) SetGatewayOrder(ctx context.Context, txnID int, g domain.Gateway, orderID string, event domain.TransactionEvent) (bool, error) {
	return r.update(ctx, txnID, func(t *domain.Transaction) bool {
		if orderOf(*t, g) != nil {
			return false
		}
		t.SetGatewayOrderID(g, orderID)
		t.Metadata = appendEvent(t.Metadata, event)
		return true
	}), nil
}

func (r *Txns) Complete(
	ctx context.Context, txnID int, g domain.Gateway, paymentID string, at time.Time, event domain.TransactionEvent,
) (*domain.Transaction, error) {
	var out *domain.Transaction
	r.update(ctx, txnID, func(t *domain.Transaction) bool {
		if t.Status != domain.TransactionPending {
			return false
		}
		t.Status = domain.TransactionCompleted
		t.CompletedAt = &at
		t.SetGatewayPaymentID(g, paymentID)
		t.Metadata = appendEvent(t.Metadata, event)
		out = ptr(*t)
		return true
	})
	return out, nil
}

func (r *Txns) RecordFailure(ctx context.Context, txnID int, reason string, at time.Time, event domain.TransactionEvent) error {
	r.update(ctx, txnID, func(t *domain.Transaction) bool {
		if t.Status != domain.TransactionPending {
			return false
		}
		t.FailureCount++
		t.LastFailureReason = reason
		t.LastAttemptAt = &at
		t.Metadata = appendEvent(t.Metadata, event)
		return true
	})
	return nil
}

func (r *Txns) Fail(ctx context.Context, txnID int, reason string, event domain.TransactionEvent) (bool, error) {
	return r.update(ctx, txnID, func(t *domain.Transaction) bool {
		if t.Status != domain.TransactionPending {
			return false
		}
		t.Status = domain.TransactionFailed
		t.LastFailureReason = reason
		t.Metadata = appendEvent(t.Metadata, event)
		return true
	}), nil
}

func (r *Txns) AppendEvent(ctx context.Context, txnID int, event domain.TransactionEvent) error {
	r.update(ctx, txnID, func(t *domain.Transaction) bool {
		t.Metadata = appendEvent(t.Metadata, event)
		return true
	})
	return nil
}

func (r *Txns) FindStalePending(ctx context.Context, olderThan time.Time, limit uint32) ([]domain.Transaction, error) {
	var out []domain.Transaction
	r.s.with(ctx, func(st *state) {
		for _, t := range st.txns {
			if t.Status == domain.TransactionPending && t.Type == domain.TransactionCreditPurchase &&
				(t.PayPalOrderID != nil || t.RazorpayOrderID != nil) && t.CreatedAt.Before(olderThan) {
				out = append(out, t)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if uint32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
