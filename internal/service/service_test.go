package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/GlebRadaev/examledger/internal/config"
	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/gateway"
	"github.com/GlebRadaev/examledger/internal/gateway/razorpay"
	"github.com/GlebRadaev/examledger/internal/reconcile"
	"github.com/GlebRadaev/examledger/internal/repo"
	"github.com/GlebRadaev/examledger/internal/service/paymentservice"
	"github.com/GlebRadaev/examledger/internal/testutil/memstore"
	"github.com/GlebRadaev/examledger/pkg/clients"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userID        = 1
	webhookSecret = "whsec_test"
)

type env struct {
	store    *memstore.Store
	services *Services
	gateways gateway.Registry
}

func newEnv(t *testing.T) *env {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/orders":
			fmt.Fprint(w, `{"id":"order_rzp_1","status":"created"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/orders/order_rzp_1/payments":
			fmt.Fprint(w, `{"items":[{"id":"pay_6","order_id":"order_rzp_1","status":"failed","error_description":"card declined","created_at":1714560000}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	store := memstore.New()
	repos := &repo.Repositories{
		UserRepo:        store.Users(),
		ExamRepo:        store.Exams(),
		AttemptRepo:     store.AttemptRepo(),
		TransactionRepo: store.TransactionRepo(),
		TxManager:       store,
	}
	gateways := gateway.NewRegistry(razorpay.New(razorpay.Config{
		KeyID:         "rzp_test",
		KeySecret:     "key_secret",
		WebhookSecret: webhookSecret,
		BaseURL:       server.URL,
	}, clients.NewHTTPClient(time.Second)))

	return &env{
		store:    store,
		services: New(repos, gateways, paymentservice.FailurePolicy{MaxFailures: 5, StaleAfter: time.Hour}),
		gateways: gateways,
	}
}

func capturedWebhook(orderID, paymentID string) (http.Header, []byte) {
	body := []byte(fmt.Sprintf(
		`{"event":"payment.captured","created_at":1714560000,"payload":{"payment":{"entity":{"id":%q,"order_id":%q,"status":"captured"}}}}`,
		paymentID, orderID))
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)

	header := http.Header{}
	header.Set(razorpay.SignatureHeader, hex.EncodeToString(mac.Sum(nil)))
	header.Set(razorpay.EventIDHeader, "evt_"+paymentID)
	return header, body
}

func (e *env) buyCredits(t *testing.T, credits int) *paymentservice.OrderResult {
	order, err := e.services.PaymentService.CreateOrder(context.Background(), userID, domain.GatewayRazorpay,
		paymentservice.OrderRequest{Amount: decimal.NewFromInt(int64(credits) * 10), Currency: "INR", Credits: credits})
	require.NoError(t, err)
	require.Equal(t, "order_rzp_1", order.GatewayOrderID)
	return order
}

func TestNew(t *testing.T) {
	e := newEnv(t)

	assert.NotNil(t, e.services.LedgerService)
	assert.NotNil(t, e.services.AttemptService)
	assert.NotNil(t, e.services.PaymentService)
}

func TestPurchaseThenExam(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.store.AddUser(userID, 0)
	e.store.AddExam(domain.Exam{ID: 10, Title: "Go basics", Price: 30, QuestionsToServe: 2, IsActive: true}, 101, 102, 103)

	_, err := e.services.AttemptService.StartOrResumeAttempt(ctx, userID, 10)
	require.ErrorIs(t, err, domain.ErrInsufficientCredits)
	assert.Empty(t, e.store.Attempts())

	e.buyCredits(t, 50)
	header, body := capturedWebhook("order_rzp_1", "pay_1")
	outcome, err := e.services.PaymentService.HandleWebhook(ctx, domain.GatewayRazorpay, header, body)
	require.NoError(t, err)
	assert.Equal(t, paymentservice.OutcomeApplied, outcome)
	assert.Equal(t, 50, e.store.Credits(userID))

	session, err := e.services.AttemptService.StartOrResumeAttempt(ctx, userID, 10)
	require.NoError(t, err)
	assert.False(t, session.Resumed)
	assert.Equal(t, []int{101, 102}, session.Questions)
	assert.Equal(t, 20, e.store.Credits(userID))

	outcome, err = e.services.PaymentService.HandleWebhook(ctx, domain.GatewayRazorpay, header, body)
	require.NoError(t, err)
	assert.Equal(t, paymentservice.OutcomeDuplicate, outcome)
	assert.Equal(t, 20, e.store.Credits(userID))

	again, err := e.services.AttemptService.StartOrResumeAttempt(ctx, userID, 10)
	require.NoError(t, err)
	assert.True(t, again.Resumed)
	assert.Equal(t, session.Attempt.ID, again.Attempt.ID)
	assert.Equal(t, 20, e.store.Credits(userID))

	balance, err := e.services.LedgerService.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
}

func TestDuplicateWebhooksCreditOnce(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.store.AddUser(userID, 0)
	order := e.buyCredits(t, 50)

	const deliveries = 25
	header, body := capturedWebhook("order_rzp_1", "pay_1")
	outcomes := make([]paymentservice.Outcome, deliveries)

	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome, err := e.services.PaymentService.HandleWebhook(ctx, domain.GatewayRazorpay, header, body)
			assert.NoError(t, err)
			outcomes[i] = outcome
		}(i)
	}
	wg.Wait()

	applied := 0
	for _, o := range outcomes {
		if o == paymentservice.OutcomeApplied {
			applied++
		} else {
			assert.Equal(t, paymentservice.OutcomeDuplicate, o)
		}
	}
	assert.Equal(t, 1, applied)
	assert.Equal(t, 50, e.store.Credits(userID))

	txns := e.store.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, order.TransactionID, txns[0].ID)
	assert.Equal(t, domain.TransactionCompleted, txns[0].Status)
	// order.requested, order.created and one entry per delivery
	assert.Len(t, txns[0].Metadata, 2+deliveries)
}

func TestTamperedWebhookChangesNothing(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.store.AddUser(userID, 0)
	e.buyCredits(t, 50)

	header, _ := capturedWebhook("order_rzp_1", "pay_1")
	_, forged := capturedWebhook("order_rzp_1", "pay_forged")

	_, err := e.services.PaymentService.HandleWebhook(ctx, domain.GatewayRazorpay, header, forged)
	assert.ErrorIs(t, err, gateway.ErrInvalidSignature)
	assert.Equal(t, 0, e.store.Credits(userID))
	assert.Equal(t, domain.TransactionPending, e.store.Transactions()[0].Status)
	assert.Len(t, e.store.Transactions()[0].Metadata, 2)
}

func TestRepeatedFailuresEscalate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.store.AddUser(userID, 0)
	order := e.buyCredits(t, 50)

	failure := func(i int) *gateway.Event {
		return &gateway.Event{
			Gateway:   domain.GatewayRazorpay,
			ID:        fmt.Sprintf("evt_fail_%d", i),
			Type:      "payment.failed",
			Kind:      gateway.EventFailed,
			OrderID:   order.GatewayOrderID,
			PaymentID: fmt.Sprintf("pay_%d", i),
			Reason:    "card declined",
		}
	}

	// six quick failures stay PENDING: the previous attempt is always recent
	for i := 1; i <= 6; i++ {
		outcome, err := e.services.PaymentService.Apply(ctx, failure(i))
		require.NoError(t, err)
		assert.Equal(t, paymentservice.OutcomeFailureRecorded, outcome)
	}
	txn := e.store.Transactions()[0]
	assert.Equal(t, domain.TransactionPending, txn.Status)
	assert.Equal(t, 6, txn.FailureCount)

	e.store.Backdate(order.TransactionID, time.Now().Add(-2*time.Hour))
	outcome, err := e.services.PaymentService.Apply(ctx, failure(7))
	require.NoError(t, err)
	assert.Equal(t, paymentservice.OutcomeFailed, outcome)

	txn = e.store.Transactions()[0]
	assert.Equal(t, domain.TransactionFailed, txn.Status)
	assert.Equal(t, "card declined", txn.LastFailureReason)
	last, ok := txn.Metadata.Last()
	require.True(t, ok)
	assert.Equal(t, "escalation", last.Type)

	// a late capture for the failed purchase is never credited
	header, body := capturedWebhook(order.GatewayOrderID, "pay_late")
	outcome, err = e.services.PaymentService.HandleWebhook(ctx, domain.GatewayRazorpay, header, body)
	require.NoError(t, err)
	assert.Equal(t, paymentservice.OutcomeNeedsReview, outcome)
	assert.Equal(t, 0, e.store.Credits(userID))
}

func TestQuietFailedPurchaseStillCredits(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.store.AddUser(userID, 0)
	order := e.buyCredits(t, 50)

	for i := 1; i <= 6; i++ {
		outcome, err := e.services.PaymentService.Apply(ctx, &gateway.Event{
			Gateway:   domain.GatewayRazorpay,
			ID:        fmt.Sprintf("evt_fail_%d", i),
			Type:      "payment.failed",
			Kind:      gateway.EventFailed,
			OrderID:   order.GatewayOrderID,
			PaymentID: fmt.Sprintf("pay_%d", i),
			Reason:    "card declined",
		})
		require.NoError(t, err)
		require.Equal(t, paymentservice.OutcomeFailureRecorded, outcome)
	}

	// nothing happens for two hours, then the sweeper looks at the order
	e.store.Backdate(order.TransactionID, time.Now().Add(-2*time.Hour))
	sweeper := reconcile.New(config.Reconcile{Interval: time.Minute, After: 15 * time.Minute, Workers: 2, Batch: 10},
		e.store.TransactionRepo(), e.gateways, e.services.PaymentService)
	defer sweeper.Close()

	summary, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, reconcile.Summary{Checked: 1}, summary)
	assert.Equal(t, domain.TransactionPending, e.store.Transactions()[0].Status)

	// the customer retries the same order and it goes through
	header, body := capturedWebhook(order.GatewayOrderID, "pay_7")
	outcome, err := e.services.PaymentService.HandleWebhook(ctx, domain.GatewayRazorpay, header, body)
	require.NoError(t, err)
	assert.Equal(t, paymentservice.OutcomeApplied, outcome)
	assert.Equal(t, 50, e.store.Credits(userID))
	assert.Equal(t, domain.TransactionCompleted, e.store.Transactions()[0].Status)
}

func TestReusedPurchaseKeepsOrder(t *testing.T) {
	e := newEnv(t)
	e.store.AddUser(userID, 0)
	first := e.buyCredits(t, 50)
	second := e.buyCredits(t, 50)

	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.True(t, second.Reused)
	assert.Len(t, e.store.Transactions(), 1)
	assert.Equal(t, 2, e.store.Transactions()[0].AttemptCount)
}
