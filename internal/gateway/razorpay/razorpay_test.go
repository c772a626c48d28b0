package razorpay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/gateway"
	"github.com/GlebRadaev/examledger/pkg/clients"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	webhookSecret = "whsec"
	keySecret     = "key-secret"
)

func newAdapter(baseURL string, allowUnsigned bool) *Adapter {
	return New(Config{
		KeyID:         "rzp_test",
		KeySecret:     keySecret,
		WebhookSecret: webhookSecret,
		BaseURL:       baseURL,
		AllowUnsigned: allowUnsigned,
	}, clients.NewHTTPClient(time.Second))
}

func TestAdapter_VerifySignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)

	tests := []struct {
		name          string
		signature     string
		allowUnsigned bool
		expectedErr   error
	}{
		{name: "Valid signature", signature: sign(webhookSecret, body)},
		{name: "Upper-case hex accepted", signature: upper(sign(webhookSecret, body))},
		{name: "Wrong secret", signature: sign("other", body), expectedErr: gateway.ErrInvalidSignature},
		{name: "Missing signature", expectedErr: gateway.ErrInvalidSignature},
		{name: "Missing signature allowed outside production", allowUnsigned: true},
		{name: "Bad signature with unsigned allowance", signature: "deadbeef", allowUnsigned: true, expectedErr: gateway.ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAdapter("", tt.allowUnsigned)
			h := http.Header{}
			if tt.signature != "" {
				h.Set(SignatureHeader, tt.signature)
			}
			err := a.VerifySignature(context.Background(), h, body)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAdapter_VerifySignature_TamperedBody(t *testing.T) {
	a := newAdapter("", false)
	h := http.Header{}
	h.Set(SignatureHeader, sign(webhookSecret, []byte(`{"amount":100}`)))

	err := a.VerifySignature(context.Background(), h, []byte(`{"amount":900}`))
	assert.ErrorIs(t, err, gateway.ErrInvalidSignature)
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func TestAdapter_NormalizeEvent(t *testing.T) {
	a := newAdapter("", false)
	h := http.Header{}
	h.Set(EventIDHeader, "evt_1")

	tests := []struct {
		name        string
		body        string
		expected    *gateway.Event
		expectedErr error
	}{
		{
			name: "Payment captured",
			body: `{"event":"payment.captured","created_at":1700000000,"payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","status":"captured"}}}}`,
			expected: &gateway.Event{
				Gateway:    domain.GatewayRazorpay,
				ID:         "evt_1",
				Type:       "payment.captured",
				Kind:       gateway.EventSucceeded,
				OrderID:    "order_1",
				PaymentID:  "pay_1",
				OccurredAt: time.Unix(1700000000, 0).UTC(),
			},
		},
		{
			name: "Payment failed carries the reason",
			body: `{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_2","order_id":"order_1","status":"failed","error_code":"BAD_REQUEST_ERROR","error_description":"Payment was declined by the bank"}}}}`,
			expected: &gateway.Event{
				Gateway:   domain.GatewayRazorpay,
				ID:        "evt_1",
				Type:      "payment.failed",
				Kind:      gateway.EventFailed,
				OrderID:   "order_1",
				PaymentID: "pay_2",
				Reason:    "Payment was declined by the bank",
			},
		},
		{
			name: "Order paid takes the order entity id",
			body: `{"event":"order.paid","payload":{"order":{"entity":{"id":"order_9","status":"paid"}}}}`,
			expected: &gateway.Event{
				Gateway: domain.GatewayRazorpay,
				ID:      "evt_1",
				Type:    "order.paid",
				Kind:    gateway.EventSucceeded,
				OrderID: "order_9",
			},
		},
		{
			name: "Unrelated event is ignored",
			body: `{"event":"refund.created","payload":{}}`,
			expected: &gateway.Event{
				Gateway: domain.GatewayRazorpay,
				ID:      "evt_1",
				Type:    "refund.created",
				Kind:    gateway.EventIgnored,
			},
		},
		{name: "Not JSON", body: `{`, expectedErr: gateway.ErrMalformedEvent},
		{name: "No event type", body: `{"payload":{}}`, expectedErr: gateway.ErrMalformedEvent},
		{
			name:        "Captured without order id",
			body:        `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","status":"captured"}}}}`,
			expectedErr: gateway.ErrMalformedEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := a.NormalizeEvent(h, []byte(tt.body))
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, event)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, event)
		})
	}
}

func TestAdapter_CreateOrder(t *testing.T) {
	var received createOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test", user)
		assert.Equal(t, keySecret, pass)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &received))
		_, _ = w.Write([]byte(`{"id":"order_1","status":"created"}`))
	}))
	defer srv.Close()

	order, err := newAdapter(srv.URL, false).CreateOrder(context.Background(), gateway.OrderRequest{
		Reference: "txn-12",
		Amount:    decimal.RequireFromString("499.50"),
		Currency:  "inr",
		Credits:   50,
	})
	require.NoError(t, err)
	assert.Equal(t, &gateway.Order{ID: "order_1", Status: "created"}, order)
	assert.Equal(t, int64(49950), received.Amount)
	assert.Equal(t, "INR", received.Currency)
	assert.Equal(t, "txn-12", received.Receipt)
	assert.Equal(t, "50", received.Notes["credits"])
}

func TestAdapter_CreateOrder_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectedErr error
	}{
		{name: "Provider down", status: http.StatusServiceUnavailable, expectedErr: gateway.ErrUnavailable},
		{name: "Bad credentials", status: http.StatusUnauthorized, expectedErr: gateway.ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"code":"ERR"}}`))
			}))
			defer srv.Close()

			_, err := newAdapter(srv.URL, false).CreateOrder(context.Background(), gateway.OrderRequest{
				Reference: "txn-1", Amount: decimal.NewFromInt(10), Currency: "INR", Credits: 1,
			})
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}

	t.Run("Unreachable provider", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newAdapter(url, false).CreateOrder(context.Background(), gateway.OrderRequest{
			Reference: "txn-1", Amount: decimal.NewFromInt(10), Currency: "INR", Credits: 1,
		})
		assert.ErrorIs(t, err, gateway.ErrUnavailable)
	})

	t.Run("Invalid amount never reaches the provider", func(t *testing.T) {
		_, err := newAdapter("http://127.0.0.1:1", false).CreateOrder(context.Background(), gateway.OrderRequest{
			Reference: "txn-1", Amount: decimal.Zero, Currency: "INR", Credits: 1,
		})
		assert.Error(t, err)
	})
}

func TestAdapter_CaptureOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/payments/pay_1":
			_, _ = w.Write([]byte(`{"id":"pay_1","order_id":"order_1","status":"captured","created_at":1700000000}`))
		case "/v1/payments/pay_2":
			_, _ = w.Write([]byte(`{"id":"pay_2","order_id":"order_other","status":"captured"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	a := newAdapter(srv.URL, false)

	t.Run("Valid checkout signature", func(t *testing.T) {
		event, err := a.CaptureOrder(context.Background(), gateway.CaptureRequest{
			OrderID:   "order_1",
			PaymentID: "pay_1",
			Signature: sign(keySecret, []byte("order_1|pay_1")),
		})
		require.NoError(t, err)
		assert.Equal(t, gateway.EventSucceeded, event.Kind)
		assert.Equal(t, "order_1", event.OrderID)
		assert.Equal(t, "pay_1", event.PaymentID)
		assert.Equal(t, "payment.captured", event.Type)
	})

	t.Run("Forged checkout signature", func(t *testing.T) {
		_, err := a.CaptureOrder(context.Background(), gateway.CaptureRequest{
			OrderID:   "order_1",
			PaymentID: "pay_1",
			Signature: sign("guess", []byte("order_1|pay_1")),
		})
		assert.ErrorIs(t, err, gateway.ErrInvalidSignature)
	})

	t.Run("Payment of another order", func(t *testing.T) {
		_, err := a.CaptureOrder(context.Background(), gateway.CaptureRequest{
			OrderID:   "order_1",
			PaymentID: "pay_2",
			Signature: sign(keySecret, []byte("order_1|pay_2")),
		})
		assert.ErrorIs(t, err, gateway.ErrRejected)
	})

	t.Run("Missing ids", func(t *testing.T) {
		_, err := a.CaptureOrder(context.Background(), gateway.CaptureRequest{OrderID: "order_1"})
		assert.ErrorIs(t, err, gateway.ErrRejected)
	})
}

func TestAdapter_FetchOrder(t *testing.T) {
	tests := []struct {
		name         string
		payments     string
		expectedKind gateway.EventKind
		paymentID    string
	}{
		{
			name:         "Captured payment wins",
			payments:     `{"items":[{"id":"pay_1","status":"failed","created_at":1},{"id":"pay_2","status":"captured","created_at":2}]}`,
			expectedKind: gateway.EventSucceeded,
			paymentID:    "pay_2",
		},
		{
			name:         "Latest payment failed",
			payments:     `{"items":[{"id":"pay_1","status":"authorized","created_at":1},{"id":"pay_2","status":"failed","created_at":5}]}`,
			expectedKind: gateway.EventFailed,
			paymentID:    "pay_2",
		},
		{
			name:         "No payments yet",
			payments:     `{"items":[]}`,
			expectedKind: gateway.EventPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/orders/order_1/payments", r.URL.Path)
				_, _ = w.Write([]byte(tt.payments))
			}))
			defer srv.Close()

			event, err := newAdapter(srv.URL, false).FetchOrder(context.Background(), "order_1")
			require.NoError(t, err)
			assert.Equal(t, tt.expectedKind, event.Kind)
			assert.Equal(t, "order_1", event.OrderID)
			assert.Equal(t, tt.paymentID, event.PaymentID)
		})
	}
}
