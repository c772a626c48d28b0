package gateway

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{name: "OK", status: http.StatusOK},
		{name: "Created", status: http.StatusCreated},
		{name: "Server error", status: http.StatusBadGateway, expected: ErrUnavailable},
		{name: "Rate limited", status: http.StatusTooManyRequests, expected: ErrUnavailable},
		{name: "Bad request", status: http.StatusBadRequest, expected: ErrRejected},
		{name: "Unauthorized", status: http.StatusUnauthorized, expected: ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStatus(domain.GatewayPayPal, "capture", tt.status, []byte(`{"name":"ERR"}`))
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestTransport(t *testing.T) {
	err := Transport(domain.GatewayRazorpay, "fetch", errors.New("dial tcp: timeout"))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestEvent_AuditRecord(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	e := &Event{
		Gateway:   domain.GatewayRazorpay,
		ID:        "evt_1",
		Type:      "payment.failed",
		Kind:      EventFailed,
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Reason:    "BAD_REQUEST_ERROR",
	}

	record := e.AuditRecord(domain.OutcomeFailureRecorded, at)
	assert.Equal(t, domain.TransactionEvent{
		Source:     "razorpay",
		Type:       "payment.failed",
		EventID:    "evt_1",
		ExternalID: "pay_1",
		Outcome:    domain.OutcomeFailureRecorded,
		Detail:     "BAD_REQUEST_ERROR",
		At:         at,
	}, record)
}

func TestRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	paypal := NewMockAdapter(ctrl)
	paypal.EXPECT().Name().Return(domain.GatewayPayPal)

	registry := NewRegistry(paypal)

	got, err := registry.Get(domain.GatewayPayPal)
	require.NoError(t, err)
	assert.Same(t, paypal, got)

	_, err = registry.Get(domain.GatewayRazorpay)
	assert.ErrorIs(t, err, domain.ErrUnsupportedGateway)
}
