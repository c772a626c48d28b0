// Package gateway defines the contract every payment provider adapter
// implements and the canonical event the payment state machine consumes.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=gateway.go -destination=mock_gateway.go -package=gateway

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed gateway event")
	ErrUnavailable      = errors.New("payment gateway unavailable")
	ErrRejected         = errors.New("payment gateway rejected the request")
)

type EventKind string

const (
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
	EventDenied    EventKind = "denied"
	EventPending   EventKind = "pending"
	EventIgnored   EventKind = "ignored"
)

// Event is a provider notification or API result reduced to what the ledger
// needs. OrderID is the provider's order id the transaction was created with.
type Event struct {
	Gateway    domain.Gateway
	ID         string
	Type       string
	Kind       EventKind
	OrderID    string
	PaymentID  string
	Reason     string
	OccurredAt time.Time
}

// AuditRecord renders the event as an audit trail entry.
func (e *Event) AuditRecord(outcome string, at time.Time) domain.TransactionEvent {
	return domain.TransactionEvent{
		Source:     string(e.Gateway),
		Type:       e.Type,
		EventID:    e.ID,
		ExternalID: e.PaymentID,
		Outcome:    outcome,
		Detail:     e.Reason,
		At:         at,
	}
}

type OrderRequest struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
	Credits   int
}

type Order struct {
	ID          string
	Status      string
	ApprovalURL string
}

type CaptureRequest struct {
	OrderID   string
	PaymentID string
	Signature string
}

type Adapter interface {
	Name() domain.Gateway
	// VerifySignature authenticates a raw webhook delivery. It returns
	// ErrInvalidSignature for anything that is not provably from the provider
	// and ErrUnavailable when the provider could not be consulted.
	VerifySignature(ctx context.Context, header http.Header, body []byte) error
	// NormalizeEvent parses an authenticated delivery into an Event.
	NormalizeEvent(header http.Header, body []byte) (*Event, error)
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	// CaptureOrder completes a client-side approved payment and reports the
	// result as an Event.
	CaptureOrder(ctx context.Context, req CaptureRequest) (*Event, error)
	// FetchOrder reads the current provider-side state of an order.
	FetchOrder(ctx context.Context, orderID string) (*Event, error)
}

type Registry map[domain.Gateway]Adapter

func NewRegistry(adapters ...Adapter) Registry {
	r := make(Registry, len(adapters))
	for _, a := range adapters {
		r[a.Name()] = a
	}
	return r
}

func (r Registry) Get(g domain.Gateway) (Adapter, error) {
	a, ok := r[g]
	if !ok {
		return nil, domain.ErrUnsupportedGateway
	}
	return a, nil
}

// CheckStatus converts a non-2xx provider response into ErrUnavailable
// (retryable) or ErrRejected.
func CheckStatus(g domain.Gateway, op string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	if len(body) > 512 {
		body = body[:512]
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return fmt.Errorf("%s %s: status %d: %s: %w", g, op, status, body, ErrUnavailable)
	}
	return fmt.Errorf("%s %s: status %d: %s: %w", g, op, status, body, ErrRejected)
}

// Transport wraps an error returned by the HTTP client itself.
func Transport(g domain.Gateway, op string, err error) error {
	return fmt.Errorf("%s %s: %v: %w", g, op, err, ErrUnavailable)
}
