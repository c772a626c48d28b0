// Package razorpay adapts the Razorpay Orders API and its webhooks.
//
// Orders are created server-side, paid in the client checkout and confirmed
// either by the checkout handler signature or by a webhook.
package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/gateway"
	"github.com/GlebRadaev/examledger/pkg/clients"
	"github.com/GlebRadaev/examledger/pkg/money"
	"go.uber.org/zap"
)

const (
	SignatureHeader = "X-Razorpay-Signature"
	EventIDHeader   = "X-Razorpay-Event-Id"

	defaultBaseURL = "https://api.razorpay.com"
	maxReceiptLen  = 40
)

type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
	// AllowUnsigned accepts deliveries that carry no signature header at all.
	// Never enabled in production.
	AllowUnsigned bool
}

type Adapter struct {
	cfg    Config
	client clients.HTTPClientI
}

func New(cfg Config, client clients.HTTPClientI) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Adapter{
		cfg:    cfg,
		client: client,
	}
}

func (a *Adapter) Name() domain.Gateway {
	return domain.GatewayRazorpay
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (a *Adapter) VerifySignature(_ context.Context, header http.Header, body []byte) error {
	signature := header.Get(SignatureHeader)
	if signature == "" && a.cfg.AllowUnsigned {
		zap.L().Warn("accepting unsigned razorpay webhook")
		return nil
	}
	if !verify(a.cfg.WebhookSecret, body, signature) {
		return gateway.ErrInvalidSignature
	}
	return nil
}

type paymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Status           string `json:"status"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
	ErrorReason      string `json:"error_reason"`
	CreatedAt        int64  `json:"created_at"`
}

func (p *paymentEntity) reason() string {
	switch {
	case p.ErrorDescription != "":
		return p.ErrorDescription
	case p.ErrorReason != "":
		return p.ErrorReason
	default:
		return p.ErrorCode
	}
}

type webhookPayload struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment *struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

func eventKind(eventType string) gateway.EventKind {
	switch eventType {
	case "payment.captured", "order.paid":
		return gateway.EventSucceeded
	case "payment.failed":
		return gateway.EventFailed
	case "payment.authorized":
		return gateway.EventPending
	default:
		return gateway.EventIgnored
	}
}

func (a *Adapter) NormalizeEvent(header http.Header, body []byte) (*gateway.Event, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("razorpay webhook: %v: %w", err, gateway.ErrMalformedEvent)
	}
	if p.Event == "" {
		return nil, fmt.Errorf("razorpay webhook: missing event type: %w", gateway.ErrMalformedEvent)
	}

	event := &gateway.Event{
		Gateway: domain.GatewayRazorpay,
		ID:      header.Get(EventIDHeader),
		Type:    p.Event,
		Kind:    eventKind(p.Event),
	}
	if p.CreatedAt > 0 {
		event.OccurredAt = time.Unix(p.CreatedAt, 0).UTC()
	}
	if pay := p.Payload.Payment; pay != nil {
		event.PaymentID = pay.Entity.ID
		event.OrderID = pay.Entity.OrderID
		if event.Kind == gateway.EventFailed {
			event.Reason = pay.Entity.reason()
		}
	}
	if event.OrderID == "" && p.Payload.Order != nil {
		event.OrderID = p.Payload.Order.Entity.ID
	}
	if event.OrderID == "" && event.Kind != gateway.EventIgnored {
		return nil, fmt.Errorf("razorpay webhook %s: missing order id: %w", p.Event, gateway.ErrMalformedEvent)
	}
	return event, nil
}

func basicAuth(user, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
}

func (a *Adapter) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Basic "+basicAuth(a.cfg.KeyID, a.cfg.KeySecret))
	return h
}

func (a *Adapter) call(ctx context.Context, op, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("razorpay %s: encode request: %w", op, err)
		}
	}
	status, resp, _, err := a.client.Send(ctx, method, a.cfg.BaseURL+path, a.headers(), body)
	if err != nil {
		return gateway.Transport(domain.GatewayRazorpay, op, err)
	}
	if err := gateway.CheckStatus(domain.GatewayRazorpay, op, status, resp); err != nil {
		return err
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("razorpay %s: decode response: %v: %w", op, err, gateway.ErrUnavailable)
	}
	return nil
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (a *Adapter) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	amount, err := money.ToMinorUnits(req.Amount, req.Currency)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	receipt := req.Reference
	if len(receipt) > maxReceiptLen {
		receipt = receipt[:maxReceiptLen]
	}

	var resp orderResponse
	err = a.call(ctx, "create order", http.MethodPost, "/v1/orders", createOrderRequest{
		Amount:   amount,
		Currency: strings.ToUpper(req.Currency),
		Receipt:  receipt,
		Notes: map[string]string{
			"reference": req.Reference,
			"credits":   fmt.Sprint(req.Credits),
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("razorpay create order: empty order id: %w", gateway.ErrUnavailable)
	}
	return &gateway.Order{ID: resp.ID, Status: resp.Status}, nil
}

func paymentEvent(p paymentEntity) *gateway.Event {
	event := &gateway.Event{
		Gateway:   domain.GatewayRazorpay,
		Type:      "payment." + p.Status,
		OrderID:   p.OrderID,
		PaymentID: p.ID,
	}
	if p.CreatedAt > 0 {
		event.OccurredAt = time.Unix(p.CreatedAt, 0).UTC()
	}
	switch p.Status {
	case "captured":
		event.Kind = gateway.EventSucceeded
	case "failed":
		event.Kind = gateway.EventFailed
		event.Reason = p.reason()
	default:
		event.Kind = gateway.EventPending
	}
	return event
}

// CaptureOrder checks the checkout handler signature and then confirms the
// payment state with the API.
func (a *Adapter) CaptureOrder(ctx context.Context, req gateway.CaptureRequest) (*gateway.Event, error) {
	if req.OrderID == "" || req.PaymentID == "" {
		return nil, fmt.Errorf("razorpay capture: order and payment ids are required: %w", gateway.ErrRejected)
	}
	if !verify(a.cfg.KeySecret, []byte(req.OrderID+"|"+req.PaymentID), req.Signature) {
		return nil, gateway.ErrInvalidSignature
	}

	var payment paymentEntity
	if err := a.call(ctx, "fetch payment", http.MethodGet, "/v1/payments/"+url.PathEscape(req.PaymentID), nil, &payment); err != nil {
		return nil, err
	}
	if payment.OrderID != req.OrderID {
		return nil, fmt.Errorf("razorpay capture: payment %s belongs to order %q: %w",
			req.PaymentID, payment.OrderID, gateway.ErrRejected)
	}
	return paymentEvent(payment), nil
}

type paymentList struct {
	Items []paymentEntity `json:"items"`
}

// FetchOrder reports the order as succeeded when any of its payments was
// captured, otherwise as the state of its most recent payment.
func (a *Adapter) FetchOrder(ctx context.Context, orderID string) (*gateway.Event, error) {
	var list paymentList
	if err := a.call(ctx, "fetch order", http.MethodGet, "/v1/orders/"+url.PathEscape(orderID)+"/payments", nil, &list); err != nil {
		return nil, err
	}

	var latest *paymentEntity
	for i := range list.Items {
		p := &list.Items[i]
		if p.OrderID == "" {
			p.OrderID = orderID
		}
		if p.Status == "captured" {
			return paymentEvent(*p), nil
		}
		if latest == nil || p.CreatedAt > latest.CreatedAt {
			latest = p
		}
	}
	if latest == nil {
		return &gateway.Event{
			Gateway: domain.GatewayRazorpay,
			Type:    "order.created",
			Kind:    gateway.EventPending,
			OrderID: orderID,
		}, nil
	}
	return paymentEvent(*latest), nil
}
