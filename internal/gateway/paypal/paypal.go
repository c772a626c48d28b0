// Package paypal adapts the PayPal Orders v2 API and its webhooks.
//
// Orders are approved by the payer and captured synchronously by the server;
// webhooks confirm the capture asynchronously and are verified against the
// PayPal signing certificate.
package paypal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/gateway"
	"github.com/GlebRadaev/examledger/pkg/clients"
	"github.com/GlebRadaev/examledger/pkg/money"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultBaseURL  = "https://api-m.sandbox.paypal.com"
	defaultCertHost = "paypal.com"

	// tokenLeeway renews the OAuth token before PayPal expires it.
	tokenLeeway = time.Minute
)

var requestIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://examledger/paypal"))

type Config struct {
	ClientID     string
	ClientSecret string
	WebhookID    string
	BaseURL      string
	// CertHost is the domain signing certificates may be downloaded from.
	CertHost string
	// AllowUnsigned accepts deliveries carrying none of the transmission
	// headers. Never enabled in production.
	AllowUnsigned bool
}

type Adapter struct {
	cfg    Config
	client clients.HTTPClientI
	now    func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	certs       *certCache
}

func New(cfg Config, client clients.HTTPClientI) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.CertHost == "" {
		cfg.CertHost = defaultCertHost
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Adapter{
		cfg:    cfg,
		client: client,
		now:    time.Now,
		certs:  newCertCache(),
	}
}

func (a *Adapter) Name() domain.Gateway {
	return domain.GatewayPayPal
}

// requestID derives a stable PayPal-Request-Id so that retries of the same
// logical call are deduplicated by PayPal.
func requestID(kind, key string) string {
	return uuid.NewSHA1(requestIDNamespace, []byte(kind+":"+key)).String()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (a *Adapter) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.tokenExpiry) {
		return a.token, nil
	}

	h := http.Header{}
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Set("Accept", "application/json")
	h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(a.cfg.ClientID+":"+a.cfg.ClientSecret)))

	status, body, _, err := a.client.Send(ctx, http.MethodPost, a.cfg.BaseURL+"/v1/oauth2/token", h,
		[]byte(url.Values{"grant_type": {"client_credentials"}}.Encode()))
	if err != nil {
		return "", gateway.Transport(domain.GatewayPayPal, "oauth token", err)
	}
	if err := gateway.CheckStatus(domain.GatewayPayPal, "oauth token", status, body); err != nil {
		return "", err
	}
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.AccessToken == "" {
		return "", fmt.Errorf("paypal oauth token: unexpected response: %w", gateway.ErrUnavailable)
	}

	a.token = resp.AccessToken
	a.tokenExpiry = a.now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenLeeway)
	return a.token, nil
}

// call performs an authenticated JSON request and returns the raw response
// on success.
func (a *Adapter) call(ctx context.Context, op, method, path, idempotencyKey string, payload any) (int, []byte, error) {
	token, err := a.accessToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	var body []byte
	if payload != nil {
		if body, err = json.Marshal(payload); err != nil {
			return 0, nil, fmt.Errorf("paypal %s: encode request: %w", op, err)
		}
	}
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+token)
	if idempotencyKey != "" {
		h.Set("PayPal-Request-Id", idempotencyKey)
	}

	status, resp, _, err := a.client.Send(ctx, method, a.cfg.BaseURL+path, h, body)
	if err != nil {
		return 0, nil, gateway.Transport(domain.GatewayPayPal, op, err)
	}
	if status == http.StatusUnauthorized {
		a.mu.Lock()
		a.token = ""
		a.mu.Unlock()
	}
	return status, resp, nil
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id,omitempty"`
	CustomID    string `json:"custom_id,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      amount `json:"amount"`
}

type createOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type capture struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	StatusDetails struct {
		Reason string `json:"reason"`
	} `json:"status_details"`
	CreateTime string `json:"create_time"`
}

type order struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Links         []link `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []capture `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (o *order) approvalURL() string {
	for _, l := range o.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			return l.Href
		}
	}
	return ""
}

func (o *order) capture() *capture {
	for _, pu := range o.PurchaseUnits {
		if n := len(pu.Payments.Captures); n > 0 {
			return &pu.Payments.Captures[n-1]
		}
	}
	return nil
}

// event maps the order state to a canonical event.
func (o *order) event() *gateway.Event {
	event := &gateway.Event{
		Gateway: domain.GatewayPayPal,
		Type:    "CHECKOUT.ORDER." + o.Status,
		Kind:    gateway.EventPending,
		OrderID: o.ID,
	}
	if c := o.capture(); c != nil {
		event.Type = "PAYMENT.CAPTURE." + c.Status
		event.PaymentID = c.ID
		event.Kind = captureKind(c.Status)
		event.Reason = c.StatusDetails.Reason
		if t, err := time.Parse(time.RFC3339, c.CreateTime); err == nil {
			event.OccurredAt = t
		}
		return event
	}
	if o.Status == "VOIDED" {
		event.Kind = gateway.EventDenied
		event.Reason = "order voided"
	}
	return event
}

func captureKind(status string) gateway.EventKind {
	switch status {
	case "COMPLETED":
		return gateway.EventSucceeded
	case "DECLINED", "FAILED":
		return gateway.EventDenied
	default:
		return gateway.EventPending
	}
}

func (a *Adapter) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	if _, err := money.ToMinorUnits(req.Amount, req.Currency); err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}
	currency := strings.ToUpper(req.Currency)

	status, body, err := a.call(ctx, "create order", http.MethodPost, "/v2/checkout/orders",
		requestID("order", req.Reference), createOrderRequest{
			Intent: "CAPTURE",
			PurchaseUnits: []purchaseUnit{{
				ReferenceID: req.Reference,
				CustomID:    req.Reference,
				Description: fmt.Sprintf("%d exam credits", req.Credits),
				Amount: amount{
					CurrencyCode: currency,
					Value:        money.Format(req.Amount, currency),
				},
			}},
		})
	if err != nil {
		return nil, err
	}
	if err := gateway.CheckStatus(domain.GatewayPayPal, "create order", status, body); err != nil {
		return nil, err
	}

	var o order
	if err := json.Unmarshal(body, &o); err != nil || o.ID == "" {
		return nil, fmt.Errorf("paypal create order: unexpected response: %w", gateway.ErrUnavailable)
	}
	return &gateway.Order{ID: o.ID, Status: o.Status, ApprovalURL: o.approvalURL()}, nil
}

type apiError struct {
	Name    string `json:"name"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func (e *apiError) issue() string {
	if len(e.Details) > 0 {
		return e.Details[0].Issue
	}
	return e.Name
}

// CaptureOrder captures an approved order. A declined funding instrument is
// reported as a failed event so the payer can retry with another one.
func (a *Adapter) CaptureOrder(ctx context.Context, req gateway.CaptureRequest) (*gateway.Event, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("paypal capture: order id is required: %w", gateway.ErrRejected)
	}
	path := "/v2/checkout/orders/" + url.PathEscape(req.OrderID) + "/capture"
	status, body, err := a.call(ctx, "capture", http.MethodPost, path, requestID("capture", req.OrderID), struct{}{})
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnprocessableEntity {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		switch apiErr.issue() {
		case "ORDER_ALREADY_CAPTURED":
			return a.FetchOrder(ctx, req.OrderID)
		case "INSTRUMENT_DECLINED":
			return &gateway.Event{
				Gateway: domain.GatewayPayPal,
				Type:    "PAYMENT.CAPTURE.INSTRUMENT_DECLINED",
				Kind:    gateway.EventFailed,
				OrderID: req.OrderID,
				Reason:  "instrument declined",
			}, nil
		}
	}
	if err := gateway.CheckStatus(domain.GatewayPayPal, "capture", status, body); err != nil {
		return nil, err
	}

	var o order
	if err := json.Unmarshal(body, &o); err != nil {
		return nil, fmt.Errorf("paypal capture: unexpected response: %w", gateway.ErrUnavailable)
	}
	if o.ID == "" {
		o.ID = req.OrderID
	}
	return o.event(), nil
}

func (a *Adapter) FetchOrder(ctx context.Context, orderID string) (*gateway.Event, error) {
	status, body, err := a.call(ctx, "fetch order", http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(orderID), "", nil)
	if err != nil {
		return nil, err
	}
	if err := gateway.CheckStatus(domain.GatewayPayPal, "fetch order", status, body); err != nil {
		return nil, err
	}
	var o order
	if err := json.Unmarshal(body, &o); err != nil {
		return nil, fmt.Errorf("paypal fetch order: unexpected response: %w", gateway.ErrUnavailable)
	}
	if o.ID == "" {
		o.ID = orderID
	}
	zap.L().Debug("paypal order state", zap.String("orderID", orderID), zap.String("status", o.Status))
	return o.event(), nil
}
