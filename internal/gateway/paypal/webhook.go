package paypal

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"hash/crc32"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/gateway"
	"go.uber.org/zap"
)

const (
	HeaderTransmissionID   = "Paypal-Transmission-Id"
	HeaderTransmissionTime = "Paypal-Transmission-Time"
	HeaderTransmissionSig  = "Paypal-Transmission-Sig"
	HeaderCertURL          = "Paypal-Cert-Url"
	HeaderAuthAlgo         = "Paypal-Auth-Algo"

	authAlgo = "SHA256withRSA"
)

var signingHeaders = []string{
	HeaderTransmissionID, HeaderTransmissionTime, HeaderTransmissionSig, HeaderCertURL, HeaderAuthAlgo,
}

type transmission struct {
	id       string
	time     string
	sig      string
	certURL  string
	authAlgo string
}

func readTransmission(h http.Header) transmission {
	return transmission{
		id:       h.Get(HeaderTransmissionID),
		time:     h.Get(HeaderTransmissionTime),
		sig:      h.Get(HeaderTransmissionSig),
		certURL:  h.Get(HeaderCertURL),
		authAlgo: h.Get(HeaderAuthAlgo),
	}
}

func unsigned(h http.Header) bool {
	for _, name := range signingHeaders {
		if h.Get(name) != "" {
			return false
		}
	}
	return true
}

// VerifySignature checks the transmission signature locally against the
// PayPal certificate and then confirms it with the verify-webhook-signature
// API. Both have to pass.
func (a *Adapter) VerifySignature(ctx context.Context, header http.Header, body []byte) error {
	if unsigned(header) {
		if a.cfg.AllowUnsigned {
			zap.L().Warn("accepting unsigned paypal webhook")
			return nil
		}
		return fmt.Errorf("paypal webhook: no transmission headers: %w", gateway.ErrInvalidSignature)
	}

	t := readTransmission(header)
	if t.id == "" || t.time == "" || t.sig == "" || t.certURL == "" {
		return fmt.Errorf("paypal webhook: incomplete transmission headers: %w", gateway.ErrInvalidSignature)
	}
	if t.authAlgo != "" && t.authAlgo != authAlgo {
		return fmt.Errorf("paypal webhook: unsupported auth algo %q: %w", t.authAlgo, gateway.ErrInvalidSignature)
	}
	if a.cfg.WebhookID == "" {
		return fmt.Errorf("paypal webhook: webhook id is not configured: %w", gateway.ErrInvalidSignature)
	}
	if err := a.checkCertURL(t.certURL); err != nil {
		return err
	}

	cert, err := a.certificate(ctx, t.certURL)
	if err != nil {
		return err
	}
	if err := a.verifyLocal(cert, t, body); err != nil {
		return err
	}
	return a.verifyRemote(ctx, t, body)
}

// checkCertURL only allows certificates served over https from the
// configured PayPal domain.
func (a *Adapter) checkCertURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("paypal webhook: cert url: %v: %w", err, gateway.ErrInvalidSignature)
	}
	host := strings.ToLower(u.Hostname())
	allowed := strings.ToLower(a.cfg.CertHost)
	if u.Scheme != "https" || (host != allowed && !strings.HasSuffix(host, "."+allowed)) {
		return fmt.Errorf("paypal webhook: cert url %q is not allowed: %w", raw, gateway.ErrInvalidSignature)
	}
	return nil
}

// signedMessage is transmissionId|transmissionTime|webhookId|crc32(body).
func signedMessage(t transmission, webhookID string, body []byte) []byte {
	return []byte(fmt.Sprintf("%s|%s|%s|%d", t.id, t.time, webhookID, crc32.ChecksumIEEE(body)))
}

func (a *Adapter) verifyLocal(cert *x509.Certificate, t transmission, body []byte) error {
	now := a.now()
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return fmt.Errorf("paypal webhook: signing certificate expired: %w", gateway.ErrInvalidSignature)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("paypal webhook: signing certificate is not RSA: %w", gateway.ErrInvalidSignature)
	}
	sig, err := base64.StdEncoding.DecodeString(t.sig)
	if err != nil {
		return fmt.Errorf("paypal webhook: signature encoding: %w", gateway.ErrInvalidSignature)
	}
	digest := sha256.Sum256(signedMessage(t, a.cfg.WebhookID, body))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		return fmt.Errorf("paypal webhook: %v: %w", err, gateway.ErrInvalidSignature)
	}
	return nil
}

type verifyRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

func (a *Adapter) verifyRemote(ctx context.Context, t transmission, body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("paypal webhook: body is not JSON: %w", gateway.ErrMalformedEvent)
	}
	algo := t.authAlgo
	if algo == "" {
		algo = authAlgo
	}
	status, resp, err := a.call(ctx, "verify webhook", http.MethodPost, "/v1/notifications/verify-webhook-signature", "",
		verifyRequest{
			AuthAlgo:         algo,
			CertURL:          t.certURL,
			TransmissionID:   t.id,
			TransmissionSig:  t.sig,
			TransmissionTime: t.time,
			WebhookID:        a.cfg.WebhookID,
			WebhookEvent:     json.RawMessage(body),
		})
	if err != nil {
		return err
	}
	if err := gateway.CheckStatus(domain.GatewayPayPal, "verify webhook", status, resp); err != nil {
		return err
	}
	var v verifyResponse
	if err := json.Unmarshal(resp, &v); err != nil {
		return fmt.Errorf("paypal verify webhook: unexpected response: %w", gateway.ErrUnavailable)
	}
	if v.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("paypal webhook: verification status %q: %w", v.VerificationStatus, gateway.ErrInvalidSignature)
	}
	return nil
}

type certCache struct {
	mu    sync.RWMutex
	certs map[string]*x509.Certificate
}

func newCertCache() *certCache {
	return &certCache{certs: make(map[string]*x509.Certificate)}
}

func (c *certCache) get(key string) (*x509.Certificate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cert, ok := c.certs[key]
	return cert, ok
}

func (c *certCache) put(key string, cert *x509.Certificate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.certs[key] = cert
}

func (a *Adapter) certificate(ctx context.Context, certURL string) (*x509.Certificate, error) {
	if cert, ok := a.certs.get(certURL); ok && a.now().Before(cert.NotAfter) {
		return cert, nil
	}

	status, body, _, err := a.client.Send(ctx, http.MethodGet, certURL, nil, nil)
	if err != nil {
		return nil, gateway.Transport(domain.GatewayPayPal, "fetch cert", err)
	}
	if err := gateway.CheckStatus(domain.GatewayPayPal, "fetch cert", status, body); err != nil {
		return nil, err
	}
	block, _ := pem.Decode(body)
	if block == nil {
		return nil, fmt.Errorf("paypal webhook: signing certificate is not PEM: %w", gateway.ErrInvalidSignature)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("paypal webhook: signing certificate: %v: %w", err, gateway.ErrInvalidSignature)
	}
	a.certs.put(certURL, cert)
	return cert, nil
}

type webhookPayload struct {
	ID         string `json:"id"`
	EventType  string `json:"event_type"`
	CreateTime string `json:"create_time"`
	Summary    string `json:"summary"`
	Resource   struct {
		ID                string `json:"id"`
		OrderID           string `json:"order_id"`
		Status            string `json:"status"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
		StatusDetails struct {
			Reason string `json:"reason"`
		} `json:"status_details"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []capture `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	} `json:"resource"`
}

func eventKind(eventType string) gateway.EventKind {
	switch eventType {
	case "PAYMENT.CAPTURE.COMPLETED", "CHECKOUT.ORDER.COMPLETED":
		return gateway.EventSucceeded
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		return gateway.EventDenied
	case "CHECKOUT.PAYMENT-APPROVAL.REVERSED":
		return gateway.EventFailed
	case "CHECKOUT.ORDER.APPROVED", "PAYMENT.CAPTURE.PENDING":
		return gateway.EventPending
	default:
		return gateway.EventIgnored
	}
}

func (a *Adapter) NormalizeEvent(_ http.Header, body []byte) (*gateway.Event, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("paypal webhook: %v: %w", err, gateway.ErrMalformedEvent)
	}
	if p.EventType == "" {
		return nil, fmt.Errorf("paypal webhook: missing event type: %w", gateway.ErrMalformedEvent)
	}

	event := &gateway.Event{
		Gateway: domain.GatewayPayPal,
		ID:      p.ID,
		Type:    p.EventType,
		Kind:    eventKind(p.EventType),
	}
	if t, err := time.Parse(time.RFC3339, p.CreateTime); err == nil {
		event.OccurredAt = t
	}

	r := &p.Resource
	switch {
	case strings.HasPrefix(p.EventType, "PAYMENT.CAPTURE."):
		event.OrderID = r.SupplementaryData.RelatedIDs.OrderID
		event.PaymentID = r.ID
	case strings.HasPrefix(p.EventType, "CHECKOUT.ORDER."):
		event.OrderID = r.ID
		for _, pu := range r.PurchaseUnits {
			for _, c := range pu.Payments.Captures {
				event.PaymentID = c.ID
			}
		}
	default:
		event.OrderID = r.OrderID
	}
	if event.OrderID == "" {
		event.OrderID = r.OrderID
	}

	if event.Kind == gateway.EventDenied || event.Kind == gateway.EventFailed {
		event.Reason = r.StatusDetails.Reason
		if event.Reason == "" {
			event.Reason = p.Summary
		}
	}
	if event.OrderID == "" && event.Kind != gateway.EventIgnored {
		return nil, fmt.Errorf("paypal webhook %s: missing order id: %w", p.EventType, gateway.ErrMalformedEvent)
	}
	return event, nil
}
