package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int       `db:"id"`
	Credits   int       `db:"credits"`
	CreatedAt time.Time `db:"created_at"`
}

type Exam struct {
	ID               int    `db:"id"`
	Title            string `db:"title"`
	Price            int    `db:"price"`
	IsFree           bool   `db:"is_free"`
	QuestionsToServe int    `db:"questions_to_serve"`
	IsActive         bool   `db:"is_active"`
}

// Cost is the number of credits a new attempt of the exam is charged.
func (e *Exam) Cost() int {
	if e.IsFree {
		return 0
	}
	return e.Price
}

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
	AttemptAbandoned  AttemptStatus = "ABANDONED"
)

type ExamAttempt struct {
	ID              int           `db:"id"`
	UserID          int           `db:"user_id"`
	ExamID          int           `db:"exam_id"`
	ServedQuestions []int         `db:"served_questions"`
	CreditsUsed     int           `db:"credits_used"`
	Status          AttemptStatus `db:"status"`
	StartedAt       time.Time     `db:"started_at"`
	FinishedAt      *time.Time    `db:"finished_at"`
}

type TransactionType string

const (
	TransactionCreditPurchase TransactionType = "CREDIT_PURCHASE"
	TransactionExamPayment    TransactionType = "EXAM_PAYMENT"
	TransactionAdminCredit    TransactionType = "ADMIN_CREDIT"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
)

type Gateway string

const (
	GatewayPayPal   Gateway = "paypal"
	GatewayRazorpay Gateway = "razorpay"
)

func ParseGateway(s string) (Gateway, error) {
	switch g := Gateway(s); g {
	case GatewayPayPal, GatewayRazorpay:
		return g, nil
	default:
		return "", ErrUnsupportedGateway
	}
}

type Transaction struct {
	ID                int               `db:"id"`
	UserID            int               `db:"user_id"`
	Type              TransactionType   `db:"type"`
	Amount            decimal.Decimal   `db:"amount"`
	Currency          string            `db:"currency"`
	Credits           int               `db:"credits"`
	Status            TransactionStatus `db:"status"`
	Gateway           *Gateway          `db:"gateway"`
	AttemptID         *int              `db:"attempt_id"`
	PayPalOrderID     *string           `db:"paypal_order_id"`
	PayPalCaptureID   *string           `db:"paypal_capture_id"`
	RazorpayOrderID   *string           `db:"razorpay_order_id"`
	RazorpayPaymentID *string           `db:"razorpay_payment_id"`
	AttemptCount      int               `db:"attempt_count"`
	FailureCount      int               `db:"failure_count"`
	LastFailureReason string            `db:"last_failure_reason"`
	LastAttemptAt     *time.Time        `db:"last_attempt_at"`
	CompletedAt       *time.Time        `db:"completed_at"`
	Metadata          AuditLog          `db:"metadata"`
	CreatedAt         time.Time         `db:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at"`
}

// GatewayOrderID returns the order id issued by the transaction's gateway, or "".
func (t *Transaction) GatewayOrderID() string {
	if t.Gateway == nil {
		return ""
	}
	var ref *string
	switch *t.Gateway {
	case GatewayPayPal:
		ref = t.PayPalOrderID
	case GatewayRazorpay:
		ref = t.RazorpayOrderID
	}
	if ref == nil {
		return ""
	}
	return *ref
}

// GatewayPaymentID returns the capture/payment id recorded on completion, or "".
func (t *Transaction) GatewayPaymentID() string {
	if t.Gateway == nil {
		return ""
	}
	var ref *string
	switch *t.Gateway {
	case GatewayPayPal:
		ref = t.PayPalCaptureID
	case GatewayRazorpay:
		ref = t.RazorpayPaymentID
	}
	if ref == nil {
		return ""
	}
	return *ref
}

func (t *Transaction) SetGatewayOrderID(g Gateway, orderID string) {
	t.Gateway = &g
	switch g {
	case GatewayPayPal:
		t.PayPalOrderID = &orderID
	case GatewayRazorpay:
		t.RazorpayOrderID = &orderID
	}
}

func (t *Transaction) SetGatewayPaymentID(g Gateway, paymentID string) {
	if paymentID == "" {
		return
	}
	switch g {
	case GatewayPayPal:
		t.PayPalCaptureID = &paymentID
	case GatewayRazorpay:
		t.RazorpayPaymentID = &paymentID
	}
}
