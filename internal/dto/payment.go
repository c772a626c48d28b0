package dto

import "github.com/shopspring/decimal"

type CreateOrderRequestDTO struct {
	Amount   decimal.Decimal `json:"amount" swaggertype:"string" example:"500.00"`
	Currency string          `json:"currency" example:"INR"`
	Credits  int             `json:"credits" example:"50"`
}

type CreateOrderResponseDTO struct {
	TransactionID int    `json:"transaction_id" example:"12"`
	Gateway       string `json:"gateway" example:"razorpay"`
	OrderID       string `json:"order_id" example:"order_NXw2Lr8kVqJmTo"`
	ApprovalURL   string `json:"approval_url,omitempty" example:"https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T"`
	Reused        bool   `json:"reused" example:"false"`
}

type CaptureOrderRequestDTO struct {
	PaymentID string `json:"payment_id,omitempty" example:"pay_NXw3c0o3Cq9t5H"`
	Signature string `json:"signature,omitempty" example:"9ef4dffbfd84f1318f6739a3ce19f9d85851857ae648f114332d8401e0949a3d"`
}

type TransactionResponseDTO struct {
	TransactionID int    `json:"transaction_id" example:"12"`
	Status        string `json:"status" example:"COMPLETED"`
	Credits       int    `json:"credits" example:"50"`
	Amount        string `json:"amount" example:"500.00"`
	Currency      string `json:"currency" example:"INR"`
	CompletedAt   string `json:"completed_at,omitempty" example:"2024-05-01T12:00:00Z"`
}

type CreditsResponseDTO struct {
	Credits int `json:"credits" example:"20"`
}

type WebhookResponseDTO struct {
	Outcome string `json:"outcome" example:"applied"`
}
