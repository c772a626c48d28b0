package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/dto"
	"github.com/GlebRadaev/examledger/internal/gateway"
	"github.com/GlebRadaev/examledger/internal/service/paymentservice"
	"github.com/GlebRadaev/examledger/pkg/auth"
	"github.com/GlebRadaev/examledger/pkg/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:generate mockgen -source=payments.go -destination=mock_payments.go -package=payments

type Service interface {
	CreateOrder(ctx context.Context, userID int, g domain.Gateway, req paymentservice.OrderRequest) (*paymentservice.OrderResult, error)
	CaptureOrder(ctx context.Context, userID int, g domain.Gateway, req gateway.CaptureRequest) (*domain.Transaction, error)
}

type Ledger interface {
	Balance(ctx context.Context, userID int) (int, error)
}

type PaymentHandler struct {
	paymentService Service
	ledger         Ledger
}

func New(paymentService Service, ledger Ledger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		ledger:         ledger,
	}
}

func respondWithPaymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedGateway),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, gateway.ErrRejected):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, gateway.ErrInvalidSignature):
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid payment signature")
	case errors.Is(err, gateway.ErrUnavailable):
		utils.RespondWithError(w, http.StatusBadGateway, "Payment gateway unavailable, try again")
	default:
		zap.L().Error("payment request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// CreateOrder godoc
//
//	@Summary		Buy credits
//	@Description	Opens a credit purchase with the payment gateway. A pending purchase with the same parameters is reused.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			gateway	path	string						true	"paypal or razorpay"
//	@Param			request	body	dto.CreateOrderRequestDTO	true	"Purchase"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.CreateOrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Bad request"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Unknown gateway"
//	@Failure		422	{object}	utils.Response	"Invalid purchase"
//	@Failure		502	{object}	utils.Response	"Gateway unavailable"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/payments/{gateway}/orders [post]
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	g, err := domain.ParseGateway(chi.URLParam(r, "gateway"))
	if err != nil {
		respondWithPaymentError(w, err)
		return
	}

	var req dto.CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.paymentService.CreateOrder(r.Context(), userID, g, paymentservice.OrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Credits:  req.Credits,
	})
	if err != nil {
		respondWithPaymentError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dto.CreateOrderResponseDTO{
		TransactionID: result.TransactionID,
		Gateway:       string(g),
		OrderID:       result.GatewayOrderID,
		ApprovalURL:   result.ApprovalURL,
		Reused:        result.Reused,
	})
}

// CaptureOrder godoc
//
//	@Summary		Confirm an approved payment
//	@Description	Called by the client after checkout. Credits are added once the gateway reports the capture.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			gateway	path	string						true	"paypal or razorpay"
//	@Param			orderID	path	string						true	"Gateway order id"
//	@Param			request	body	dto.CaptureOrderRequestDTO	false	"Razorpay checkout result"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.TransactionResponseDTO
//	@Failure		400	{object}	utils.Response	"Bad request"
//	@Failure		401	{object}	utils.Response	"Not authorized or invalid checkout signature"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		422	{object}	utils.Response	"Payment rejected"
//	@Failure		502	{object}	utils.Response	"Gateway unavailable"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/payments/{gateway}/orders/{orderID}/capture [post]
func (h *PaymentHandler) CaptureOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	g, err := domain.ParseGateway(chi.URLParam(r, "gateway"))
	if err != nil {
		respondWithPaymentError(w, err)
		return
	}

	var req dto.CaptureOrderRequestDTO
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	txn, err := h.paymentService.CaptureOrder(r.Context(), userID, g, gateway.CaptureRequest{
		OrderID:   chi.URLParam(r, "orderID"),
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		respondWithPaymentError(w, err)
		return
	}

	resp := dto.TransactionResponseDTO{
		TransactionID: txn.ID,
		Status:        string(txn.Status),
		Credits:       txn.Credits,
		Amount:        txn.Amount.StringFixed(2),
		Currency:      txn.Currency,
	}
	if txn.CompletedAt != nil {
		resp.CompletedAt = txn.CompletedAt.Format(time.RFC3339)
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GetCredits godoc
//
//	@Summary		Get credit balance
//	@Tags			Payments
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.CreditsResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/credits [get]
func (h *PaymentHandler) GetCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	credits, err := h.ledger.Balance(r.Context(), userID)
	if err != nil {
		respondWithPaymentError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.CreditsResponseDTO{Credits: credits})
}
