package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/dto"
	"github.com/GlebRadaev/examledger/internal/gateway"
	"github.com/GlebRadaev/examledger/internal/service/paymentservice"
	"github.com/GlebRadaev/examledger/pkg/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:generate mockgen -source=webhooks.go -destination=mock_webhooks.go -package=webhooks

const maxBodySize = 1 << 20

type Service interface {
	HandleWebhook(ctx context.Context, g domain.Gateway, header http.Header, body []byte) (paymentservice.Outcome, error)
}

type WebhookHandler struct {
	paymentService Service
}

func New(paymentService Service) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
	}
}

// Receive godoc
//
//	@Summary		Payment gateway notification
//	@Description	Signed PayPal or Razorpay webhook. Any non-2xx answer makes the gateway redeliver.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			gateway	path	string	true	"paypal or razorpay"
//	@Success		200	{object}	dto.WebhookResponseDTO
//	@Failure		400	{object}	utils.Response	"Malformed payload"
//	@Failure		401	{object}	utils.Response	"Invalid signature"
//	@Failure		404	{object}	utils.Response	"Unknown gateway"
//	@Failure		500	{object}	utils.Response	"Temporary failure, redeliver"
//	@Router			/api/webhooks/{gateway} [post]
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	g, err := domain.ParseGateway(chi.URLParam(r, "gateway"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	outcome, err := h.paymentService.HandleWebhook(r.Context(), g, r.Header, body)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrInvalidSignature):
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid signature")
		case errors.Is(err, gateway.ErrMalformedEvent):
			utils.RespondWithError(w, http.StatusBadRequest, "Malformed event")
		default:
			// the gateway retries on any non-2xx answer
			zap.L().Error("webhook processing failed", zap.String("gateway", string(g)), zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.WebhookResponseDTO{Outcome: string(outcome)})
}
