package handlers

import (
	"net/http"

	_ "github.com/GlebRadaev/examledger/docs"
	attempthandlers "github.com/GlebRadaev/examledger/internal/handlers/attempts"
	paymenthandlers "github.com/GlebRadaev/examledger/internal/handlers/payments"
	webhookhandlers "github.com/GlebRadaev/examledger/internal/handlers/webhooks"
	"github.com/GlebRadaev/examledger/internal/service"
	"github.com/GlebRadaev/examledger/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type AttemptHandler interface {
	StartAttempt(w http.ResponseWriter, r *http.Request)
	FinishAttempt(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	CaptureOrder(w http.ResponseWriter, r *http.Request)
	GetCredits(w http.ResponseWriter, r *http.Request)
}

type WebhookHandler interface {
	Receive(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AttemptHandler AttemptHandler
	PaymentHandler PaymentHandler
	WebhookHandler WebhookHandler
	tokens         auth.TokenValidator
}

func New(s *service.Services, tokens auth.TokenValidator) *Handlers {
	return &Handlers{
		AttemptHandler: attempthandlers.New(s.AttemptService),
		PaymentHandler: paymenthandlers.New(s.PaymentService, s.LedgerService),
		WebhookHandler: webhookhandlers.New(s.PaymentService),
		tokens:         tokens,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	r.Post("/api/webhooks/{gateway}", h.WebhookHandler.Receive)

	r.Route("/api/user", func(r chi.Router) {
		r.Use(auth.Middleware(h.tokens))

		r.Get("/credits", h.PaymentHandler.GetCredits)
		r.Post("/exams/{examID}/attempts", h.AttemptHandler.StartAttempt)
		r.Patch("/attempts/{attemptID}", h.AttemptHandler.FinishAttempt)
		r.Route("/payments/{gateway}/orders", func(r chi.Router) {
			r.Post("/", h.PaymentHandler.CreateOrder)
			r.Post("/{orderID}/capture", h.PaymentHandler.CaptureOrder)
		})
	})

	return r
}
