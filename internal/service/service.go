package service

import (
	"github.com/GlebRadaev/examledger/internal/gateway"
	"github.com/GlebRadaev/examledger/internal/repo"
	"github.com/GlebRadaev/examledger/internal/service/attemptservice"
	"github.com/GlebRadaev/examledger/internal/service/ledgerservice"
	"github.com/GlebRadaev/examledger/internal/service/paymentservice"
)

type Services struct {
	LedgerService  *ledgerservice.Service
	AttemptService *attemptservice.Service
	PaymentService *paymentservice.Service
}

func New(repo *repo.Repositories, gateways gateway.Registry, policy paymentservice.FailurePolicy) *Services {
	ledgerService := ledgerservice.New(repo.UserRepo, repo.AttemptRepo, repo.TransactionRepo, repo.TxManager)
	attemptService := attemptservice.New(repo.ExamRepo, repo.AttemptRepo, repo.UserRepo, ledgerService)
	paymentService := paymentservice.New(repo.TransactionRepo, repo.UserRepo, ledgerService, gateways, repo.TxManager, policy)

	return &Services{
		LedgerService:  ledgerService,
		AttemptService: attemptService,
		PaymentService: paymentService,
	}
}
