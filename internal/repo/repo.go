package repo

import (
	"github.com/GlebRadaev/examledger/internal/pg"
	"github.com/GlebRadaev/examledger/internal/reconcile"
	attemptrepo "github.com/GlebRadaev/examledger/internal/repo/attempt-repo"
	examrepo "github.com/GlebRadaev/examledger/internal/repo/exam-repo"
	transactionrepo "github.com/GlebRadaev/examledger/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/examledger/internal/repo/user-repo"
	"github.com/GlebRadaev/examledger/internal/service/attemptservice"
	"github.com/GlebRadaev/examledger/internal/service/ledgerservice"
	"github.com/GlebRadaev/examledger/internal/service/paymentservice"
)

type UserRepo interface {
	ledgerservice.UserRepo
	attemptservice.UserRepo
	paymentservice.UserRepo
}

type AttemptRepo interface {
	ledgerservice.AttemptRepo
	attemptservice.AttemptRepo
}

type TransactionRepo interface {
	ledgerservice.TransactionRepo
	paymentservice.TransactionRepo
	reconcile.TransactionRepo
}

type Repositories struct {
	UserRepo        UserRepo
	ExamRepo        attemptservice.ExamRepo
	AttemptRepo     AttemptRepo
	TransactionRepo TransactionRepo
	TxManager       pg.TXManager
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		ExamRepo:        examrepo.New(conn),
		AttemptRepo:     attemptrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
		TxManager:       txManager,
	}
}
