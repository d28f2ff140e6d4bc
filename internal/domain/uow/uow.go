package uow

import (
	"context"

	"arthalend-backend/internal/domain/agreement"
	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/kyc"
	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/repayment"
	"arthalend-backend/internal/domain/transaction"
)

// Repos bundles the repositories a lifecycle transition may touch, all bound
// to the same transaction.
type Repos struct {
	Loans        loan.Repository
	Acceptances  loan.AcceptanceRepository
	Executions   agreement.Repository
	Repayments   repayment.Repository
	Transactions transaction.Repository
	Scores       credit.ScoreRepository
	Stats        credit.StatsRepository
	KYC          kyc.Repository
}

type UnitOfWork interface {
	// WithinTx runs fn in a transaction.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row up-front, then runs fn. Every
	// read-check-write transition on a loan goes through here so that
	// concurrent accept/fund/default attempts see at-most-one winner.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
