package mysql

import (
	"context"

	"gorm.io/gorm"

	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:        &LoanRepository{db: tx},
		Acceptances:  &AcceptanceRepository{db: tx},
		Executions:   &AgreementRepository{db: tx},
		Repayments:   &RepaymentRepository{db: tx},
		Transactions: &TransactionRepository{db: tx},
		Scores:       &ScoreRepository{db: tx},
		Stats:        &StatsRepository{db: tx},
		KYC:          &KYCRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
