package repayment

import "context"

type Repository interface {
	// Create appends a repayment. Records are never updated or deleted.
	Create(ctx context.Context, r *Repayment) error
	ListByLoanID(ctx context.Context, loanID string) ([]Repayment, error)
}
