package transaction

import "context"

type Repository interface {
	Create(ctx context.Context, r *Receipt) error
	GetByLoanID(ctx context.Context, loanID string) (*Receipt, error)
}
