package agreement

import "context"

type Repository interface {
	Create(ctx context.Context, e *Execution) error
	GetByLoanID(ctx context.Context, loanID string) (*Execution, error)
}
