package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the row for the duration of the enclosing
	// transaction. All read-check-write transitions go through this.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	// GetOpenLoanByBorrowerID returns the borrower's loan in an open state
	// (AWAITING_SIGNATURE, LISTED or ACTIVE), if any.
	GetOpenLoanByBorrowerID(ctx context.Context, borrowerID string) (*Loan, error)
	ListByStatus(ctx context.Context, status Status) ([]Loan, error)
	ListByLenderID(ctx context.Context, lenderID string) ([]Loan, error)
	// SumOutstandingByLenderID sums amounts of non-repaid loans funded by the
	// lender, used against the global lending cap.
	SumOutstandingByLenderID(ctx context.Context, lenderID string) (float64, error)
}

type AcceptanceRepository interface {
	Create(ctx context.Context, a *Acceptance) error
	GetByLoanID(ctx context.Context, loanID string) (*Acceptance, error)
}
