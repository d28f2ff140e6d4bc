// Package transaction implements fund disbursement: the lender's transfer
// that moves an accepted loan's money, splits the platform fee, and leaves a
// durable receipt.
package transaction

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/transaction"
	"arthalend-backend/internal/domain/uow"
	"arthalend-backend/internal/ledger"
	"arthalend-backend/pkg/id"
)

// Accepter lets a transfer against a still-listed loan accept it first, so a
// lender can fund in one call.
type Accepter interface {
	AcceptLoan(ctx context.Context, loanID, lenderID string) error
}

// AccepterFunc adapts a bare function to Accepter for wiring.
type AccepterFunc func(ctx context.Context, loanID, lenderID string) error

func (f AccepterFunc) AcceptLoan(ctx context.Context, loanID, lenderID string) error {
	return f(ctx, loanID, lenderID)
}

type TransferInput struct {
	LoanID   string `json:"-"`
	SenderID string `json:"-"`
	// Success simulates the payment rail outcome; nil means success.
	Success *bool `json:"success,omitempty"`
}

type TransferResult struct {
	TransactionID string  `json:"transaction_id"`
	LoanID        string  `json:"loan_id"`
	GrossAmount   float64 `json:"gross_amount"`
	PlatformFee   float64 `json:"platform_fee"`
	NetDisbursed  float64 `json:"net_disbursed"`
	TransferredAt string  `json:"transferred_at"`
}

type Usecase struct {
	uow      uow.UnitOfWork
	loans    loan.Repository
	receipts transaction.Repository
	accepter Accepter
	rec      ledger.Recorder
	feePct   float64
	log      *zap.Logger

	now func() time.Time
}

func NewUsecase(
	u uow.UnitOfWork,
	loans loan.Repository,
	receipts transaction.Repository,
	accepter Accepter,
	rec ledger.Recorder,
	feePercent float64,
	log *zap.Logger,
) *Usecase {
	return &Usecase{
		uow:      u,
		loans:    loans,
		receipts: receipts,
		accepter: accepter,
		rec:      rec,
		feePct:   feePercent,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Process moves the funds for a loan. A transfer against a LISTED loan
// accepts it first; the transfer itself requires the loan to be ACTIVE with
// the sender as its lender. Each loan is funded at most once: the receipt's
// unique loan key plus the in-transaction recheck guarantee it.
func (u *Usecase) Process(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if _, err := u.receipts.GetByLoanID(ctx, in.LoanID); err == nil {
		return nil, loan.ErrAlreadyFunded
	} else if !errors.Is(err, transaction.ErrNotFound) {
		return nil, err
	}

	l, err := u.loans.GetByLoanID(ctx, in.LoanID)
	if err != nil {
		return nil, err
	}
	// A failed transfer must leave the loan untouched: the failure is
	// counted before any acceptance so a LISTED loan stays fundable by
	// another lender.
	if in.Success != nil && !*in.Success {
		return nil, u.recordFailure(ctx, l, in.SenderID)
	}
	if l.Status == loan.StatusListed {
		if err := u.accepter.AcceptLoan(ctx, in.LoanID, in.SenderID); err != nil {
			return nil, err
		}
	}

	now := u.now()
	var receipt *transaction.Receipt
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusActive {
			return loan.ErrNotActive
		}
		if l.LenderID == nil || *l.LenderID != in.SenderID {
			return loan.ErrNotLender
		}
		if _, err := r.Transactions.GetByLoanID(ctx, l.LoanID); err == nil {
			return loan.ErrAlreadyFunded
		} else if !errors.Is(err, transaction.ErrNotFound) {
			return err
		}

		receipt = &transaction.Receipt{
			TransactionID: id.NewTransactionID(),
			LoanID:        l.LoanID,
			SenderID:      in.SenderID,
			ReceiverID:    l.BorrowerID,
			Amount:        l.Amount,
			Success:       true,
			TransferredAt: now,
		}
		if err := r.Transactions.Create(ctx, receipt); err != nil {
			return err
		}

		return u.foldStats(ctx, r, l.BorrowerID, l.Amount, true)
	})
	if err != nil {
		return nil, err
	}

	u.publish(ctx, l.LoanID, func() (string, error) {
		return u.rec.RecordTransactionReceipt(ctx, receipt.ProofPayload(), l.LoanID)
	})
	u.publish(ctx, l.LoanID, func() (string, error) {
		payload := transaction.FeePayload(l.LoanID, l.Amount, u.feePct, l.PlatformFee, l.NetDisbursed)
		return u.rec.RecordFeeAllocation(ctx, payload, l.LoanID)
	})

	return &TransferResult{
		TransactionID: receipt.TransactionID,
		LoanID:        l.LoanID,
		GrossAmount:   l.Amount,
		PlatformFee:   l.PlatformFee,
		NetDisbursed:  l.NetDisbursed,
		TransferredAt: now.UTC().Format(time.RFC3339),
	}, nil
}

// recordFailure persists the failed attempt into the borrower's behavior
// counters in its own transaction, then reports the failure. No receipt is
// written, so the loan stays fundable.
func (u *Usecase) recordFailure(ctx context.Context, l *loan.Loan, senderID string) error {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return u.foldStats(ctx, r, l.BorrowerID, l.Amount, false)
	})
	if err != nil {
		return err
	}
	u.log.Warn("fund transfer failed",
		zap.String("loan_id", l.LoanID), zap.String("sender_id", senderID))
	return transaction.ErrFailed
}

func (u *Usecase) foldStats(ctx context.Context, r uow.Repos, userID string, amount float64, success bool) error {
	stats, err := r.Stats.GetByUserIDForUpdate(ctx, userID)
	if errors.Is(err, credit.ErrStatsNotFound) {
		stats = &credit.Stats{UserID: userID}
	} else if err != nil {
		return err
	}
	stats.RecordTransaction(amount, success)
	return r.Stats.Save(ctx, stats)
}

func (u *Usecase) publish(ctx context.Context, key string, fn func() (string, error)) {
	if _, err := fn(); err != nil {
		u.log.Warn("ledger publish failed, continuing degraded",
			zap.String("key", key), zap.Error(err))
	}
}
