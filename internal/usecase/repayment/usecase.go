// Package repayment implements partial and full repayments against active
// loans. Balance is always derived by summing the append-only records.
package repayment

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/repayment"
	"arthalend-backend/internal/domain/uow"
	"arthalend-backend/internal/ledger"
	"arthalend-backend/pkg/id"
)

var (
	ErrInvalidAmount      = errors.New("repayment amount must be greater than zero")
	ErrExceedsOutstanding = errors.New("repayment amount exceeds outstanding balance")
	ErrFullAmountShort    = errors.New("full repayment must cover the outstanding balance")
)

// Repayments within a cent of the total close the loan; this absorbs EMI
// rounding drift on the last installment.
const closeEpsilon = 0.01

type RepayInput struct {
	LoanID  string         `json:"-"`
	PayerID string         `json:"-"`
	Amount  float64        `json:"amount" validate:"required,gt=0"`
	Type    repayment.Type `json:"repayment_type" validate:"required,oneof=PARTIAL FULL"`
}

type RepayResult struct {
	RepaymentID      string  `json:"repayment_id"`
	LoanID           string  `json:"loan_id"`
	Amount           float64 `json:"amount"`
	Type             string  `json:"repayment_type"`
	TotalRepaid      float64 `json:"total_repaid"`
	RemainingBalance float64 `json:"remaining_balance"`
	LoanStatus       string  `json:"loan_status"`
}

type Usecase struct {
	uow        uow.UnitOfWork
	loans      loan.Repository
	repayments repayment.Repository
	rec        ledger.Recorder
	log        *zap.Logger

	now func() time.Time
}

func NewUsecase(
	u uow.UnitOfWork,
	loans loan.Repository,
	repayments repayment.Repository,
	rec ledger.Recorder,
	log *zap.Logger,
) *Usecase {
	return &Usecase{
		uow:        u,
		loans:      loans,
		repayments: repayments,
		rec:        rec,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Repay records one repayment. A FULL repayment, or a PARTIAL one that
// brings the paid total to the payable amount, closes the loan and applies
// the borrower's score reward inside the same transaction.
func (u *Usecase) Repay(ctx context.Context, in RepayInput) (*RepayResult, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := u.now()
	var (
		entry  *repayment.Repayment
		result RepayResult
		closed bool
	)
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusActive {
			return loan.ErrNotActive
		}
		if l.BorrowerID != in.PayerID {
			return loan.ErrNotBorrower
		}

		prior, err := r.Repayments.ListByLoanID(ctx, l.LoanID)
		if err != nil {
			return err
		}
		paidSoFar := repayment.Sum(prior)
		remaining := round2(l.TotalPayable - paidSoFar)
		if in.Amount > remaining+closeEpsilon {
			return ErrExceedsOutstanding
		}
		if in.Type == repayment.TypeFull && in.Amount < remaining-closeEpsilon {
			return ErrFullAmountShort
		}

		entry = &repayment.Repayment{
			RepaymentID: id.NewRepaymentID(),
			LoanID:      l.LoanID,
			Amount:      in.Amount,
			Type:        in.Type,
			PaidBy:      in.PayerID,
			PaidAt:      now,
		}
		if err := r.Repayments.Create(ctx, entry); err != nil {
			return err
		}

		totalRepaid := round2(paidSoFar + in.Amount)
		closed = in.Type == repayment.TypeFull || totalRepaid >= l.TotalPayable-closeEpsilon
		if closed {
			l.Status = loan.StatusRepaid
			l.StatusUpdatedAt = now
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			if err := u.rewardBorrower(ctx, r, l.BorrowerID); err != nil {
				return err
			}
		}

		result = RepayResult{
			RepaymentID:      entry.RepaymentID,
			LoanID:           l.LoanID,
			Amount:           in.Amount,
			Type:             string(in.Type),
			TotalRepaid:      totalRepaid,
			RemainingBalance: round2(l.TotalPayable - totalRepaid),
			LoanStatus:       string(l.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.publish(ctx, in.LoanID, func() (string, error) {
		return u.rec.RecordRepayment(ctx, entry.ProofPayload(), in.LoanID)
	})
	if closed {
		u.publish(ctx, in.LoanID, func() (string, error) {
			return u.rec.RecordLoanStatus(ctx, loan.StatusPayload(loan.StatusRepaid, now), in.LoanID)
		})
	}
	return &result, nil
}

// History lists a loan's repayments with the derived totals.
func (u *Usecase) History(ctx context.Context, loanID string) ([]repayment.Repayment, float64, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, 0, err
	}
	list, err := u.repayments.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, 0, err
	}
	remaining := round2(l.TotalPayable - repayment.Sum(list))
	return list, remaining, nil
}

// rewardBorrower applies the bounded full-repayment score increment. A
// missing score is tolerated; the reward is an incentive, not a requirement.
func (u *Usecase) rewardBorrower(ctx context.Context, r uow.Repos, borrowerID string) error {
	score, err := r.Scores.GetByUserIDForUpdate(ctx, borrowerID)
	if errors.Is(err, credit.ErrScoreNotFound) {
		return nil
	} else if err != nil {
		return err
	}
	score.Reward()
	return r.Scores.Save(ctx, score)
}

func (u *Usecase) publish(ctx context.Context, key string, fn func() (string, error)) {
	if _, err := fn(); err != nil {
		u.log.Warn("ledger publish failed, continuing degraded",
			zap.String("key", key), zap.Error(err))
	}
}
