// Package defaulting implements the overdue sweep that moves unpaid loans
// past their term to DEFAULTED.
package defaulting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/repayment"
	"arthalend-backend/internal/domain/uow"
	"arthalend-backend/internal/ledger"
)

// Loan terms are measured in 30-day months, matching the EMI schedule.
const daysPerMonth = 30

type SweepResult struct {
	Checked   int      `json:"checked"`
	Defaulted []string `json:"defaulted"`
}

type Usecase struct {
	uow   uow.UnitOfWork
	loans loan.Repository
	rec   ledger.Recorder
	log   *zap.Logger

	now func() time.Time
}

func NewUsecase(u uow.UnitOfWork, loans loan.Repository, rec ledger.Recorder, log *zap.Logger) *Usecase {
	return &Usecase{
		uow:   u,
		loans: loans,
		rec:   rec,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// termEnd is when the loan's repayment window closes.
func termEnd(l *loan.Loan) (time.Time, bool) {
	if l.StartTimestamp == nil {
		return time.Time{}, false
	}
	return l.StartTimestamp.Add(time.Duration(l.TenureMonths) * daysPerMonth * 24 * time.Hour), true
}

// Sweep scans ACTIVE loans and defaults those past their term with an unpaid
// balance. Each candidate is re-checked under its row lock, so a repayment
// racing the sweep wins cleanly and the sweep is idempotent.
func (u *Usecase) Sweep(ctx context.Context) (*SweepResult, error) {
	active, err := u.loans.ListByStatus(ctx, loan.StatusActive)
	if err != nil {
		return nil, err
	}

	now := u.now()
	res := &SweepResult{Checked: len(active)}
	for i := range active {
		end, ok := termEnd(&active[i])
		if !ok || !now.After(end) {
			continue
		}

		loanID := active[i].LoanID
		err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
			if l.Status != loan.StatusActive {
				return nil
			}
			end, ok := termEnd(l)
			if !ok || !now.After(end) {
				return nil
			}
			paid, err := r.Repayments.ListByLoanID(ctx, l.LoanID)
			if err != nil {
				return err
			}
			if repayment.Sum(paid) >= l.TotalPayable {
				return nil
			}

			l.Status = loan.StatusDefaulted
			l.StatusUpdatedAt = now
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			res.Defaulted = append(res.Defaulted, l.LoanID)
			return nil
		})
		if err != nil {
			u.log.Error("default sweep: loan skipped", zap.String("loan_id", loanID), zap.Error(err))
			continue
		}
	}

	for _, loanID := range res.Defaulted {
		if _, err := u.rec.RecordLoanStatus(ctx, loan.StatusPayload(loan.StatusDefaulted, now), loanID); err != nil {
			u.log.Warn("ledger publish failed, continuing degraded",
				zap.String("key", loanID), zap.Error(err))
		}
	}

	if len(res.Defaulted) > 0 {
		u.log.Info("default sweep finished",
			zap.Int("checked", res.Checked), zap.Int("defaulted", len(res.Defaulted)))
	}
	return res, nil
}

// Run repeats the sweep on a fixed interval until the context is done.
func (u *Usecase) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := u.Sweep(ctx); err != nil {
				u.log.Error("default sweep failed", zap.Error(err))
			}
		}
	}
}
