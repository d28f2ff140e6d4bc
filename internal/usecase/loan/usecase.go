// Package loan implements the borrow-request and marketplace operations.
package loan

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"arthalend-backend/internal/creditscore"
	"arthalend-backend/internal/docgen"
	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/kyc"
	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/uow"
	"arthalend-backend/internal/domain/user"
	"arthalend-backend/internal/emi"
	"arthalend-backend/internal/ledger"
	"arthalend-backend/pkg/id"
)

// Policy carries the lending rules the usecase enforces. Values come from
// config at wiring time so tests can vary them.
type Policy struct {
	FeePercent         float64
	GuarantorThreshold float64
	LendingLimit       float64

	AllowUnverifiedBorrowers bool
	AutoListLoans            bool
}

type Usecase struct {
	uow    uow.UnitOfWork
	loans  loan.Repository
	users  user.Repository
	kyc    kyc.Repository
	scores credit.ScoreRepository
	rec    ledger.Recorder
	docs   docgen.Generator
	policy Policy
	log    *zap.Logger

	now func() time.Time
}

func NewUsecase(
	u uow.UnitOfWork,
	loans loan.Repository,
	users user.Repository,
	kycRepo kyc.Repository,
	scores credit.ScoreRepository,
	rec ledger.Recorder,
	docs docgen.Generator,
	policy Policy,
	log *zap.Logger,
) *Usecase {
	return &Usecase{
		uow:    u,
		loans:  loans,
		users:  users,
		kyc:    kycRepo,
		scores: scores,
		rec:    rec,
		docs:   docs,
		policy: policy,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// CreateBorrowRequest runs the borrow preconditions in a fixed order, prices
// the loan, persists it, and publishes the request proof. The publish runs
// after the commit and never fails the request. Passing the loan_id of the
// borrower's own unsigned draft amends that draft in place.
func (u *Usecase) CreateBorrowRequest(ctx context.Context, in CreateBorrowRequestInput) (*LoanDTO, error) {
	var draft *loan.Loan
	open, err := u.loans.GetOpenLoanByBorrowerID(ctx, in.BorrowerID)
	switch {
	case err == nil:
		if in.LoanID != open.LoanID || open.Status != loan.StatusAwaitingSignature {
			return nil, loan.ErrOpenLoanExists
		}
		draft = open
	case errors.Is(err, loan.ErrNotFound):
		if in.LoanID != "" {
			return nil, loan.ErrNotFound
		}
	default:
		return nil, err
	}

	rec, err := u.kyc.GetByUserID(ctx, in.BorrowerID)
	if err != nil && !errors.Is(err, kyc.ErrNotFound) {
		return nil, err
	}
	if !u.policy.AllowUnverifiedBorrowers && !rec.Approved() {
		return nil, loan.ErrKYCNotApproved
	}

	if !in.AgreedToRules {
		return nil, loan.ErrRulesNotAccepted
	}

	score, err := u.scores.GetByUserID(ctx, in.BorrowerID)
	if errors.Is(err, credit.ErrScoreNotFound) {
		return nil, loan.ErrScoreNotInitialized
	} else if err != nil {
		return nil, err
	}
	limit := creditscore.LimitFor(score.Value)
	if limit == 0 {
		return nil, loan.ErrBorrowingBlocked
	}
	if in.Amount > limit {
		return nil, loan.ErrCreditLimitExceeded
	}

	var guarantor *loan.Guarantor
	if in.Amount > u.policy.GuarantorThreshold {
		if in.Guarantor == nil {
			return nil, loan.ErrGuarantorRequired
		}
		guarantor = &loan.Guarantor{
			FullName:      in.Guarantor.FullName,
			Relation:      in.Guarantor.Relation,
			CitizenshipNo: in.Guarantor.CitizenshipNo,
			FrontImageRef: in.Guarantor.FrontImageRef,
			BackImageRef:  in.Guarantor.BackImageRef,
		}
		if !guarantor.Complete() {
			return nil, loan.ErrGuarantorIncomplete
		}
	}

	pricing, err := emi.Calculate(in.Amount, in.InterestRate, in.TenureMonths)
	if err != nil {
		return nil, err
	}
	fee := round2(in.Amount * u.policy.FeePercent / 100)

	now := u.now()
	loanID := id.NewLoanID()
	createdAt := now
	if draft != nil {
		loanID = draft.LoanID
		createdAt = draft.CreatedAt
	}
	l := &loan.Loan{
		LoanID:          loanID,
		BorrowerID:      in.BorrowerID,
		Amount:          in.Amount,
		InterestRate:    in.InterestRate,
		TenureMonths:    in.TenureMonths,
		Purpose:         in.Purpose,
		EMI:             pricing.EMI,
		TotalPayable:    pricing.TotalPayable,
		PlatformFee:     fee,
		NetDisbursed:    round2(in.Amount - fee),
		CreditScore:     score.Value,
		Guarantor:       guarantor,
		Status:          loan.StatusAwaitingSignature,
		StatusUpdatedAt: now,
		CreatedAt:       createdAt,
	}
	if draft != nil {
		// keep the draft's row identity so Save updates in place
		l.ID = draft.ID
	}
	if u.policy.AutoListLoans {
		l.Status = loan.StatusListed
	}

	terms := docgen.Terms{
		LoanID:       l.LoanID,
		Amount:       l.Amount,
		InterestRate: l.InterestRate,
		TenureMonths: l.TenureMonths,
		NetDisbursed: l.NetDisbursed,
		TotalPayable: l.TotalPayable,
	}
	if borrower, uerr := u.users.GetByPhone(ctx, in.BorrowerID); uerr == nil {
		terms.BorrowerFullName = borrower.FirstName + " " + borrower.LastName
	}
	if rec != nil && rec.IDDocuments != nil {
		terms.BorrowerCitizenship = rec.IDDocuments.IDNumber
	}
	if guarantor != nil {
		terms.GuarantorFullName = guarantor.FullName
		terms.GuarantorCitizenship = guarantor.CitizenshipNo
	}
	ref, err := u.docs.GenerateAgreement(ctx, terms)
	if err != nil {
		return nil, err
	}
	l.AgreementRef = ref

	if draft != nil {
		err = u.loans.Save(ctx, l)
	} else {
		err = u.loans.Create(ctx, l)
	}
	if err != nil {
		return nil, err
	}

	u.publish(ctx, l.LoanID, func() (string, error) {
		return u.rec.RecordLoanRequest(ctx, l.ProofPayload(), l.LoanID)
	})
	u.publishStatus(ctx, l.LoanID, l.Status, now)

	return toDTO(l), nil
}

// Marketplace lists every LISTED loan with the borrower's masked name.
func (u *Usecase) Marketplace(ctx context.Context) ([]MarketplaceItem, error) {
	listed, err := u.loans.ListByStatus(ctx, loan.StatusListed)
	if err != nil {
		return nil, err
	}

	out := make([]MarketplaceItem, 0, len(listed))
	for _, l := range listed {
		name := ""
		if borrower, uerr := u.users.GetByPhone(ctx, l.BorrowerID); uerr == nil {
			name = borrower.DisplayName()
		}
		out = append(out, MarketplaceItem{
			LoanID:       l.LoanID,
			BorrowerName: name,
			CreditScore:  l.CreditScore,
			Amount:       l.Amount,
			InterestRate: l.InterestRate,
			TenureMonths: l.TenureMonths,
			Purpose:      l.Purpose,
			EMI:          l.EMI,
			TotalPayable: l.TotalPayable,
			ListedAt:     l.StatusUpdatedAt,
		})
	}
	return out, nil
}

// AcceptLoan moves a LISTED loan to ACTIVE for exactly one lender. The whole
// check-and-set runs under the loan row lock; a concurrent second accept sees
// the ACTIVE status and gets ErrNotAvailable.
func (u *Usecase) AcceptLoan(ctx context.Context, loanID, lenderID string) (*AcceptResult, error) {
	now := u.now()
	var accepted *loan.Acceptance

	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusListed {
			return loan.ErrNotAvailable
		}
		if l.BorrowerID == lenderID {
			return loan.ErrSelfFunding
		}
		if _, err := r.Loans.GetOpenLoanByBorrowerID(ctx, lenderID); err == nil {
			return loan.ErrBorrowerCannotLend
		} else if !errors.Is(err, loan.ErrNotFound) {
			return err
		}
		outstanding, err := r.Loans.SumOutstandingByLenderID(ctx, lenderID)
		if err != nil {
			return err
		}
		if outstanding+l.Amount > u.policy.LendingLimit {
			return loan.ErrLendingLimitExceeded
		}
		rec, err := r.KYC.GetByUserID(ctx, lenderID)
		if err != nil && !errors.Is(err, kyc.ErrNotFound) {
			return err
		}
		if !rec.Approved() {
			return loan.ErrKYCNotApproved
		}

		l.LenderID = &lenderID
		l.Status = loan.StatusActive
		l.StartTimestamp = &now
		l.StatusUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		accepted = &loan.Acceptance{LoanID: l.LoanID, LenderID: lenderID, AcceptedAt: now}
		return r.Acceptances.Create(ctx, accepted)
	})
	if err != nil {
		return nil, err
	}

	u.publish(ctx, loanID, func() (string, error) {
		return u.rec.RecordLoanAcceptance(ctx, accepted.ProofPayload(), loanID)
	})
	u.publishStatus(ctx, loanID, loan.StatusActive, now)

	return &AcceptResult{
		LoanID:     loanID,
		LenderID:   lenderID,
		Status:     string(loan.StatusActive),
		AcceptedAt: now,
	}, nil
}

// Get returns a single loan by its public id.
func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// Portfolio summarizes both sides of a user's position: the open loan they
// are borrowing, the loans they funded, and remaining lending capacity.
func (u *Usecase) Portfolio(ctx context.Context, userID string) (*Portfolio, error) {
	funded, err := u.loans.ListByLenderID(ctx, userID)
	if err != nil {
		return nil, err
	}
	outstanding, err := u.loans.SumOutstandingByLenderID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Portfolio{
		Loans:            make([]LoanDTO, 0, len(funded)),
		OutstandingTotal: outstanding,
		AvailableToLend:  u.policy.LendingLimit - outstanding,
	}
	for i := range funded {
		p.TotalLent += funded[i].Amount
		p.Loans = append(p.Loans, *toDTO(&funded[i]))
	}

	open, err := u.loans.GetOpenLoanByBorrowerID(ctx, userID)
	switch {
	case err == nil:
		p.Borrowing = toDTO(open)
	case errors.Is(err, loan.ErrNotFound):
	default:
		return nil, err
	}
	return p, nil
}

// publish runs a proof publication in degraded mode: failures are logged and
// never surfaced, since the primary write already committed.
func (u *Usecase) publish(ctx context.Context, key string, fn func() (string, error)) {
	if _, err := fn(); err != nil {
		u.log.Warn("ledger publish failed, continuing degraded",
			zap.String("key", key), zap.Error(err))
	}
}

func (u *Usecase) publishStatus(ctx context.Context, loanID string, status loan.Status, at time.Time) {
	u.publish(ctx, loanID, func() (string, error) {
		return u.rec.RecordLoanStatus(ctx, loan.StatusPayload(status, at), loanID)
	})
}
