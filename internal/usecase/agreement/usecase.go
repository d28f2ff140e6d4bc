// Package agreement implements signed-agreement execution: the step that
// moves a drafted loan onto the marketplace.
package agreement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"arthalend-backend/internal/domain/agreement"
	"arthalend-backend/internal/domain/kyc"
	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/uow"
	"arthalend-backend/internal/ledger"
	"arthalend-backend/internal/verify"
)

var ErrIdentityRejected = errors.New("identity verification rejected the signed agreement")

type ExecuteInput struct {
	LoanID         string `json:"-"`
	BorrowerID     string `json:"-"`
	SignedPDFRef   string `json:"signed_pdf_ref" validate:"required"`
	VideoRef       string `json:"video_ref,omitempty"`
	SignedImageRef string `json:"signed_image_ref,omitempty"`
}

type ExecuteResult struct {
	LoanID     string    `json:"loan_id"`
	Status     string    `json:"status"`
	VerifiedAt time.Time `json:"verified_at"`
}

type Usecase struct {
	uow      uow.UnitOfWork
	loans    loan.Repository
	kyc      kyc.Repository
	verifier verify.Verifier
	rec      ledger.Recorder
	log      *zap.Logger

	now func() time.Time
}

// NewUsecase wires the execution flow. verifier may be nil when no
// verification service is configured; execution then proceeds unverified.
func NewUsecase(
	u uow.UnitOfWork,
	loans loan.Repository,
	kycRepo kyc.Repository,
	verifier verify.Verifier,
	rec ledger.Recorder,
	log *zap.Logger,
) *Usecase {
	return &Usecase{
		uow:      u,
		loans:    loans,
		kyc:      kycRepo,
		verifier: verifier,
		rec:      rec,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute verifies the borrower's signed agreement and lists the loan.
// Verification is blocking: unlike ledger publication, a rejection or a
// verifier outage fails the operation, because listing an unverified
// agreement cannot be repaired after the fact.
func (u *Usecase) Execute(ctx context.Context, in ExecuteInput) (*ExecuteResult, error) {
	l, err := u.loans.GetByLoanID(ctx, in.LoanID)
	if err != nil {
		return nil, err
	}
	if l.Status != loan.StatusAwaitingSignature {
		return nil, loan.ErrNotAwaitingSignature
	}
	if l.BorrowerID != in.BorrowerID {
		return nil, loan.ErrNotBorrower
	}

	if err := u.verifyIdentity(ctx, in); err != nil {
		return nil, err
	}

	now := u.now()
	var exec *agreement.Execution
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusAwaitingSignature {
			return loan.ErrNotAwaitingSignature
		}

		l.SignedAgreementRef = in.SignedPDFRef
		l.Status = loan.StatusListed
		l.StatusUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		exec = &agreement.Execution{
			LoanID:         l.LoanID,
			SignedPDFRef:   in.SignedPDFRef,
			VideoRef:       in.VideoRef,
			SignedImageRef: in.SignedImageRef,
			VerifiedAt:     now,
		}
		return r.Executions.Create(ctx, exec)
	})
	if err != nil {
		return nil, err
	}

	if _, perr := u.rec.RecordAgreementExecution(ctx, exec.ProofPayload(), in.LoanID); perr != nil {
		u.log.Warn("ledger publish failed, continuing degraded",
			zap.String("key", in.LoanID), zap.Error(perr))
	}
	if _, perr := u.rec.RecordLoanStatus(ctx, loan.StatusPayload(loan.StatusListed, now), in.LoanID); perr != nil {
		u.log.Warn("ledger publish failed, continuing degraded",
			zap.String("key", in.LoanID), zap.Error(perr))
	}

	return &ExecuteResult{LoanID: in.LoanID, Status: string(loan.StatusListed), VerifiedAt: now}, nil
}

func (u *Usecase) verifyIdentity(ctx context.Context, in ExecuteInput) error {
	if u.verifier == nil || in.SignedImageRef == "" {
		return nil
	}

	rec, err := u.kyc.GetByUserID(ctx, in.BorrowerID)
	if err != nil || rec.IDDocuments == nil {
		// without a reference image there is nothing to verify against
		return nil
	}

	res, err := u.verifier.Verify(ctx, in.SignedImageRef, rec.IDDocuments.FrontImageRef)
	if err != nil {
		return fmt.Errorf("identity verification: %w", err)
	}
	if !res.Approved {
		u.log.Info("agreement verification rejected",
			zap.String("loan_id", in.LoanID), zap.String("reason", res.Reason))
		return ErrIdentityRejected
	}
	return nil
}
