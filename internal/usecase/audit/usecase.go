// Package audit reconciles durable records against their ledger proofs. For
// every record it recomputes the canonical hash and compares it with what was
// published, so tampering on either side becomes visible.
package audit

import (
	"context"
	"errors"
	"fmt"

	"arthalend-backend/internal/domain/agreement"
	"arthalend-backend/internal/domain/kyc"
	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/repayment"
	"arthalend-backend/internal/domain/transaction"
	"arthalend-backend/internal/ledger"
)

// Check outcomes. A missing proof and a mismatched proof are different
// findings: the first means the publish never landed, the second means one
// side changed after the fact.
const (
	DetailMatch       = "match"
	DetailNoProof     = "no ledger entry"
	DetailMismatch    = "hash mismatch"
	DetailLedgerError = "ledger unreachable"
)

type Check struct {
	Stream     string `json:"stream"`
	Key        string `json:"key"`
	DBHash     string `json:"db_hash,omitempty"`
	LedgerHash string `json:"ledger_hash,omitempty"`
	Match      bool   `json:"match"`
	Detail     string `json:"detail"`
}

type LoanReport struct {
	LoanID string  `json:"loan_id"`
	Checks []Check `json:"checks"`
	Clean  bool    `json:"clean"`
}

type UserReport struct {
	UserID string  `json:"user_id"`
	Checks []Check `json:"checks"`
	Clean  bool    `json:"clean"`
}

type Usecase struct {
	loans       loan.Repository
	acceptances loan.AcceptanceRepository
	executions  agreement.Repository
	receipts    transaction.Repository
	repayments  repayment.Repository
	kyc         kyc.Repository
	fetcher     ledger.Fetcher
}

func NewUsecase(
	loans loan.Repository,
	acceptances loan.AcceptanceRepository,
	executions agreement.Repository,
	receipts transaction.Repository,
	repayments repayment.Repository,
	kycRepo kyc.Repository,
	fetcher ledger.Fetcher,
) *Usecase {
	return &Usecase{
		loans:       loans,
		acceptances: acceptances,
		executions:  executions,
		receipts:    receipts,
		repayments:  repayments,
		kyc:         kycRepo,
		fetcher:     fetcher,
	}
}

// checkLatest recomputes payload's hash and compares it against the latest
// ledger item under (stream, key).
func (u *Usecase) checkLatest(ctx context.Context, stream, key string, payload any) Check {
	c := Check{Stream: stream, Key: key}

	hash, err := ledger.CanonicalHash(payload)
	if err != nil {
		c.Detail = fmt.Sprintf("hash: %v", err)
		return c
	}
	c.DBHash = hash

	item, err := u.fetcher.FetchLatest(ctx, stream, key)
	if err != nil {
		c.Detail = DetailLedgerError
		return c
	}
	if item == nil {
		c.Detail = DetailNoProof
		return c
	}
	c.LedgerHash = item.Data
	if c.LedgerHash == c.DBHash {
		c.Match = true
		c.Detail = DetailMatch
	} else {
		c.Detail = DetailMismatch
	}
	return c
}

func clean(checks []Check) bool {
	for _, c := range checks {
		if !c.Match {
			return false
		}
	}
	return true
}

// AuditLoan reconciles every record of one loan against its proofs. Lifecycle
// records that do not exist yet (acceptance before funding, repayments before
// any payment) are simply not checked.
func (u *Usecase) AuditLoan(ctx context.Context, loanID string) (*LoanReport, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	report := &LoanReport{LoanID: loanID}
	report.Checks = append(report.Checks,
		u.checkLatest(ctx, ledger.StreamLoanRequests, loanID, l.ProofPayload()),
		u.checkLatest(ctx, ledger.StreamLoanStatus, loanID, loan.StatusPayload(l.Status, l.StatusUpdatedAt)),
	)

	if a, err := u.acceptances.GetByLoanID(ctx, loanID); err == nil {
		report.Checks = append(report.Checks,
			u.checkLatest(ctx, ledger.StreamLoanAcceptance, loanID, a.ProofPayload()))
	} else if !errors.Is(err, loan.ErrNotFound) {
		return nil, err
	}

	if e, err := u.executions.GetByLoanID(ctx, loanID); err == nil {
		report.Checks = append(report.Checks,
			u.checkLatest(ctx, ledger.StreamLoanAgreements, loanID, e.ProofPayload()))
	} else if !errors.Is(err, agreement.ErrNotFound) {
		return nil, err
	}

	if r, err := u.receipts.GetByLoanID(ctx, loanID); err == nil {
		report.Checks = append(report.Checks,
			u.checkLatest(ctx, ledger.StreamTransactions, loanID, r.ProofPayload()))
	} else if !errors.Is(err, transaction.ErrNotFound) {
		return nil, err
	}

	repayChecks, err := u.auditRepayments(ctx, loanID)
	if err != nil {
		return nil, err
	}
	report.Checks = append(report.Checks, repayChecks...)

	report.Clean = clean(report.Checks)
	return report, nil
}

// auditRepayments matches each stored repayment against the set of hashes
// published under the loan's key. Order is not significant; every record must
// have a proof.
func (u *Usecase) auditRepayments(ctx context.Context, loanID string) ([]Check, error) {
	list, err := u.repayments.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	published := make(map[string]bool)
	items, err := u.fetcher.FetchKeyItems(ctx, ledger.StreamRepayments, loanID)
	ledgerDown := err != nil
	for _, it := range items {
		published[it.Data] = true
	}

	checks := make([]Check, 0, len(list))
	for i := range list {
		c := Check{Stream: ledger.StreamRepayments, Key: list[i].RepaymentID}
		hash, herr := ledger.CanonicalHash(list[i].ProofPayload())
		if herr != nil {
			c.Detail = fmt.Sprintf("hash: %v", herr)
			checks = append(checks, c)
			continue
		}
		c.DBHash = hash
		switch {
		case ledgerDown:
			c.Detail = DetailLedgerError
		case published[hash]:
			c.LedgerHash = hash
			c.Match = true
			c.Detail = DetailMatch
		default:
			c.Detail = DetailNoProof
		}
		checks = append(checks, c)
	}
	return checks, nil
}

// AuditUser reconciles a user's KYC result and identity proof.
func (u *Usecase) AuditUser(ctx context.Context, userID string) (*UserReport, error) {
	rec, err := u.kyc.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &UserReport{UserID: userID}
	if p := rec.ResultPayload(); p != nil {
		report.Checks = append(report.Checks,
			u.checkLatest(ctx, ledger.StreamKYCResults, userID, p))
	}
	if p := rec.IdentityPayload(); p != nil {
		report.Checks = append(report.Checks,
			u.checkLatest(ctx, ledger.StreamIdentityProofs, userID, p))
	}
	report.Clean = clean(report.Checks)
	return report, nil
}
