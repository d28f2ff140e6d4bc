package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arthalend-backend/internal/domain/kyc"
	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/repayment"
	"arthalend-backend/internal/ledger"
	"arthalend-backend/internal/testutil/ledgermock"
	"arthalend-backend/internal/testutil/memstore"
)

const borrowerPhone = "9841000001"

var auditTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) (*Usecase, *memstore.Store, *ledgermock.Recorder) {
	t.Helper()

	store := memstore.New()
	rec := ledgermock.New()
	repos := store.Repos()
	u := NewUsecase(repos.Loans, repos.Acceptances, repos.Executions,
		repos.Transactions, repos.Repayments, repos.KYC, rec)
	return u, store, rec
}

// seedProvenLoan stores a loan and publishes its matching proofs.
func seedProvenLoan(t *testing.T, store *memstore.Store, rec *ledgermock.Recorder, loanID string) *loan.Loan {
	t.Helper()

	l := &loan.Loan{
		LoanID:          loanID,
		BorrowerID:      borrowerPhone,
		Amount:          20000,
		InterestRate:    13,
		TenureMonths:    12,
		Purpose:         "business expansion",
		EMI:             1786.35,
		TotalPayable:    21436.20,
		PlatformFee:     600,
		Status:          loan.StatusAwaitingSignature,
		StatusUpdatedAt: auditTime,
		CreatedAt:       auditTime,
	}
	store.SeedLoan(l)

	ctx := context.Background()
	_, err := rec.RecordLoanRequest(ctx, l.ProofPayload(), loanID)
	require.NoError(t, err)
	_, err = rec.RecordLoanStatus(ctx, loan.StatusPayload(l.Status, l.StatusUpdatedAt), loanID)
	require.NoError(t, err)
	return l
}

func TestAuditLoan_CleanMatch(t *testing.T) {
	u, store, rec := newFixture(t)
	seedProvenLoan(t, store, rec, "LN-AUDIT001")

	got, err := u.AuditLoan(context.Background(), "LN-AUDIT001")
	require.NoError(t, err)
	assert.True(t, got.Clean)
	require.Len(t, got.Checks, 2)
	for _, c := range got.Checks {
		assert.True(t, c.Match)
		assert.Equal(t, DetailMatch, c.Detail)
		assert.Equal(t, c.DBHash, c.LedgerHash)
	}
}

func TestAuditLoan_UnknownLoan(t *testing.T) {
	u, _, _ := newFixture(t)

	_, err := u.AuditLoan(context.Background(), "LN-MISSING1")
	assert.ErrorIs(t, err, loan.ErrNotFound)
}

func TestAuditLoan_TamperedRecordMismatches(t *testing.T) {
	u, store, rec := newFixture(t)
	l := seedProvenLoan(t, store, rec, "LN-AUDIT002")

	// mutate the durable record after the proof was published
	l.Amount = 25000
	store.SeedLoan(l)

	got, err := u.AuditLoan(context.Background(), "LN-AUDIT002")
	require.NoError(t, err)
	assert.False(t, got.Clean)
	assert.False(t, got.Checks[0].Match)
	assert.Equal(t, DetailMismatch, got.Checks[0].Detail)
}

func TestAuditLoan_TamperedLedgerMismatches(t *testing.T) {
	u, store, rec := newFixture(t)
	seedProvenLoan(t, store, rec, "LN-AUDIT003")
	rec.Tamper(ledger.StreamLoanRequests, "LN-AUDIT003", "deadbeef")

	got, err := u.AuditLoan(context.Background(), "LN-AUDIT003")
	require.NoError(t, err)
	assert.False(t, got.Clean)
	assert.Equal(t, DetailMismatch, got.Checks[0].Detail)
}

func TestAuditLoan_MissingProofIsDistinctFromMismatch(t *testing.T) {
	u, store, _ := newFixture(t)
	store.SeedLoan(&loan.Loan{
		LoanID: "LN-AUDIT004", BorrowerID: borrowerPhone,
		Amount: 20000, Status: loan.StatusAwaitingSignature,
		StatusUpdatedAt: auditTime, CreatedAt: auditTime,
	})

	got, err := u.AuditLoan(context.Background(), "LN-AUDIT004")
	require.NoError(t, err)
	assert.False(t, got.Clean)
	for _, c := range got.Checks {
		assert.Equal(t, DetailNoProof, c.Detail)
		assert.NotEmpty(t, c.DBHash)
		assert.Empty(t, c.LedgerHash)
	}
}

func TestAuditLoan_LedgerOutageReported(t *testing.T) {
	u, store, rec := newFixture(t)
	seedProvenLoan(t, store, rec, "LN-AUDIT005")
	rec.FetchErr = errors.New("connection refused")

	got, err := u.AuditLoan(context.Background(), "LN-AUDIT005")
	require.NoError(t, err)
	assert.False(t, got.Clean)
	assert.Equal(t, DetailLedgerError, got.Checks[0].Detail)
}

func TestAuditLoan_RepaymentsMatchedAsSet(t *testing.T) {
	u, store, rec := newFixture(t)
	seedProvenLoan(t, store, rec, "LN-AUDIT006")

	ctx := context.Background()
	repos := store.Repos()
	for i, amt := range []float64{2000, 3000} {
		rp := &repayment.Repayment{
			RepaymentID: []string{"RP-AAAA0001", "RP-AAAA0002"}[i],
			LoanID:      "LN-AUDIT006",
			Amount:      amt,
			Type:        repayment.TypePartial,
			PaidBy:      borrowerPhone,
			PaidAt:      auditTime,
		}
		require.NoError(t, repos.Repayments.Create(ctx, rp))
		_, err := rec.RecordRepayment(ctx, rp.ProofPayload(), "LN-AUDIT006")
		require.NoError(t, err)
	}
	// a third repayment whose proof never landed
	unproven := &repayment.Repayment{
		RepaymentID: "RP-AAAA0003", LoanID: "LN-AUDIT006",
		Amount: 500, Type: repayment.TypePartial, PaidBy: borrowerPhone, PaidAt: auditTime,
	}
	require.NoError(t, repos.Repayments.Create(ctx, unproven))

	got, err := u.AuditLoan(ctx, "LN-AUDIT006")
	require.NoError(t, err)
	assert.False(t, got.Clean)

	byKey := map[string]Check{}
	for _, c := range got.Checks {
		byKey[c.Key] = c
	}
	assert.Equal(t, DetailMatch, byKey["RP-AAAA0001"].Detail)
	assert.Equal(t, DetailMatch, byKey["RP-AAAA0002"].Detail)
	assert.Equal(t, DetailNoProof, byKey["RP-AAAA0003"].Detail)
}

func TestAuditUser(t *testing.T) {
	u, store, rec := newFixture(t)
	record := &kyc.Record{
		UserID: borrowerPhone,
		Stage:  kyc.StageFinalized,
		Status: kyc.StatusApproved,
		FinalResult: &kyc.FinalResult{
			GovIDVerified: true, FaceMatch: true, FinalStatus: string(kyc.StatusApproved),
		},
		IdentityProof: &kyc.IdentityProof{IDVerified: true, FaceMatch: true, LocationOK: true},
	}
	store.SeedKYC(record)

	ctx := context.Background()
	_, err := rec.RecordKYCResult(ctx, record.ResultPayload(), borrowerPhone)
	require.NoError(t, err)
	_, err = rec.RecordIdentityProof(ctx, record.IdentityPayload(), borrowerPhone)
	require.NoError(t, err)

	got, err := u.AuditUser(ctx, borrowerPhone)
	require.NoError(t, err)
	assert.True(t, got.Clean)
	assert.Len(t, got.Checks, 2)

	t.Run("unknown user", func(t *testing.T) {
		_, err := u.AuditUser(ctx, "9841999999")
		assert.ErrorIs(t, err, kyc.ErrNotFound)
	})
}
