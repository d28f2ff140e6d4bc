package ledger

import "context"

// Publisher is the write side of the ledger used by the recorder.
type Publisher interface {
	Publish(ctx context.Context, stream, key, value string) error
}

// Recorder hashes canonical payloads and publishes the proofs. Callers treat
// a publish failure as degraded mode: the primary state transition has
// already committed, so the error is logged for out-of-band retry rather
// than propagated to the user.
type Recorder interface {
	RecordLoanRequest(ctx context.Context, payload any, loanID string) (string, error)
	RecordLoanAcceptance(ctx context.Context, payload any, loanID string) (string, error)
	RecordLoanStatus(ctx context.Context, payload any, loanID string) (string, error)
	RecordAgreementExecution(ctx context.Context, payload any, loanID string) (string, error)
	RecordTransactionReceipt(ctx context.Context, payload any, loanID string) (string, error)
	RecordFeeAllocation(ctx context.Context, payload any, loanID string) (string, error)
	RecordRepayment(ctx context.Context, payload any, loanID string) (string, error)
	RecordKYCResult(ctx context.Context, payload any, userID string) (string, error)
	RecordIdentityProof(ctx context.Context, payload any, userID string) (string, error)
}

type streamRecorder struct {
	pub Publisher
}

func NewRecorder(pub Publisher) Recorder {
	return &streamRecorder{pub: pub}
}

func (r *streamRecorder) record(ctx context.Context, stream, key string, payload any) (string, error) {
	hash, err := CanonicalHash(payload)
	if err != nil {
		return "", err
	}
	if err := r.pub.Publish(ctx, stream, key, hash); err != nil {
		return hash, err
	}
	return hash, nil
}

func (r *streamRecorder) RecordLoanRequest(ctx context.Context, payload any, loanID string) (string, error) {
	return r.record(ctx, StreamLoanRequests, loanID, payload)
}

func (r *streamRecorder) RecordLoanAcceptance(ctx context.Context, payload any, loanID string) (string, error) {
	return r.record(ctx, StreamLoanAcceptance, loanID, payload)
}

func (r *streamRecorder) RecordLoanStatus(ctx context.Context, payload any, loanID string) (string, error) {
	return r.record(ctx, StreamLoanStatus, loanID, payload)
}

func (r *streamRecorder) RecordAgreementExecution(ctx context.Context, payload any, loanID string) (string, error) {
	return r.record(ctx, StreamLoanAgreements, loanID, payload)
}

func (r *streamRecorder) RecordTransactionReceipt(ctx context.Context, payload any, loanID string) (string, error) {
	return r.record(ctx, StreamTransactions, loanID, payload)
}

func (r *streamRecorder) RecordFeeAllocation(ctx context.Context, payload any, loanID string) (string, error) {
	return r.record(ctx, StreamFeeAllocation, loanID, payload)
}

func (r *streamRecorder) RecordRepayment(ctx context.Context, payload any, loanID string) (string, error) {
	return r.record(ctx, StreamRepayments, loanID, payload)
}

func (r *streamRecorder) RecordKYCResult(ctx context.Context, payload any, userID string) (string, error) {
	return r.record(ctx, StreamKYCResults, userID, payload)
}

func (r *streamRecorder) RecordIdentityProof(ctx context.Context, payload any, userID string) (string, error) {
	return r.record(ctx, StreamIdentityProofs, userID, payload)
}
