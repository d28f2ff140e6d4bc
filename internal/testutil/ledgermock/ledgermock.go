// Package ledgermock records published proofs in memory for assertions.
package ledgermock

import (
	"context"
	"sync"

	"arthalend-backend/internal/ledger"
)

// Entry is one recorded proof.
type Entry struct {
	Stream string
	Key    string
	Hash   string
}

// Recorder implements ledger.Recorder and ledger.Fetcher over an in-memory
// stream set, so audits can read back what was recorded. Set Err to make each
// publish fail, which exercises the degraded path; FetchErr fails the reads.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry

	Err      error
	FetchErr error
}

func New() *Recorder { return &Recorder{} }

func (r *Recorder) record(stream, key string, payload any) (string, error) {
	hash, err := ledger.CanonicalHash(payload)
	if err != nil {
		return "", err
	}
	if r.Err != nil {
		return hash, r.Err
	}
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Stream: stream, Key: key, Hash: hash})
	r.mu.Unlock()
	return hash, nil
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ByStream returns recorded entries for one stream.
func (r *Recorder) ByStream(stream string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Stream == stream {
			out = append(out, e)
		}
	}
	return out
}

// Tamper replaces the stored hash of every entry under (stream, key),
// simulating an out-of-band mutation.
func (r *Recorder) Tamper(stream, key, hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].Stream == stream && r.entries[i].Key == key {
			r.entries[i].Hash = hash
		}
	}
}

func (r *Recorder) FetchKeyItems(_ context.Context, stream, key string) ([]ledger.Item, error) {
	if r.FetchErr != nil {
		return nil, r.FetchErr
	}
	var out []ledger.Item
	for i, e := range r.Entries() {
		if e.Stream == stream && e.Key == key {
			out = append(out, ledger.Item{Key: e.Key, TxID: "tx", BlockTime: int64(i), Confirmations: 1, Data: e.Hash})
		}
	}
	return out, nil
}

func (r *Recorder) FetchLatest(ctx context.Context, stream, key string) (*ledger.Item, error) {
	items, err := r.FetchKeyItems(ctx, stream, key)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[len(items)-1], nil
}

func (r *Recorder) FetchAll(_ context.Context, stream string) ([]ledger.Item, error) {
	if r.FetchErr != nil {
		return nil, r.FetchErr
	}
	var out []ledger.Item
	for i, e := range r.Entries() {
		if e.Stream == stream {
			out = append(out, ledger.Item{Key: e.Key, TxID: "tx", BlockTime: int64(i), Confirmations: 1, Data: e.Hash})
		}
	}
	return out, nil
}

func (r *Recorder) RecordLoanRequest(_ context.Context, payload any, loanID string) (string, error) {
	return r.record(ledger.StreamLoanRequests, loanID, payload)
}

func (r *Recorder) RecordLoanAcceptance(_ context.Context, payload any, loanID string) (string, error) {
	return r.record(ledger.StreamLoanAcceptance, loanID, payload)
}

func (r *Recorder) RecordLoanStatus(_ context.Context, payload any, loanID string) (string, error) {
	return r.record(ledger.StreamLoanStatus, loanID, payload)
}

func (r *Recorder) RecordAgreementExecution(_ context.Context, payload any, loanID string) (string, error) {
	return r.record(ledger.StreamLoanAgreements, loanID, payload)
}

func (r *Recorder) RecordTransactionReceipt(_ context.Context, payload any, loanID string) (string, error) {
	return r.record(ledger.StreamTransactions, loanID, payload)
}

func (r *Recorder) RecordFeeAllocation(_ context.Context, payload any, loanID string) (string, error) {
	return r.record(ledger.StreamFeeAllocation, loanID, payload)
}

func (r *Recorder) RecordRepayment(_ context.Context, payload any, loanID string) (string, error) {
	return r.record(ledger.StreamRepayments, loanID, payload)
}

func (r *Recorder) RecordKYCResult(_ context.Context, payload any, userID string) (string, error) {
	return r.record(ledger.StreamKYCResults, userID, payload)
}

func (r *Recorder) RecordIdentityProof(_ context.Context, payload any, userID string) (string, error) {
	return r.record(ledger.StreamIdentityProofs, userID, payload)
}
