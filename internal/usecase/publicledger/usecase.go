// Package publicledger exposes read-only views over the proof streams.
// Streams carry only hashes and block metadata, so the views are safe to
// serve without authentication.
package publicledger

import (
	"context"
	"errors"

	"arthalend-backend/internal/ledger"
)

var ErrUnknownStream = errors.New("unknown ledger stream")

// Streams visible through the public views.
var publicStreams = []string{
	ledger.StreamLoanRequests,
	ledger.StreamLoanAcceptance,
	ledger.StreamLoanStatus,
	ledger.StreamLoanAgreements,
	ledger.StreamTransactions,
	ledger.StreamRepayments,
	ledger.StreamFeeAllocation,
	ledger.StreamKYCResults,
	ledger.StreamIdentityProofs,
}

// loanStreams are the streams keyed by loan id, in lifecycle order.
var loanStreams = []string{
	ledger.StreamLoanRequests,
	ledger.StreamLoanAgreements,
	ledger.StreamLoanAcceptance,
	ledger.StreamTransactions,
	ledger.StreamFeeAllocation,
	ledger.StreamRepayments,
	ledger.StreamLoanStatus,
}

type Usecase struct {
	fetcher ledger.Fetcher
}

func NewUsecase(fetcher ledger.Fetcher) *Usecase {
	return &Usecase{fetcher: fetcher}
}

// Streams lists the stream names a caller may browse.
func (u *Usecase) Streams() []string {
	out := make([]string, len(publicStreams))
	copy(out, publicStreams)
	return out
}

// Stream returns the full ordered contents of one stream.
func (u *Usecase) Stream(ctx context.Context, name string) ([]ledger.Item, error) {
	for _, s := range publicStreams {
		if s == name {
			return u.fetcher.FetchAll(ctx, name)
		}
	}
	return nil, ErrUnknownStream
}

// LoanTrail collects everything published for one loan across the loan-keyed
// streams. Streams with no entries for the loan are omitted.
func (u *Usecase) LoanTrail(ctx context.Context, loanID string) (map[string][]ledger.Item, error) {
	trail := make(map[string][]ledger.Item)
	for _, stream := range loanStreams {
		items, err := u.fetcher.FetchKeyItems(ctx, stream, loanID)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			trail[stream] = items
		}
	}
	return trail, nil
}
