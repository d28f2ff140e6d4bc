// Package memstore is an in-memory record store satisfying the domain
// repository interfaces and the unit of work. Usecase tests run against it
// without a database; WithinLoanTx serializes on a mutex, mirroring the row
// lock the gorm implementation takes.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"arthalend-backend/internal/domain/agreement"
	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/kyc"
	"arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/repayment"
	"arthalend-backend/internal/domain/transaction"
	"arthalend-backend/internal/domain/uow"
)

type Store struct {
	mu sync.Mutex

	loans       map[string]*loan.Loan
	acceptances map[string]*loan.Acceptance
	executions  map[string]*agreement.Execution
	repayments  []repayment.Repayment
	receipts    map[string]*transaction.Receipt
	scores      map[string]*credit.Score
	stats       map[string]*credit.Stats
	kycRecords  map[string]*kyc.Record

	nextID uint64
}

func New() *Store {
	return &Store{
		loans:       make(map[string]*loan.Loan),
		acceptances: make(map[string]*loan.Acceptance),
		executions:  make(map[string]*agreement.Execution),
		receipts:    make(map[string]*transaction.Receipt),
		scores:      make(map[string]*credit.Score),
		stats:       make(map[string]*credit.Stats),
		kycRecords:  make(map[string]*kyc.Record),
	}
}

func (s *Store) Repos() uow.Repos {
	return uow.Repos{
		Loans:        &loanRepo{s: s},
		Acceptances:  &acceptanceRepo{s: s},
		Executions:   &executionRepo{s: s},
		Repayments:   &repaymentRepo{s: s},
		Transactions: &transactionRepo{s: s},
		Scores:       &scoreRepo{s: s},
		Stats:        &statsRepo{s: s},
		KYC:          &kycRepo{s: s},
	}
}

// ---- UnitOfWork ----

// WithinTx holds the store lock for the whole callback, which serializes
// concurrent transitions exactly like per-key row locking does in SQL. No
// rollback is simulated; tests that need rollback behavior use the gorm
// implementation.
func (s *Store) WithinTx(_ context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.lockedRepos())
}

func (s *Store) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[loanID]
	if !ok {
		return loan.ErrNotFound
	}
	cp := *l
	return fn(s.lockedRepos(), &cp)
}

// lockedRepos returns repos that assume the store lock is already held.
func (s *Store) lockedRepos() uow.Repos {
	return uow.Repos{
		Loans:        &loanRepo{s: s, locked: true},
		Acceptances:  &acceptanceRepo{s: s, locked: true},
		Executions:   &executionRepo{s: s, locked: true},
		Repayments:   &repaymentRepo{s: s, locked: true},
		Transactions: &transactionRepo{s: s, locked: true},
		Scores:       &scoreRepo{s: s, locked: true},
		Stats:        &statsRepo{s: s, locked: true},
		KYC:          &kycRepo{s: s, locked: true},
	}
}

func (s *Store) lock(locked bool) func() {
	if locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Seed helpers for tests.

func (s *Store) SeedLoan(l *loan.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	l.ID = s.nextID
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	s.loans[l.LoanID] = l
}

func (s *Store) SeedKYC(r *kyc.Record)     { s.mu.Lock(); defer s.mu.Unlock(); s.kycRecords[r.UserID] = r }
func (s *Store) SeedScore(c *credit.Score) { s.mu.Lock(); defer s.mu.Unlock(); s.scores[c.UserID] = c }
func (s *Store) SeedStats(c *credit.Stats) { s.mu.Lock(); defer s.mu.Unlock(); s.stats[c.UserID] = c }

func (s *Store) Loan(loanID string) *loan.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.loans[loanID]; ok {
		cp := *l
		return &cp
	}
	return nil
}

func (s *Store) Execution(loanID string) *agreement.Execution {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.executions[loanID]; ok {
		cp := *e
		return &cp
	}
	return nil
}

func (s *Store) Score(userID string) *credit.Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.scores[userID]; ok {
		cp := *sc
		return &cp
	}
	return nil
}

func (s *Store) Stats(userID string) *credit.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stats[userID]; ok {
		cp := *st
		return &cp
	}
	return nil
}

// ---- loan.Repository ----

type loanRepo struct {
	s      *Store
	locked bool
}

func (r *loanRepo) Create(_ context.Context, l *loan.Loan) error {
	defer r.s.lock(r.locked)()
	r.s.nextID++
	l.ID = r.s.nextID
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	cp := *l
	r.s.loans[l.LoanID] = &cp
	return nil
}

func (r *loanRepo) Save(_ context.Context, l *loan.Loan) error {
	defer r.s.lock(r.locked)()
	cp := *l
	r.s.loans[l.LoanID] = &cp
	return nil
}

func (r *loanRepo) GetByLoanID(_ context.Context, loanID string) (*loan.Loan, error) {
	defer r.s.lock(r.locked)()
	l, ok := r.s.loans[loanID]
	if !ok {
		return nil, loan.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *loanRepo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loan.Loan, error) {
	return r.GetByLoanID(ctx, loanID)
}

func (r *loanRepo) GetOpenLoanByBorrowerID(_ context.Context, borrowerID string) (*loan.Loan, error) {
	defer r.s.lock(r.locked)()
	for _, l := range r.s.loans {
		if l.BorrowerID == borrowerID && l.Open() {
			cp := *l
			return &cp, nil
		}
	}
	return nil, loan.ErrNotFound
}

func (r *loanRepo) ListByStatus(_ context.Context, status loan.Status) ([]loan.Loan, error) {
	defer r.s.lock(r.locked)()
	var out []loan.Loan
	for _, l := range r.s.loans {
		if l.Status == status {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *loanRepo) ListByLenderID(_ context.Context, lenderID string) ([]loan.Loan, error) {
	defer r.s.lock(r.locked)()
	var out []loan.Loan
	for _, l := range r.s.loans {
		if l.LenderID != nil && *l.LenderID == lenderID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *loanRepo) SumOutstandingByLenderID(_ context.Context, lenderID string) (float64, error) {
	defer r.s.lock(r.locked)()
	var total float64
	for _, l := range r.s.loans {
		if l.LenderID != nil && *l.LenderID == lenderID && l.Status != loan.StatusRepaid {
			total += l.Amount
		}
	}
	return total, nil
}

// ---- loan.AcceptanceRepository ----

type acceptanceRepo struct {
	s      *Store
	locked bool
}

func (r *acceptanceRepo) Create(_ context.Context, a *loan.Acceptance) error {
	defer r.s.lock(r.locked)()
	cp := *a
	r.s.acceptances[a.LoanID] = &cp
	return nil
}

func (r *acceptanceRepo) GetByLoanID(_ context.Context, loanID string) (*loan.Acceptance, error) {
	defer r.s.lock(r.locked)()
	a, ok := r.s.acceptances[loanID]
	if !ok {
		return nil, loan.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// ---- agreement.Repository ----

type executionRepo struct {
	s      *Store
	locked bool
}

func (r *executionRepo) Create(_ context.Context, e *agreement.Execution) error {
	defer r.s.lock(r.locked)()
	cp := *e
	r.s.executions[e.LoanID] = &cp
	return nil
}

func (r *executionRepo) GetByLoanID(_ context.Context, loanID string) (*agreement.Execution, error) {
	defer r.s.lock(r.locked)()
	e, ok := r.s.executions[loanID]
	if !ok {
		return nil, agreement.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// ---- repayment.Repository ----

type repaymentRepo struct {
	s      *Store
	locked bool
}

func (r *repaymentRepo) Create(_ context.Context, rp *repayment.Repayment) error {
	defer r.s.lock(r.locked)()
	r.s.repayments = append(r.s.repayments, *rp)
	return nil
}

func (r *repaymentRepo) ListByLoanID(_ context.Context, loanID string) ([]repayment.Repayment, error) {
	defer r.s.lock(r.locked)()
	var out []repayment.Repayment
	for _, rp := range r.s.repayments {
		if rp.LoanID == loanID {
			out = append(out, rp)
		}
	}
	return out, nil
}

// ---- transaction.Repository ----

type transactionRepo struct {
	s      *Store
	locked bool
}

func (r *transactionRepo) Create(_ context.Context, rc *transaction.Receipt) error {
	defer r.s.lock(r.locked)()
	cp := *rc
	r.s.receipts[rc.LoanID] = &cp
	return nil
}

func (r *transactionRepo) GetByLoanID(_ context.Context, loanID string) (*transaction.Receipt, error) {
	defer r.s.lock(r.locked)()
	rc, ok := r.s.receipts[loanID]
	if !ok {
		return nil, transaction.ErrNotFound
	}
	cp := *rc
	return &cp, nil
}

// ---- credit repositories ----

type scoreRepo struct {
	s      *Store
	locked bool
}

func (r *scoreRepo) Save(_ context.Context, sc *credit.Score) error {
	defer r.s.lock(r.locked)()
	cp := *sc
	r.s.scores[sc.UserID] = &cp
	return nil
}

func (r *scoreRepo) GetByUserID(_ context.Context, userID string) (*credit.Score, error) {
	defer r.s.lock(r.locked)()
	sc, ok := r.s.scores[userID]
	if !ok {
		return nil, credit.ErrScoreNotFound
	}
	cp := *sc
	return &cp, nil
}

func (r *scoreRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*credit.Score, error) {
	return r.GetByUserID(ctx, userID)
}

type statsRepo struct {
	s      *Store
	locked bool
}

func (r *statsRepo) Save(_ context.Context, st *credit.Stats) error {
	defer r.s.lock(r.locked)()
	cp := *st
	r.s.stats[st.UserID] = &cp
	return nil
}

func (r *statsRepo) GetByUserID(_ context.Context, userID string) (*credit.Stats, error) {
	defer r.s.lock(r.locked)()
	st, ok := r.s.stats[userID]
	if !ok {
		return nil, credit.ErrStatsNotFound
	}
	cp := *st
	return &cp, nil
}

func (r *statsRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*credit.Stats, error) {
	return r.GetByUserID(ctx, userID)
}

// ---- kyc.Repository ----

type kycRepo struct {
	s      *Store
	locked bool
}

func (r *kycRepo) Save(_ context.Context, rec *kyc.Record) error {
	defer r.s.lock(r.locked)()
	cp := *rec
	r.s.kycRecords[rec.UserID] = &cp
	return nil
}

func (r *kycRepo) GetByUserID(_ context.Context, userID string) (*kyc.Record, error) {
	defer r.s.lock(r.locked)()
	rec, ok := r.s.kycRecords[userID]
	if !ok {
		return nil, kyc.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}
