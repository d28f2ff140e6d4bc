package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	domain "arthalend-backend/internal/domain/loan"
	repaymentDomain "arthalend-backend/internal/domain/repayment"
	transactionDomain "arthalend-backend/internal/domain/transaction"
	"arthalend-backend/pkg/id"
)

// openTestDB creates an in-memory sqlite DB with the real schema. The domain
// models carry no mysql-only column types, so AutoMigrate works on sqlite.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Loan{}, &domain.Acceptance{},
		&repaymentDomain.Repayment{}, &transactionDomain.Receipt{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeLoan(loanID, borrowerID string, status domain.Status) *domain.Loan {
	return &domain.Loan{
		LoanID:          loanID,
		BorrowerID:      borrowerID,
		Amount:          40000,
		InterestRate:    13,
		TenureMonths:    12,
		EMI:             3572.69,
		TotalPayable:    42872.28,
		PlatformFee:     1200,
		NetDisbursed:    38800,
		Status:          status,
		StatusUpdatedAt: time.Now().UTC(),
	}
}

func TestCreateAndGetByLoanID(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()

	loanID := id.NewLoanID()
	borrower := id.NewID32()

	if err := repo.Create(ctx, makeLoan(loanID, borrower, domain.StatusListed)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.BorrowerID != borrower || got.Status != domain.StatusListed {
		t.Fatalf("loaded loan mismatch: %+v", got)
	}
	if got.LenderID != nil {
		t.Fatalf("lender must be nil before funding, got %v", *got.LenderID)
	}
}

func TestGetByLoanID_NotFound(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	_, err := repo.GetByLoanID(context.Background(), "LN-MISSING1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGetOpenLoanByBorrowerID(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()
	borrower := id.NewID32()

	// Repaid loans do not occupy the open slot.
	if err := repo.Create(ctx, makeLoan(id.NewLoanID(), borrower, domain.StatusRepaid)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.GetOpenLoanByBorrowerID(ctx, borrower); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound with only repaid loans, got %v", err)
	}

	open := makeLoan(id.NewLoanID(), borrower, domain.StatusListed)
	if err := repo.Create(ctx, open); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetOpenLoanByBorrowerID(ctx, borrower)
	if err != nil {
		t.Fatalf("GetOpenLoanByBorrowerID: %v", err)
	}
	if got.LoanID != open.LoanID {
		t.Fatalf("open loan = %s, want %s", got.LoanID, open.LoanID)
	}
}

func TestSumOutstandingByLenderID(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()
	lender := id.NewID32()

	add := func(amount float64, status domain.Status) {
		l := makeLoan(id.NewLoanID(), id.NewID32(), status)
		l.Amount = amount
		l.LenderID = &lender
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	add(100000, domain.StatusActive)
	add(50000, domain.StatusDefaulted)
	add(75000, domain.StatusRepaid) // repaid excluded

	total, err := repo.SumOutstandingByLenderID(ctx, lender)
	if err != nil {
		t.Fatalf("SumOutstandingByLenderID: %v", err)
	}
	if total != 150000 {
		t.Fatalf("outstanding = %v, want 150000", total)
	}
}

func TestSumOutstandingByLenderID_NoLoans(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	total, err := repo.SumOutstandingByLenderID(context.Background(), id.NewID32())
	if err != nil {
		t.Fatalf("SumOutstandingByLenderID: %v", err)
	}
	if total != 0 {
		t.Fatalf("outstanding = %v, want 0", total)
	}
}

func TestListByStatus(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()

	for _, s := range []domain.Status{domain.StatusListed, domain.StatusListed, domain.StatusActive} {
		if err := repo.Create(ctx, makeLoan(id.NewLoanID(), id.NewID32(), s)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	listed, err := repo.ListByStatus(ctx, domain.StatusListed)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed = %d, want 2", len(listed))
	}
}

func TestAcceptanceRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewAcceptanceRepository(db)
	ctx := context.Background()

	a := &domain.Acceptance{
		LoanID:     "LN-AAAA0001",
		LenderID:   id.NewID32(),
		AcceptedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByLoanID(ctx, "LN-AAAA0001")
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.LenderID != a.LenderID {
		t.Fatalf("lender = %s, want %s", got.LenderID, a.LenderID)
	}

	// One acceptance per loan.
	if err := repo.Create(ctx, &domain.Acceptance{LoanID: "LN-AAAA0001", LenderID: id.NewID32(), AcceptedAt: time.Now()}); err == nil {
		t.Fatal("expected unique constraint violation on second acceptance")
	}
}

func TestRepaymentRepository_AppendAndSum(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepaymentRepository(db)
	ctx := context.Background()

	loanID := "LN-BBBB0001"
	for i, amt := range []float64{5000, 5000, 1000} {
		rp := &repaymentDomain.Repayment{
			RepaymentID: id.NewRepaymentID(),
			LoanID:      loanID,
			Amount:      amt,
			Type:        repaymentDomain.TypePartial,
			PaidBy:      "borrower-1",
			PaidAt:      time.Now().UTC().Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, rp); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}

	list, err := repo.ListByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("ListByLoanID: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("repayments = %d, want 3", len(list))
	}
	if got := repaymentDomain.Sum(list); got != 11000 {
		t.Fatalf("sum = %v, want 11000", got)
	}
}

func TestTransactionRepository_OneReceiptPerLoan(t *testing.T) {
	db := openTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	rc := &transactionDomain.Receipt{
		TransactionID: id.NewTransactionID(),
		LoanID:        "LN-CCCC0001",
		SenderID:      "lender-1",
		ReceiverID:    "borrower-1",
		Amount:        40000,
		Success:       true,
		TransferredAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, rc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.GetByLoanID(ctx, "LN-CCCC0001"); err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if _, err := repo.GetByLoanID(ctx, "LN-NOPE0001"); !errors.Is(err, transactionDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	// The unique index on loan_id is the durable duplicate-funding guard.
	dup := *rc
	dup.ID = 0
	dup.TransactionID = id.NewTransactionID()
	if err := repo.Create(ctx, &dup); err == nil {
		t.Fatal("expected unique constraint violation on second receipt")
	}
}
