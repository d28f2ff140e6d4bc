package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"arthalend-backend/internal/adapter/middleware"
	"arthalend-backend/internal/docgen"
	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/kyc"
	domain "arthalend-backend/internal/domain/loan"
	"arthalend-backend/internal/domain/user"
	"arthalend-backend/internal/testutil/ledgermock"
	"arthalend-backend/internal/testutil/memstore"
	"arthalend-backend/internal/testutil/usermock"
	uc "arthalend-backend/internal/usecase/loan"
)

// -------- helpers --------

const (
	testBorrower = "9841000001"
	testLender   = "9841000002"
)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func newLoanFixture(t *testing.T) (*LoanHandler, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	users := usermock.Seeded(
		&user.User{Phone: testBorrower, FirstName: "Ram", LastName: "Karki", IsVerified: true},
		&user.User{Phone: testLender, FirstName: "Sita", LastName: "Rai", IsVerified: true},
	)
	repos := store.Repos()
	usecase := uc.NewUsecase(store, repos.Loans, users, repos.KYC, repos.Scores,
		ledgermock.New(), &docgen.RefGenerator{},
		uc.Policy{FeePercent: 3.0, GuarantorThreshold: 30000, LendingLimit: 500000},
		zap.NewNop())
	return NewLoanHandler(usecase), store
}

func seedEligibleBorrower(store *memstore.Store, phone string) {
	store.SeedKYC(&kyc.Record{
		UserID: phone,
		Stage:  kyc.StageFinalized,
		Status: kyc.StatusApproved,
		IDDocuments: &kyc.IDDocuments{
			IDNumber:      "12-34-56",
			FrontImageRef: "/uploads/front.jpg",
			BackImageRef:  "/uploads/back.jpg",
		},
	})
	store.SeedScore(&credit.Score{UserID: phone, Value: 700})
}

// ctxWithAuth builds an echo context carrying the authenticated phone.
func ctxWithAuth(e *echo.Echo, req *stdhttp.Request, rec *httptest.ResponseRecorder, phone string) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(middleware.UserPhoneKey, phone)
	return c
}

// -------- tests --------

func TestCreateBorrowRequest_HandlerSuccess(t *testing.T) {
	e := newEchoWithValidator()
	h, store := newLoanFixture(t)
	seedEligibleBorrower(store, testBorrower)

	reqBody := map[string]any{
		"amount":          20000,
		"interest_rate":   13,
		"tenure_months":   12,
		"purpose":         "business expansion",
		"agreed_to_rules": true,
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := ctxWithAuth(e, req, rec, testBorrower)

	if err := h.CreateBorrowRequest(c); err != nil {
		t.Fatalf("CreateBorrowRequest error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	var got uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.BorrowerID != testBorrower || got.Amount != 20000 {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if got.Status != string(domain.StatusAwaitingSignature) {
		t.Fatalf("status = %s, want %s", got.Status, domain.StatusAwaitingSignature)
	}
	if got.EMI != 1786.35 {
		t.Fatalf("emi = %v, want 1786.35", got.EMI)
	}
}

func TestCreateBorrowRequest_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newLoanFixture(t)

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", strings.NewReader(`{"amount":`)) // broken JSON
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := ctxWithAuth(e, req, rec, testBorrower)

	if err := h.CreateBorrowRequest(c); err != nil {
		t.Fatalf("CreateBorrowRequest error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "invalid body" {
		t.Fatalf("error = %q, want %q", er.Error, "invalid body")
	}
}

func TestCreateBorrowRequest_ValidationError(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newLoanFixture(t) // usecase won't be reached

	// invalid: amount missing, tenure zero, purpose empty
	reqBody := map[string]any{
		"interest_rate": 13,
		"tenure_months": 0,
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := ctxWithAuth(e, req, rec, testBorrower)

	if err := h.CreateBorrowRequest(c); err != nil {
		t.Fatalf("CreateBorrowRequest error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if er.Error != "validation failed" {
		t.Fatalf("error = %q, want %q", er.Error, "validation failed")
	}
	if !containsFieldMsg(er.Details, "Amount", "is required") {
		t.Fatalf("missing required detail for amount: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "Purpose", "is required") {
		t.Fatalf("missing required detail for purpose: %+v", er.Details)
	}
}

func TestCreateBorrowRequest_OpenLoanRejected(t *testing.T) {
	e := newEchoWithValidator()
	h, store := newLoanFixture(t)
	seedEligibleBorrower(store, testBorrower)
	store.SeedLoan(&domain.Loan{LoanID: "LN-OPEN1", BorrowerID: testBorrower, Status: domain.StatusActive})

	reqBody := map[string]any{
		"amount":          5000,
		"interest_rate":   13,
		"tenure_months":   12,
		"purpose":         "school fees",
		"agreed_to_rules": true,
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := ctxWithAuth(e, req, rec, testBorrower)

	if err := h.CreateBorrowRequest(c); err != nil {
		t.Fatalf("CreateBorrowRequest error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body=%s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !strings.Contains(er.Error, "open loan") {
		t.Fatalf("error = %q, want open loan message", er.Error)
	}
}

func TestGetLoan_HandlerSuccess(t *testing.T) {
	e := echo.New()
	h, store := newLoanFixture(t)
	store.SeedLoan(&domain.Loan{
		LoanID:       "LN-3FA29C01",
		BorrowerID:   testBorrower,
		Amount:       20000,
		InterestRate: 13,
		TenureMonths: 12,
		Status:       domain.StatusListed,
	})

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/LN-3FA29C01", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues("LN-3FA29C01")

	if err := h.GetLoan(c); err != nil {
		t.Fatalf("GetLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var dto uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.LoanID != "LN-3FA29C01" {
		t.Fatalf("loan_id = %s, want LN-3FA29C01", dto.LoanID)
	}
}

func TestGetLoan_HandlerNotFound(t *testing.T) {
	e := echo.New()
	h, _ := newLoanFixture(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/LN-MISSING", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues("LN-MISSING")

	if err := h.GetLoan(c); err != nil {
		t.Fatalf("GetLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAcceptLoan_HandlerConflictWhenNotListed(t *testing.T) {
	e := echo.New()
	h, store := newLoanFixture(t)
	seedEligibleBorrower(store, testLender)
	store.SeedLoan(&domain.Loan{
		LoanID:     "LN-TAKEN",
		BorrowerID: testBorrower,
		Amount:     20000,
		Status:     domain.StatusActive,
	})

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans/LN-TAKEN/accept", nil)
	rec := httptest.NewRecorder()
	c := ctxWithAuth(e, req, rec, testLender)
	c.SetParamNames("loan_id")
	c.SetParamValues("LN-TAKEN")

	if err := h.AcceptLoan(c); err != nil {
		t.Fatalf("AcceptLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409, body=%s", rec.Code, rec.Body.String())
	}
}

func TestMarketplace_MasksBorrowerName(t *testing.T) {
	e := echo.New()
	h, store := newLoanFixture(t)
	store.SeedScore(&credit.Score{UserID: testBorrower, Value: 700})
	store.SeedLoan(&domain.Loan{
		LoanID:       "LN-LISTED1",
		BorrowerID:   testBorrower,
		Amount:       20000,
		InterestRate: 13,
		TenureMonths: 12,
		EMI:          1786.35,
		TotalPayable: 21436.20,
		Status:       domain.StatusListed,
	})

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/marketplace", nil)
	rec := httptest.NewRecorder()
	c := ctxWithAuth(e, req, rec, testLender)

	if err := h.Marketplace(c); err != nil {
		t.Fatalf("Marketplace error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Loans []uc.MarketplaceItem `json:"loans"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(body.Loans) != 1 {
		t.Fatalf("loans = %d, want 1", len(body.Loans))
	}
	if body.Loans[0].BorrowerName != "Ram K." {
		t.Fatalf("borrower_name = %q, want masked", body.Loans[0].BorrowerName)
	}
}

func TestEMIPreview(t *testing.T) {
	e := echo.New()
	h, _ := newLoanFixture(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/emi-preview?amount=20000&interest_rate=13&tenure_months=12", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.EMIPreview(c); err != nil {
		t.Fatalf("EMIPreview error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		EMI          float64          `json:"emi"`
		TotalPayable float64          `json:"total_payable"`
		Schedule     []map[string]any `json:"schedule"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body.EMI != 1786.35 || body.TotalPayable != 21436.20 {
		t.Fatalf("pricing = %v/%v, want 1786.35/21436.20", body.EMI, body.TotalPayable)
	}
	if len(body.Schedule) != 12 {
		t.Fatalf("schedule months = %d, want 12", len(body.Schedule))
	}
}

func TestEMIPreview_BadQuery(t *testing.T) {
	e := echo.New()
	h, _ := newLoanFixture(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/emi-preview?amount=abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.EMIPreview(c); err != nil {
		t.Fatalf("EMIPreview error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
