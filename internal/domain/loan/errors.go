package loan

import "errors"

var (
	ErrNotFound = errors.New("loan not found")

	// Precondition violations: the request can never succeed as submitted.
	ErrOpenLoanExists       = errors.New("borrower already has an open loan or request")
	ErrKYCNotApproved       = errors.New("KYC not approved")
	ErrRulesNotAccepted     = errors.New("platform rules must be accepted")
	ErrScoreNotInitialized  = errors.New("credit score not initialized")
	ErrCreditLimitExceeded  = errors.New("requested amount exceeds credit limit")
	ErrBorrowingBlocked     = errors.New("borrowing blocked due to low credit score")
	ErrGuarantorRequired    = errors.New("guarantor required for this loan amount")
	ErrGuarantorIncomplete  = errors.New("guarantor record is incomplete")
	ErrSelfFunding          = errors.New("cannot fund your own loan")
	ErrBorrowerCannotLend   = errors.New("borrowers with an open loan cannot lend")
	ErrLendingLimitExceeded = errors.New("lending limit exceeded")
	ErrNotActive            = errors.New("loan is not active")
	ErrNotAwaitingSignature = errors.New("loan is not awaiting signature")
	ErrNotBorrower          = errors.New("only the borrower can repay this loan")
	ErrNotLender            = errors.New("only the accepting lender can fund this loan")

	// Conflict / race loss: the loan was available but another request
	// committed first. Distinct from preconditions so callers can show a
	// "too late" message instead of retrying.
	ErrNotAvailable  = errors.New("loan is not available for acceptance")
	ErrAlreadyFunded = errors.New("loan already funded")
)
