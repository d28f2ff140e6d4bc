package loan

import (
	"time"

	"arthalend-backend/internal/domain/loan"
)

type GuarantorInput struct {
	FullName      string `json:"full_name" validate:"required"`
	Relation      string `json:"relation" validate:"required"`
	CitizenshipNo string `json:"citizenship_no" validate:"required"`
	FrontImageRef string `json:"front_image_ref" validate:"required"`
	BackImageRef  string `json:"back_image_ref" validate:"required"`
}

type CreateBorrowRequestInput struct {
	BorrowerID string `json:"-"`
	// LoanID, when set, amends the borrower's own unsigned draft instead of
	// opening a new request.
	LoanID        string          `json:"loan_id,omitempty"`
	Amount        float64         `json:"amount" validate:"required,gt=0"`
	InterestRate  float64         `json:"interest_rate" validate:"gte=0"`
	TenureMonths  int             `json:"tenure_months" validate:"required,gt=0"`
	Purpose       string          `json:"purpose" validate:"required"`
	AgreedToRules bool            `json:"agreed_to_rules"`
	Guarantor     *GuarantorInput `json:"guarantor,omitempty"`
}

type LoanDTO struct {
	LoanID         string     `json:"loan_id"`
	BorrowerID     string     `json:"borrower_id"`
	LenderID       *string    `json:"lender_id,omitempty"`
	Amount         float64    `json:"amount"`
	InterestRate   float64    `json:"interest_rate"`
	TenureMonths   int        `json:"tenure_months"`
	Purpose        string     `json:"purpose"`
	EMI            float64    `json:"emi"`
	TotalPayable   float64    `json:"total_payable"`
	PlatformFee    float64    `json:"platform_fee"`
	NetDisbursed   float64    `json:"net_disbursed"`
	CreditScore    int        `json:"credit_score"`
	AgreementRef   string     `json:"agreement_ref"`
	Status         string     `json:"status"`
	StartTimestamp *time.Time `json:"start_timestamp,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:         l.LoanID,
		BorrowerID:     l.BorrowerID,
		LenderID:       l.LenderID,
		Amount:         l.Amount,
		InterestRate:   l.InterestRate,
		TenureMonths:   l.TenureMonths,
		Purpose:        l.Purpose,
		EMI:            l.EMI,
		TotalPayable:   l.TotalPayable,
		PlatformFee:    l.PlatformFee,
		NetDisbursed:   l.NetDisbursed,
		CreditScore:    l.CreditScore,
		AgreementRef:   l.AgreementRef,
		Status:         string(l.Status),
		StartTimestamp: l.StartTimestamp,
		CreatedAt:      l.CreatedAt,
	}
}

// MarketplaceItem is the lender-facing listing. The borrower is shown with a
// masked display name, never a raw identifier.
type MarketplaceItem struct {
	LoanID       string    `json:"loan_id"`
	BorrowerName string    `json:"borrower_name"`
	CreditScore  int       `json:"credit_score"`
	Amount       float64   `json:"amount"`
	InterestRate float64   `json:"interest_rate"`
	TenureMonths int       `json:"tenure_months"`
	Purpose      string    `json:"purpose"`
	EMI          float64   `json:"emi"`
	TotalPayable float64   `json:"total_payable"`
	ListedAt     time.Time `json:"listed_at"`
}

type AcceptResult struct {
	LoanID     string    `json:"loan_id"`
	LenderID   string    `json:"lender_id"`
	Status     string    `json:"status"`
	AcceptedAt time.Time `json:"accepted_at"`
}

type Portfolio struct {
	// Borrowing is the user's open loan, if any.
	Borrowing        *LoanDTO  `json:"borrowing,omitempty"`
	Loans            []LoanDTO `json:"loans"`
	TotalLent        float64   `json:"total_lent"`
	OutstandingTotal float64   `json:"outstanding_total"`
	AvailableToLend  float64   `json:"available_to_lend"`
}
