package loan

import (
	"time"
)

type Status string

const (
	StatusAwaitingSignature Status = "AWAITING_SIGNATURE"
	StatusListed            Status = "LISTED"
	StatusActive            Status = "ACTIVE"
	StatusRepaid            Status = "REPAID"
	StatusDefaulted         Status = "DEFAULTED"
)

// OpenStatuses are the states in which a borrower is considered to already
// hold a loan. A user may have at most one loan in these states.
var OpenStatuses = []Status{StatusAwaitingSignature, StatusListed, StatusActive}

// Guarantor is the co-signer record required above the guarantor threshold.
type Guarantor struct {
	FullName      string `json:"full_name"`
	Relation      string `json:"relation"`
	CitizenshipNo string `json:"citizenship_no"`
	FrontImageRef string `json:"front_image_ref"`
	BackImageRef  string `json:"back_image_ref"`
}

// Complete reports whether every mandatory guarantor field is present.
func (g *Guarantor) Complete() bool {
	if g == nil {
		return false
	}
	return g.FullName != "" && g.Relation != "" && g.CitizenshipNo != "" &&
		g.FrontImageRef != "" && g.BackImageRef != ""
}

type Loan struct {
	ID                 uint64     `gorm:"primaryKey;column:id" json:"-"`
	LoanID             string     `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	BorrowerID         string     `gorm:"size:64;index:idx_loans_borrower" json:"borrower_id"`
	LenderID           *string    `gorm:"size:64;index:idx_loans_lender" json:"lender_id,omitempty"`
	Amount             float64    `gorm:"type:decimal(18,2)" json:"amount"`
	InterestRate       float64    `gorm:"type:decimal(6,2)" json:"interest_rate"`
	TenureMonths       int        `json:"tenure_months"`
	Purpose            string     `gorm:"type:text" json:"purpose"`
	EMI                float64    `gorm:"type:decimal(18,2)" json:"emi"`
	TotalPayable       float64    `gorm:"type:decimal(18,2)" json:"total_payable"`
	PlatformFee        float64    `gorm:"type:decimal(18,2)" json:"platform_fee"`
	NetDisbursed       float64    `gorm:"type:decimal(18,2)" json:"net_disbursed"`
	CreditScore        int        `json:"credit_score"`
	Guarantor          *Guarantor `gorm:"serializer:json" json:"guarantor,omitempty"`
	AgreementRef       string     `gorm:"type:text" json:"agreement_ref"`
	SignedAgreementRef string     `gorm:"type:text" json:"signed_agreement_ref,omitempty"`
	Status             Status     `gorm:"size:24;index:idx_loans_status" json:"status"`
	StartTimestamp     *time.Time `json:"start_timestamp,omitempty"`
	StatusUpdatedAt    time.Time  `json:"status_updated_at"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Open reports whether the loan occupies the borrower's single open slot.
func (l *Loan) Open() bool {
	for _, s := range OpenStatuses {
		if l.Status == s {
			return true
		}
	}
	return false
}

// ProofPayload is the canonical content published to the loan_requests
// stream and recomputed during audit. Only immutable terms are included so
// that later lifecycle transitions do not invalidate the proof; status
// changes are proven separately on the loan_status stream.
func (l *Loan) ProofPayload() map[string]any {
	p := map[string]any{
		"loan_id":       l.LoanID,
		"user_id":       l.BorrowerID,
		"amount":        l.Amount,
		"interest_rate": l.InterestRate,
		"tenure_months": l.TenureMonths,
		"purpose":       l.Purpose,
		"emi":           l.EMI,
		"total_payable": l.TotalPayable,
		"platform_fee":  l.PlatformFee,
		"created_at":    l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.Guarantor != nil {
		p["guarantor"] = map[string]any{
			"full_name":      l.Guarantor.FullName,
			"relation":       l.Guarantor.Relation,
			"citizenship_no": l.Guarantor.CitizenshipNo,
		}
	}
	return p
}

// StatusPayload is the canonical content published to the loan_status stream
// on every transition.
func StatusPayload(status Status, at time.Time) map[string]any {
	return map[string]any{
		"status":    string(status),
		"timestamp": at.UTC().Format(time.RFC3339),
	}
}

// Acceptance is the audit record persisted when a lender accepts a loan.
type Acceptance struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanID     string    `gorm:"size:32;uniqueIndex:ux_acceptances_loan" json:"loan_id"`
	LenderID   string    `gorm:"size:64" json:"lender_id"`
	AcceptedAt time.Time `json:"accepted_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Acceptance) TableName() string { return "loan_acceptances" }

// ProofPayload is the canonical content published to the loan_acceptance stream.
func (a *Acceptance) ProofPayload() map[string]any {
	return map[string]any{
		"loan_id":     a.LoanID,
		"lender_id":   a.LenderID,
		"accepted_at": a.AcceptedAt.UTC().Format(time.RFC3339),
	}
}
