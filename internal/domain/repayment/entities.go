package repayment

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("no repayments found")

type Type string

const (
	TypePartial Type = "PARTIAL"
	TypeFull    Type = "FULL"
)

// Repayment is an immutable append-only record. Loan balance is always
// derived by summing, never stored.
type Repayment struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"-"`
	RepaymentID string    `gorm:"size:32;uniqueIndex:ux_repayments_id" json:"repayment_id"`
	LoanID      string    `gorm:"size:32;index:idx_repayments_loan" json:"loan_id"`
	Amount      float64   `gorm:"type:decimal(18,2)" json:"amount"`
	Type        Type      `gorm:"size:8" json:"repayment_type"`
	PaidBy      string    `gorm:"size:64" json:"paid_by"`
	PaidAt      time.Time `json:"paid_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Repayment) TableName() string { return "repayments" }

// ProofPayload is the canonical content published to the repayments stream.
func (r *Repayment) ProofPayload() map[string]any {
	return map[string]any{
		"repayment_id":   r.RepaymentID,
		"loan_id":        r.LoanID,
		"amount":         r.Amount,
		"repayment_type": string(r.Type),
		"paid_by":        r.PaidBy,
		"paid_at":        r.PaidAt.UTC().Format(time.RFC3339),
	}
}

// Sum totals a list of repayments.
func Sum(list []Repayment) float64 {
	var total float64
	for _, r := range list {
		total += r.Amount
	}
	return total
}
