package transaction

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("transaction not found")
	ErrFailed   = errors.New("transaction failed")
)

// Receipt records a loan's single funding event, keyed by loan id. The
// uniqueness constraint is the durable duplicate-funding guard.
type Receipt struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	TransactionID string    `gorm:"size:32;index" json:"transaction_id"`
	LoanID        string    `gorm:"size:32;uniqueIndex:ux_transactions_loan" json:"loan_id"`
	SenderID      string    `gorm:"size:64" json:"sender_id"`
	ReceiverID    string    `gorm:"size:64" json:"receiver_id"`
	Amount        float64   `gorm:"type:decimal(18,2)" json:"amount"`
	Success       bool      `json:"success"`
	TransferredAt time.Time `json:"transferred_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Receipt) TableName() string { return "transactions" }

// ProofPayload is the canonical content published to the transactions stream,
// keyed by loan id.
func (r *Receipt) ProofPayload() map[string]any {
	return map[string]any{
		"transaction_id": r.TransactionID,
		"loan_id":        r.LoanID,
		"sender_id":      r.SenderID,
		"receiver_id":    r.ReceiverID,
		"amount":         r.Amount,
		"success":        r.Success,
		"transferred_at": r.TransferredAt.UTC().Format(time.RFC3339),
	}
}

// FeePayload is the canonical fee-allocation content published alongside the
// receipt.
func FeePayload(loanID string, gross, feePercent, fee, net float64) map[string]any {
	return map[string]any{
		"loan_id":              loanID,
		"gross_amount":         gross,
		"platform_fee_percent": feePercent,
		"platform_fee_amount":  fee,
		"net_to_borrower":      net,
	}
}
