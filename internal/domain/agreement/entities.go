package agreement

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("agreement execution not found")

// Execution records the finalization of a signed agreement: the signed
// document plus the verification artifacts that accompanied it.
type Execution struct {
	ID             uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanID         string    `gorm:"size:32;uniqueIndex:ux_executions_loan" json:"loan_id"`
	SignedPDFRef   string    `gorm:"type:text" json:"signed_pdf_ref"`
	VideoRef       string    `gorm:"type:text" json:"video_ref,omitempty"`
	SignedImageRef string    `gorm:"type:text" json:"signed_image_ref,omitempty"`
	VerifiedAt     time.Time `json:"verified_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Execution) TableName() string { return "agreement_executions" }

// ProofPayload is the canonical content published to the loan_agreements stream.
func (e *Execution) ProofPayload() map[string]any {
	return map[string]any{
		"loan_id":          e.LoanID,
		"signed_pdf_ref":   e.SignedPDFRef,
		"video_ref":        e.VideoRef,
		"signed_image_ref": e.SignedImageRef,
		"verified_at":      e.VerifiedAt.UTC().Format(time.RFC3339),
	}
}
