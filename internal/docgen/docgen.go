// Package docgen wraps agreement document generation. The core stores the
// returned reference and never interprets document content.
package docgen

import "context"

type Terms struct {
	LoanID               string
	BorrowerFullName     string
	BorrowerCitizenship  string
	GuarantorFullName    string
	GuarantorCitizenship string
	Amount               float64
	InterestRate         float64
	TenureMonths         int
	NetDisbursed         float64
	TotalPayable         float64
}

type Generator interface {
	GenerateAgreement(ctx context.Context, t Terms) (string, error)
}

// RefGenerator produces a deterministic document reference without rendering
// anything. The rendering service fills the path out-of-band.
type RefGenerator struct {
	BasePath string
}

func (g *RefGenerator) GenerateAgreement(_ context.Context, t Terms) (string, error) {
	base := g.BasePath
	if base == "" {
		base = "/pdfs"
	}
	return base + "/agreement_" + t.LoanID + ".pdf", nil
}
