package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	agreementDomain "arthalend-backend/internal/domain/agreement"
)

type AgreementRepository struct{ db *gorm.DB }

func NewAgreementRepository(db *gorm.DB) *AgreementRepository {
	return &AgreementRepository{db: db}
}

func (r *AgreementRepository) Create(ctx context.Context, e *agreementDomain.Execution) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AgreementRepository) GetByLoanID(ctx context.Context, loanID string) (*agreementDomain.Execution, error) {
	var out agreementDomain.Execution
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, agreementDomain.ErrNotFound
	}
	return &out, res.Error
}
