package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	transactionDomain "arthalend-backend/internal/domain/transaction"
)

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, rc *transactionDomain.Receipt) error {
	return r.db.WithContext(ctx).Create(rc).Error
}

func (r *TransactionRepository) GetByLoanID(ctx context.Context, loanID string) (*transactionDomain.Receipt, error) {
	var out transactionDomain.Receipt
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, transactionDomain.ErrNotFound
	}
	return &out, res.Error
}
