package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	kycDomain "arthalend-backend/internal/domain/kyc"
)

type KYCRepository struct{ db *gorm.DB }

func NewKYCRepository(db *gorm.DB) *KYCRepository { return &KYCRepository{db: db} }

// Save upserts by user id so the three submission stages mutate one row.
func (r *KYCRepository) Save(ctx context.Context, rec *kycDomain.Record) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

func (r *KYCRepository) GetByUserID(ctx context.Context, userID string) (*kycDomain.Record, error) {
	var out kycDomain.Record
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, kycDomain.ErrNotFound
	}
	return &out, res.Error
}
