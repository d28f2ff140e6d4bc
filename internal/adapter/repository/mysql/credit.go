package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	creditDomain "arthalend-backend/internal/domain/credit"
)

type ScoreRepository struct{ db *gorm.DB }

func NewScoreRepository(db *gorm.DB) *ScoreRepository { return &ScoreRepository{db: db} }

func (r *ScoreRepository) Save(ctx context.Context, s *creditDomain.Score) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(s).Error
}

func (r *ScoreRepository) GetByUserID(ctx context.Context, userID string) (*creditDomain.Score, error) {
	var out creditDomain.Score
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, creditDomain.ErrScoreNotFound
	}
	return &out, res.Error
}

func (r *ScoreRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*creditDomain.Score, error) {
	var out creditDomain.Score
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, creditDomain.ErrScoreNotFound
	}
	return &out, res.Error
}

type StatsRepository struct{ db *gorm.DB }

func NewStatsRepository(db *gorm.DB) *StatsRepository { return &StatsRepository{db: db} }

func (r *StatsRepository) Save(ctx context.Context, s *creditDomain.Stats) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(s).Error
}

func (r *StatsRepository) GetByUserID(ctx context.Context, userID string) (*creditDomain.Stats, error) {
	var out creditDomain.Stats
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, creditDomain.ErrStatsNotFound
	}
	return &out, res.Error
}

func (r *StatsRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*creditDomain.Stats, error) {
	var out creditDomain.Stats
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, creditDomain.ErrStatsNotFound
	}
	return &out, res.Error
}
