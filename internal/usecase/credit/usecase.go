// Package credit implements financial-profile submission and the on-demand
// score recompute.
package credit

import (
	"context"
	"errors"

	"arthalend-backend/internal/creditscore"
	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/domain/uow"
)

type FinancialsInput struct {
	UserID           string  `json:"-"`
	MonthlyIncome    float64 `json:"monthly_income" validate:"required,gt=0"`
	MonthlyExpense   float64 `json:"monthly_expense" validate:"gte=0"`
	MissedPayments   int     `json:"missed_payments" validate:"gte=0"`
	AccountAgeMonths int     `json:"account_age_months" validate:"gte=0"`
}

type ScoreView struct {
	UserID   string                `json:"user_id"`
	Score    int                   `json:"credit_score"`
	RiskBand creditscore.Band      `json:"risk_band"`
	Limit    float64               `json:"borrow_limit"`
	Features *creditscore.Features `json:"features,omitempty"`
}

type Usecase struct {
	uow    uow.UnitOfWork
	scores credit.ScoreRepository
	stats  credit.StatsRepository
}

func NewUsecase(u uow.UnitOfWork, scores credit.ScoreRepository, stats credit.StatsRepository) *Usecase {
	return &Usecase{uow: u, scores: scores, stats: stats}
}

// SubmitFinancials upserts the self-declared profile fields. Transaction
// counters accumulated by fund transfers are preserved.
func (u *Usecase) SubmitFinancials(ctx context.Context, in FinancialsInput) (*credit.Stats, error) {
	var out *credit.Stats
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		stats, err := r.Stats.GetByUserIDForUpdate(ctx, in.UserID)
		if errors.Is(err, credit.ErrStatsNotFound) {
			stats = &credit.Stats{UserID: in.UserID}
		} else if err != nil {
			return err
		}

		stats.MonthlyIncome = in.MonthlyIncome
		stats.MonthlyExpense = in.MonthlyExpense
		stats.MissedPayments = in.MissedPayments
		stats.AccountAgeMonths = in.AccountAgeMonths
		out = stats
		return r.Stats.Save(ctx, stats)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Recompute rescores the user from their current stats and persists the new
// value.
func (u *Usecase) Recompute(ctx context.Context, userID string) (*ScoreView, error) {
	var view *ScoreView
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		stats, err := r.Stats.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		result, err := creditscore.Calculate(*stats)
		if err != nil {
			return err
		}

		score, err := r.Scores.GetByUserIDForUpdate(ctx, userID)
		if errors.Is(err, credit.ErrScoreNotFound) {
			score = &credit.Score{UserID: userID}
		} else if err != nil {
			return err
		}
		score.Value = result.Score
		if err := r.Scores.Save(ctx, score); err != nil {
			return err
		}

		features := result.Features
		view = &ScoreView{
			UserID:   userID,
			Score:    result.Score,
			RiskBand: result.RiskBand,
			Limit:    result.Limit,
			Features: &features,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetScore returns the stored score with its derived band and limit.
func (u *Usecase) GetScore(ctx context.Context, userID string) (*ScoreView, error) {
	score, err := u.scores.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ScoreView{
		UserID:   userID,
		Score:    score.Value,
		RiskBand: creditscore.BandFor(score.Value),
		Limit:    creditscore.LimitFor(score.Value),
	}, nil
}
