// Package creditscore implements the deterministic, explainable scoring
// engine. Higher score means lower risk; range is [300, 850].
package creditscore

import (
	"errors"
	"math"

	"arthalend-backend/internal/domain/credit"
)

var ErrInvalidIncome = errors.New("monthly income must be greater than zero")

type Band string

const (
	BandHigh    Band = "HIGH"
	BandMedium  Band = "MEDIUM"
	BandLow     Band = "LOW"
	BandBlocked Band = "BLOCKED"
)

// Borrow limits per band. A blocked band cannot borrow at all.
const (
	LimitHigh   = 100000.0
	LimitMedium = 50000.0
	LimitLow    = 10000.0
)

// Band thresholds.
const (
	thresholdHigh   = 750
	thresholdMedium = 650
	thresholdLow    = 550
)

type Features struct {
	ExpenseRatio     float64 `json:"expense_ratio"`
	FailureRate      float64 `json:"failure_rate"`
	UtilizationRatio float64 `json:"utilization_ratio"`
	AccountAgeMonths int     `json:"account_age_months"`
}

type Result struct {
	Score    int      `json:"credit_score"`
	RiskBand Band     `json:"risk_band"`
	Limit    float64  `json:"borrow_limit"`
	Features Features `json:"features"`
}

// Calculate scores financial behavior: base 850 minus weighted penalties plus
// a capped account-age bonus, clamped to [300, 850].
func Calculate(s credit.Stats) (Result, error) {
	if s.MonthlyIncome <= 0 {
		return Result{}, ErrInvalidIncome
	}

	var failureRate float64
	if s.TotalTransactions > 0 {
		failureRate = float64(s.FailedTransactions) / float64(s.TotalTransactions)
	}
	expenseRatio := s.MonthlyExpense / s.MonthlyIncome
	utilizationRatio := s.LoanOutstanding / s.MonthlyIncome
	stability := math.Min(float64(s.AccountAgeMonths), 60)

	score := 850.0
	score -= expenseRatio * 200
	score -= failureRate * 300
	score -= utilizationRatio * 250
	score -= float64(s.MissedPayments) * 40
	score += stability * 2

	clamped := int(score)
	if clamped > credit.MaxScore {
		clamped = credit.MaxScore
	}
	if clamped < credit.MinScore {
		clamped = credit.MinScore
	}

	band := BandFor(clamped)
	return Result{
		Score:    clamped,
		RiskBand: band,
		Limit:    LimitFor(clamped),
		Features: Features{
			ExpenseRatio:     math.Round(expenseRatio*100) / 100,
			FailureRate:      math.Round(failureRate*100) / 100,
			UtilizationRatio: math.Round(utilizationRatio*100) / 100,
			AccountAgeMonths: s.AccountAgeMonths,
		},
	}, nil
}

// BandFor maps a score to its risk band.
func BandFor(score int) Band {
	switch {
	case score >= thresholdHigh:
		return BandHigh
	case score >= thresholdMedium:
		return BandMedium
	case score >= thresholdLow:
		return BandLow
	default:
		return BandBlocked
	}
}

// LimitFor maps a score to the maximum borrow amount of its tier.
func LimitFor(score int) float64 {
	switch BandFor(score) {
	case BandHigh:
		return LimitHigh
	case BandMedium:
		return LimitMedium
	case BandLow:
		return LimitLow
	default:
		return 0
	}
}
