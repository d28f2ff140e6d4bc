package credit

import (
	"errors"
	"time"
)

var (
	ErrScoreNotFound = errors.New("credit score not found")
	ErrStatsNotFound = errors.New("financial stats not found")
)

const (
	InitialScore    = 600
	FullRepayReward = 20
	MinScore        = 300
	MaxScore        = 850
)

// Score is the per-user credit score, bounded to [300, 850]. It is
// initialized once after KYC finalization and only changes through an
// explicit recompute or the capped full-repayment reward.
type Score struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID    string    `gorm:"size:64;uniqueIndex:ux_scores_user" json:"user_id"`
	Value     int       `json:"score"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Score) TableName() string { return "credit_scores" }

// Reward applies the bounded full-repayment increment.
func (s *Score) Reward() {
	s.Value += FullRepayReward
	if s.Value > MaxScore {
		s.Value = MaxScore
	}
}

// Stats accumulates the financial behavior counters that feed the scoring
// engine. Updated on every fund transfer.
type Stats struct {
	ID                   uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID               string    `gorm:"size:64;uniqueIndex:ux_stats_user" json:"user_id"`
	MonthlyIncome        float64   `json:"monthly_income"`
	MonthlyExpense       float64   `json:"monthly_expense"`
	TotalTransactions    int       `json:"total_transactions"`
	FailedTransactions   int       `json:"failed_transactions"`
	AvgTransactionAmount float64   `json:"avg_transaction_amount"`
	MissedPayments       int       `json:"missed_payments"`
	LoanOutstanding      float64   `json:"loan_outstanding"`
	AccountAgeMonths     int       `json:"account_age_months"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Stats) TableName() string { return "financial_stats" }

// RecordTransaction folds one transfer into the running counters.
func (s *Stats) RecordTransaction(amount float64, success bool) {
	s.TotalTransactions++
	if !success {
		s.FailedTransactions++
		return
	}
	prev := s.TotalTransactions - 1
	s.AvgTransactionAmount = (s.AvgTransactionAmount*float64(prev) + amount) / float64(s.TotalTransactions)
	s.LoanOutstanding += amount
}
