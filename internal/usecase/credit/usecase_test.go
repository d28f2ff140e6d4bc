package credit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arthalend-backend/internal/creditscore"
	"arthalend-backend/internal/domain/credit"
	"arthalend-backend/internal/testutil/memstore"
)

const userPhone = "9841000001"

func newFixture(t *testing.T) (*Usecase, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	repos := store.Repos()
	return NewUsecase(store, repos.Scores, repos.Stats), store
}

func TestSubmitFinancials_PreservesTransactionCounters(t *testing.T) {
	u, store := newFixture(t)
	store.SeedStats(&credit.Stats{
		UserID:            userPhone,
		TotalTransactions: 4,
		LoanOutstanding:   20000,
	})

	got, err := u.SubmitFinancials(context.Background(), FinancialsInput{
		UserID:           userPhone,
		MonthlyIncome:    60000,
		MonthlyExpense:   25000,
		AccountAgeMonths: 24,
	})
	require.NoError(t, err)

	assert.Equal(t, 60000.0, got.MonthlyIncome)
	assert.Equal(t, 4, got.TotalTransactions)
	assert.Equal(t, 20000.0, got.LoanOutstanding)
}

func TestRecompute(t *testing.T) {
	u, store := newFixture(t)
	store.SeedScore(&credit.Score{UserID: userPhone, Value: credit.InitialScore})
	store.SeedStats(&credit.Stats{
		UserID:           userPhone,
		MonthlyIncome:    60000,
		MonthlyExpense:   15000,
		AccountAgeMonths: 36,
	})

	got, err := u.Recompute(context.Background(), userPhone)
	require.NoError(t, err)

	// 850 - 0.25*200 + 36*2 clamps to the maximum
	assert.Equal(t, credit.MaxScore, got.Score)
	assert.Equal(t, creditscore.BandHigh, got.RiskBand)
	assert.Equal(t, creditscore.LimitHigh, got.Limit)
	require.NotNil(t, got.Features)
	assert.Equal(t, 0.25, got.Features.ExpenseRatio)

	assert.Equal(t, credit.MaxScore, store.Score(userPhone).Value)
}

func TestRecompute_Errors(t *testing.T) {
	t.Run("no stats", func(t *testing.T) {
		u, _ := newFixture(t)

		_, err := u.Recompute(context.Background(), userPhone)
		assert.ErrorIs(t, err, credit.ErrStatsNotFound)
	})

	t.Run("zero income", func(t *testing.T) {
		u, store := newFixture(t)
		store.SeedStats(&credit.Stats{UserID: userPhone})

		_, err := u.Recompute(context.Background(), userPhone)
		assert.ErrorIs(t, err, creditscore.ErrInvalidIncome)
	})
}

func TestGetScore(t *testing.T) {
	u, store := newFixture(t)
	store.SeedScore(&credit.Score{UserID: userPhone, Value: 680})

	got, err := u.GetScore(context.Background(), userPhone)
	require.NoError(t, err)
	assert.Equal(t, 680, got.Score)
	assert.Equal(t, creditscore.BandMedium, got.RiskBand)
	assert.Equal(t, creditscore.LimitMedium, got.Limit)

	_, err = u.GetScore(context.Background(), "9841999999")
	assert.ErrorIs(t, err, credit.ErrScoreNotFound)
}
