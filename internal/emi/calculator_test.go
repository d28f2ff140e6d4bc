package emi

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_KnownValue(t *testing.T) {
	// 40000 at 13% over 12 months; EMI formula cross-checked by hand.
	res, err := Calculate(40000, 13, 12)
	require.NoError(t, err)

	assert.InDelta(t, 3572.69, res.EMI, 0.01)
	assert.InDelta(t, res.EMI*12, res.TotalPayable, 0.01)
}

func TestCalculate_TotalPayableConsistency(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		tenure    int
	}{
		{10000, 10, 6},
		{50000, 13, 12},
		{100000, 18, 24},
		{35000, 0, 10},
		{7500.50, 21.5, 36},
	}
	for _, c := range cases {
		res, err := Calculate(c.principal, c.rate, c.tenure)
		require.NoError(t, err)
		assert.InDelta(t, res.EMI*float64(c.tenure), res.TotalPayable, 0.01)
		assert.GreaterOrEqual(t, res.TotalPayable, c.principal-0.01,
			"total payable below principal for %+v", c)
	}
}

func TestCalculate_InvalidInputs(t *testing.T) {
	for _, c := range []struct {
		principal float64
		tenure    int
	}{
		{0, 12}, {-1000, 12}, {10000, 0}, {10000, -3},
	} {
		_, err := Calculate(c.principal, 13, c.tenure)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("principal=%v tenure=%d: want ErrInvalidInput, got %v", c.principal, c.tenure, err)
		}
	}
}

func TestSchedule_PrincipalSumsToLoan(t *testing.T) {
	const principal = 50000.0
	sched, err := Schedule(principal, 13, 12)
	require.NoError(t, err)
	require.Len(t, sched, 12)

	var paid float64
	for _, in := range sched {
		paid += in.PrincipalPaid
	}
	// Rounding drift across 12 installments stays within a few rupees.
	assert.InDelta(t, principal, paid, 5.0)

	last := sched[len(sched)-1]
	assert.Equal(t, 0.0, math.Min(last.RemainingBalance, 0.0))
	assert.LessOrEqual(t, last.RemainingBalance, 5.0)
}

func TestSchedule_BalanceMonotonicallyDecreases(t *testing.T) {
	sched, err := Schedule(100000, 18, 24)
	require.NoError(t, err)

	prev := math.Inf(1)
	for _, in := range sched {
		assert.LessOrEqual(t, in.RemainingBalance, prev)
		prev = in.RemainingBalance
	}
}
