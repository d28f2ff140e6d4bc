// Package emi implements equated-monthly-installment amortization math.
package emi

import (
	"errors"
	"math"
)

var ErrInvalidInput = errors.New("invalid principal or tenure")

type Result struct {
	EMI          float64 `json:"emi"`
	TotalPayable float64 `json:"total_payable"`
}

type Installment struct {
	Month            int     `json:"month"`
	EMI              float64 `json:"emi"`
	PrincipalPaid    float64 `json:"principal_paid"`
	InterestPaid     float64 `json:"interest_paid"`
	RemainingBalance float64 `json:"remaining_balance"`
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Calculate returns the monthly EMI and total payable for a declining-balance
// loan. annualRate is a percentage (13 means 13%).
//
//	EMI = P*i*(1+i)^n / ((1+i)^n - 1), i = rate/1200
func Calculate(principal, annualRate float64, tenureMonths int) (Result, error) {
	if principal <= 0 || tenureMonths <= 0 {
		return Result{}, ErrInvalidInput
	}

	monthlyRate := annualRate / 100 / 12

	var emi float64
	if monthlyRate == 0 {
		emi = principal / float64(tenureMonths)
	} else {
		factor := math.Pow(1+monthlyRate, float64(tenureMonths))
		emi = principal * monthlyRate * factor / (factor - 1)
	}

	emi = round2(emi)
	return Result{
		EMI:          emi,
		TotalPayable: round2(emi * float64(tenureMonths)),
	}, nil
}

// Schedule walks the amortization month by month. The final balance is
// clamped at zero to absorb rounding drift on the last installment.
func Schedule(principal, annualRate float64, tenureMonths int) ([]Installment, error) {
	res, err := Calculate(principal, annualRate, tenureMonths)
	if err != nil {
		return nil, err
	}

	monthlyRate := annualRate / 100 / 12
	balance := principal

	out := make([]Installment, 0, tenureMonths)
	for month := 1; month <= tenureMonths; month++ {
		interest := round2(balance * monthlyRate)
		principalPaid := round2(res.EMI - interest)
		balance = round2(balance - principalPaid)
		if balance < 0 {
			balance = 0
		}
		out = append(out, Installment{
			Month:            month,
			EMI:              res.EMI,
			PrincipalPaid:    principalPaid,
			InterestPaid:     interest,
			RemainingBalance: balance,
		})
	}
	return out, nil
}
