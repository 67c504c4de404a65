package calc

import (
	"errors"
	"fmt"
)

// ErrZeroDenominator reports an arithmetic operation whose divisor is
// zero. Callers test with errors.Is; the wrapping message names the
// calculation that failed.
var ErrZeroDenominator = errors.New("zero denominator")

// PercentageChange computes the absolute and relative movement from
// oldValue to newValue. A zero base has no defined relative change, so
// the error is returned instead of an infinity or a silent zero.
func PercentageChange(oldValue, newValue float64) (ChangeResult, error) {
	if oldValue == 0 {
		return ChangeResult{}, fmt.Errorf("percentage change from zero base: %w", ErrZeroDenominator)
	}
	change := newValue - oldValue
	return ChangeResult{
		Type:       CalcPercentageChange,
		OldValue:   oldValue,
		NewValue:   newValue,
		Absolute:   change,
		Percentage: change / oldValue * 100,
	}, nil
}

// ComputeRatio divides numerator by denominator and expresses the result
// as a percentage under the given tag.
func ComputeRatio(kind CalculationType, numerator, denominator float64) (RatioResult, error) {
	if denominator == 0 {
		return RatioResult{}, fmt.Errorf("%s: %w", kind, ErrZeroDenominator)
	}
	return RatioResult{
		Type:        kind,
		Numerator:   numerator,
		Denominator: denominator,
		Percentage:  numerator / denominator * 100,
	}, nil
}

// ReturnOnEquity computes net profit over shareholder equity.
func ReturnOnEquity(netProfit, shareholderEquity float64) (RatioResult, error) {
	return ComputeRatio(CalcROE, netProfit, shareholderEquity)
}

// LoanToDeposit computes total loans over total deposits.
func LoanToDeposit(totalLoans, totalDeposits float64) (RatioResult, error) {
	return ComputeRatio(CalcLoanToDeposit, totalLoans, totalDeposits)
}

// NetInterestMargin computes net interest income over earning assets.
// Total assets stand in for earning assets when no finer breakdown is
// extracted, which overstates the denominator and understates the
// margin; the synthesis layer notes this approximation.
func NetInterestMargin(netInterestIncome, earningAssets float64) (RatioResult, error) {
	return ComputeRatio(CalcNetInterestMargin, netInterestIncome, earningAssets)
}
