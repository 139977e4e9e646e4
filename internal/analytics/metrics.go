// Package analytics computes portfolio risk metrics from a valuation time
// series. All metrics are fractions (0.05 means 5%).
package analytics

import (
	"math"

	"github.com/avidela/folio/internal/contracts"
)

// tradingDaysPerYear is the conventional annualization factor for daily
// return series.
const tradingDaysPerYear = 252

// Compute derives total return, annualized volatility, Sharpe ratio and max
// drawdown from a daily valuation series. Series shorter than two points
// yield all-zero metrics rather than an error.
func Compute(series []float64, riskFreeRate float64) contracts.Metrics {
	if len(series) < 2 || series[0] == 0 {
		return contracts.Metrics{}
	}

	returns := dailyReturns(series)

	totalReturn := (series[len(series)-1] - series[0]) / series[0]
	volatility := popStdev(returns) * math.Sqrt(tradingDaysPerYear)

	sharpe := 0.0
	if volatility != 0 {
		sharpe = (mean(returns)*tradingDaysPerYear - riskFreeRate) / volatility
	}

	return contracts.Metrics{
		TotalReturn: totalReturn,
		Volatility:  volatility,
		SharpeRatio: sharpe,
		MaxDrawdown: maxDrawdown(series),
	}
}

func dailyReturns(series []float64) []float64 {
	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		if series[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, series[i]/series[i-1]-1)
	}
	return returns
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// popStdev is the population standard deviation (divisor n, not n-1).
func popStdev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// maxDrawdown returns the deepest peak-to-trough decline as a negative
// fraction, or zero for a series that never declines.
func maxDrawdown(series []float64) float64 {
	peak := series[0]
	worst := 0.0
	for _, v := range series {
		if v > peak {
			peak = v
		}
		if peak == 0 {
			continue
		}
		dd := (v - peak) / peak
		if dd < worst {
			worst = dd
		}
	}
	return worst
}
