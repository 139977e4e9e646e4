package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_ShortSeries(t *testing.T) {
	for _, series := range [][]float64{nil, {}, {100.0}} {
		m := Compute(series, 0.02)
		assert.Zero(t, m.TotalReturn)
		assert.Zero(t, m.Volatility)
		assert.Zero(t, m.SharpeRatio)
		assert.Zero(t, m.MaxDrawdown)
	}
}

func TestCompute_TotalReturn(t *testing.T) {
	m := Compute([]float64{100, 105, 110}, 0)
	assert.InDelta(t, 0.10, m.TotalReturn, 1e-9)

	m = Compute([]float64{200, 150}, 0)
	assert.InDelta(t, -0.25, m.TotalReturn, 1e-9)
}

func TestCompute_ZeroVolatilityGivesZeroSharpe(t *testing.T) {
	// Flat series: every daily return is zero
	m := Compute([]float64{100, 100, 100, 100}, 0.02)
	assert.Zero(t, m.Volatility)
	assert.Zero(t, m.SharpeRatio)
	assert.Zero(t, m.MaxDrawdown)
}

func TestCompute_Volatility(t *testing.T) {
	// Returns: +0.10, -0.10; population stdev = 0.10
	m := Compute([]float64{100, 110, 99}, 0)
	assert.InDelta(t, 0.10*math.Sqrt(252), m.Volatility, 1e-9)
	assert.NotZero(t, m.SharpeRatio)
}

func TestCompute_MaxDrawdown(t *testing.T) {
	// Peak 120, trough 90: drawdown -0.25
	m := Compute([]float64{100, 120, 90, 110}, 0)
	assert.InDelta(t, -0.25, m.MaxDrawdown, 1e-9)

	// Monotonic rise never draws down
	m = Compute([]float64{100, 110, 120}, 0)
	assert.Zero(t, m.MaxDrawdown)
}

func TestCompute_ZeroStartValue(t *testing.T) {
	m := Compute([]float64{0, 100}, 0)
	assert.Zero(t, m.TotalReturn)
	assert.Zero(t, m.SharpeRatio)
}
