package formulas

import (
	"github.com/markcheno/go-talib"
)

// DefaultVolatilityPeriod is the rolling window used when estimating
// volatility from a daily price series.
const DefaultVolatilityPeriod = 21

// RollingVolatility returns a rolling annualized volatility series estimated
// from daily closing prices. The first period-1 entries of the returned slice
// are zero (warm-up). Used to fill the optional per-asset volatility input of
// the covariance model when the caller only has price history.
func RollingVolatility(prices []float64, period int) []float64 {
	if period <= 1 {
		period = DefaultVolatilityPeriod
	}
	returns := LogReturns(prices)
	if len(returns) < period {
		return nil
	}
	rolling := talib.StdDev(returns, period, 1.0)
	out := make([]float64, len(rolling))
	for i, v := range rolling {
		out[i] = v * sqrtTradingDays
	}
	return out
}

// LatestVolatility returns the most recent rolling annualized volatility for
// a daily price series, or 0 when there is not enough history.
func LatestVolatility(prices []float64, period int) float64 {
	rolling := RollingVolatility(prices, period)
	if len(rolling) == 0 {
		return 0
	}
	return rolling[len(rolling)-1]
}
