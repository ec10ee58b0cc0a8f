package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCovariance(t *testing.T) {
	assets := []AssetScore{
		{Symbol: "AAA", Sector: "tech", Volatility: 0.30},
		{Symbol: "BBB", Sector: "tech", Volatility: 0.20},
		{Symbol: "CCC", Sector: "energy", Volatility: 0.40},
	}

	sigma := BuildCovariance(assets)
	r, c := sigma.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)

	assert.InDelta(t, 0.09, sigma.At(0, 0), 1e-12)
	assert.InDelta(t, 0.04, sigma.At(1, 1), 1e-12)
	assert.InDelta(t, 0.16, sigma.At(2, 2), 1e-12)

	// Same sector: 0.6 correlation. Cross sector: 0.2.
	assert.InDelta(t, 0.6*0.30*0.20, sigma.At(0, 1), 1e-12)
	assert.InDelta(t, 0.2*0.30*0.40, sigma.At(0, 2), 1e-12)
	assert.Equal(t, sigma.At(1, 2), sigma.At(2, 1), "symmetric")
}

func TestBuildCovariance_DefaultVolatility(t *testing.T) {
	sigma := BuildCovariance([]AssetScore{{Symbol: "AAA", Sector: "tech"}})
	assert.InDelta(t, DefaultVolatility*DefaultVolatility, sigma.At(0, 0), 1e-12)
}

func TestPortfolioVariance(t *testing.T) {
	assets := []AssetScore{
		{Symbol: "AAA", Sector: "tech", Volatility: 0.30},
		{Symbol: "BBB", Sector: "energy", Volatility: 0.20},
	}
	sigma := BuildCovariance(assets)

	// Single-asset portfolio variance is that asset's variance.
	assert.InDelta(t, 0.09, portfolioVariance([]float64{1, 0}, sigma), 1e-12)

	// Diversification across weakly correlated assets lowers variance below
	// the weighted average of the individual variances.
	mixed := portfolioVariance([]float64{0.5, 0.5}, sigma)
	assert.Less(t, mixed, 0.5*0.09+0.5*0.04)
	assert.Greater(t, mixed, 0.0)
}
