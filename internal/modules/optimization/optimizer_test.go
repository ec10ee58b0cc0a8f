package optimization

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptimizer() *Optimizer {
	return New(zerolog.Nop())
}

func TestOptimize_EmptyAssets(t *testing.T) {
	_, err := testOptimizer().Optimize(nil, Policy{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOptimize_RespectsCaps(t *testing.T) {
	assets := []AssetScore{
		{Symbol: "AAA", Score: 0.9, Sector: "tech", Volatility: 0.25},
		{Symbol: "BBB", Score: 0.7, Sector: "tech", Volatility: 0.30},
		{Symbol: "CCC", Score: 0.6, Sector: "energy", Volatility: 0.20},
		{Symbol: "DDD", Score: 0.5, Sector: "energy", Volatility: 0.35},
		{Symbol: "EEE", Score: 0.4, Sector: "health", Volatility: 0.15},
		{Symbol: "FFF", Score: 0.3, Sector: "health", Volatility: 0.22},
	}
	policy := Policy{NameCap: 0.25, SectorCap: 0.40}

	result, err := testOptimizer().Optimize(assets, policy)
	require.NoError(t, err)

	var total float64
	for symbol, w := range result.Weights {
		assert.GreaterOrEqual(t, w, 0.0, symbol)
		assert.LessOrEqual(t, w, policy.NameCap+1e-6, symbol)
		total += w
	}
	assert.InDelta(t, 1.0, total, 1e-6, "fully invested")
	for sector, sw := range result.SectorWeights {
		assert.LessOrEqual(t, sw, policy.SectorCap+1e-6, sector)
	}
	assert.GreaterOrEqual(t, result.Variance, 0.0)
	assert.InDelta(t, result.Variance, result.Volatility*result.Volatility, 1e-9)
}

func TestOptimize_PrefersHigherScores(t *testing.T) {
	assets := []AssetScore{
		{Symbol: "GOOD", Score: 0.95, Sector: "tech", Volatility: 0.20},
		{Symbol: "BAD", Score: 0.05, Sector: "energy", Volatility: 0.20},
		{Symbol: "MID1", Score: 0.50, Sector: "health", Volatility: 0.20},
		{Symbol: "MID2", Score: 0.50, Sector: "finance", Volatility: 0.20},
		{Symbol: "MID3", Score: 0.50, Sector: "utilities", Volatility: 0.20},
	}
	result, err := testOptimizer().Optimize(assets, Policy{NameCap: 0.35, SectorCap: 0.5})
	require.NoError(t, err)

	assert.Greater(t, result.Weights["GOOD"], result.Weights["BAD"],
		"higher score must not receive less weight, all else equal")
}

func TestOptimize_ResultTagged(t *testing.T) {
	assets := []AssetScore{
		{Symbol: "AAA", Score: 0.8, Sector: "tech", Volatility: 0.25},
		{Symbol: "BBB", Score: 0.6, Sector: "energy", Volatility: 0.20},
		{Symbol: "CCC", Score: 0.4, Sector: "health", Volatility: 0.30},
		{Symbol: "DDD", Score: 0.2, Sector: "finance", Volatility: 0.18},
	}
	result, err := testOptimizer().Optimize(assets, Policy{NameCap: 0.30, SectorCap: 0.40})
	require.NoError(t, err)

	switch result.Provenance {
	case ProvenanceOptimal:
		assert.Empty(t, result.Reason)
	case ProvenanceDegraded:
		assert.NotEmpty(t, result.Reason, "degraded results must carry a reason")
	default:
		t.Fatalf("unexpected provenance %q", result.Provenance)
	}
}

func TestOptimize_VolTargetReducesRisk(t *testing.T) {
	assets := []AssetScore{
		{Symbol: "RISKY1", Score: 0.9, Sector: "tech", Volatility: 0.60},
		{Symbol: "RISKY2", Score: 0.8, Sector: "tech", Volatility: 0.55},
		{Symbol: "SAFE1", Score: 0.3, Sector: "utilities", Volatility: 0.10},
		{Symbol: "SAFE2", Score: 0.2, Sector: "staples", Volatility: 0.12},
	}
	policy := Policy{NameCap: 0.5, SectorCap: 0.8}

	unconstrained, err := testOptimizer().Optimize(assets, policy)
	require.NoError(t, err)

	volTarget := 0.15
	policy.VolTarget = &volTarget
	constrained, err := testOptimizer().Optimize(assets, policy)
	require.NoError(t, err)

	if unconstrained.Provenance == ProvenanceOptimal && constrained.Provenance == ProvenanceOptimal {
		assert.LessOrEqual(t, constrained.Volatility, unconstrained.Volatility+1e-6,
			"a volatility target must not increase realized volatility")
	}
}

func TestOptimize_GreedyFallbackWhenCapsTight(t *testing.T) {
	// Everything in one sector with a tight sector cap: full investment is
	// infeasible, the solver's renormalized solution must violate a cap, and
	// the greedy fallback owns the answer.
	assets := []AssetScore{
		{Symbol: "AAA", Score: 0.9, Sector: "tech", Volatility: 0.25},
		{Symbol: "BBB", Score: 0.8, Sector: "tech", Volatility: 0.25},
		{Symbol: "CCC", Score: 0.7, Sector: "tech", Volatility: 0.25},
	}
	policy := Policy{NameCap: 0.10, SectorCap: 0.20}

	result, err := testOptimizer().Optimize(assets, policy)
	require.NoError(t, err)
	assert.Equal(t, ProvenanceDegraded, result.Provenance)
	assert.NotEmpty(t, result.Reason)

	var total float64
	for _, w := range result.Weights {
		assert.LessOrEqual(t, w, policy.NameCap+1e-9)
		total += w
	}
	assert.InDelta(t, 0.20, total, 1e-9, "capped at the sector limit")
}

func TestOptimize_RandomizedInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sectors := []string{"tech", "energy", "health", "finance", "utilities"}

	for trial := 0; trial < 25; trial++ {
		n := 2 + rng.Intn(20)
		assets := make([]AssetScore, n)
		for i := range assets {
			assets[i] = AssetScore{
				Symbol:     fmt.Sprintf("S%03d", i),
				Score:      rng.Float64(),
				Sector:     sectors[rng.Intn(len(sectors))],
				Volatility: 0.1 + 0.4*rng.Float64(),
			}
		}
		policy := Policy{
			NameCap:   0.10 + 0.2*rng.Float64(),
			SectorCap: 0.25 + 0.3*rng.Float64(),
		}

		result, err := testOptimizer().Optimize(assets, policy)
		require.NoError(t, err, "trial %d", trial)

		var total float64
		for symbol, w := range result.Weights {
			assert.GreaterOrEqual(t, w, -1e-9, "trial %d symbol %s", trial, symbol)
			assert.LessOrEqual(t, w, policy.NameCap+1e-6, "trial %d symbol %s", trial, symbol)
			total += w
		}
		assert.LessOrEqual(t, total, 1.0+1e-6, "trial %d", trial)
		for sector, sw := range result.SectorWeights {
			assert.LessOrEqual(t, sw, policy.SectorCap+1e-6, "trial %d sector %s", trial, sector)
		}
		assert.GreaterOrEqual(t, result.Variance, 0.0, "trial %d", trial)
	}
}
