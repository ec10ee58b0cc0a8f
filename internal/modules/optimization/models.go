// Package optimization builds risk-constrained portfolio weights from
// upstream asset scores.
package optimization

import "errors"

// ErrInvalidInput indicates malformed optimization inputs (empty asset list,
// non-positive caps).
var ErrInvalidInput = errors.New("optimization: invalid input")

// Default caps applied when the policy leaves them unset.
const (
	DefaultNameCap    = 0.20 // 20% max per symbol
	DefaultSectorCap  = 0.30 // 30% max per sector
	DefaultVolatility = 0.20 // assumed annualized volatility when a score omits it
)

// AssetScore is one row of the upstream ranking feed. Volatility is
// annualized; zero means unknown and falls back to DefaultVolatility.
type AssetScore struct {
	Symbol     string
	Score      float64
	Sector     string
	Volatility float64
}

func (a AssetScore) volatility() float64 {
	if a.Volatility <= 0 {
		return DefaultVolatility
	}
	return a.Volatility
}

// Policy holds the risk constraints for an optimization run. Nil pointer
// fields disable the corresponding constraint. SectorCaps overrides the
// default sector cap per sector label.
type Policy struct {
	VolTarget      *float64
	NameCap        float64
	SectorCap      float64
	SectorCaps     map[string]float64
	TurnoverBudget *float64
	PrevWeights    map[string]float64
}

func (p Policy) nameCap() float64 {
	if p.NameCap <= 0 {
		return DefaultNameCap
	}
	return p.NameCap
}

func (p Policy) sectorCap(sector string) float64 {
	if cap, ok := p.SectorCaps[sector]; ok {
		return cap
	}
	if p.SectorCap <= 0 {
		return DefaultSectorCap
	}
	return p.SectorCap
}

// Provenance records whether weights came from the solver or the greedy
// fallback, so callers can distinguish a true optimum from a heuristic
// substitute.
type Provenance string

const (
	ProvenanceOptimal  Provenance = "optimal"
	ProvenanceDegraded Provenance = "degraded"
)

// Result is the optimizer output: per-symbol weights in [0,1] summing to 1
// (or less when caps make full investment infeasible), plus realized risk
// diagnostics and provenance.
type Result struct {
	Weights       map[string]float64
	SectorWeights map[string]float64
	Variance      float64
	Volatility    float64
	Provenance    Provenance
	Reason        string
}
