package options

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Action identifies the side of an option leg.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

// DefaultMultiplier is the contract multiplier applied when a leg does not
// specify one (standard US equity options).
const DefaultMultiplier = 100

// Leg is a single option position inside a strategy. Premium is per unit of
// the underlying; Quantity is the number of contracts.
type Leg struct {
	Kind       Kind
	Action     Action
	Strike     float64
	Premium    float64
	Quantity   int
	Multiplier float64
}

func (l Leg) multiplier() float64 {
	if l.Multiplier == 0 {
		return DefaultMultiplier
	}
	return l.Multiplier
}

func (l Leg) validate() error {
	if l.Strike <= 0 {
		return fmt.Errorf("%w: leg strike %v must be > 0", ErrInvalidInput, l.Strike)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("%w: leg quantity %d must be > 0", ErrInvalidInput, l.Quantity)
	}
	return nil
}

// PayoffAt returns the leg's total profit/loss at expiry for an underlying
// price s, including premium paid or received.
func (l Leg) PayoffAt(s float64) float64 {
	var intrinsic float64
	if l.Kind == Call {
		intrinsic = math.Max(0, s-l.Strike)
	} else {
		intrinsic = math.Max(0, l.Strike-s)
	}
	payoffLong := intrinsic - l.Premium
	if l.Action == Sell {
		payoffLong = -payoffLong
	}
	return float64(l.Quantity) * l.multiplier() * payoffLong
}

// Profile is the payoff of a leg set evaluated across a price grid. Total is
// the exact elementwise sum of the PerLeg vectors.
type Profile struct {
	Prices []float64
	Total  []float64
	PerLeg [][]float64
}

// ProfileConfig controls profile construction. GridPoints trades breakeven
// precision against compute cost.
type ProfileConfig struct {
	GridPoints int
}

// DefaultGridPoints is the grid density used when ProfileConfig leaves
// GridPoints unset.
const DefaultGridPoints = 1500

func (c ProfileConfig) gridPoints() int {
	if c.GridPoints <= 0 {
		return DefaultGridPoints
	}
	return c.GridPoints
}

// PriceGrid returns points evenly spaced prices covering [lo, hi] inclusive.
func PriceGrid(lo, hi float64, points int) []float64 {
	if points < 2 {
		points = 2
	}
	grid := make([]float64, points)
	step := (hi - lo) / float64(points-1)
	for i := range grid {
		grid[i] = lo + float64(i)*step
	}
	return grid
}

// StrategyProfile evaluates every leg across the price grid and sums the
// per-leg vectors into the total payoff.
func StrategyProfile(legs []Leg, prices []float64) (*Profile, error) {
	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: no legs", ErrInvalidInput)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: empty price grid", ErrInvalidInput)
	}
	for i, leg := range legs {
		if err := leg.validate(); err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
	}

	profile := &Profile{
		Prices: prices,
		Total:  make([]float64, len(prices)),
		PerLeg: make([][]float64, len(legs)),
	}
	for li, leg := range legs {
		vec := make([]float64, len(prices))
		for pi, s := range prices {
			vec[pi] = leg.PayoffAt(s)
			profile.Total[pi] += vec[pi]
		}
		profile.PerLeg[li] = vec
	}
	return profile, nil
}

// Summary captures the extremes and zero crossings of a payoff profile.
type Summary struct {
	MaxProfit      float64
	MaxLoss        float64
	MaxProfitPrice float64
	MaxLossPrice   float64
	Breakevens     []float64
}

// SummaryFromProfile scans the total payoff for extremes and breakevens.
// Breakevens at grid points are recorded directly; sign changes between
// adjacent points are located by linear interpolation. Results are rounded to
// 4 decimals, deduplicated and sorted.
func SummaryFromProfile(p *Profile) Summary {
	s := Summary{
		MaxProfit: math.Inf(-1),
		MaxLoss:   math.Inf(1),
	}
	for i, v := range p.Total {
		if v > s.MaxProfit {
			s.MaxProfit = v
			s.MaxProfitPrice = p.Prices[i]
		}
		if v < s.MaxLoss {
			s.MaxLoss = v
			s.MaxLossPrice = p.Prices[i]
		}
	}

	seen := make(map[float64]bool)
	record := func(price float64) {
		rounded := math.Round(price*1e4) / 1e4
		if !seen[rounded] {
			seen[rounded] = true
			s.Breakevens = append(s.Breakevens, rounded)
		}
	}
	for i := 0; i < len(p.Total); i++ {
		if p.Total[i] == 0 {
			record(p.Prices[i])
			continue
		}
		if i+1 < len(p.Total) && p.Total[i]*p.Total[i+1] < 0 {
			s0, s1 := p.Prices[i], p.Prices[i+1]
			p0, p1 := p.Total[i], p.Total[i+1]
			record(s0 + (0-p0)*(s1-s0)/(p1-p0))
		}
	}
	sort.Float64s(s.Breakevens)
	return s
}

// RiskMetrics are derived, distribution-free diagnostics over the price grid.
// GridProbOfProfit is the fraction of uniformly spaced grid points with a
// positive payoff. It is NOT a probability under any terminal-price
// distribution; a distribution-weighted variant would need a fitted terminal
// price model.
type RiskMetrics struct {
	ProfitZoneWidth  float64
	GridProbOfProfit float64
	ExpectedValue    float64
	StdDev           float64
	EVToRisk         float64
}

// ComputeRiskMetrics derives grid-based risk diagnostics from a profile.
func ComputeRiskMetrics(p *Profile) RiskMetrics {
	if len(p.Total) == 0 {
		return RiskMetrics{}
	}
	var positive int
	minProfit, maxProfit := math.Inf(1), math.Inf(-1)
	for i, v := range p.Total {
		if v > 0 {
			positive++
			if p.Prices[i] < minProfit {
				minProfit = p.Prices[i]
			}
			if p.Prices[i] > maxProfit {
				maxProfit = p.Prices[i]
			}
		}
	}

	m := RiskMetrics{
		GridProbOfProfit: float64(positive) / float64(len(p.Total)),
		ExpectedValue:    stat.Mean(p.Total, nil),
	}
	if positive > 0 {
		m.ProfitZoneWidth = maxProfit - minProfit
	}
	if len(p.Total) > 1 {
		m.StdDev = stat.StdDev(p.Total, nil)
	}
	if m.StdDev > 0 {
		m.EVToRisk = m.ExpectedValue / m.StdDev
	}
	return m
}
