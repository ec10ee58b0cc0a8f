package options

import (
	"fmt"
	"math"
)

// Implied volatility search parameters. The bracket upper bound is doubled
// once (capped at ivUpperMax) when the initial bracket does not straddle the
// market price.
const (
	ivLowerBound = 1e-6
	ivUpperBound = 5.0
	ivUpperMax   = 10.0
	ivTolerance  = 1e-7
	ivMaxIter    = 100
)

// ImpliedVol inverts Price to recover the volatility that reproduces the
// observed market price. A nil result means no volatility in the search
// bracket matches the price; that is an expected outcome (deep in/out of the
// money quotes, stale prices), not an error. The error return covers invalid
// contract parameters only.
func ImpliedVol(p Params, marketPrice float64, kind Kind) (*float64, error) {
	if p.S <= 0 || p.K <= 0 || p.T <= 0 {
		return nil, fmt.Errorf("%w: S=%v K=%v T=%v (all must be > 0)", ErrInvalidInput, p.S, p.K, p.T)
	}
	if marketPrice <= 0 {
		return nil, fmt.Errorf("%w: market price %v must be > 0", ErrInvalidInput, marketPrice)
	}

	residual := func(sigma float64) (float64, bool) {
		price, err := Price(p, sigma, kind)
		if err != nil {
			return 0, false
		}
		return price - marketPrice, true
	}

	lo, hi := ivLowerBound, ivUpperBound
	fLo, okLo := residual(lo)
	fHi, okHi := residual(hi)
	if !okLo || !okHi {
		return nil, nil
	}

	// Widen the bracket once for quotes implying extreme volatility.
	if fLo*fHi > 0 {
		hi = math.Min(2*hi, ivUpperMax)
		fHi, okHi = residual(hi)
		if !okHi || fLo*fHi > 0 {
			return nil, nil
		}
	}

	// Bisection: guaranteed convergence given the sign change above, and
	// deterministic for identical inputs.
	for i := 0; i < ivMaxIter; i++ {
		mid := 0.5 * (lo + hi)
		fMid, ok := residual(mid)
		if !ok {
			return nil, nil
		}
		if math.Abs(fMid) < ivTolerance || 0.5*(hi-lo) < ivTolerance {
			return &mid, nil
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	mid := 0.5 * (lo + hi)
	return &mid, nil
}
