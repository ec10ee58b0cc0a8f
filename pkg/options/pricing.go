// Package options provides closed-form option valuation, implied volatility
// recovery, and payoff/risk profiling for multi-leg strategies. All functions
// are pure and safe for concurrent use.
package options

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidInput indicates out-of-domain pricing inputs (non-positive spot,
// strike, time to expiry, or volatility).
var ErrInvalidInput = errors.New("options: invalid input")

// Kind identifies the option type.
type Kind string

const (
	Call Kind = "call"
	Put  Kind = "put"
)

// Params holds the contract parameters for closed-form valuation.
// S is the underlying price, K the strike, T the time to expiry in years,
// R the continuous risk-free rate and Q the continuous dividend yield.
type Params struct {
	S float64
	K float64
	T float64
	R float64
	Q float64
}

func (p Params) validate(sigma float64) error {
	if p.S <= 0 || p.K <= 0 || p.T <= 0 || sigma <= 0 {
		return fmt.Errorf("%w: S=%v K=%v T=%v sigma=%v (all must be > 0)", ErrInvalidInput, p.S, p.K, p.T, sigma)
	}
	return nil
}

// Greeks holds the option price sensitivities. Theta is per year, vega per
// unit of volatility and rho per unit of rate.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

var stdNormal = distuv.UnitNormal

// d1d2 returns the Black-Scholes-Merton d1 and d2 terms.
func d1d2(p Params, sigma float64) (float64, float64) {
	sqrtT := math.Sqrt(p.T)
	d1 := (math.Log(p.S/p.K) + (p.R-p.Q+0.5*sigma*sigma)*p.T) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

// Price returns the Black-Scholes-Merton value of a European option under a
// continuous dividend yield.
func Price(p Params, sigma float64, kind Kind) (float64, error) {
	if err := p.validate(sigma); err != nil {
		return 0, err
	}
	d1, d2 := d1d2(p, sigma)
	discS := p.S * math.Exp(-p.Q*p.T)
	discK := p.K * math.Exp(-p.R*p.T)
	if kind == Call {
		return discS*stdNormal.CDF(d1) - discK*stdNormal.CDF(d2), nil
	}
	return discK*stdNormal.CDF(-d2) - discS*stdNormal.CDF(-d1), nil
}

// ComputeGreeks returns the full set of sensitivities for an option.
func ComputeGreeks(p Params, sigma float64, kind Kind) (Greeks, error) {
	if err := p.validate(sigma); err != nil {
		return Greeks{}, err
	}
	d1, d2 := d1d2(p, sigma)
	sqrtT := math.Sqrt(p.T)
	expQT := math.Exp(-p.Q * p.T)
	expRT := math.Exp(-p.R * p.T)
	pdfD1 := stdNormal.Prob(d1)

	g := Greeks{
		Gamma: expQT * pdfD1 / (p.S * sigma * sqrtT),
		Vega:  p.S * expQT * pdfD1 * sqrtT,
	}

	// Shared theta term; the remaining terms carry the call/put sign.
	thetaCore := -p.S * sigma * expQT * pdfD1 / (2 * sqrtT)

	if kind == Call {
		g.Delta = expQT * stdNormal.CDF(d1)
		g.Theta = thetaCore - p.R*p.K*expRT*stdNormal.CDF(d2) + p.Q*p.S*expQT*stdNormal.CDF(d1)
		g.Rho = p.K * p.T * expRT * stdNormal.CDF(d2)
	} else {
		g.Delta = expQT * (stdNormal.CDF(d1) - 1)
		g.Theta = thetaCore + p.R*p.K*expRT*stdNormal.CDF(-d2) - p.Q*p.S*expQT*stdNormal.CDF(-d1)
		g.Rho = -p.K * p.T * expRT * stdNormal.CDF(-d2)
	}
	return g, nil
}

// ProbITM returns the risk-neutral probability that the option finishes in
// the money: N(d2) for calls, N(-d2) for puts.
func ProbITM(p Params, sigma float64, kind Kind) (float64, error) {
	if err := p.validate(sigma); err != nil {
		return 0, err
	}
	_, d2 := d1d2(p, sigma)
	if kind == Call {
		return stdNormal.CDF(d2), nil
	}
	return stdNormal.CDF(-d2), nil
}
