package optimization

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Solver tuning. The penalty method keeps the problem unconstrained so the
// gonum minimizers apply; violations are pushed out by the quadratic penalty.
const (
	penaltyWeight = 1000.0
	capEpsilon    = 1e-6
)

// Optimizer solves the risk-constrained weight problem
//
//	minimize  -score'w + lambda * w'Sigma w
//	s.t.      sum(w) = 1, 0 <= w_i <= nameCap,
//	          sector aggregates <= sector caps,
//	          w'Sigma w <= volTarget^2      (optional)
//	          ||w - w_prev||_1 <= turnover  (optional)
//
// via gonum's BFGS with a Nelder-Mead retry. When the solver fails or its
// solution violates the caps, the greedy allocator takes over and the result
// is tagged ProvenanceDegraded. Solver failures never propagate: a
// degraded-but-feasible portfolio is preferable to none.
type Optimizer struct {
	log zerolog.Logger
}

// New creates an optimizer. The logger is used only for fallback diagnostics.
func New(log zerolog.Logger) *Optimizer {
	return &Optimizer{log: log.With().Str("component", "optimizer").Logger()}
}

// Optimize builds the covariance model from the asset scores and solves for
// target weights under the policy.
func (o *Optimizer) Optimize(assets []AssetScore, policy Policy) (*Result, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: empty asset list", ErrInvalidInput)
	}

	sigma := BuildCovariance(assets)

	// Calibrate the risk-aversion weight so the variance penalty and the
	// score scale are commensurate.
	lambda := 1.0
	if policy.VolTarget != nil && *policy.VolTarget > 0 {
		lambda = 0.5 / (*policy.VolTarget * *policy.VolTarget)
	}

	weights, reason := o.solve(assets, policy, sigma, lambda)
	provenance := ProvenanceOptimal
	if weights == nil {
		greedy, err := GreedyAllocate(assets, policy)
		if err != nil {
			return nil, err
		}
		o.log.Warn().Str("reason", reason).Msg("Solver unavailable or infeasible, using greedy allocation")
		weights = greedy
		provenance = ProvenanceDegraded
	} else {
		reason = ""
	}

	return o.finalize(assets, sigma, weights, provenance, reason), nil
}

// solve runs the penalty-method minimization. A nil return means the solver
// path failed; reason says why.
func (o *Optimizer) solve(assets []AssetScore, policy Policy, sigma *mat.SymDense, lambda float64) (map[string]float64, string) {
	n := len(assets)
	nameCap := policy.nameCap()

	scores := make([]float64, n)
	prev := make([]float64, n)
	for i, a := range assets {
		scores[i] = a.Score
		prev[i] = policy.PrevWeights[a.Symbol]
	}

	project := func(x []float64) []float64 {
		proj := make([]float64, n)
		for i := range x {
			proj[i] = math.Max(0, math.Min(nameCap, x[i]))
		}
		return proj
	}

	sectorWeightsOf := func(x []float64) map[string]float64 {
		agg := make(map[string]float64)
		for i, a := range assets {
			agg[a.Sector] += x[i]
		}
		return agg
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := project(x)

			var score, sum float64
			for i := 0; i < n; i++ {
				score += scores[i] * w[i]
				sum += w[i]
			}
			variance := portfolioVariance(w, sigma)

			obj := -score + lambda*variance
			obj += penaltyWeight * (sum - 1.0) * (sum - 1.0)

			for sector, weight := range sectorWeightsOf(w) {
				if excess := weight - policy.sectorCap(sector); excess > 0 {
					obj += penaltyWeight * excess * excess
				}
			}
			if policy.VolTarget != nil {
				if excess := variance - *policy.VolTarget**policy.VolTarget; excess > 0 {
					obj += penaltyWeight * excess * excess
				}
			}
			if policy.TurnoverBudget != nil {
				var l1 float64
				for i := 0; i < n; i++ {
					l1 += math.Abs(w[i] - prev[i])
				}
				if excess := l1 - *policy.TurnoverBudget; excess > 0 {
					obj += penaltyWeight * excess * excess
				}
			}
			return obj
		},
		Grad: func(grad, x []float64) {
			w := project(x)

			var sum float64
			sigmaW := make([]float64, n)
			for i := 0; i < n; i++ {
				sum += w[i]
				for j := 0; j < n; j++ {
					sigmaW[i] += sigma.At(i, j) * w[j]
				}
			}
			variance := portfolioVariance(w, sigma)

			for i := 0; i < n; i++ {
				grad[i] = -scores[i] + 2*lambda*sigmaW[i] + 2*penaltyWeight*(sum-1.0)
			}

			sectorWeights := sectorWeightsOf(w)
			for i, a := range assets {
				if excess := sectorWeights[a.Sector] - policy.sectorCap(a.Sector); excess > 0 {
					grad[i] += 2 * penaltyWeight * excess
				}
			}
			if policy.VolTarget != nil {
				if excess := variance - *policy.VolTarget**policy.VolTarget; excess > 0 {
					for i := 0; i < n; i++ {
						grad[i] += 4 * penaltyWeight * excess * sigmaW[i]
					}
				}
			}
			if policy.TurnoverBudget != nil {
				var l1 float64
				for i := 0; i < n; i++ {
					l1 += math.Abs(w[i] - prev[i])
				}
				if excess := l1 - *policy.TurnoverBudget; excess > 0 {
					for i := 0; i < n; i++ {
						// Subgradient of the L1 term.
						switch {
						case w[i] > prev[i]:
							grad[i] += 2 * penaltyWeight * excess
						case w[i] < prev[i]:
							grad[i] -= 2 * penaltyWeight * excess
						}
					}
				}
			}
		},
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = math.Min(1.0/float64(n), nameCap)
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
	if err != nil || !converged(result.Status) {
		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
		if err != nil {
			return nil, fmt.Sprintf("solver error: %v", err)
		}
		if !converged(result.Status) {
			return nil, fmt.Sprintf("solver did not converge: status=%v", result.Status)
		}
	}

	final := project(result.X)

	// Clip numerical noise and renormalize to full investment.
	var sum float64
	for _, w := range final {
		sum += w
	}
	if sum <= 0 {
		return nil, "solver returned a zero allocation"
	}
	for i := range final {
		final[i] /= sum
	}

	// Renormalization can only push weights past a cap when the caps were
	// binding to begin with; in that case the greedy allocator owns the
	// answer.
	for i, w := range final {
		if w > nameCap+capEpsilon {
			return nil, fmt.Sprintf("solver solution violates name cap for %s", assets[i].Symbol)
		}
	}
	for sector, weight := range sectorWeightsOf(final) {
		if weight > policy.sectorCap(sector)+capEpsilon {
			return nil, fmt.Sprintf("solver solution violates sector cap for %s", sector)
		}
	}

	weights := make(map[string]float64, n)
	for i, a := range assets {
		weights[a.Symbol] = final[i]
	}
	return weights, ""
}

// finalize derives the risk diagnostics for the chosen weights.
func (o *Optimizer) finalize(assets []AssetScore, sigma *mat.SymDense, weights map[string]float64, provenance Provenance, reason string) *Result {
	w := make([]float64, len(assets))
	sectorWeights := make(map[string]float64)
	for i, a := range assets {
		w[i] = weights[a.Symbol]
		sectorWeights[a.Sector] += w[i]
	}
	variance := portfolioVariance(w, sigma)

	return &Result{
		Weights:       weights,
		SectorWeights: sectorWeights,
		Variance:      variance,
		Volatility:    math.Sqrt(variance),
		Provenance:    provenance,
		Reason:        reason,
	}
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence, optimize.FunctionThreshold:
		return true
	}
	return false
}
