// Package calibration recalibrates raw model probabilities against realized
// outcomes with a monotone (isotonic) mapping and measures calibration error.
package calibration

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidInput indicates empty or mismatched-length fit inputs.
var ErrInvalidInput = errors.New("calibration: invalid input")

// ErrNotFitted is returned when Predict or CalibrationError is called before
// Fit.
var ErrNotFitted = errors.New("calibration: model not fitted")

// eceBins is the number of equal-width bins for expected calibration error.
const eceBins = 10

// Model is a monotone probability-to-outcome map fitted with the
// pool-adjacent-violators algorithm. The zero value is unfitted; Fit may be
// called again to refit.
type Model struct {
	fitted bool
	xs     []float64 // raw probabilities, ascending
	ys     []float64 // fitted outcome means, non-decreasing

	// ClippedInputs counts raw probabilities outside [0,1] that the last Fit
	// clipped rather than rejected.
	ClippedInputs int
}

// IsFitted reports whether the model has been fitted.
func (m *Model) IsFitted() bool {
	return m.fitted
}

// Fit learns the monotone map from raw probabilities to realized outcomes.
// Probabilities outside [0,1] are clipped and counted in ClippedInputs.
func (m *Model) Fit(rawProbs, outcomes []float64) error {
	if len(rawProbs) == 0 || len(outcomes) == 0 {
		return fmt.Errorf("%w: empty inputs", ErrInvalidInput)
	}
	if len(rawProbs) != len(outcomes) {
		return fmt.Errorf("%w: %d probabilities vs %d outcomes", ErrInvalidInput, len(rawProbs), len(outcomes))
	}

	type pair struct{ x, y float64 }
	pairs := make([]pair, len(rawProbs))
	clipped := 0
	for i, p := range rawProbs {
		if p < 0 || p > 1 {
			clipped++
			p = clip01(p)
		}
		pairs[i] = pair{x: p, y: outcomes[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].x < pairs[j].x })

	// Pool-adjacent-violators: merge neighboring blocks until the block
	// means are non-decreasing.
	type block struct {
		sumX, sumY, n float64
	}
	blocks := make([]block, 0, len(pairs))
	for _, p := range pairs {
		blocks = append(blocks, block{sumX: p.x, sumY: p.y, n: 1})
		for len(blocks) > 1 {
			last := len(blocks) - 1
			if blocks[last].sumY/blocks[last].n >= blocks[last-1].sumY/blocks[last-1].n {
				break
			}
			blocks[last-1].sumX += blocks[last].sumX
			blocks[last-1].sumY += blocks[last].sumY
			blocks[last-1].n += blocks[last].n
			blocks = blocks[:last]
		}
	}

	m.xs = make([]float64, len(blocks))
	m.ys = make([]float64, len(blocks))
	for i, b := range blocks {
		m.xs[i] = b.sumX / b.n
		m.ys[i] = b.sumY / b.n
	}
	m.ClippedInputs = clipped
	m.fitted = true
	return nil
}

// Predict applies the fitted map. Inputs are clipped to [0,1]; values outside
// the fitted range take the nearest endpoint, values between fitted points
// are interpolated linearly.
func (m *Model) Predict(rawProbs []float64) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(rawProbs))
	for i, p := range rawProbs {
		out[i] = m.predictOne(clip01(p))
	}
	return out, nil
}

func (m *Model) predictOne(x float64) float64 {
	if x <= m.xs[0] {
		return m.ys[0]
	}
	last := len(m.xs) - 1
	if x >= m.xs[last] {
		return m.ys[last]
	}
	idx := sort.SearchFloat64s(m.xs, x)
	x0, x1 := m.xs[idx-1], m.xs[idx]
	y0, y1 := m.ys[idx-1], m.ys[idx]
	if x1 == x0 {
		return y0
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// CalibrationError computes the expected calibration error of the fitted
// model on a probability/outcome sample: 10 equal-width bins over [0,1], each
// non-empty bin contributing |mean predicted - mean actual| weighted by its
// population share. Bounded in [0,1].
func (m *Model) CalibrationError(rawProbs, outcomes []float64) (float64, error) {
	if !m.fitted {
		return 0, ErrNotFitted
	}
	if len(rawProbs) == 0 || len(rawProbs) != len(outcomes) {
		return 0, fmt.Errorf("%w: %d probabilities vs %d outcomes", ErrInvalidInput, len(rawProbs), len(outcomes))
	}

	predicted, err := m.Predict(rawProbs)
	if err != nil {
		return 0, err
	}

	var sumPred, sumActual, count [eceBins]float64
	for i, p := range predicted {
		bin := int(clip01(p) * eceBins)
		if bin == eceBins {
			bin = eceBins - 1
		}
		sumPred[bin] += p
		sumActual[bin] += outcomes[i]
		count[bin]++
	}

	total := float64(len(predicted))
	var ece float64
	for b := 0; b < eceBins; b++ {
		if count[b] == 0 {
			continue
		}
		ece += math.Abs(sumPred[b]/count[b]-sumActual[b]/count[b]) * (count[b] / total)
	}
	return ece, nil
}

func clip01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
