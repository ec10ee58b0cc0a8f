// Package drift provides distribution-divergence statistics between a
// reference and a live sample, and the safe-mode policy that turns them into
// a position-sizing decision.
package drift

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrInvalidInput indicates an empty sample.
var ErrInvalidInput = errors.New("drift: invalid input")

const (
	psiBins = 10
	// psiFloor keeps the histogram probabilities away from zero so the log
	// ratio stays finite.
	psiFloor = 1e-6
)

// PSI computes the population stability index between an expected (reference)
// and an actual (live) sample. Both samples are binned with quantile cut
// points over their pooled values, outer edges extended to +-infinity. Zero
// for identical distributions, growing with divergence.
func PSI(expected, actual []float64) (float64, error) {
	if len(expected) == 0 || len(actual) == 0 {
		return 0, fmt.Errorf("%w: empty sample", ErrInvalidInput)
	}

	pooled := make([]float64, 0, len(expected)+len(actual))
	pooled = append(pooled, expected...)
	pooled = append(pooled, actual...)
	sort.Float64s(pooled)

	// Interior quantile cut points; the outer edges are open-ended.
	cuts := make([]float64, 0, psiBins-1)
	for i := 1; i < psiBins; i++ {
		cuts = append(cuts, stat.Quantile(float64(i)/psiBins, stat.Empirical, pooled, nil))
	}

	expectedHist := histogram(expected, cuts)
	actualHist := histogram(actual, cuts)

	var psi float64
	for b := 0; b < psiBins; b++ {
		e := math.Max(expectedHist[b], psiFloor)
		a := math.Max(actualHist[b], psiFloor)
		psi += (a - e) * math.Log(a/e)
	}
	return psi, nil
}

// histogram bins a sample by the cut points and normalizes the counts to a
// probability vector.
func histogram(sample []float64, cuts []float64) []float64 {
	counts := make([]float64, len(cuts)+1)
	for _, v := range sample {
		// Bins are half-open (cuts[b-1], cuts[b]]: a value equal to a cut
		// point counts toward the bin it closes.
		counts[sort.SearchFloat64s(cuts, v)]++
	}
	total := float64(len(sample))
	for i := range counts {
		counts[i] /= total
	}
	return counts
}

// KSStatistic computes the two-sample Kolmogorov-Smirnov statistic: the
// maximum absolute gap between the two empirical CDFs.
func KSStatistic(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: empty sample", ErrInvalidInput)
	}

	// stat.KolmogorovSmirnov requires sorted inputs.
	sortedA := make([]float64, len(a))
	copy(sortedA, a)
	sort.Float64s(sortedA)
	sortedB := make([]float64, len(b))
	copy(sortedB, b)
	sort.Float64s(sortedB)

	return stat.KolmogorovSmirnov(sortedA, nil, sortedB, nil), nil
}
