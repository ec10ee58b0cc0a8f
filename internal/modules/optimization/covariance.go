package optimization

import "gonum.org/v1/gonum/mat"

// Heuristic correlation prior: strong co-movement inside a sector, weak
// across sectors. This is a deliberate simplification, not inferred from
// historical returns.
const (
	sameSectorCorrelation  = 0.6
	crossSectorCorrelation = 0.2
)

// BuildCovariance assembles the heuristic covariance matrix from per-asset
// volatilities and sector labels: sigma_ij = corr_ij * vol_i * vol_j with
// corr 1.0 on the diagonal, 0.6 for same-sector pairs and 0.2 otherwise.
func BuildCovariance(assets []AssetScore) *mat.SymDense {
	n := len(assets)
	sigma := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		volI := assets[i].volatility()
		sigma.SetSym(i, i, volI*volI)
		for j := i + 1; j < n; j++ {
			corr := crossSectorCorrelation
			if assets[i].Sector == assets[j].Sector {
				corr = sameSectorCorrelation
			}
			sigma.SetSym(i, j, corr*volI*assets[j].volatility())
		}
	}
	return sigma
}

// portfolioVariance computes w'Sigma w.
func portfolioVariance(w []float64, sigma *mat.SymDense) float64 {
	var variance float64
	n := len(w)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			variance += w[i] * w[j] * sigma.At(i, j)
		}
	}
	return variance
}
