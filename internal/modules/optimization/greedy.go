package optimization

import (
	"fmt"
	"math"
	"sort"
)

// GreedyAllocate is the deterministic fallback heuristic: allocate budget to
// assets in descending score order, giving each the most its name and sector
// caps allow. The result is feasible and maximally invested, but generally
// not optimal; the sum can fall short of 1 only when the caps themselves make
// full investment infeasible.
func GreedyAllocate(assets []AssetScore, policy Policy) (map[string]float64, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: empty asset list", ErrInvalidInput)
	}

	ordered := make([]AssetScore, len(assets))
	copy(ordered, assets)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].Symbol < ordered[j].Symbol
	})

	weights := make(map[string]float64, len(ordered))
	sectorUsed := make(map[string]float64)
	remaining := 1.0
	nameCap := policy.nameCap()

	// One pass suffices: every asset receives the minimum of its name room,
	// its sector room and the remaining budget, and no room ever reopens.
	for _, asset := range ordered {
		if remaining <= 0 {
			break
		}
		sectorRoom := policy.sectorCap(asset.Sector) - sectorUsed[asset.Sector]
		nameRoom := nameCap - weights[asset.Symbol]
		alloc := math.Min(nameRoom, math.Min(remaining, sectorRoom))
		if alloc <= 0 {
			continue
		}
		weights[asset.Symbol] += alloc
		sectorUsed[asset.Sector] += alloc
		remaining -= alloc
	}

	for _, asset := range ordered {
		if _, ok := weights[asset.Symbol]; !ok {
			weights[asset.Symbol] = 0
		}
	}
	return weights, nil
}
