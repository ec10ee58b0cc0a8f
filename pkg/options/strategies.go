package options

import "fmt"

// Strategy bundles the legs of a named option structure with its payoff
// profile and derived diagnostics.
type Strategy struct {
	Name    string
	Legs    []Leg
	Profile *Profile
	Summary Summary
	Metrics RiskMetrics
}

// strikeRange returns a price grid spanning 0.5x the lowest to 1.5x the
// highest strike involved.
func strikeRange(cfg ProfileConfig, strikes ...float64) []float64 {
	lo, hi := strikes[0], strikes[0]
	for _, k := range strikes[1:] {
		if k < lo {
			lo = k
		}
		if k > hi {
			hi = k
		}
	}
	return PriceGrid(0.5*lo, 1.5*hi, cfg.gridPoints())
}

func buildStrategy(name string, legs []Leg, prices []float64) (*Strategy, error) {
	profile, err := StrategyProfile(legs, prices)
	if err != nil {
		return nil, err
	}
	return &Strategy{
		Name:    name,
		Legs:    legs,
		Profile: profile,
		Summary: SummaryFromProfile(profile),
		Metrics: ComputeRiskMetrics(profile),
	}, nil
}

// VerticalSpread builds a two-leg spread in a single option kind: long the
// first strike, short the second.
func VerticalSpread(kind Kind, longStrike, longPremium, shortStrike, shortPremium float64, quantity int, cfg ProfileConfig) (*Strategy, error) {
	if longStrike == shortStrike {
		return nil, fmt.Errorf("%w: vertical spread strikes must differ", ErrInvalidInput)
	}
	legs := []Leg{
		{Kind: kind, Action: Buy, Strike: longStrike, Premium: longPremium, Quantity: quantity},
		{Kind: kind, Action: Sell, Strike: shortStrike, Premium: shortPremium, Quantity: quantity},
	}
	return buildStrategy("vertical_spread", legs, strikeRange(cfg, longStrike, shortStrike))
}

// IronCondor builds the four-leg structure: long put, short put, short call,
// long call. Strikes must be strictly increasing in that order.
func IronCondor(putBuyStrike, putBuyPremium, putSellStrike, putSellPremium, callSellStrike, callSellPremium, callBuyStrike, callBuyPremium float64, quantity int, cfg ProfileConfig) (*Strategy, error) {
	if !(putBuyStrike < putSellStrike && putSellStrike < callSellStrike && callSellStrike < callBuyStrike) {
		return nil, fmt.Errorf("%w: iron condor requires putBuy < putSell < callSell < callBuy, got %v < %v < %v < %v",
			ErrInvalidInput, putBuyStrike, putSellStrike, callSellStrike, callBuyStrike)
	}
	legs := []Leg{
		{Kind: Put, Action: Buy, Strike: putBuyStrike, Premium: putBuyPremium, Quantity: quantity},
		{Kind: Put, Action: Sell, Strike: putSellStrike, Premium: putSellPremium, Quantity: quantity},
		{Kind: Call, Action: Sell, Strike: callSellStrike, Premium: callSellPremium, Quantity: quantity},
		{Kind: Call, Action: Buy, Strike: callBuyStrike, Premium: callBuyPremium, Quantity: quantity},
	}
	return buildStrategy("iron_condor", legs, strikeRange(cfg, putBuyStrike, callBuyStrike))
}

// Straddle buys a call and a put at the same strike.
func Straddle(strike, callPremium, putPremium float64, quantity int, cfg ProfileConfig) (*Strategy, error) {
	legs := []Leg{
		{Kind: Call, Action: Buy, Strike: strike, Premium: callPremium, Quantity: quantity},
		{Kind: Put, Action: Buy, Strike: strike, Premium: putPremium, Quantity: quantity},
	}
	return buildStrategy("straddle", legs, strikeRange(cfg, strike))
}

// Strangle buys an out-of-the-money put below an out-of-the-money call.
func Strangle(putStrike, putPremium, callStrike, callPremium float64, quantity int, cfg ProfileConfig) (*Strategy, error) {
	if putStrike >= callStrike {
		return nil, fmt.Errorf("%w: strangle requires putStrike < callStrike, got %v >= %v", ErrInvalidInput, putStrike, callStrike)
	}
	legs := []Leg{
		{Kind: Put, Action: Buy, Strike: putStrike, Premium: putPremium, Quantity: quantity},
		{Kind: Call, Action: Buy, Strike: callStrike, Premium: callPremium, Quantity: quantity},
	}
	return buildStrategy("strangle", legs, strikeRange(cfg, putStrike, callStrike))
}

// Butterfly buys the wings and sells twice the body, all in one kind.
// Strikes must be strictly increasing.
func Butterfly(kind Kind, lowerStrike, lowerPremium, middleStrike, middlePremium, upperStrike, upperPremium float64, quantity int, cfg ProfileConfig) (*Strategy, error) {
	if !(lowerStrike < middleStrike && middleStrike < upperStrike) {
		return nil, fmt.Errorf("%w: butterfly requires lower < middle < upper, got %v < %v < %v",
			ErrInvalidInput, lowerStrike, middleStrike, upperStrike)
	}
	legs := []Leg{
		{Kind: kind, Action: Buy, Strike: lowerStrike, Premium: lowerPremium, Quantity: quantity},
		{Kind: kind, Action: Sell, Strike: middleStrike, Premium: middlePremium, Quantity: 2 * quantity},
		{Kind: kind, Action: Buy, Strike: upperStrike, Premium: upperPremium, Quantity: quantity},
	}
	return buildStrategy("butterfly", legs, strikeRange(cfg, lowerStrike, upperStrike))
}

// CoveredCall sells a call against an existing stock position. The linear
// stock P/L (S - entryPrice) * shareQuantity enters the profile as its own
// vector so the total stays the exact sum of the per-leg vectors.
func CoveredCall(entryPrice float64, shareQuantity int, callStrike, callPremium float64, contracts int, cfg ProfileConfig) (*Strategy, error) {
	if entryPrice <= 0 {
		return nil, fmt.Errorf("%w: entry price %v must be > 0", ErrInvalidInput, entryPrice)
	}
	if shareQuantity <= 0 {
		return nil, fmt.Errorf("%w: share quantity %d must be > 0", ErrInvalidInput, shareQuantity)
	}
	legs := []Leg{
		{Kind: Call, Action: Sell, Strike: callStrike, Premium: callPremium, Quantity: contracts},
	}
	prices := strikeRange(cfg, callStrike)
	profile, err := StrategyProfile(legs, prices)
	if err != nil {
		return nil, err
	}

	stock := make([]float64, len(prices))
	for i, s := range prices {
		stock[i] = (s - entryPrice) * float64(shareQuantity)
		profile.Total[i] += stock[i]
	}
	profile.PerLeg = append(profile.PerLeg, stock)

	return &Strategy{
		Name:    "covered_call",
		Legs:    legs,
		Profile: profile,
		Summary: SummaryFromProfile(profile),
		Metrics: ComputeRiskMetrics(profile),
	}, nil
}

// StrategyGreeks sums signed per-leg sensitivities for a leg set. Each leg is
// priced with its own strike; bought legs add, sold legs subtract, scaled by
// quantity and multiplier.
func StrategyGreeks(p Params, sigma float64, legs []Leg) (Greeks, error) {
	var net Greeks
	for i, leg := range legs {
		legParams := p
		legParams.K = leg.Strike
		g, err := ComputeGreeks(legParams, sigma, leg.Kind)
		if err != nil {
			return Greeks{}, fmt.Errorf("leg %d: %w", i, err)
		}
		scale := float64(leg.Quantity) * leg.multiplier()
		if leg.Action == Sell {
			scale = -scale
		}
		net.Delta += scale * g.Delta
		net.Gamma += scale * g.Gamma
		net.Theta += scale * g.Theta
		net.Vega += scale * g.Vega
		net.Rho += scale * g.Rho
	}
	return net, nil
}
