package operation

import (
	"sort"
)

// Recognized strategy names.
const (
	StrategyNoLegs         = "No Legs"
	StrategyLongCall       = "Long Call"
	StrategyShortCall      = "Short Call"
	StrategyLongPut        = "Long Put"
	StrategyShortPut       = "Short Put"
	StrategyBullCallSpread = "Bull Call Spread"
	StrategyBearPutSpread  = "Bear Put Spread"
	StrategyLongStraddle   = "Long Straddle"
	StrategyLongStrangle   = "Long Strangle"
	StrategyIronCondor     = "Iron Condor"
	StrategyCustom         = "Custom"
)

// DetectStrategy names the textbook strategy the legs form. Multi-leg
// strategies are only recognized when every leg shares one expiration.
func DetectStrategy(legs []Leg) string {
	switch {
	case len(legs) == 0:
		return StrategyNoLegs
	case len(legs) == 1:
		return singleLeg(legs[0])
	case !sameExpiration(legs):
		return StrategyCustom
	case len(legs) == 2:
		return twoLegs(legs)
	case len(legs) == 4:
		if isIronCondor(legs) {
			return StrategyIronCondor
		}
	}
	return StrategyCustom
}

func singleLeg(leg Leg) string {
	switch {
	case leg.Action == Buy && leg.Type == Call:
		return StrategyLongCall
	case leg.Action == Sell && leg.Type == Call:
		return StrategyShortCall
	case leg.Action == Buy && leg.Type == Put:
		return StrategyLongPut
	case leg.Action == Sell && leg.Type == Put:
		return StrategyShortPut
	default:
		return StrategyCustom
	}
}

func sameExpiration(legs []Leg) bool {
	first := legs[0].Expiration
	for _, leg := range legs[1:] {
		if !leg.Expiration.Equal(first.Time) {
			return false
		}
	}
	return true
}

func byStrike(legs []Leg) []Leg {
	sorted := append([]Leg(nil), legs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Strike.Equal(sorted[j].Strike) {
			// PUT before CALL at the same strike.
			return sorted[i].Type == Put && sorted[j].Type == Call
		}
		return sorted[i].Strike.LessThan(sorted[j].Strike)
	})
	return sorted
}

func twoLegs(legs []Leg) string {
	sorted := byStrike(legs)
	low, high := sorted[0], sorted[1]

	if low.Type == Call && high.Type == Call &&
		low.Action == Buy && high.Action == Sell &&
		low.Strike.LessThan(high.Strike) {
		return StrategyBullCallSpread
	}
	if low.Type == Put && high.Type == Put &&
		low.Action == Buy && high.Action == Sell &&
		low.Strike.LessThan(high.Strike) {
		return StrategyBearPutSpread
	}
	if low.Action == Buy && high.Action == Buy && low.Type != high.Type {
		if low.Strike.Equal(high.Strike) {
			return StrategyLongStraddle
		}
		return StrategyLongStrangle
	}
	return StrategyCustom
}

// isIronCondor expects, by ascending strike: sell put, buy put, buy call, sell call.
func isIronCondor(legs []Leg) bool {
	s := byStrike(legs)
	return s[0].Action == Sell && s[0].Type == Put &&
		s[1].Action == Buy && s[1].Type == Put &&
		s[2].Action == Buy && s[2].Type == Call &&
		s[3].Action == Sell && s[3].Type == Call &&
		s[0].Strike.LessThan(s[1].Strike) &&
		s[1].Strike.LessThan(s[2].Strike) &&
		s[2].Strike.LessThan(s[3].Strike)
}
