package operation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func leg(action Action, typ OptionType, strike int64, exp string) Leg {
	return Leg{
		Action:     action,
		Type:       typ,
		Quantity:   1,
		Expiration: MustDate(exp),
		Strike:     decimal.NewFromInt(strike),
		Premium:    decimal.RequireFromString("1.25"),
	}
}

func TestDetectStrategy(t *testing.T) {
	const exp = "2024-03-15"
	tests := []struct {
		name string
		legs []Leg
		want string
	}{
		{name: "no legs", want: StrategyNoLegs},
		{name: "long call", legs: []Leg{leg(Buy, Call, 100, exp)}, want: StrategyLongCall},
		{name: "short put", legs: []Leg{leg(Sell, Put, 100, exp)}, want: StrategyShortPut},
		{
			name: "bull call spread",
			legs: []Leg{leg(Sell, Call, 110, exp), leg(Buy, Call, 100, exp)},
			want: StrategyBullCallSpread,
		},
		{
			name: "bear put spread",
			legs: []Leg{leg(Buy, Put, 90, exp), leg(Sell, Put, 100, exp)},
			want: StrategyBearPutSpread,
		},
		{
			name: "long straddle",
			legs: []Leg{leg(Buy, Call, 100, exp), leg(Buy, Put, 100, exp)},
			want: StrategyLongStraddle,
		},
		{
			name: "long strangle",
			legs: []Leg{leg(Buy, Call, 110, exp), leg(Buy, Put, 90, exp)},
			want: StrategyLongStrangle,
		},
		{
			name: "iron condor",
			legs: []Leg{
				leg(Buy, Call, 110, exp),
				leg(Sell, Put, 80, exp),
				leg(Sell, Call, 120, exp),
				leg(Buy, Put, 90, exp),
			},
			want: StrategyIronCondor,
		},
		{
			name: "mixed expirations",
			legs: []Leg{leg(Buy, Call, 100, exp), leg(Sell, Call, 110, "2024-03-22")},
			want: StrategyCustom,
		},
		{
			name: "three legs",
			legs: []Leg{leg(Buy, Call, 100, exp), leg(Sell, Call, 110, exp), leg(Sell, Call, 120, exp)},
			want: StrategyCustom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectStrategy(tt.legs); got != tt.want {
				t.Fatalf("DetectStrategy() = %q, want %q", got, tt.want)
			}
		})
	}
}
