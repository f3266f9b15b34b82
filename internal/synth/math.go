package synth

import (
	"math/big"

	"synthd/pkg/number"
)

// Tunable risk parameters. The threshold of 50/100 demands 200% nominal
// collateralization; the bonus pays liquidators 10% on top of the seized
// debt equivalent.
const (
	LiquidationThreshold = 50
	LiquidationPrecision = 100
	LiquidationBonus     = 10
)

var (
	// Precision is the 18-decimal fixed-point scale shared by all token and
	// USD amounts.
	Precision = number.MustBig("1000000000000000000")
	// FeedPrecision is the 8-decimal scale of oracle price feeds.
	FeedPrecision = number.MustBig("100000000")
	// AdditionalFeedPrecision lifts an 8-decimal feed price to 18 decimals.
	AdditionalFeedPrecision = number.MustBig("10000000000")
	// MinHealthFactor is 1.0 in fixed point; anything below is liquidatable.
	MinHealthFactor = number.MustBig("1000000000000000000")
	// MaxHealthFactor is returned for debt-free accounts.
	MaxHealthFactor = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	liquidationThreshold = big.NewInt(LiquidationThreshold)
	liquidationPrecision = big.NewInt(LiquidationPrecision)
	liquidationBonus     = big.NewInt(LiquidationBonus)
)

// UsdValue prices a token amount in USD at 18-decimal fixed point. price is
// an 8-decimal feed reading, amount an 18-decimal token amount.
//
//	value = price * 1e10 * amount / 1e18
func UsdValue(price, amount *big.Int) *big.Int {
	v := new(big.Int).Mul(price, AdditionalFeedPrecision)
	v.Mul(v, amount)
	return v.Quo(v, Precision)
}

// TokenAmountForUsd inverts UsdValue: how many tokens a USD amount buys at
// the given feed price. Truncating division, matching UsdValue.
//
//	amount = usd * 1e18 / (price * 1e10)
func TokenAmountForUsd(price, usd *big.Int) *big.Int {
	denom := new(big.Int).Mul(price, AdditionalFeedPrecision)
	v := new(big.Int).Mul(usd, Precision)
	return v.Quo(v, denom)
}

// HealthFactor reports how close an account is to liquidation. Debt-free
// accounts are infinitely healthy and get MaxHealthFactor.
func HealthFactor(debt, collateralValue *big.Int) *big.Int {
	if debt == nil || debt.Sign() == 0 {
		return new(big.Int).Set(MaxHealthFactor)
	}

	adjusted := new(big.Int).Mul(collateralValue, liquidationThreshold)
	adjusted.Quo(adjusted, liquidationPrecision)
	adjusted.Mul(adjusted, Precision)
	return adjusted.Quo(adjusted, debt)
}

// Healthy reports whether a health factor clears the minimum.
func Healthy(hf *big.Int) bool {
	return hf.Cmp(MinHealthFactor) >= 0
}

// SeizeBonus sizes the liquidator's reward for a given collateral seizure.
func SeizeBonus(seize *big.Int) *big.Int {
	bonus := new(big.Int).Mul(seize, liquidationBonus)
	return bonus.Quo(bonus, liquidationPrecision)
}
