package core

import (
	"context"
	"math/big"
)

// Engine orchestrates deposit, mint, redeem, burn and liquidate. Every
// operation is atomic: either all ledger changes and asset movements commit,
// or the whole operation rolls back.
type Engine interface {
	// DepositCollateral pulls amount of asset from the account into custody
	// and credits the ledger.
	DepositCollateral(ctx context.Context, account, asset string, amount *big.Int) error
	// MintDebt issues amount of the pegged token against the account's
	// collateral. Fails with ErrBreaksHealthFactor if the resulting position
	// would be under-collateralized.
	MintDebt(ctx context.Context, account string, amount *big.Int) error
	// RedeemCollateral returns amount of asset from custody to the account,
	// subject to the health factor gate.
	RedeemCollateral(ctx context.Context, account, asset string, amount *big.Int) error
	// BurnDebt retires amount of the account's debt, pulling the tokens from
	// the account itself.
	BurnDebt(ctx context.Context, account string, amount *big.Int) error

	// DepositAndMint composes DepositCollateral and MintDebt under one
	// atomic boundary.
	DepositAndMint(ctx context.Context, account, asset string, collateralAmount, debtAmount *big.Int) error
	// RedeemCollateralForDebt composes BurnDebt and RedeemCollateral under
	// one atomic boundary.
	RedeemCollateralForDebt(ctx context.Context, account, asset string, collateralAmount, debtAmount *big.Int) error

	// Liquidate covers debtToCover of the target's debt with the
	// liquidator's tokens and pays the liquidator the equivalent collateral
	// plus bonus. Returns the seized collateral amount.
	Liquidate(ctx context.Context, liquidator, target, asset string, debtToCover *big.Int) (*big.Int, error)

	// HealthFactor is the read-only solvency query for one account.
	HealthFactor(ctx context.Context, account string) (*big.Int, error)
}
