package core

import (
	"context"
	"math/big"

	"github.com/fox-one/pkg/store/db"
)

// Custody is the account id under which the engine holds pulled collateral
// and in-flight pegged tokens.
const Custody = "synthd.custody"

// PeggedToken is the synthetic dollar's mint/burn/transfer capability. The
// engine is the sole mint/burn authority. Implementations join the engine's
// transaction so a failure rolls the whole operation back.
type PeggedToken interface {
	Mint(ctx context.Context, tx *db.DB, to string, amount *big.Int) error
	// Burn destroys tokens held in engine custody.
	Burn(ctx context.Context, tx *db.DB, amount *big.Int) error
	TransferFrom(ctx context.Context, tx *db.DB, from, to string, amount *big.Int) error
}

// CollateralBank moves collateral between external holders and engine
// custody.
type CollateralBank interface {
	// Pull moves amount of asset from the holder into custody.
	Pull(ctx context.Context, tx *db.DB, asset, from string, amount *big.Int) error
	// Push moves amount of asset out of custody to the recipient.
	Push(ctx context.Context, tx *db.DB, asset, to string, amount *big.Int) error
}
