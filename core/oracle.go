package core

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Price is the latest polled oracle reading for one asset, stored as an
// 8-decimal quote.
type Price struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string          `sql:"size:64;unique_index:idx_prices_asset" json:"asset_id"`
	Feed      string          `sql:"size:64" json:"feed"`
	Price     decimal.Decimal `sql:"type:decimal(24,8)" json:"price"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// PriceTicker is one quote from the upstream price endpoint.
type PriceTicker struct {
	Provider string          `json:"provider,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Price    decimal.Decimal `json:"price,omitempty"`
}

// PriceStore persists the latest reading per asset.
type PriceStore interface {
	Save(ctx context.Context, price *Price) error
	Find(ctx context.Context, assetID string) (*Price, error)
	All(ctx context.Context) ([]*Price, error)
}

// OracleService reads the latest price for an asset as an 8-decimal
// fixed-point integer. Readings older than the configured staleness window
// fail with ErrStalePrice; non-positive readings fail with ErrInvalidPrice.
type OracleService interface {
	Price(ctx context.Context, assetID string) (*big.Int, time.Time, error)
}

// ValuationService converts between token amounts and 18-decimal USD values
// using staleness-checked oracle prices.
type ValuationService interface {
	UsdValue(ctx context.Context, assetID string, amount *big.Int) (*big.Int, error)
	TokenAmountForUsd(ctx context.Context, assetID string, usd *big.Int) (*big.Int, error)
	AccountCollateralValue(ctx context.Context, account string) (*big.Int, error)
}
