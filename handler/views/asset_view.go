package views

import (
	"time"

	"synthd/core"

	"github.com/shopspring/decimal"
)

// AssetView one registered collateral asset with its latest oracle reading
type AssetView struct {
	AssetID   string          `json:"asset_id"`
	Feed      string          `json:"feed"`
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// NewAssetView asset view; price stays zero when no reading exists yet
func NewAssetView(asset *core.CollateralAsset, price *core.Price) AssetView {
	view := AssetView{
		AssetID: asset.AssetID,
		Feed:    asset.Feed,
	}

	if price != nil && price.ID > 0 {
		view.Price = price.Price
		view.UpdatedAt = price.UpdatedAt
	}

	return view
}
