package rest

import (
	"net/http"

	"synthd/core"
	"synthd/handler/render"
	"synthd/handler/views"
)

// response registered collateral assets with their latest oracle readings
func assetsHandler(registry *core.Registry, prices core.PriceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rows, err := prices.All(ctx)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		byAsset := make(map[string]*core.Price, len(rows))
		for _, row := range rows {
			byAsset[row.AssetID] = row
		}

		assets := registry.Assets()
		items := make([]views.AssetView, 0, len(assets))
		for _, asset := range assets {
			items = append(items, views.NewAssetView(asset, byAsset[asset.AssetID]))
		}

		render.JSON(w, items)
	}
}
