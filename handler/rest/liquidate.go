package rest

import (
	"net/http"

	"synthd/core"
	"synthd/handler/param"
	"synthd/handler/render"

	"github.com/shopspring/decimal"
)

// cover part of an unhealthy target's debt in exchange for discounted
// collateral
func liquidateHandler(engine core.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Liquidator  string `json:"liquidator"`
			Target      string `json:"target"`
			Asset       string `json:"asset"`
			DebtToCover string `json:"debt_to_cover"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		debtToCover, err := parseAmount(params.DebtToCover)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		seized, err := engine.Liquidate(ctx, params.Liquidator, params.Target, params.Asset, debtToCover)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{
			"status": "ok",
			"seized": decimal.NewFromBigInt(seized, -18),
		})
	}
}
