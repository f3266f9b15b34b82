package rest

import (
	"net/http"

	"synthd/core"
	"synthd/handler/param"
	"synthd/handler/render"
	"synthd/internal/synth"

	"github.com/shopspring/decimal"
)

// response the tunable risk parameters
func paramsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, render.H{
			"liquidation_threshold": synth.LiquidationThreshold,
			"liquidation_precision": synth.LiquidationPrecision,
			"liquidation_bonus":     synth.LiquidationBonus,
			"min_health_factor":     decimal.NewFromBigInt(synth.MinHealthFactor, -18),
		})
	}
}

// convert between a token amount and its USD value at the current oracle
// price, in either direction
func convertHandler(valuation core.ValuationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Asset  string `json:"asset"`
			Amount string `json:"amount"`
			Usd    string `json:"usd"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		switch {
		case params.Amount != "":
			amount, err := parseAmount(params.Amount)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			value, err := valuation.UsdValue(ctx, params.Asset, amount)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			render.JSON(w, render.H{"usd": decimal.NewFromBigInt(value, -18)})
		case params.Usd != "":
			usd, err := parseAmount(params.Usd)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			amount, err := valuation.TokenAmountForUsd(ctx, params.Asset, usd)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			render.JSON(w, render.H{"amount": decimal.NewFromBigInt(amount, -18)})
		default:
			render.BadRequest(w, core.ErrInvalidAmount)
		}
	}
}
