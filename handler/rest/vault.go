package rest

import (
	"net/http"

	"synthd/core"
	"synthd/handler/param"
	"synthd/handler/render"
)

// deposit collateral, optionally minting debt in the same operation
func depositHandler(engine core.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Account string `json:"account"`
			Asset   string `json:"asset"`
			Amount  string `json:"amount"`
			Mint    string `json:"mint"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount, err := parseAmount(params.Amount)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Mint != "" {
			debtAmount, err := parseAmount(params.Mint)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			if err := engine.DepositAndMint(ctx, params.Account, params.Asset, amount, debtAmount); err != nil {
				render.BadRequest(w, err)
				return
			}
		} else if err := engine.DepositCollateral(ctx, params.Account, params.Asset, amount); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"status": "ok"})
	}
}

// redeem collateral, optionally burning debt in the same operation
func redeemHandler(engine core.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Account string `json:"account"`
			Asset   string `json:"asset"`
			Amount  string `json:"amount"`
			Burn    string `json:"burn"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount, err := parseAmount(params.Amount)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Burn != "" {
			debtAmount, err := parseAmount(params.Burn)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			if err := engine.RedeemCollateralForDebt(ctx, params.Account, params.Asset, amount, debtAmount); err != nil {
				render.BadRequest(w, err)
				return
			}
		} else if err := engine.RedeemCollateral(ctx, params.Account, params.Asset, amount); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"status": "ok"})
	}
}
