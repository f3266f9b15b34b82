package rest

import (
	"net/http"

	"synthd/core"
	"synthd/handler/param"
	"synthd/handler/render"
)

func mintHandler(engine core.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Account string `json:"account"`
			Amount  string `json:"amount"`
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

		if err := engine.MintDebt(ctx, params.Account, amount); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"status": "ok"})
	}
}

func burnHandler(engine core.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Account string `json:"account"`
			Amount  string `json:"amount"`
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

		if err := engine.BurnDebt(ctx, params.Account, amount); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"status": "ok"})
	}
}
