package rest

import (
	"errors"
	"math/big"
	"net/http"

	"synthd/core"
	"synthd/handler/render"
	"synthd/pkg/number"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

// Handle handle rest api request
func Handle(
	registry *core.Registry,
	engine core.Engine,
	vaults core.VaultStore,
	valuation core.ValuationService,
	healths core.HealthStore,
	events core.EventStore,
	prices core.PriceStore,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/assets", assetsHandler(registry, prices))
	router.Get("/params", paramsHandler())
	router.Get("/convert", convertHandler(valuation))
	router.Get("/events", eventsHandler(events))
	router.Get("/accounts/{account}", accountHandler(engine, vaults, valuation))
	router.Get("/accounts/{account}/risk", riskHandler(engine, vaults, valuation, healths))

	router.Post("/deposits", depositHandler(engine))
	router.Post("/redemptions", redeemHandler(engine))
	router.Post("/mints", mintHandler(engine))
	router.Post("/burns", burnHandler(engine))
	router.Post("/liquidations", liquidateHandler(engine))

	return router
}

// amounts travel as human-readable decimal strings and convert to 18-decimal
// fixed point at the boundary
func parseAmount(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, core.ErrInvalidAmount
	}

	return number.FromDecimal(d).Int(), nil
}
