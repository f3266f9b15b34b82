package rest

import (
	"net/http"
	"time"

	"synthd/core"
	"synthd/handler/param"
	"synthd/handler/render"
	"synthd/handler/views"
	"synthd/internal/synth"
	"synthd/pkg/number"
)

// response full account state: collateral lines, debt and solvency numbers
func accountHandler(engine core.Engine, vaults core.VaultStore, valuation core.ValuationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		account := param.String(r, "account")

		collaterals, err := vaults.ListCollaterals(ctx, account)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		debt, err := vaults.FindDebt(ctx, account)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		collateralValue, err := valuation.AccountCollateralValue(ctx, account)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		healthFactor, err := engine.HealthFactor(ctx, account)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, views.NewAccountView(account, collaterals, debt.Amount.Int(), collateralValue, healthFactor))
	}
}

// response the cached risk snapshot, computed live when the sentinel has not
// visited the account yet
func riskHandler(engine core.Engine, vaults core.VaultStore, valuation core.ValuationService, healths core.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		account := param.String(r, "account")

		snapshot, err := healths.Find(ctx, account)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if snapshot == nil {
			debt, err := vaults.FindDebt(ctx, account)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			collateralValue, err := valuation.AccountCollateralValue(ctx, account)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			snapshot = &core.RiskSnapshot{
				AccountID:       account,
				Debt:            debt.Amount,
				CollateralValue: number.FromInt(collateralValue),
				HealthFactor:    number.FromInt(synth.HealthFactor(debt.Amount.Int(), collateralValue)),
				CalculatedAt:    time.Now(),
			}
		}

		render.JSON(w, views.NewRiskView(snapshot))
	}
}
