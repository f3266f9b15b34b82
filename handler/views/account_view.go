package views

import (
	"math/big"
	"time"

	"synthd/core"
	"synthd/internal/synth"
	"synthd/pkg/number"

	"github.com/shopspring/decimal"
)

// CollateralView one deposited collateral line
type CollateralView struct {
	AssetID string          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// AccountView full account information: collateral lines, outstanding debt
// and the solvency numbers derived from them
type AccountView struct {
	AccountID       string           `json:"account_id"`
	Collaterals     []CollateralView `json:"collaterals"`
	Debt            decimal.Decimal  `json:"debt"`
	CollateralValue decimal.Decimal  `json:"collateral_value"`
	HealthFactor    decimal.Decimal  `json:"health_factor"`
	Liquidatable    bool             `json:"liquidatable"`
}

// NewAccountView assemble account view
func NewAccountView(account string, collaterals []*core.Collateral, debt, collateralValue, healthFactor *big.Int) AccountView {
	view := AccountView{
		AccountID:       account,
		Collaterals:     make([]CollateralView, 0, len(collaterals)),
		Debt:            decimal.NewFromBigInt(debt, -18),
		CollateralValue: decimal.NewFromBigInt(collateralValue, -18),
		HealthFactor:    decimal.NewFromBigInt(healthFactor, -18),
		Liquidatable:    debt.Sign() > 0 && !synth.Healthy(healthFactor),
	}

	for _, c := range collaterals {
		if c.Amount.Sign() == 0 {
			continue
		}
		view.Collaterals = append(view.Collaterals, CollateralView{
			AssetID: c.AssetID,
			Amount:  c.Amount.Decimal(),
		})
	}

	return view
}

// RiskView cached risk snapshot
type RiskView struct {
	AccountID       string          `json:"account_id"`
	Debt            decimal.Decimal `json:"debt"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	HealthFactor    decimal.Decimal `json:"health_factor"`
	Liquidatable    bool            `json:"liquidatable"`
	CalculatedAt    time.Time       `json:"calculated_at"`
}

// NewRiskView risk view from a sentinel snapshot
func NewRiskView(snapshot *core.RiskSnapshot) RiskView {
	return RiskView{
		AccountID:       snapshot.AccountID,
		Debt:            snapshot.Debt.Decimal(),
		CollateralValue: snapshot.CollateralValue.Decimal(),
		HealthFactor:    snapshot.HealthFactor.Decimal(),
		Liquidatable:    snapshot.Liquidatable(number.FromInt(synth.MinHealthFactor)),
		CalculatedAt:    snapshot.CalculatedAt,
	}
}
