package core

import (
	"context"
	"time"

	"synthd/pkg/number"
)

// RiskSnapshot is a cached view of one account's solvency, refreshed by the
// sentinel worker.
type RiskSnapshot struct {
	AccountID       string     `json:"account_id"`
	Debt            number.Big `json:"debt"`
	CollateralValue number.Big `json:"collateral_value"`
	HealthFactor    number.Big `json:"health_factor"`
	CalculatedAt    time.Time  `json:"calculated_at"`
}

// Liquidatable reports whether the snapshot sits below the minimum health
// factor.
func (s *RiskSnapshot) Liquidatable(min number.Big) bool {
	return s.Debt.Sign() > 0 && s.HealthFactor.Int().Cmp(min.Int()) < 0
}

// HealthStore caches risk snapshots for the read surface and the sentinel.
type HealthStore interface {
	Save(ctx context.Context, snapshot *RiskSnapshot) error
	Find(ctx context.Context, account string) (*RiskSnapshot, error)
}
