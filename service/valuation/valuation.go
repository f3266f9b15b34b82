package valuation

import (
	"context"
	"math/big"

	"synthd/core"
	"synthd/internal/synth"
)

type valuationService struct {
	registry *core.Registry
	vaults   core.VaultStore
	oracle   core.OracleService
}

// New new valuation service
func New(registry *core.Registry, vaults core.VaultStore, oracle core.OracleService) core.ValuationService {
	return &valuationService{
		registry: registry,
		vaults:   vaults,
		oracle:   oracle,
	}
}

func (s *valuationService) UsdValue(ctx context.Context, assetID string, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() == 0 {
		return big.NewInt(0), nil
	}

	price, _, err := s.oracle.Price(ctx, assetID)
	if err != nil {
		return nil, err
	}

	return synth.UsdValue(price, amount), nil
}

func (s *valuationService) TokenAmountForUsd(ctx context.Context, assetID string, usd *big.Int) (*big.Int, error) {
	if usd == nil || usd.Sign() == 0 {
		return big.NewInt(0), nil
	}

	price, _, err := s.oracle.Price(ctx, assetID)
	if err != nil {
		return nil, err
	}

	return synth.TokenAmountForUsd(price, usd), nil
}

// AccountCollateralValue sums the USD value of every registered asset the
// account holds. A stale price on any held asset aborts the whole valuation.
func (s *valuationService) AccountCollateralValue(ctx context.Context, account string) (*big.Int, error) {
	collaterals, err := s.vaults.ListCollaterals(ctx, account)
	if err != nil {
		return nil, err
	}

	total := big.NewInt(0)
	for _, collateral := range collaterals {
		if _, ok := s.registry.Find(collateral.AssetID); !ok {
			continue
		}

		if collateral.Amount.Sign() == 0 {
			continue
		}

		value, err := s.UsdValue(ctx, collateral.AssetID, collateral.Amount.Int())
		if err != nil {
			return nil, err
		}

		total.Add(total, value)
	}

	return total, nil
}
