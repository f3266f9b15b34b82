package valuation

import (
	"context"
	"math/big"
	"testing"
	"time"

	"synthd/core"
	"synthd/internal/synth"
	"synthd/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOracle struct {
	prices map[string]*big.Int
}

func (o *fakeOracle) Price(ctx context.Context, assetID string) (*big.Int, time.Time, error) {
	price, ok := o.prices[assetID]
	if !ok {
		return nil, time.Time{}, core.ErrStalePrice
	}
	return new(big.Int).Set(price), time.Now(), nil
}

type fakeVault struct {
	collaterals []*core.Collateral
}

func (v *fakeVault) IncreaseCollateral(ctx context.Context, tx *db.DB, account, asset string, amount *big.Int) error {
	return nil
}
func (v *fakeVault) DecreaseCollateral(ctx context.Context, tx *db.DB, account, asset string, amount *big.Int) error {
	return nil
}
func (v *fakeVault) IncreaseDebt(ctx context.Context, tx *db.DB, account string, amount *big.Int) error {
	return nil
}
func (v *fakeVault) DecreaseDebt(ctx context.Context, tx *db.DB, account string, amount *big.Int) error {
	return nil
}
func (v *fakeVault) FindCollateral(ctx context.Context, account, asset string) (*core.Collateral, error) {
	return &core.Collateral{}, nil
}
func (v *fakeVault) ListCollaterals(ctx context.Context, account string) ([]*core.Collateral, error) {
	return v.collaterals, nil
}
func (v *fakeVault) FindDebt(ctx context.Context, account string) (*core.Debt, error) {
	return &core.Debt{}, nil
}
func (v *fakeVault) Debtors(ctx context.Context) ([]string, error) {
	return nil, nil
}

func fixed(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), synth.Precision)
}

func testService(t *testing.T, vault *fakeVault) core.ValuationService {
	registry, err := core.NewRegistry([]string{"weth", "wbtc"}, []string{"ETHUSD", "BTCUSD"})
	require.Nil(t, err)

	oracle := &fakeOracle{prices: map[string]*big.Int{
		"weth": number.MustBig("200000000000"), // $2000
	}}

	return New(registry, vault, oracle)
}

func TestUsdValue(t *testing.T) {
	ctx := context.Background()
	srv := testService(t, &fakeVault{})

	// 15 weth at $2000 -> $30000
	value, err := srv.UsdValue(ctx, "weth", fixed(15))
	require.Nil(t, err)
	assert.Equal(t, fixed(30000).String(), value.String())

	value, err = srv.UsdValue(ctx, "weth", big.NewInt(0))
	require.Nil(t, err)
	assert.Equal(t, "0", value.String())

	_, err = srv.UsdValue(ctx, "wbtc", fixed(1))
	assert.Equal(t, core.ErrStalePrice, err)
}

func TestTokenAmountForUsd(t *testing.T) {
	ctx := context.Background()
	srv := testService(t, &fakeVault{})

	// $100 at $2000 -> 0.05 weth
	amount, err := srv.TokenAmountForUsd(ctx, "weth", fixed(100))
	require.Nil(t, err)
	assert.Equal(t, number.MustBig("50000000000000000").String(), amount.String())
}

func TestAccountCollateralValue(t *testing.T) {
	ctx := context.Background()

	vault := &fakeVault{collaterals: []*core.Collateral{
		{AccountID: "alice", AssetID: "weth", Amount: number.FromInt(fixed(5))},
		{AccountID: "alice", AssetID: "doge", Amount: number.FromInt(fixed(1000))}, // unregistered, skipped
		{AccountID: "alice", AssetID: "wbtc", Amount: number.FromInt(big.NewInt(0))},
	}}

	srv := testService(t, vault)

	value, err := srv.AccountCollateralValue(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, fixed(10000).String(), value.String())
}

func TestAccountCollateralValueStaleAborts(t *testing.T) {
	ctx := context.Background()

	vault := &fakeVault{collaterals: []*core.Collateral{
		{AccountID: "alice", AssetID: "weth", Amount: number.FromInt(fixed(5))},
		{AccountID: "alice", AssetID: "wbtc", Amount: number.FromInt(fixed(1))}, // no price
	}}

	srv := testService(t, vault)

	_, err := srv.AccountCollateralValue(ctx, "alice")
	assert.Equal(t, core.ErrStalePrice, err)
}
