package engine

import (
	"context"
	"math/big"
	"testing"
	"time"

	"synthd/core"
	"synthd/internal/synth"
	"synthd/pkg/number"
	"synthd/service/valuation"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

// ledgerState mimics transaction semantics: mutations land on a working copy
// that reads do not observe until commit, and a failed operation discards it.
type ledgerState struct {
	collateral map[string]*big.Int // account/asset
	debt       map[string]*big.Int // account
	balances   map[string]*big.Int // holder/asset, external token ledger
	events     []*core.Event
}

func newLedgerState() *ledgerState {
	return &ledgerState{
		collateral: map[string]*big.Int{},
		debt:       map[string]*big.Int{},
		balances:   map[string]*big.Int{},
	}
}

func (s *ledgerState) clone() *ledgerState {
	next := newLedgerState()
	for k, v := range s.collateral {
		next.collateral[k] = new(big.Int).Set(v)
	}
	for k, v := range s.debt {
		next.debt[k] = new(big.Int).Set(v)
	}
	for k, v := range s.balances {
		next.balances[k] = new(big.Int).Set(v)
	}
	next.events = append(next.events, s.events...)
	return next
}

type world struct {
	committed *ledgerState
	work      *ledgerState
}

func newWorld() *world {
	return &world{committed: newLedgerState()}
}

func (w *world) runTx(fn func(tx *db.DB) error) error {
	w.work = w.committed.clone()
	err := fn(nil)
	if err == nil {
		w.committed = w.work
	}
	w.work = nil
	return err
}

func (w *world) state() *ledgerState {
	if w.work != nil {
		return w.work
	}
	return w.committed
}

func key(a, b string) string { return a + "/" + b }

func (w *world) balance(holder, asset string) *big.Int {
	if v, ok := w.committed.balances[key(holder, asset)]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

func (w *world) fund(holder, asset string, amount *big.Int) {
	w.committed.balances[key(holder, asset)] = new(big.Int).Set(amount)
}

type memVault struct {
	w *world
}

func (v *memVault) IncreaseCollateral(ctx context.Context, tx *db.DB, account, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}
	s := v.w.state()
	k := key(account, asset)
	cur, ok := s.collateral[k]
	if !ok {
		cur = big.NewInt(0)
	}
	s.collateral[k] = new(big.Int).Add(cur, amount)
	return nil
}

func (v *memVault) DecreaseCollateral(ctx context.Context, tx *db.DB, account, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}
	s := v.w.state()
	k := key(account, asset)
	cur, ok := s.collateral[k]
	if !ok {
		cur = big.NewInt(0)
	}
	next := new(big.Int).Sub(cur, amount)
	if next.Sign() < 0 {
		return core.ErrInsufficientCollateral
	}
	s.collateral[k] = next
	return nil
}

func (v *memVault) IncreaseDebt(ctx context.Context, tx *db.DB, account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}
	s := v.w.state()
	cur, ok := s.debt[account]
	if !ok {
		cur = big.NewInt(0)
	}
	s.debt[account] = new(big.Int).Add(cur, amount)
	return nil
}

func (v *memVault) DecreaseDebt(ctx context.Context, tx *db.DB, account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}
	s := v.w.state()
	cur, ok := s.debt[account]
	if !ok {
		cur = big.NewInt(0)
	}
	next := new(big.Int).Sub(cur, amount)
	if next.Sign() < 0 {
		return core.ErrInsufficientDebt
	}
	s.debt[account] = next
	return nil
}

func (v *memVault) FindCollateral(ctx context.Context, account, asset string) (*core.Collateral, error) {
	amount, ok := v.w.committed.collateral[key(account, asset)]
	if !ok {
		amount = big.NewInt(0)
	}
	return &core.Collateral{AccountID: account, AssetID: asset, Amount: number.FromInt(amount)}, nil
}

func (v *memVault) ListCollaterals(ctx context.Context, account string) ([]*core.Collateral, error) {
	var out []*core.Collateral
	for _, asset := range []string{"weth", "wbtc"} {
		if amount, ok := v.w.committed.collateral[key(account, asset)]; ok {
			out = append(out, &core.Collateral{AccountID: account, AssetID: asset, Amount: number.FromInt(amount)})
		}
	}
	return out, nil
}

func (v *memVault) FindDebt(ctx context.Context, account string) (*core.Debt, error) {
	amount, ok := v.w.committed.debt[account]
	if !ok {
		amount = big.NewInt(0)
	}
	return &core.Debt{AccountID: account, Amount: number.FromInt(amount)}, nil
}

func (v *memVault) Debtors(ctx context.Context) ([]string, error) {
	var out []string
	for account, amount := range v.w.committed.debt {
		if amount.Sign() > 0 {
			out = append(out, account)
		}
	}
	return out, nil
}

const peggedAsset = "syn"

type memToken struct {
	w *world
}

func (t *memToken) credit(holder, asset string, amount *big.Int) {
	s := t.w.state()
	k := key(holder, asset)
	cur, ok := s.balances[k]
	if !ok {
		cur = big.NewInt(0)
	}
	s.balances[k] = new(big.Int).Add(cur, amount)
}

func (t *memToken) debit(holder, asset string, amount *big.Int) error {
	s := t.w.state()
	k := key(holder, asset)
	cur, ok := s.balances[k]
	if !ok {
		cur = big.NewInt(0)
	}
	next := new(big.Int).Sub(cur, amount)
	if next.Sign() < 0 {
		return core.ErrTransferFailed
	}
	s.balances[k] = next
	return nil
}

func (t *memToken) Mint(ctx context.Context, tx *db.DB, to string, amount *big.Int) error {
	t.credit(to, peggedAsset, amount)
	return nil
}

func (t *memToken) Burn(ctx context.Context, tx *db.DB, amount *big.Int) error {
	if err := t.debit(core.Custody, peggedAsset, amount); err != nil {
		return core.ErrBurnFailed
	}
	return nil
}

func (t *memToken) TransferFrom(ctx context.Context, tx *db.DB, from, to string, amount *big.Int) error {
	if err := t.debit(from, peggedAsset, amount); err != nil {
		return err
	}
	t.credit(to, peggedAsset, amount)
	return nil
}

func (t *memToken) Pull(ctx context.Context, tx *db.DB, asset, from string, amount *big.Int) error {
	if err := t.debit(from, asset, amount); err != nil {
		return err
	}
	t.credit(core.Custody, asset, amount)
	return nil
}

func (t *memToken) Push(ctx context.Context, tx *db.DB, asset, to string, amount *big.Int) error {
	if err := t.debit(core.Custody, asset, amount); err != nil {
		return err
	}
	t.credit(to, asset, amount)
	return nil
}

type memEvents struct {
	w *world
}

func (e *memEvents) Create(ctx context.Context, tx *db.DB, event *core.Event) error {
	s := e.w.state()
	s.events = append(s.events, event)
	return nil
}

func (e *memEvents) List(ctx context.Context, fromID uint64, limit int) ([]*core.Event, error) {
	return e.w.committed.events, nil
}

type memOracle struct {
	prices map[string]*big.Int
}

func (o *memOracle) Price(ctx context.Context, assetID string) (*big.Int, time.Time, error) {
	price, ok := o.prices[assetID]
	if !ok {
		return nil, time.Time{}, core.ErrStalePrice
	}
	return new(big.Int).Set(price), time.Now(), nil
}

type harness struct {
	world  *world
	oracle *memOracle
	engine *engineService
}

func newHarness(t *testing.T) *harness {
	registry, err := core.NewRegistry([]string{"weth", "wbtc"}, []string{"ETHUSD", "BTCUSD"})
	require.Nil(t, err)

	w := newWorld()
	oracle := &memOracle{prices: map[string]*big.Int{
		"weth": number.MustBig("200000000000"), // $2000
		"wbtc": number.MustBig("3000000000000"), // $30000
	}}

	vaults := &memVault{w: w}
	token := &memToken{w: w}

	eng := &engineService{
		registry:  registry,
		vaults:    vaults,
		events:    &memEvents{w: w},
		token:     token,
		bank:      token,
		valuation: valuation.New(registry, vaults, oracle),
		guard:     semaphore.NewWeighted(1),
		tx:        w.runTx,
	}

	return &harness{world: w, oracle: oracle, engine: eng}
}

func fixed(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), synth.Precision)
}

func TestDepositRedeemRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(15))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(15)))
	assert.Equal(t, "0", h.world.balance("alice", "weth").String())
	assert.Equal(t, fixed(15).String(), h.world.balance(core.Custody, "weth").String())

	hf, err := h.engine.HealthFactor(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, synth.MaxHealthFactor.String(), hf.String())

	require.Nil(t, h.engine.RedeemCollateral(ctx, "alice", "weth", fixed(15)))
	assert.Equal(t, fixed(15).String(), h.world.balance("alice", "weth").String())
	assert.Equal(t, "0", h.world.balance(core.Custody, "weth").String())
	assert.Equal(t, "0", h.world.committed.collateral[key("alice", "weth")].String())

	events := h.world.committed.events
	require.Len(t, events, 2)
	assert.Equal(t, core.EventCollateralDeposited, events[0].Type)
	assert.Equal(t, core.EventCollateralRedeemed, events[1].Type)
	assert.Equal(t, "alice", events[1].FromID)
	assert.Equal(t, "alice", events[1].ToID)
}

func TestDepositValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	assert.Equal(t, core.ErrInvalidAmount, h.engine.DepositCollateral(ctx, "alice", "weth", big.NewInt(0)))
	assert.Equal(t, core.ErrInvalidAmount, h.engine.DepositCollateral(ctx, "alice", "weth", nil))
	assert.Equal(t, core.ErrInvalidAmount, h.engine.DepositCollateral(ctx, "alice", "weth", big.NewInt(-5)))
	assert.Equal(t, core.ErrAssetNotListed, h.engine.DepositCollateral(ctx, "alice", "doge", fixed(1)))
}

func TestDepositTransferFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	// alice holds nothing, the pull must fail

	err := h.engine.DepositCollateral(ctx, "alice", "weth", fixed(1))
	assert.Equal(t, core.ErrTransferFailed, err)
	_, ok := h.world.committed.collateral[key("alice", "weth")]
	assert.False(t, ok, "ledger credit must roll back with the failed pull")
}

func TestMintDebt(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))
	require.Nil(t, h.engine.MintDebt(ctx, "alice", fixed(2000)))

	// $10000 collateral at 50% threshold against 2000 debt
	hf, err := h.engine.HealthFactor(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, "2500000000000000000", hf.String())

	assert.Equal(t, fixed(2000).String(), h.world.balance("alice", peggedAsset).String())
}

func TestMintDebtBreaksHealthFactor(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))

	// 11000 against $10000 of collateral can never be healthy
	err := h.engine.MintDebt(ctx, "alice", fixed(11000))
	assert.Equal(t, core.ErrBreaksHealthFactor, err)

	debt, ok := h.world.committed.debt["alice"]
	if ok {
		assert.Equal(t, "0", debt.String())
	}
	assert.Equal(t, "0", h.world.balance("alice", peggedAsset).String())
}

func TestPriceCrashMakesLiquidatable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))
	require.Nil(t, h.engine.MintDebt(ctx, "alice", fixed(2000)))

	h.oracle.prices["weth"] = number.MustBig("79900000000") // $799

	hf, err := h.engine.HealthFactor(ctx, "alice")
	require.Nil(t, err)
	assert.True(t, hf.Cmp(synth.MinHealthFactor) < 0)
}

func TestBurnDebt(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))
	require.Nil(t, h.engine.MintDebt(ctx, "alice", fixed(2000)))
	require.Nil(t, h.engine.BurnDebt(ctx, "alice", fixed(500)))

	assert.Equal(t, fixed(1500).String(), h.world.committed.debt["alice"].String())
	assert.Equal(t, fixed(1500).String(), h.world.balance("alice", peggedAsset).String())
	// burned, not parked in custody
	assert.Equal(t, "0", h.world.balance(core.Custody, peggedAsset).String())

	assert.Equal(t, core.ErrInsufficientDebt, h.engine.BurnDebt(ctx, "alice", fixed(5000)))
}

func TestRedeemCollateralBreaksHealthFactor(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))
	require.Nil(t, h.engine.MintDebt(ctx, "alice", fixed(2000)))

	err := h.engine.RedeemCollateral(ctx, "alice", "weth", fixed(4))
	assert.Equal(t, core.ErrBreaksHealthFactor, err)

	assert.Equal(t, fixed(5).String(), h.world.committed.collateral[key("alice", "weth")].String())
	assert.Equal(t, "0", h.world.balance("alice", "weth").String())
}

func TestRedeemCollateralForDebt(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))
	require.Nil(t, h.engine.MintDebt(ctx, "alice", fixed(2000)))

	require.Nil(t, h.engine.RedeemCollateralForDebt(ctx, "alice", "weth", fixed(1), fixed(500)))

	assert.Equal(t, fixed(4).String(), h.world.committed.collateral[key("alice", "weth")].String())
	assert.Equal(t, fixed(1500).String(), h.world.committed.debt["alice"].String())
	assert.Equal(t, fixed(1).String(), h.world.balance("alice", "weth").String())
	assert.Equal(t, fixed(1500).String(), h.world.balance("alice", peggedAsset).String())
}

func TestDepositAndMint(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("carol", "weth", fixed(5))

	require.Nil(t, h.engine.DepositAndMint(ctx, "carol", "weth", fixed(5), fixed(2000)))

	assert.Equal(t, fixed(5).String(), h.world.committed.collateral[key("carol", "weth")].String())
	assert.Equal(t, fixed(2000).String(), h.world.committed.debt["carol"].String())

	// second step failing must undo the first
	h.world.fund("dave", "weth", fixed(5))
	err := h.engine.DepositAndMint(ctx, "dave", "weth", fixed(5), fixed(11000))
	assert.Equal(t, core.ErrBreaksHealthFactor, err)
	_, ok := h.world.committed.collateral[key("dave", "weth")]
	assert.False(t, ok)
	assert.Equal(t, fixed(5).String(), h.world.balance("dave", "weth").String())
}

func TestLiquidateHealthyTarget(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))
	require.Nil(t, h.engine.MintDebt(ctx, "alice", fixed(2000)))

	_, err := h.engine.Liquidate(ctx, "bob", "alice", "weth", fixed(1000))
	assert.Equal(t, core.ErrHealthFactorOk, err)
}

func TestLiquidate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))
	h.world.fund("bob", peggedAsset, fixed(1000))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))
	require.Nil(t, h.engine.MintDebt(ctx, "alice", fixed(2000)))

	h.oracle.prices["weth"] = number.MustBig("79900000000") // $799, hf 0.99875

	seized, err := h.engine.Liquidate(ctx, "bob", "alice", "weth", fixed(1000))
	require.Nil(t, err)

	// 1000/799 weth plus 10% bonus, truncating division
	assert.Equal(t, "1376720901126408009", seized.String())

	assert.Equal(t, seized.String(), h.world.balance("bob", "weth").String())
	assert.Equal(t, "0", h.world.balance("bob", peggedAsset).String())
	assert.Equal(t, fixed(1000).String(), h.world.committed.debt["alice"].String())

	left := new(big.Int).Sub(fixed(5), seized)
	assert.Equal(t, left.String(), h.world.committed.collateral[key("alice", "weth")].String())

	// target strictly healthier than before
	hf, err := h.engine.HealthFactor(ctx, "alice")
	require.Nil(t, err)
	assert.True(t, hf.Cmp(number.MustBig("998750000000000000")) > 0)
}

func TestLiquidateNotImproved(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))
	h.world.fund("bob", peggedAsset, fixed(2000))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))
	require.Nil(t, h.engine.MintDebt(ctx, "alice", fixed(2000)))

	// collateral value at 105% of debt: seizing at a 110% clip digs the hole
	// deeper instead of de-risking the target
	h.oracle.prices["weth"] = number.MustBig("42000000000") // $420

	_, err := h.engine.Liquidate(ctx, "bob", "alice", "weth", fixed(500))
	assert.Equal(t, core.ErrHealthFactorNotImproved, err)

	// full rollback including the already-applied seizure and burn
	assert.Equal(t, fixed(5).String(), h.world.committed.collateral[key("alice", "weth")].String())
	assert.Equal(t, fixed(2000).String(), h.world.committed.debt["alice"].String())
	assert.Equal(t, fixed(2000).String(), h.world.balance("bob", peggedAsset).String())
	assert.Equal(t, "0", h.world.balance("bob", "weth").String())
}

func TestLiquidateInsufficientCollateral(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))
	h.world.fund("bob", peggedAsset, fixed(2000))

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))
	require.Nil(t, h.engine.MintDebt(ctx, "alice", fixed(2000)))

	// collateral worth $1500 against 2000 debt: seize+bonus for full cover
	// exceeds what the target holds. Documented boundary: no liquidation can
	// restore solvency below 100% collateralization.
	h.oracle.prices["weth"] = number.MustBig("30000000000") // $300

	_, err := h.engine.Liquidate(ctx, "bob", "alice", "weth", fixed(2000))
	assert.Equal(t, core.ErrInsufficientCollateral, err)

	assert.Equal(t, fixed(5).String(), h.world.committed.collateral[key("alice", "weth")].String())
	assert.Equal(t, fixed(2000).String(), h.world.committed.debt["alice"].String())
}

type reentrantBank struct {
	*memToken
	engine core.Engine
	err    error
}

func (b *reentrantBank) Pull(ctx context.Context, tx *db.DB, asset, from string, amount *big.Int) error {
	b.err = b.engine.MintDebt(ctx, from, amount)
	return b.memToken.Pull(ctx, tx, asset, from, amount)
}

func TestReentrancyGuard(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.world.fund("alice", "weth", fixed(5))

	bank := &reentrantBank{memToken: &memToken{w: h.world}, engine: h.engine}
	h.engine.bank = bank

	require.Nil(t, h.engine.DepositCollateral(ctx, "alice", "weth", fixed(5)))
	assert.Equal(t, core.ErrOperationInProgress, bank.err)
}
