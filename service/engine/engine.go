package engine

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"synthd/core"
	"synthd/internal/synth"
	"synthd/pkg/id"
	"synthd/pkg/number"

	"github.com/fatih/structs"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/semaphore"
)

type engineService struct {
	registry  *core.Registry
	vaults    core.VaultStore
	events    core.EventStore
	token     core.PeggedToken
	bank      core.CollateralBank
	valuation core.ValuationService

	// guard rejects re-entry while an operation is in flight; external calls
	// inside an operation must not be able to start a second one.
	guard *semaphore.Weighted
	// tx is the atomic boundary of one logical operation.
	tx func(fn func(tx *db.DB) error) error
}

// New new engine service
func New(
	database *db.DB,
	registry *core.Registry,
	vaults core.VaultStore,
	events core.EventStore,
	token core.PeggedToken,
	bank core.CollateralBank,
	valuation core.ValuationService,
) core.Engine {
	return &engineService{
		registry:  registry,
		vaults:    vaults,
		events:    events,
		token:     token,
		bank:      bank,
		valuation: valuation,
		guard:     semaphore.NewWeighted(1),
		tx:        database.Tx,
	}
}

func (s *engineService) DepositCollateral(ctx context.Context, account, asset string, amount *big.Int) error {
	if err := s.validate(asset, amount); err != nil {
		return err
	}

	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	return s.tx(func(tx *db.DB) error {
		return s.deposit(ctx, tx, account, asset, amount)
	})
}

func (s *engineService) MintDebt(ctx context.Context, account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}

	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	return s.tx(func(tx *db.DB) error {
		return s.mint(ctx, tx, account, amount, nil)
	})
}

func (s *engineService) RedeemCollateral(ctx context.Context, account, asset string, amount *big.Int) error {
	if err := s.validate(asset, amount); err != nil {
		return err
	}

	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	return s.tx(func(tx *db.DB) error {
		redeemedValue, err := s.valuation.UsdValue(ctx, asset, amount)
		if err != nil {
			return err
		}

		if err := s.redeem(ctx, tx, account, account, asset, amount); err != nil {
			return err
		}

		return s.checkHealth(ctx, account, nil, new(big.Int).Neg(redeemedValue))
	})
}

func (s *engineService) BurnDebt(ctx context.Context, account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}

	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	return s.tx(func(tx *db.DB) error {
		return s.burn(ctx, tx, account, account, amount)
	})
}

func (s *engineService) DepositAndMint(ctx context.Context, account, asset string, collateralAmount, debtAmount *big.Int) error {
	if err := s.validate(asset, collateralAmount); err != nil {
		return err
	}
	if debtAmount == nil || debtAmount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}

	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	return s.tx(func(tx *db.DB) error {
		if err := s.deposit(ctx, tx, account, asset, collateralAmount); err != nil {
			return err
		}

		// the deposit is not visible to reads until commit; carry its value
		// into the mint gate explicitly
		depositedValue, err := s.valuation.UsdValue(ctx, asset, collateralAmount)
		if err != nil {
			return err
		}

		return s.mint(ctx, tx, account, debtAmount, depositedValue)
	})
}

func (s *engineService) RedeemCollateralForDebt(ctx context.Context, account, asset string, collateralAmount, debtAmount *big.Int) error {
	if err := s.validate(asset, collateralAmount); err != nil {
		return err
	}
	if debtAmount == nil || debtAmount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}

	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	return s.tx(func(tx *db.DB) error {
		if err := s.burn(ctx, tx, account, account, debtAmount); err != nil {
			return err
		}

		redeemedValue, err := s.valuation.UsdValue(ctx, asset, collateralAmount)
		if err != nil {
			return err
		}

		if err := s.redeem(ctx, tx, account, account, asset, collateralAmount); err != nil {
			return err
		}

		return s.checkHealth(ctx, account, new(big.Int).Neg(debtAmount), new(big.Int).Neg(redeemedValue))
	})
}

func (s *engineService) Liquidate(ctx context.Context, liquidator, target, asset string, debtToCover *big.Int) (*big.Int, error) {
	if err := s.validate(asset, debtToCover); err != nil {
		return nil, err
	}

	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	log := logger.FromContext(ctx).WithField("operation", "liquidate")

	var seized *big.Int
	err = s.tx(func(tx *db.DB) error {
		debt, err := s.vaults.FindDebt(ctx, target)
		if err != nil {
			return err
		}

		collateralValue, err := s.valuation.AccountCollateralValue(ctx, target)
		if err != nil {
			return err
		}

		startingHealth := synth.HealthFactor(debt.Amount.Int(), collateralValue)
		if synth.Healthy(startingHealth) {
			return core.ErrHealthFactorOk
		}

		seize, err := s.valuation.TokenAmountForUsd(ctx, asset, debtToCover)
		if err != nil {
			return err
		}

		seized = new(big.Int).Add(seize, synth.SeizeBonus(seize))

		// seizure and debt burn both land before either health check; the
		// checks observe final post-state
		if err := s.redeem(ctx, tx, target, liquidator, asset, seized); err != nil {
			return err
		}

		if err := s.burn(ctx, tx, target, liquidator, debtToCover); err != nil {
			return err
		}

		seizedValue, err := s.valuation.UsdValue(ctx, asset, seized)
		if err != nil {
			return err
		}

		endingDebt := new(big.Int).Sub(debt.Amount.Int(), debtToCover)
		endingValue := new(big.Int).Sub(collateralValue, seizedValue)
		endingHealth := synth.HealthFactor(endingDebt, endingValue)
		if endingHealth.Cmp(startingHealth) <= 0 {
			return core.ErrHealthFactorNotImproved
		}

		log.WithField("target", target).
			WithField("debt_covered", debtToCover).
			WithField("seized", seized).
			Infoln("position liquidated")

		// the liquidator may be running a vault of its own
		return s.checkHealth(ctx, liquidator, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	return seized, nil
}

func (s *engineService) HealthFactor(ctx context.Context, account string) (*big.Int, error) {
	debt, err := s.vaults.FindDebt(ctx, account)
	if err != nil {
		return nil, err
	}

	if debt.Amount.Sign() == 0 {
		return new(big.Int).Set(synth.MaxHealthFactor), nil
	}

	collateralValue, err := s.valuation.AccountCollateralValue(ctx, account)
	if err != nil {
		return nil, err
	}

	return synth.HealthFactor(debt.Amount.Int(), collateralValue), nil
}

func (s *engineService) validate(asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}

	if _, ok := s.registry.Find(asset); !ok {
		return core.ErrAssetNotListed
	}

	return nil
}

func (s *engineService) acquire() (func(), error) {
	if !s.guard.TryAcquire(1) {
		return nil, core.ErrOperationInProgress
	}

	return func() { s.guard.Release(1) }, nil
}

// deposit credits the ledger and pulls the collateral into custody.
func (s *engineService) deposit(ctx context.Context, tx *db.DB, account, asset string, amount *big.Int) error {
	if err := s.vaults.IncreaseCollateral(ctx, tx, account, asset, amount); err != nil {
		return err
	}

	if err := s.bank.Pull(ctx, tx, asset, account, amount); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("bank.Pull")
		return err
	}

	return s.emit(ctx, tx, core.EventCollateralDeposited, account, core.Custody, asset, amount)
}

// mint issues debt against the account's collateral. extraValue carries
// collateral value added earlier in the same transaction, which reads cannot
// see yet.
func (s *engineService) mint(ctx context.Context, tx *db.DB, account string, amount, extraValue *big.Int) error {
	if err := s.checkHealth(ctx, account, amount, extraValue); err != nil {
		return err
	}

	if err := s.vaults.IncreaseDebt(ctx, tx, account, amount); err != nil {
		return err
	}

	if err := s.token.Mint(ctx, tx, account, amount); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("token.Mint")
		return err
	}

	return nil
}

// redeem debits the ledger and pushes collateral out of custody.
func (s *engineService) redeem(ctx context.Context, tx *db.DB, from, to, asset string, amount *big.Int) error {
	if err := s.vaults.DecreaseCollateral(ctx, tx, from, asset, amount); err != nil {
		return err
	}

	if err := s.bank.Push(ctx, tx, asset, to, amount); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("bank.Push")
		return err
	}

	return s.emit(ctx, tx, core.EventCollateralRedeemed, from, to, asset, amount)
}

// burn retires account debt with tokens pulled from payer.
func (s *engineService) burn(ctx context.Context, tx *db.DB, account, payer string, amount *big.Int) error {
	if err := s.vaults.DecreaseDebt(ctx, tx, account, amount); err != nil {
		return err
	}

	if err := s.token.TransferFrom(ctx, tx, payer, core.Custody, amount); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("token.TransferFrom")
		return err
	}

	if err := s.token.Burn(ctx, tx, amount); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("token.Burn")
		return err
	}

	return nil
}

// checkHealth gates an operation on the account's prospective health factor.
// debtDelta and valueDelta adjust for mutations applied in the current
// transaction, invisible to reads until commit.
func (s *engineService) checkHealth(ctx context.Context, account string, debtDelta, valueDelta *big.Int) error {
	debt, err := s.vaults.FindDebt(ctx, account)
	if err != nil {
		return err
	}

	nextDebt := debt.Amount.Int()
	if debtDelta != nil {
		nextDebt.Add(nextDebt, debtDelta)
	}

	if nextDebt.Sign() == 0 {
		return nil
	}

	collateralValue, err := s.valuation.AccountCollateralValue(ctx, account)
	if err != nil {
		return err
	}

	if valueDelta != nil {
		collateralValue.Add(collateralValue, valueDelta)
	}

	if !synth.Healthy(synth.HealthFactor(nextDebt, collateralValue)) {
		return core.ErrBreaksHealthFactor
	}

	return nil
}

func (s *engineService) emit(ctx context.Context, tx *db.DB, typ, from, to, asset string, amount *big.Int) error {
	event := &core.Event{
		TraceID:   id.GenTraceID(),
		Type:      typ,
		FromID:    from,
		ToID:      to,
		AssetID:   asset,
		Amount:    number.FromInt(amount),
		CreatedAt: time.Now(),
	}

	content, err := json.Marshal(event)
	if err != nil {
		return err
	}
	event.Content = content

	if err := s.events.Create(ctx, tx, event); err != nil {
		return err
	}

	logger.FromContext(ctx).WithFields(structs.Map(event)).Debugln("event emitted")
	return nil
}
