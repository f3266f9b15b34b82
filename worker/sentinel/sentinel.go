package sentinel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"synthd/core"
	"synthd/internal/synth"
	"synthd/pkg/number"
	"synthd/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker sweeps every indebted account, refreshes its cached risk snapshot
// and flags positions sitting below the minimum health factor.
type Worker struct {
	worker.BaseJob
	vaults    core.VaultStore
	valuation core.ValuationService
	healths   core.HealthStore
}

// New new sentinel worker
func New(cfg *core.Config, vaults core.VaultStore, valuation core.ValuationService, healths core.HealthStore) *Worker {
	job := Worker{
		vaults:    vaults,
		valuation: valuation,
		healths:   healths,
	}

	l, _ := time.LoadLocation(cfg.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := fmt.Sprintf("@every %s", cfg.Oracle.PollInterval())
	job.Cron.AddFunc(spec, job.Tick)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "sentinel")

	debtors, err := w.vaults.Debtors(ctx)
	if err != nil {
		log.WithError(err).Errorln("vaults.Debtors")
		return err
	}

	wg := sync.WaitGroup{}
	for _, account := range debtors {
		wg.Add(1)
		go func(account string) {
			defer wg.Done()

			snapshot, err := w.snapshot(ctx, account)
			if err != nil {
				log.WithError(err).Errorln("snapshot:", account)
				return
			}

			if err := w.healths.Save(ctx, snapshot); err != nil {
				log.WithError(err).Errorln("healths.Save:", account)
				return
			}

			if snapshot.Liquidatable(number.FromInt(synth.MinHealthFactor)) {
				log.WithField("account", account).
					WithField("health_factor", snapshot.HealthFactor).
					Infoln("position below minimum health factor")
			}
		}(account)
	}

	wg.Wait()

	return nil
}

func (w *Worker) snapshot(ctx context.Context, account string) (*core.RiskSnapshot, error) {
	debt, err := w.vaults.FindDebt(ctx, account)
	if err != nil {
		return nil, err
	}

	collateralValue, err := w.valuation.AccountCollateralValue(ctx, account)
	if err != nil {
		return nil, err
	}

	return &core.RiskSnapshot{
		AccountID:       account,
		Debt:            debt.Amount,
		CollateralValue: number.FromInt(collateralValue),
		HealthFactor:    number.FromInt(synth.HealthFactor(debt.Amount.Int(), collateralValue)),
		CalculatedAt:    time.Now(),
	}, nil
}
