package priceoracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"synthd/core"
	"synthd/pkg/resthttp"
	"synthd/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

const checkpointKey = "price_poll_checkpoint"

// Worker polls the upstream price endpoint for every registered collateral
// asset and persists the latest reading.
type Worker struct {
	worker.BaseJob
	registry *core.Registry
	prices   core.PriceStore
	property property.Store
	endpoint string
}

// New new price oracle worker
func New(cfg *core.Config, registry *core.Registry, prices core.PriceStore, property property.Store) *Worker {
	job := Worker{
		registry: registry,
		prices:   prices,
		property: property,
		endpoint: cfg.Oracle.EndPoint,
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
	log := logger.FromContext(ctx).WithField("worker", "priceoracle")

	assets := w.registry.Assets()
	if len(assets) == 0 {
		log.Infoln("no collateral asset registered")
		return nil
	}

	wg := sync.WaitGroup{}
	for _, a := range assets {
		wg.Add(1)
		go func(asset *core.CollateralAsset) {
			defer wg.Done()

			ticker, err := w.pullPriceTicker(ctx, asset.Feed)
			if err != nil {
				log.WithError(err).Errorln("pull price ticker:", asset.Feed)
				return
			}

			if ticker.Price.LessThanOrEqual(decimal.Zero) {
				log.Errorln("invalid ticker price:", ticker.Symbol, ":", ticker.Price)
				return
			}

			if err := w.prices.Save(ctx, &core.Price{
				AssetID: asset.AssetID,
				Feed:    asset.Feed,
				Price:   ticker.Price,
			}); err != nil {
				log.WithError(err).Errorln("prices.Save:", asset.AssetID)
			}
		}(a)
	}

	wg.Wait()

	if err := w.property.Save(ctx, checkpointKey, time.Now().Format(time.RFC3339)); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
	}

	return nil
}

func (w *Worker) pullPriceTicker(ctx context.Context, feed string) (*core.PriceTicker, error) {
	resp, err := resthttp.Request(ctx).
		SetQueryParam("symbol", feed).
		Get(w.endpoint + "/prices")
	if err != nil {
		return nil, err
	}

	var ticker core.PriceTicker
	if err := resthttp.ParseResponse(resp, &ticker); err != nil {
		return nil, err
	}

	return &ticker, nil
}
