package cmd

import (
	"sync"

	"synthd/worker"
	"synthd/worker/priceoracle"
	"synthd/worker/sentinel"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "synthd job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		registry := provideRegistry()
		vaults := provideVaultStore(database)
		prices := providePriceStore(database)
		oracle := provideOracleService(registry, prices)

		workers := []worker.Worker{
			priceoracle.New(&cfg, registry, prices, providePropertyStore(database)),
			sentinel.New(&cfg, vaults, provideValuationService(registry, vaults, oracle), provideHealthStore()),
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
