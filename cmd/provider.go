package cmd

import (
	"synthd/core"
	engineservice "synthd/service/engine"
	oracleservice "synthd/service/oracle"
	"synthd/service/valuation"
	"synthd/store/event"
	"synthd/store/health"
	"synthd/store/price"
	"synthd/store/token"
	"synthd/store/vault"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/go-redis/redis"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
}

func provideRegistry() *core.Registry {
	registry, err := core.NewRegistry(cfg.Vault.Assets, cfg.Vault.Feeds)
	if err != nil {
		panic(err)
	}

	return registry
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideVaultStore(db *db.DB) core.VaultStore {
	return vault.New(db)
}

func providePriceStore(db *db.DB) core.PriceStore {
	return price.New(db)
}

func provideEventStore(db *db.DB) core.EventStore {
	return event.New(db)
}

func provideTokenStore(db *db.DB) *token.Store {
	return token.New(db, cfg.App.PeggedAsset)
}

func provideHealthStore() core.HealthStore {
	return health.New(provideRedis(), 2*cfg.Oracle.PollInterval())
}

// ------------------service------------------------------------

func provideOracleService(registry *core.Registry, prices core.PriceStore) core.OracleService {
	return oracleservice.New(registry, prices, cfg.Oracle.StaleAfter())
}

func provideValuationService(registry *core.Registry, vaults core.VaultStore, oracle core.OracleService) core.ValuationService {
	return valuation.New(registry, vaults, oracle)
}

func provideEngine(db *db.DB, registry *core.Registry) core.Engine {
	vaults := provideVaultStore(db)
	tokens := provideTokenStore(db)
	oracle := provideOracleService(registry, providePriceStore(db))

	return engineservice.New(
		db,
		registry,
		vaults,
		provideEventStore(db),
		tokens,
		tokens,
		provideValuationService(registry, vaults, oracle),
	)
}
