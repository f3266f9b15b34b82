package oracle

import (
	"context"
	"math/big"
	"time"

	"synthd/core"
	"synthd/pkg/number"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

const cacheTTL = time.Second

type reading struct {
	price     *big.Int
	updatedAt time.Time
}

type oracleService struct {
	registry   *core.Registry
	prices     core.PriceStore
	staleAfter time.Duration
	cache      gcache.Cache
	sf         singleflight.Group
}

// New new oracle service. Readings older than staleAfter are rejected with
// ErrStalePrice; non-positive readings with ErrInvalidPrice.
func New(registry *core.Registry, prices core.PriceStore, staleAfter time.Duration) core.OracleService {
	return &oracleService{
		registry:   registry,
		prices:     prices,
		staleAfter: staleAfter,
		cache:      gcache.New(256).LRU().Build(),
	}
}

func (s *oracleService) Price(ctx context.Context, assetID string) (*big.Int, time.Time, error) {
	if _, ok := s.registry.Find(assetID); !ok {
		return nil, time.Time{}, core.ErrAssetNotListed
	}

	r, err := s.read(ctx, assetID)
	if err != nil {
		return nil, time.Time{}, err
	}

	// staleness is judged per call, a cached reading can expire between hits
	if time.Since(r.updatedAt) > s.staleAfter {
		return nil, time.Time{}, core.ErrStalePrice
	}

	if r.price.Sign() <= 0 {
		return nil, time.Time{}, core.ErrInvalidPrice
	}

	return new(big.Int).Set(r.price), r.updatedAt, nil
}

func (s *oracleService) read(ctx context.Context, assetID string) (*reading, error) {
	if v, err := s.cache.Get(assetID); err == nil {
		return v.(*reading), nil
	}

	v, err, _ := s.sf.Do(assetID, func() (interface{}, error) {
		row, err := s.prices.Find(ctx, assetID)
		if err != nil {
			return nil, err
		}

		if row.ID == 0 {
			return nil, core.ErrStalePrice
		}

		r := &reading{
			price:     number.DecimalToFixed(row.Price, 8),
			updatedAt: row.UpdatedAt,
		}
		_ = s.cache.SetWithExpire(assetID, r, cacheTTL)

		return r, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*reading), nil
}
