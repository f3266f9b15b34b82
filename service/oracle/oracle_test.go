package oracle

import (
	"context"
	"testing"
	"time"

	"synthd/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePriceStore struct {
	rows map[string]*core.Price
}

func (s *fakePriceStore) Save(ctx context.Context, price *core.Price) error {
	s.rows[price.AssetID] = price
	return nil
}

func (s *fakePriceStore) Find(ctx context.Context, assetID string) (*core.Price, error) {
	if row, ok := s.rows[assetID]; ok {
		return row, nil
	}
	return &core.Price{}, nil
}

func (s *fakePriceStore) All(ctx context.Context) ([]*core.Price, error) {
	var out []*core.Price
	for _, row := range s.rows {
		out = append(out, row)
	}
	return out, nil
}

func testRegistry(t *testing.T) *core.Registry {
	registry, err := core.NewRegistry([]string{"weth"}, []string{"ETHUSD"})
	require.Nil(t, err)
	return registry
}

func TestPrice(t *testing.T) {
	ctx := context.Background()
	store := &fakePriceStore{rows: map[string]*core.Price{
		"weth": {
			ID:        1,
			AssetID:   "weth",
			Price:     decimal.RequireFromString("2000"),
			UpdatedAt: time.Now(),
		},
	}}

	srv := New(testRegistry(t), store, 3*time.Hour)

	price, _, err := srv.Price(ctx, "weth")
	require.Nil(t, err)
	assert.Equal(t, "200000000000", price.String())
}

func TestPriceStale(t *testing.T) {
	ctx := context.Background()
	store := &fakePriceStore{rows: map[string]*core.Price{
		"weth": {
			ID:        1,
			AssetID:   "weth",
			Price:     decimal.RequireFromString("2000"),
			UpdatedAt: time.Now().Add(-4 * time.Hour),
		},
	}}

	srv := New(testRegistry(t), store, 3*time.Hour)

	_, _, err := srv.Price(ctx, "weth")
	assert.Equal(t, core.ErrStalePrice, err)
}

func TestPriceMissing(t *testing.T) {
	ctx := context.Background()
	store := &fakePriceStore{rows: map[string]*core.Price{}}

	srv := New(testRegistry(t), store, 3*time.Hour)

	_, _, err := srv.Price(ctx, "weth")
	assert.Equal(t, core.ErrStalePrice, err)

	_, _, err = srv.Price(ctx, "doge")
	assert.Equal(t, core.ErrAssetNotListed, err)
}

func TestPriceInvalid(t *testing.T) {
	ctx := context.Background()
	store := &fakePriceStore{rows: map[string]*core.Price{
		"weth": {
			ID:        1,
			AssetID:   "weth",
			Price:     decimal.Zero,
			UpdatedAt: time.Now(),
		},
	}}

	srv := New(testRegistry(t), store, 3*time.Hour)

	_, _, err := srv.Price(ctx, "weth")
	assert.Equal(t, core.ErrInvalidPrice, err)
}
