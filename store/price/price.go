package price

import (
	"context"
	"time"

	"synthd/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type priceStore struct {
	db *db.DB
}

// New new price store
func New(db *db.DB) core.PriceStore {
	return &priceStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		return db.Update().AutoMigrate(core.Price{}).Error
	})
}

func (s *priceStore) Save(ctx context.Context, price *core.Price) error {
	return s.db.Tx(func(tx *db.DB) error {
		var existing core.Price
		err := tx.Update().Where("asset_id=?", price.AssetID).First(&existing).Error
		if err != nil {
			if !gorm.IsRecordNotFoundError(err) {
				return err
			}

			price.UpdatedAt = time.Now()
			return tx.Update().Create(price).Error
		}

		updates := map[string]interface{}{
			"price":      price.Price,
			"feed":       price.Feed,
			"version":    existing.Version + 1,
			"updated_at": time.Now(),
		}

		return tx.Update().Model(core.Price{}).
			Where("id=? AND version=?", existing.ID, existing.Version).
			Updates(updates).Error
	})
}

func (s *priceStore) Find(ctx context.Context, assetID string) (*core.Price, error) {
	var price core.Price
	err := s.db.View().Where("asset_id=?", assetID).First(&price).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}

	return &price, nil
}

func (s *priceStore) All(ctx context.Context) ([]*core.Price, error) {
	var prices []*core.Price
	if err := s.db.View().Find(&prices).Error; err != nil {
		return nil, err
	}

	return prices, nil
}
