package vault

import (
	"context"
	"math/big"

	"synthd/core"
	"synthd/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type vaultStore struct {
	db *db.DB
}

// New new vault store
func New(db *db.DB) core.VaultStore {
	return &vaultStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update()
		if err := tx.AutoMigrate(core.Collateral{}).Error; err != nil {
			return err
		}
		if err := tx.AutoMigrate(core.Debt{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *vaultStore) IncreaseCollateral(ctx context.Context, tx *db.DB, account, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}

	collateral, err := findCollateral(tx.Update(), account, asset)
	if err != nil {
		return err
	}

	if collateral.ID == 0 {
		collateral = &core.Collateral{
			AccountID: account,
			AssetID:   asset,
			Amount:    number.FromInt(amount),
		}
		return tx.Update().Create(collateral).Error
	}

	next := new(big.Int).Add(collateral.Amount.Int(), amount)
	return updateCollateral(tx, collateral, next)
}

func (s *vaultStore) DecreaseCollateral(ctx context.Context, tx *db.DB, account, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}

	collateral, err := findCollateral(tx.Update(), account, asset)
	if err != nil {
		return err
	}

	next := new(big.Int).Sub(collateral.Amount.Int(), amount)
	if next.Sign() < 0 {
		return core.ErrInsufficientCollateral
	}

	if collateral.ID == 0 {
		// amount > 0 against a missing row can never succeed
		return core.ErrInsufficientCollateral
	}

	return updateCollateral(tx, collateral, next)
}

func (s *vaultStore) IncreaseDebt(ctx context.Context, tx *db.DB, account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}

	debt, err := findDebt(tx.Update(), account)
	if err != nil {
		return err
	}

	if debt.ID == 0 {
		debt = &core.Debt{
			AccountID: account,
			Amount:    number.FromInt(amount),
		}
		return tx.Update().Create(debt).Error
	}

	next := new(big.Int).Add(debt.Amount.Int(), amount)
	return updateDebt(tx, debt, next)
}

func (s *vaultStore) DecreaseDebt(ctx context.Context, tx *db.DB, account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrInvalidAmount
	}

	debt, err := findDebt(tx.Update(), account)
	if err != nil {
		return err
	}

	next := new(big.Int).Sub(debt.Amount.Int(), amount)
	if debt.ID == 0 || next.Sign() < 0 {
		return core.ErrInsufficientDebt
	}

	return updateDebt(tx, debt, next)
}

func (s *vaultStore) FindCollateral(ctx context.Context, account, asset string) (*core.Collateral, error) {
	return findCollateral(s.db.View(), account, asset)
}

func (s *vaultStore) ListCollaterals(ctx context.Context, account string) ([]*core.Collateral, error) {
	var collaterals []*core.Collateral
	if err := s.db.View().Where("account_id=?", account).Find(&collaterals).Error; err != nil {
		return nil, err
	}

	return collaterals, nil
}

func (s *vaultStore) FindDebt(ctx context.Context, account string) (*core.Debt, error) {
	return findDebt(s.db.View(), account)
}

func (s *vaultStore) Debtors(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := s.db.View().Model(core.Debt{}).Where("amount <> ?", "0").Pluck("account_id", &accounts).Error; err != nil {
		return nil, err
	}

	return accounts, nil
}

func findCollateral(conn *gorm.DB, account, asset string) (*core.Collateral, error) {
	var collateral core.Collateral
	err := conn.Where("account_id=? AND asset_id=?", account, asset).First(&collateral).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}

	return &collateral, nil
}

func findDebt(conn *gorm.DB, account string) (*core.Debt, error) {
	var debt core.Debt
	err := conn.Where("account_id=?", account).First(&debt).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}

	return &debt, nil
}

func updateCollateral(tx *db.DB, collateral *core.Collateral, next *big.Int) error {
	updates := map[string]interface{}{
		"amount":  number.FromInt(next),
		"version": collateral.Version + 1,
	}

	return tx.Update().Model(core.Collateral{}).
		Where("id=? AND version=?", collateral.ID, collateral.Version).
		Updates(updates).Error
}

func updateDebt(tx *db.DB, debt *core.Debt, next *big.Int) error {
	updates := map[string]interface{}{
		"amount":  number.FromInt(next),
		"version": debt.Version + 1,
	}

	return tx.Update().Model(core.Debt{}).
		Where("id=? AND version=?", debt.ID, debt.Version).
		Updates(updates).Error
}
