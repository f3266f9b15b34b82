package token

import (
	"context"
	"math/big"
	"time"

	"synthd/core"
	"synthd/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

// Balance is one holder's balance of one asset inside the reference token
// ledger. The ledger stands in for the external pegged-token and collateral
// contracts; balances join the engine transaction so any rejection rolls the
// whole operation back.
type Balance struct {
	ID        uint64     `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	HolderID  string     `sql:"size:64;unique_index:idx_balances_holder_asset" json:"holder_id"`
	AssetID   string     `sql:"size:64;unique_index:idx_balances_holder_asset" json:"asset_id"`
	Amount    number.Big `sql:"type:varchar(80)" json:"amount"`
	Version   int64      `sql:"default:0" json:"version"`
	CreatedAt time.Time  `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Store is a gorm-backed token ledger implementing both core.PeggedToken and
// core.CollateralBank.
type Store struct {
	db          *db.DB
	peggedAsset string
}

// New new token store. peggedAsset is the asset id minted and burned as the
// synthetic dollar.
func New(db *db.DB, peggedAsset string) *Store {
	return &Store{
		db:          db,
		peggedAsset: peggedAsset,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		return db.Update().AutoMigrate(Balance{}).Error
	})
}

func (s *Store) Mint(ctx context.Context, tx *db.DB, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrMintFailed
	}

	return credit(tx, to, s.peggedAsset, amount)
}

func (s *Store) Burn(ctx context.Context, tx *db.DB, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return core.ErrBurnFailed
	}

	if err := debit(tx, core.Custody, s.peggedAsset, amount); err != nil {
		return core.ErrBurnFailed
	}

	return nil
}

func (s *Store) TransferFrom(ctx context.Context, tx *db.DB, from, to string, amount *big.Int) error {
	return s.move(tx, s.peggedAsset, from, to, amount, core.ErrBurnFailed)
}

func (s *Store) Pull(ctx context.Context, tx *db.DB, asset, from string, amount *big.Int) error {
	return s.move(tx, asset, from, core.Custody, amount, core.ErrTransferFailed)
}

func (s *Store) Push(ctx context.Context, tx *db.DB, asset, to string, amount *big.Int) error {
	return s.move(tx, asset, core.Custody, to, amount, core.ErrTransferFailed)
}

// Credit seeds a holder balance outside any engine operation. Used by the
// migration tooling and tests; a production deployment would replace this
// store with adapters onto the real token contracts.
func (s *Store) Credit(ctx context.Context, holder, asset string, amount *big.Int) error {
	return s.db.Tx(func(tx *db.DB) error {
		return credit(tx, holder, asset, amount)
	})
}

// BalanceOf reads a holder's balance.
func (s *Store) BalanceOf(ctx context.Context, holder, asset string) (*big.Int, error) {
	balance, err := find(s.db.View(), holder, asset)
	if err != nil {
		return nil, err
	}

	return balance.Amount.Int(), nil
}

func (s *Store) move(tx *db.DB, asset, from, to string, amount *big.Int, reject error) error {
	if amount == nil || amount.Sign() <= 0 {
		return reject
	}

	if err := debit(tx, from, asset, amount); err != nil {
		return reject
	}

	if err := credit(tx, to, asset, amount); err != nil {
		return reject
	}

	return nil
}

func find(conn *gorm.DB, holder, asset string) (*Balance, error) {
	var balance Balance
	err := conn.Where("holder_id=? AND asset_id=?", holder, asset).First(&balance).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}

	return &balance, nil
}

func credit(tx *db.DB, holder, asset string, amount *big.Int) error {
	balance, err := find(tx.Update(), holder, asset)
	if err != nil {
		return err
	}

	if balance.ID == 0 {
		balance = &Balance{
			HolderID: holder,
			AssetID:  asset,
			Amount:   number.FromInt(amount),
		}
		return tx.Update().Create(balance).Error
	}

	next := new(big.Int).Add(balance.Amount.Int(), amount)
	return update(tx, balance, next)
}

func debit(tx *db.DB, holder, asset string, amount *big.Int) error {
	balance, err := find(tx.Update(), holder, asset)
	if err != nil {
		return err
	}

	next := new(big.Int).Sub(balance.Amount.Int(), amount)
	if balance.ID == 0 || next.Sign() < 0 {
		return core.ErrTransferFailed
	}

	return update(tx, balance, next)
}

func update(tx *db.DB, balance *Balance, next *big.Int) error {
	updates := map[string]interface{}{
		"amount":  number.FromInt(next),
		"version": balance.Version + 1,
	}

	return tx.Update().Model(Balance{}).
		Where("id=? AND version=?", balance.ID, balance.Version).
		Updates(updates).Error
}
