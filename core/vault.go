package core

import (
	"context"
	"math/big"
	"time"

	"synthd/pkg/number"

	"github.com/fox-one/pkg/store/db"
)

// Collateral is one account's deposited balance of one asset. Accounts exist
// implicitly: the first deposit creates the row, redemption back to zero
// leaves it in place.
type Collateral struct {
	ID        uint64     `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AccountID string     `sql:"size:64;unique_index:idx_collaterals_account_asset" json:"account_id"`
	AssetID   string     `sql:"size:64;unique_index:idx_collaterals_account_asset" json:"asset_id"`
	Amount    number.Big `sql:"type:varchar(80)" json:"amount"`
	Version   int64      `sql:"default:0" json:"version"`
	CreatedAt time.Time  `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Debt is one account's outstanding pegged-token liability.
type Debt struct {
	ID        uint64     `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AccountID string     `sql:"size:64;unique_index:idx_debts_account" json:"account_id"`
	Amount    number.Big `sql:"type:varchar(80)" json:"amount"`
	Version   int64      `sql:"default:0" json:"version"`
	CreatedAt time.Time  `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// VaultStore is the account ledger. Mutations run inside the engine's
// transaction and never move assets; balances may not go negative.
type VaultStore interface {
	IncreaseCollateral(ctx context.Context, tx *db.DB, account, asset string, amount *big.Int) error
	DecreaseCollateral(ctx context.Context, tx *db.DB, account, asset string, amount *big.Int) error
	IncreaseDebt(ctx context.Context, tx *db.DB, account string, amount *big.Int) error
	DecreaseDebt(ctx context.Context, tx *db.DB, account string, amount *big.Int) error

	FindCollateral(ctx context.Context, account, asset string) (*Collateral, error)
	ListCollaterals(ctx context.Context, account string) ([]*Collateral, error)
	FindDebt(ctx context.Context, account string) (*Debt, error)
	// Debtors lists accounts with outstanding debt.
	Debtors(ctx context.Context) ([]string, error)
}
