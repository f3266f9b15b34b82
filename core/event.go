package core

import (
	"context"
	"time"

	"synthd/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
)

const (
	// EventCollateralDeposited collateral entered engine custody
	EventCollateralDeposited = "collateral_deposited"
	// EventCollateralRedeemed collateral left engine custody
	EventCollateralRedeemed = "collateral_redeemed"
)

// Event is an observable collateral movement, consumed by external indexers.
type Event struct {
	ID        uint64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string         `sql:"size:36;unique_index:idx_events_trace" json:"trace_id"`
	Type      string         `sql:"size:32" json:"type"`
	FromID    string         `sql:"size:64" json:"from_id"`
	ToID      string         `sql:"size:64" json:"to_id"`
	AssetID   string         `sql:"size:64" json:"asset_id"`
	Amount    number.Big     `sql:"type:varchar(80)" json:"amount"`
	Content   types.JSONText `sql:"type:varchar(1024)" json:"content,omitempty"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// EventStore persists events inside the operation transaction.
type EventStore interface {
	Create(ctx context.Context, tx *db.DB, event *Event) error
	List(ctx context.Context, fromID uint64, limit int) ([]*Event, error)
}
