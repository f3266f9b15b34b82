package core

import (
	"time"

	"github.com/fox-one/pkg/store/db"
)

// Config synthd config
type Config struct {
	App    App       `json:"app"`
	DB     db.Config `json:"db"`
	Redis  Redis     `json:"redis"`
	Oracle Oracle    `json:"oracle"`
	Vault  Vault     `json:"vault" valid:"required"`
}

// App app config
type App struct {
	Location string `json:"location"`
	// PeggedAsset is the asset id minted and burned as the synthetic dollar.
	PeggedAsset string `json:"pegged_asset" valid:"required"`
}

// Redis redis cache config
type Redis struct {
	Addr string `json:"addr"`
	DB   int    `json:"db"`
}

// Oracle price oracle config
type Oracle struct {
	EndPoint string `json:"end_point" valid:"required"`
	// StaleAfterSeconds is the staleness window; older readings are rejected.
	StaleAfterSeconds int64 `json:"stale_after"`
	PollSeconds       int64 `json:"poll_interval"`
}

// StaleAfter staleness window as a duration
func (o Oracle) StaleAfter() time.Duration {
	if o.StaleAfterSeconds <= 0 {
		return 3 * time.Hour
	}
	return time.Duration(o.StaleAfterSeconds) * time.Second
}

// PollInterval ticker poll interval as a duration
func (o Oracle) PollInterval() time.Duration {
	if o.PollSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(o.PollSeconds) * time.Second
}

// Vault collateral registry config. Assets and Feeds pair up by index; the
// engine refuses to start on mismatched lists.
type Vault struct {
	Assets []string `json:"assets" valid:"required"`
	Feeds  []string `json:"feeds" valid:"required"`
}
