package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationInProgress another engine operation is still executing
	ErrOperationInProgress ErrorCode = 100001

	// ErrBadRegistry asset / feed lists do not line up
	ErrBadRegistry ErrorCode = 100100
	// ErrInvalidAmount zero or negative amount
	ErrInvalidAmount ErrorCode = 100101
	// ErrAssetNotListed asset is not registered as collateral
	ErrAssetNotListed ErrorCode = 100102
	// ErrBreaksHealthFactor operation would leave the account under-collateralized
	ErrBreaksHealthFactor ErrorCode = 100103
	// ErrHealthFactorOk liquidation target is still healthy
	ErrHealthFactorOk ErrorCode = 100104
	// ErrHealthFactorNotImproved liquidation did not de-risk the target
	ErrHealthFactorNotImproved ErrorCode = 100105
	// ErrInsufficientCollateral collateral balance would go negative
	ErrInsufficientCollateral ErrorCode = 100106
	// ErrInsufficientDebt debt would go negative
	ErrInsufficientDebt ErrorCode = 100107

	// ErrStalePrice oracle reading is older than the staleness window
	ErrStalePrice ErrorCode = 100200
	// ErrInvalidPrice oracle reading is zero or negative
	ErrInvalidPrice ErrorCode = 100201
	// ErrTransferFailed collateral pull or push was rejected
	ErrTransferFailed ErrorCode = 100202
	// ErrMintFailed pegged token mint was rejected
	ErrMintFailed ErrorCode = 100203
	// ErrBurnFailed pegged token transfer or burn was rejected
	ErrBurnFailed ErrorCode = 100204
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
