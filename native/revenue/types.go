package revenue

import "math/big"

// PercentBase is the total both sides of a share must add up to.
const PercentBase = 100

// Share splits future distributions for an asset between its creator and the
// distributing host.
type Share struct {
	AssetID      uint64 `json:"assetId"`
	Creator      string `json:"creator"`
	CreatorShare uint64 `json:"creator-share"`
	HostShare    uint64 `json:"host-share"`
}

// Clone returns a copy of the share configuration.
func (s *Share) Clone() *Share {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// Split is the outcome of a single distribution.
type Split struct {
	AssetID       uint64   `json:"assetId"`
	Creator       string   `json:"creator"`
	Host          string   `json:"host"`
	CreatorAmount *big.Int `json:"creatorAmount"`
	HostAmount    *big.Int `json:"hostAmount"`
}

// BalanceEntry is one principal's balance after a write.
type BalanceEntry struct {
	Principal string
	Amount    *big.Int
}
