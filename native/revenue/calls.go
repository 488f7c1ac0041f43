package revenue

import "math/big"

// Call is the closed set of operations served by the ledger.
type Call interface {
	Method() string
	isRevenueCall()
}

// Method names exposed on the uniform call surface.
const (
	MethodSetRevenueShare   = "set-revenue-share"
	MethodDistributeRevenue = "distribute-revenue"
	MethodGetBalance        = "get-balance"
)

// SetRevenueShare configures the split for an asset. Administrator only.
type SetRevenueShare struct {
	AssetID      uint64
	Creator      string
	CreatorShare uint64
	HostShare    uint64
}

// DistributeRevenue splits Amount between the asset's creator and the caller.
type DistributeRevenue struct {
	AssetID uint64
	Amount  *big.Int
}

// GetBalance reads a principal's accumulated balance.
type GetBalance struct {
	Principal string
}

func (SetRevenueShare) Method() string   { return MethodSetRevenueShare }
func (DistributeRevenue) Method() string { return MethodDistributeRevenue }
func (GetBalance) Method() string        { return MethodGetBalance }

func (SetRevenueShare) isRevenueCall()   {}
func (DistributeRevenue) isRevenueCall() {}
func (GetBalance) isRevenueCall()        {}
