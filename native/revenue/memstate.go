package revenue

import "math/big"

// MemState is the in-memory ledger state. It is owned by a single engine and
// relies on the caller to serialize access.
type MemState struct {
	shares   map[uint64]*Share
	balances map[string]*big.Int
}

// NewMemState returns an empty ledger state.
func NewMemState() *MemState {
	return &MemState{
		shares:   make(map[uint64]*Share),
		balances: make(map[string]*big.Int),
	}
}

func (m *MemState) RevenueShareGet(assetID uint64) (*Share, bool, error) {
	share, ok := m.shares[assetID]
	if !ok {
		return nil, false, nil
	}
	return share.Clone(), true, nil
}

func (m *MemState) RevenueSharePut(share *Share) error {
	if share == nil {
		return nil
	}
	m.shares[share.AssetID] = share.Clone()
	return nil
}

func (m *MemState) RevenueBalanceGet(principal string) (*big.Int, error) {
	balance, ok := m.balances[principal]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(balance), nil
}

func (m *MemState) RevenueBalancesPut(entries []BalanceEntry) error {
	for _, entry := range entries {
		m.balances[entry.Principal] = newBigInt(entry.Amount)
	}
	return nil
}
