package state

import (
	"fmt"
	"math/big"

	"assetledger/native/revenue"
	"assetledger/storage"
)

const revenueNamespace = "revenue/"

var (
	revenueSharePrefix   = []byte("share/")
	revenueBalancePrefix = []byte("balance/")
)

// RevenueStore persists revenue shares and balances in a key-value database.
type RevenueStore struct {
	kv kvStore
}

var _ revenue.State = (*RevenueStore)(nil)

// NewRevenueStore returns a ledger state stored in db.
func NewRevenueStore(db storage.Database) *RevenueStore {
	return &RevenueStore{kv: newKVStore(db, revenueNamespace)}
}

func (s *RevenueStore) shareKey(assetID uint64) []byte {
	return s.kv.key(revenueSharePrefix, assetIDBytes(assetID))
}

func (s *RevenueStore) balanceKey(principal string) []byte {
	return s.kv.key(revenueBalancePrefix, []byte(principal))
}

func (s *RevenueStore) RevenueShareGet(assetID uint64) (*revenue.Share, bool, error) {
	share := new(revenue.Share)
	ok, err := s.kv.get(s.shareKey(assetID), share)
	if err != nil || !ok {
		return nil, false, err
	}
	return share, true, nil
}

func (s *RevenueStore) RevenueSharePut(share *revenue.Share) error {
	if share == nil {
		return nil
	}
	return s.kv.put(s.shareKey(share.AssetID), share)
}

// RevenueBalanceGet returns zero for principals that were never credited.
func (s *RevenueStore) RevenueBalanceGet(principal string) (*big.Int, error) {
	balance := new(big.Int)
	if _, err := s.kv.get(s.balanceKey(principal), balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// RevenueBalancesPut writes every entry in one batch.
func (s *RevenueStore) RevenueBalancesPut(entries []revenue.BalanceEntry) error {
	batch := storage.NewBatch()
	for _, entry := range entries {
		amount := entry.Amount
		if amount == nil {
			amount = new(big.Int)
		}
		if amount.Sign() < 0 {
			return fmt.Errorf("revenue store: negative balance for %q", entry.Principal)
		}
		if err := s.kv.stage(batch, s.balanceKey(entry.Principal), amount); err != nil {
			return err
		}
	}
	return s.kv.commit(batch)
}
