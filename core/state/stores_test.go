package state

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"assetledger/core/types"
	"assetledger/native/asset"
	"assetledger/native/revenue"
	"assetledger/storage"
)

const admin = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

func TestAssetStoreDrivesRegistry(t *testing.T) {
	db := storage.NewMemDB()
	engine := asset.NewEngine()
	engine.SetState(NewAssetStore(db))

	first, err := engine.CreateAsset("user1", "0x1234567890", "https://example.com/metadata")
	require.NoError(t, err)
	require.Equal(t, uint64(1), first)
	second, err := engine.CreateAsset("user2", "0xabcdef", "ipfs://meta")
	require.NoError(t, err)
	require.Equal(t, uint64(2), second)

	require.NoError(t, engine.Transfer("user1", first, "user2"))
	err = engine.Transfer("user1", first, "user3")
	require.Equal(t, types.CodeForbidden, types.CodeOf(err))

	record, ok, err := engine.Asset(first)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, asset.Asset{ID: 1, Owner: "user2", ContentHash: "0x1234567890", Metadata: "https://example.com/metadata"}, *record)

	_, ok, err = engine.Asset(3)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRevenueStoreDrivesLedger(t *testing.T) {
	db := storage.NewMemDB()
	engine := revenue.NewEngine(admin)
	engine.SetState(NewRevenueStore(db))

	require.NoError(t, engine.SetRevenueShare(admin, 1, "creator1", 70, 30))
	_, err := engine.DistributeRevenue("host1", 1, big.NewInt(1000))
	require.NoError(t, err)

	creator, err := engine.Balance("creator1")
	require.NoError(t, err)
	require.Equal(t, int64(700), creator.Int64())
	host, err := engine.Balance("host1")
	require.NoError(t, err)
	require.Equal(t, int64(300), host.Int64())
	unknown, err := engine.Balance("nobody")
	require.NoError(t, err)
	require.Zero(t, unknown.Sign())

	share, ok, err := engine.Share(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, revenue.Share{AssetID: 1, Creator: "creator1", CreatorShare: 70, HostShare: 30}, *share)
}

func TestStoresShareDatabaseWithoutCollisions(t *testing.T) {
	db := storage.NewMemDB()
	assets := NewAssetStore(db)
	ledger := NewRevenueStore(db)

	require.NoError(t, assets.AssetCreate(&asset.Asset{ID: 1, Owner: "user1"}))
	require.NoError(t, ledger.RevenueSharePut(&revenue.Share{AssetID: 1, Creator: "creator1", CreatorShare: 100}))

	record, ok, err := assets.AssetGet(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "user1", record.Owner)

	share, ok, err := ledger.RevenueShareGet(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "creator1", share.Creator)
}

func TestRevenueStoreRejectsNegativeBalance(t *testing.T) {
	ledger := NewRevenueStore(storage.NewMemDB())
	err := ledger.RevenueBalancesPut([]revenue.BalanceEntry{
		{Principal: "a", Amount: big.NewInt(5)},
		{Principal: "b", Amount: big.NewInt(-1)},
	})
	require.Error(t, err)
	balance, err := ledger.RevenueBalanceGet("a")
	require.NoError(t, err)
	require.Zero(t, balance.Sign(), "partial batch must not be written")
}

func TestLevelDBStatePersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	db, err := storage.NewLevelDB(path)
	require.NoError(t, err)

	registry := asset.NewEngine()
	registry.SetState(NewAssetStore(db))
	ledger := revenue.NewEngine(admin)
	ledger.SetState(NewRevenueStore(db))

	id, err := registry.CreateAsset("user1", "0x01", "meta")
	require.NoError(t, err)
	require.NoError(t, ledger.SetRevenueShare(admin, id, "user1", 60, 40))
	_, err = ledger.DistributeRevenue("host1", id, big.NewInt(55))
	require.NoError(t, err)
	db.Close()

	reopened, err := storage.NewLevelDB(path)
	require.NoError(t, err)
	defer reopened.Close()

	registry = asset.NewEngine()
	registry.SetState(NewAssetStore(reopened))
	ledger = revenue.NewEngine(admin)
	ledger.SetState(NewRevenueStore(reopened))

	next, err := registry.CreateAsset("user2", "0x02", "meta")
	require.NoError(t, err)
	require.Equal(t, uint64(2), next, "ids must not be reused after restart")

	creator, err := ledger.Balance("user1")
	require.NoError(t, err)
	require.Equal(t, int64(33), creator.Int64())
	host, err := ledger.Balance("host1")
	require.NoError(t, err)
	require.Equal(t, int64(22), host.Int64())
}
