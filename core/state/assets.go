package state

import (
	"encoding/binary"

	"assetledger/native/asset"
	"assetledger/storage"
)

const assetNamespace = "asset/"

var (
	assetRecordPrefix = []byte("record/")
	assetNonceKey     = []byte("nonce")
)

// AssetStore persists the asset registry in a key-value database.
type AssetStore struct {
	kv kvStore
}

var _ asset.State = (*AssetStore)(nil)

// NewAssetStore returns a registry state stored in db.
func NewAssetStore(db storage.Database) *AssetStore {
	return &AssetStore{kv: newKVStore(db, assetNamespace)}
}

func assetIDBytes(id uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return buf[:]
}

func (s *AssetStore) recordKey(id uint64) []byte {
	return s.kv.key(assetRecordPrefix, assetIDBytes(id))
}

// AssetNonce returns the last assigned asset id, zero before the first asset.
func (s *AssetStore) AssetNonce() (uint64, error) {
	var nonce uint64
	if _, err := s.kv.get(s.kv.key(assetNonceKey), &nonce); err != nil {
		return 0, err
	}
	return nonce, nil
}

func (s *AssetStore) AssetGet(id uint64) (*asset.Asset, bool, error) {
	record := new(asset.Asset)
	ok, err := s.kv.get(s.recordKey(id), record)
	if err != nil || !ok {
		return nil, false, err
	}
	return record, true, nil
}

// AssetCreate stores the record and advances the nonce in one batch.
func (s *AssetStore) AssetCreate(record *asset.Asset) error {
	if record == nil {
		return nil
	}
	batch := storage.NewBatch()
	if err := s.kv.stage(batch, s.recordKey(record.ID), record); err != nil {
		return err
	}
	if err := s.kv.stage(batch, s.kv.key(assetNonceKey), record.ID); err != nil {
		return err
	}
	return s.kv.commit(batch)
}

func (s *AssetStore) AssetPut(record *asset.Asset) error {
	if record == nil {
		return nil
	}
	return s.kv.put(s.recordKey(record.ID), record)
}
