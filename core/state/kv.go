package state

import (
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"assetledger/storage"
)

// kvStore scopes RLP-encoded records to a namespace of the underlying
// database. Keys are hashed with keccak256 after the namespace is prefixed so
// two stores never address the same entry.
type kvStore struct {
	db        storage.Database
	namespace []byte
}

func newKVStore(db storage.Database, namespace string) kvStore {
	return kvStore{db: db, namespace: []byte(namespace)}
}

func (s kvStore) key(parts ...[]byte) []byte {
	size := len(s.namespace)
	for _, part := range parts {
		size += len(part)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, s.namespace...)
	for _, part := range parts {
		buf = append(buf, part...)
	}
	return ethcrypto.Keccak256(buf)
}

// get decodes the value stored under key into out. The boolean reports
// whether the key existed.
func (s kvStore) get(key []byte, out interface{}) (bool, error) {
	if s.db == nil {
		return false, errNilDatabase
	}
	data, err := s.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("%s: decode: %w", s.namespace, err)
	}
	return true, nil
}

func (s kvStore) put(key []byte, value interface{}) error {
	if s.db == nil {
		return errNilDatabase
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", s.namespace, err)
	}
	return s.db.Put(key, encoded)
}

// stage RLP-encodes value into batch under key.
func (s kvStore) stage(batch *storage.Batch, key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", s.namespace, err)
	}
	batch.Put(key, encoded)
	return nil
}

func (s kvStore) commit(batch *storage.Batch) error {
	if s.db == nil {
		return errNilDatabase
	}
	return s.db.Write(batch)
}

var errNilDatabase = errors.New("state: database not configured")
