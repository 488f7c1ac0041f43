package asset

// MemState is the in-memory registry state. It is owned by a single engine
// and relies on the caller to serialize access.
type MemState struct {
	assets map[uint64]*Asset
	nextID uint64
}

// NewMemState returns an empty registry state.
func NewMemState() *MemState {
	return &MemState{assets: make(map[uint64]*Asset)}
}

func (m *MemState) AssetNonce() (uint64, error) { return m.nextID, nil }

func (m *MemState) AssetGet(id uint64) (*Asset, bool, error) {
	record, ok := m.assets[id]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

func (m *MemState) AssetCreate(asset *Asset) error {
	if asset == nil {
		return nil
	}
	m.assets[asset.ID] = asset.Clone()
	if asset.ID > m.nextID {
		m.nextID = asset.ID
	}
	return nil
}

func (m *MemState) AssetPut(asset *Asset) error {
	if asset == nil {
		return nil
	}
	m.assets[asset.ID] = asset.Clone()
	return nil
}
