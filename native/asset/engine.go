package asset

import (
	"errors"
	"fmt"

	"assetledger/core/events"
	"assetledger/core/types"
)

var (
	errNilState       = errors.New("asset registry: state not configured")
	errNonceExhausted = errors.New("asset registry: asset id space exhausted")

	// ErrAssetNotFound is returned when the referenced asset id was never created.
	ErrAssetNotFound = fmt.Errorf("asset registry: asset not found: %w", types.ErrNotFound)
	// ErrNotOwner is returned when a non-owner attempts to move an asset.
	ErrNotOwner = fmt.Errorf("asset registry: caller is not the asset owner: %w", types.ErrForbidden)
)

// State is the persistence contract of the registry. AssetCreate must store
// the record and advance the id counter to asset.ID in a single step.
type State interface {
	AssetNonce() (uint64, error)
	AssetGet(id uint64) (*Asset, bool, error)
	AssetCreate(asset *Asset) error
	AssetPut(asset *Asset) error
}

// Engine wires asset registry business logic with persistence and event emission.
type Engine struct {
	state   State
	emitter events.Emitter
}

// NewEngine constructs a registry backed by a fresh in-memory state.
func NewEngine() *Engine {
	return &Engine{
		state:   NewMemState(),
		emitter: events.NoopEmitter{},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

// CreateAsset registers a new asset owned by caller and returns its id. Ids
// start at 1 and are never reused.
func (e *Engine) CreateAsset(caller, contentHash, metadata string) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	nonce, err := e.state.AssetNonce()
	if err != nil {
		return 0, err
	}
	if nonce == ^uint64(0) {
		return 0, errNonceExhausted
	}
	record := &Asset{
		ID:          nonce + 1,
		Owner:       caller,
		ContentHash: contentHash,
		Metadata:    metadata,
	}
	if err := e.state.AssetCreate(record); err != nil {
		return 0, err
	}
	e.emit(CreatedEvent{ID: record.ID, Owner: record.Owner, ContentHash: record.ContentHash})
	return record.ID, nil
}

// Transfer hands the asset to recipient. Only the current owner may move it.
func (e *Engine) Transfer(caller string, id uint64, recipient string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	record, ok, err := e.state.AssetGet(id)
	if err != nil {
		return err
	}
	if !ok || record == nil {
		return ErrAssetNotFound
	}
	if record.Owner != caller {
		return ErrNotOwner
	}
	previous := record.Owner
	record.Owner = recipient
	if err := e.state.AssetPut(record); err != nil {
		return err
	}
	e.emit(TransferredEvent{ID: id, From: previous, To: recipient})
	return nil
}

// Asset returns the record for id without mutating state. Any caller may read
// any asset.
func (e *Engine) Asset(id uint64) (*Asset, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	record, ok, err := e.state.AssetGet(id)
	if err != nil {
		return nil, false, err
	}
	if !ok || record == nil {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

// Execute runs a typed call on behalf of caller. The returned value is the
// call's success payload: the new id for CreateAsset, the record (or nil when
// absent) for GetAssetData, and nil for Transfer.
func (e *Engine) Execute(caller string, call Call) (interface{}, error) {
	switch c := call.(type) {
	case CreateAsset:
		return e.CreateAsset(caller, c.ContentHash, c.Metadata)
	case Transfer:
		return nil, e.Transfer(caller, c.AssetID, c.Recipient)
	case GetAssetData:
		record, ok, err := e.Asset(c.AssetID)
		if err != nil || !ok {
			return nil, err
		}
		return record, nil
	default:
		return nil, fmt.Errorf("asset registry: unsupported call %T: %w", call, types.ErrUnknownMethod)
	}
}
