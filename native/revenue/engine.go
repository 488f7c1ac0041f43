package revenue

import (
	"errors"
	"fmt"
	"math/big"

	"assetledger/core/events"
	"assetledger/core/types"
)

var (
	errNilState    = errors.New("revenue ledger: state not configured")
	errAdminNotSet = errors.New("revenue ledger: administrator not configured")

	// ErrNotAdministrator is returned when a non-administrator configures a share.
	ErrNotAdministrator = fmt.Errorf("revenue ledger: caller is not the administrator: %w", types.ErrForbidden)
	// ErrInvalidShares is returned when a split does not add up to 100 percent.
	ErrInvalidShares = fmt.Errorf("revenue ledger: creator and host shares must sum to %d: %w", PercentBase, types.ErrInvalidArgument)
	// ErrShareNotFound is returned when distributing for an unconfigured asset.
	ErrShareNotFound = fmt.Errorf("revenue ledger: revenue share not found: %w", types.ErrNotFound)
	// ErrInvalidAmount is returned for missing or negative distribution amounts.
	ErrInvalidAmount = fmt.Errorf("revenue ledger: amount must be non-negative: %w", types.ErrInvalidArgument)
)

// State is the persistence contract of the ledger. RevenueBalancesPut must
// write every entry or none of them.
type State interface {
	RevenueShareGet(assetID uint64) (*Share, bool, error)
	RevenueSharePut(share *Share) error
	RevenueBalanceGet(principal string) (*big.Int, error)
	RevenueBalancesPut(entries []BalanceEntry) error
}

// Engine wires revenue split configuration and balance accounting with
// persistence and event emission. The administrator is fixed at construction.
type Engine struct {
	state   State
	emitter events.Emitter
	admin   string
}

// NewEngine constructs a ledger administered by admin, backed by a fresh
// in-memory state.
func NewEngine(admin string) *Engine {
	return &Engine{
		state:   NewMemState(),
		emitter: events.NoopEmitter{},
		admin:   admin,
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

// Administrator returns the principal allowed to configure shares.
func (e *Engine) Administrator() string {
	if e == nil {
		return ""
	}
	return e.admin
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

// SetRevenueShare inserts or replaces the split for assetID. The asset id is
// not checked against the registry.
func (e *Engine) SetRevenueShare(caller string, assetID uint64, creator string, creatorShare, hostShare uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.admin == "" {
		return errAdminNotSet
	}
	if caller != e.admin {
		return ErrNotAdministrator
	}
	if !validShares(creatorShare, hostShare) {
		return ErrInvalidShares
	}
	share := &Share{
		AssetID:      assetID,
		Creator:      creator,
		CreatorShare: creatorShare,
		HostShare:    hostShare,
	}
	if err := e.state.RevenueSharePut(share); err != nil {
		return err
	}
	e.emit(ShareSetEvent{AssetID: assetID, Creator: creator, CreatorShare: creatorShare, HostShare: hostShare})
	return nil
}

// DistributeRevenue splits amount for assetID, crediting the configured
// creator and the caller acting as host.
func (e *Engine) DistributeRevenue(caller string, assetID uint64, amount *big.Int) (*Split, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	share, ok, err := e.state.RevenueShareGet(assetID)
	if err != nil {
		return nil, err
	}
	if !ok || share == nil {
		return nil, ErrShareNotFound
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	creatorAmount, hostAmount := splitAmount(amount, share.CreatorShare)

	creatorBalance, err := e.state.RevenueBalanceGet(share.Creator)
	if err != nil {
		return nil, err
	}
	creatorBalance = new(big.Int).Add(newBigInt(creatorBalance), creatorAmount)
	entries := []BalanceEntry{{Principal: share.Creator, Amount: creatorBalance}}
	if caller == share.Creator {
		entries[0].Amount = new(big.Int).Add(creatorBalance, hostAmount)
	} else {
		hostBalance, err := e.state.RevenueBalanceGet(caller)
		if err != nil {
			return nil, err
		}
		entries = append(entries, BalanceEntry{
			Principal: caller,
			Amount:    new(big.Int).Add(newBigInt(hostBalance), hostAmount),
		})
	}
	if err := e.state.RevenueBalancesPut(entries); err != nil {
		return nil, err
	}
	e.emit(DistributedEvent{
		AssetID:       assetID,
		Creator:       share.Creator,
		Host:          caller,
		CreatorAmount: creatorAmount,
		HostAmount:    hostAmount,
	})
	return &Split{
		AssetID:       assetID,
		Creator:       share.Creator,
		Host:          caller,
		CreatorAmount: newBigInt(creatorAmount),
		HostAmount:    newBigInt(hostAmount),
	}, nil
}

// Balance returns the accumulated balance of principal. Unknown principals
// hold zero.
func (e *Engine) Balance(principal string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	balance, err := e.state.RevenueBalanceGet(principal)
	if err != nil {
		return nil, err
	}
	return newBigInt(balance), nil
}

// Share returns the split configured for assetID without mutating state.
func (e *Engine) Share(assetID uint64) (*Share, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	share, ok, err := e.state.RevenueShareGet(assetID)
	if err != nil {
		return nil, false, err
	}
	if !ok || share == nil {
		return nil, false, nil
	}
	return share.Clone(), true, nil
}

// Execute runs a typed call on behalf of caller. Only GetBalance carries a
// success payload.
func (e *Engine) Execute(caller string, call Call) (interface{}, error) {
	switch c := call.(type) {
	case SetRevenueShare:
		return nil, e.SetRevenueShare(caller, c.AssetID, c.Creator, c.CreatorShare, c.HostShare)
	case DistributeRevenue:
		_, err := e.DistributeRevenue(caller, c.AssetID, c.Amount)
		return nil, err
	case GetBalance:
		balance, err := e.Balance(c.Principal)
		if err != nil {
			return nil, err
		}
		return balance, nil
	default:
		return nil, fmt.Errorf("revenue ledger: unsupported call %T: %w", call, types.ErrUnknownMethod)
	}
}

func newBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
