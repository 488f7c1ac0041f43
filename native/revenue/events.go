package revenue

import (
	"math/big"
	"strconv"

	"assetledger/core/events"
	"assetledger/core/types"
)

const (
	// EventTypeShareSet is emitted when a revenue split is configured.
	EventTypeShareSet = "revenue.share.set"
	// EventTypeDistributed is emitted when a payment is split and credited.
	EventTypeDistributed = "revenue.distributed"
)

// ShareSetEvent captures a new or replaced split configuration.
type ShareSetEvent struct {
	AssetID      uint64
	Creator      string
	CreatorShare uint64
	HostShare    uint64
}

func (ShareSetEvent) EventType() string { return EventTypeShareSet }

func (e ShareSetEvent) Event() *types.Event {
	return &types.Event{
		Type: EventTypeShareSet,
		Attributes: map[string]string{
			"assetId":      events.FormatID(e.AssetID),
			"creator":      e.Creator,
			"creatorShare": strconv.FormatUint(e.CreatorShare, 10),
			"hostShare":    strconv.FormatUint(e.HostShare, 10),
		},
	}
}

// DistributedEvent captures the credits applied by one distribution.
type DistributedEvent struct {
	AssetID       uint64
	Creator       string
	Host          string
	CreatorAmount *big.Int
	HostAmount    *big.Int
}

func (DistributedEvent) EventType() string { return EventTypeDistributed }

func (e DistributedEvent) Event() *types.Event {
	return &types.Event{
		Type: EventTypeDistributed,
		Attributes: map[string]string{
			"assetId":       events.FormatID(e.AssetID),
			"creator":       e.Creator,
			"host":          e.Host,
			"creatorAmount": events.FormatAmount(e.CreatorAmount),
			"hostAmount":    events.FormatAmount(e.HostAmount),
		},
	}
}
