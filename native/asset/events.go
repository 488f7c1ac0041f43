package asset

import (
	"assetledger/core/events"
	"assetledger/core/types"
)

const (
	// EventTypeAssetCreated is emitted when a new asset id is minted.
	EventTypeAssetCreated = "asset.created"
	// EventTypeAssetTransferred is emitted when an asset changes hands.
	EventTypeAssetTransferred = "asset.transferred"
)

// CreatedEvent describes a freshly registered asset.
type CreatedEvent struct {
	ID          uint64
	Owner       string
	ContentHash string
}

func (CreatedEvent) EventType() string { return EventTypeAssetCreated }

func (e CreatedEvent) Event() *types.Event {
	return &types.Event{
		Type: EventTypeAssetCreated,
		Attributes: map[string]string{
			"assetId":     events.FormatID(e.ID),
			"owner":       e.Owner,
			"contentHash": e.ContentHash,
		},
	}
}

// TransferredEvent describes an ownership change.
type TransferredEvent struct {
	ID   uint64
	From string
	To   string
}

func (TransferredEvent) EventType() string { return EventTypeAssetTransferred }

func (e TransferredEvent) Event() *types.Event {
	return &types.Event{
		Type: EventTypeAssetTransferred,
		Attributes: map[string]string{
			"assetId": events.FormatID(e.ID),
			"from":    e.From,
			"to":      e.To,
		},
	}
}
