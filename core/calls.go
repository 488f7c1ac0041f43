package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"assetledger/core/types"
	"assetledger/native/asset"
	"assetledger/native/revenue"
)

// Module names used for routing, metrics and span attributes.
const (
	ModuleAsset   = "asset"
	ModuleRevenue = "revenue"
)

// ModuleOf reports which component serves method. The boolean is false for
// methods outside the dispatch table.
func ModuleOf(method string) (string, bool) {
	switch method {
	case asset.MethodCreateAsset, asset.MethodTransfer, asset.MethodGetAssetData:
		return ModuleAsset, true
	case revenue.MethodSetRevenueShare, revenue.MethodDistributeRevenue, revenue.MethodGetBalance:
		return ModuleRevenue, true
	default:
		return "", false
	}
}

// Methods lists the dispatch table in a stable order.
func Methods() []string {
	return []string{
		asset.MethodCreateAsset,
		asset.MethodTransfer,
		asset.MethodGetAssetData,
		revenue.MethodSetRevenueShare,
		revenue.MethodDistributeRevenue,
		revenue.MethodGetBalance,
	}
}

// DecodeCall turns a method name and positional parameters into a typed call.
// The returned value is either an asset.Call or a revenue.Call.
func DecodeCall(method string, params []json.RawMessage) (interface{}, error) {
	switch method {
	case asset.MethodCreateAsset:
		if err := requireArity(method, params, 2); err != nil {
			return nil, err
		}
		contentHash, err := decodeString(params[0], "content-hash")
		if err != nil {
			return nil, err
		}
		metadata, err := decodeString(params[1], "metadata")
		if err != nil {
			return nil, err
		}
		return asset.CreateAsset{ContentHash: contentHash, Metadata: metadata}, nil
	case asset.MethodTransfer:
		if err := requireArity(method, params, 2); err != nil {
			return nil, err
		}
		id, err := decodeUint(params[0], "asset-id")
		if err != nil {
			return nil, err
		}
		recipient, err := decodeString(params[1], "recipient")
		if err != nil {
			return nil, err
		}
		return asset.Transfer{AssetID: id, Recipient: recipient}, nil
	case asset.MethodGetAssetData:
		if err := requireArity(method, params, 1); err != nil {
			return nil, err
		}
		id, err := decodeUint(params[0], "asset-id")
		if err != nil {
			return nil, err
		}
		return asset.GetAssetData{AssetID: id}, nil
	case revenue.MethodSetRevenueShare:
		if err := requireArity(method, params, 4); err != nil {
			return nil, err
		}
		id, err := decodeUint(params[0], "asset-id")
		if err != nil {
			return nil, err
		}
		creator, err := decodeString(params[1], "creator")
		if err != nil {
			return nil, err
		}
		creatorShare, err := decodeUint(params[2], "creator-share")
		if err != nil {
			return nil, err
		}
		hostShare, err := decodeUint(params[3], "host-share")
		if err != nil {
			return nil, err
		}
		return revenue.SetRevenueShare{AssetID: id, Creator: creator, CreatorShare: creatorShare, HostShare: hostShare}, nil
	case revenue.MethodDistributeRevenue:
		if err := requireArity(method, params, 2); err != nil {
			return nil, err
		}
		id, err := decodeUint(params[0], "asset-id")
		if err != nil {
			return nil, err
		}
		amount, err := decodeAmount(params[1], "amount")
		if err != nil {
			return nil, err
		}
		return revenue.DistributeRevenue{AssetID: id, Amount: amount}, nil
	case revenue.MethodGetBalance:
		if err := requireArity(method, params, 1); err != nil {
			return nil, err
		}
		principal, err := decodeString(params[0], "principal")
		if err != nil {
			return nil, err
		}
		return revenue.GetBalance{Principal: principal}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownMethod, method)
	}
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", types.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func requireArity(method string, params []json.RawMessage, want int) error {
	if len(params) != want {
		return invalidArgument("%s expects %d arguments, got %d", method, want, len(params))
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(raw json.RawMessage, field string) (string, error) {
	if isNull(raw) {
		return "", invalidArgument("%s is required", field)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", invalidArgument("%s must be a string", field)
	}
	return value, nil
}

// decodeUint accepts a non-negative JSON integer or a decimal string.
func decodeUint(raw json.RawMessage, field string) (uint64, error) {
	value, err := decodeInteger(raw, field)
	if err != nil {
		return 0, err
	}
	if value.Sign() < 0 || !value.IsUint64() {
		return 0, invalidArgument("%s out of range", field)
	}
	return value.Uint64(), nil
}

// decodeAmount accepts any JSON integer or decimal string. The sign is left
// for the ledger to judge.
func decodeAmount(raw json.RawMessage, field string) (*big.Int, error) {
	return decodeInteger(raw, field)
}

func decodeInteger(raw json.RawMessage, field string) (*big.Int, error) {
	if isNull(raw) {
		return nil, invalidArgument("%s is required", field)
	}
	text := string(bytes.TrimSpace(raw))
	if strings.HasPrefix(text, `"`) {
		var quoted string
		if err := json.Unmarshal(raw, &quoted); err != nil {
			return nil, invalidArgument("%s must be an integer", field)
		}
		text = strings.TrimSpace(quoted)
	} else {
		var number json.Number
		if err := json.Unmarshal(raw, &number); err != nil {
			return nil, invalidArgument("%s must be an integer", field)
		}
		text = number.String()
	}
	value, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, invalidArgument("%s must be an integer", field)
	}
	return value, nil
}
