package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"assetledger/core/events"
	nodestate "assetledger/core/state"
	"assetledger/core/types"
	"assetledger/native/asset"
	"assetledger/native/revenue"
	"assetledger/observability"
	"assetledger/observability/logging"
	"assetledger/storage"
)

var errNilEngine = errors.New("core: engine not configured")

// Node is the central controller. It owns the asset registry and the revenue
// ledger and runs every dispatched call one at a time.
type Node struct {
	mu      sync.Mutex
	assets  *asset.Engine
	revenue *revenue.Engine
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewNode wires the supplied engines into a Node.
func NewNode(assets *asset.Engine, ledger *revenue.Engine) *Node {
	return &Node{
		assets:  assets,
		revenue: ledger,
		logger:  slog.Default(),
		tracer:  otel.Tracer("assetledger/core"),
	}
}

// NewNodeWithDatabase builds both engines on top of db and routes their events
// to emitter.
func NewNodeWithDatabase(db storage.Database, administrator string, emitter events.Emitter) *Node {
	assets := asset.NewEngine()
	assets.SetState(nodestate.NewAssetStore(db))
	assets.SetEmitter(emitter)

	ledger := revenue.NewEngine(administrator)
	ledger.SetState(nodestate.NewRevenueStore(db))
	ledger.SetEmitter(emitter)

	return NewNode(assets, ledger)
}

// SetLogger replaces the node logger. A nil logger restores the default.
func (n *Node) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	n.logger = logger
}

// Administrator returns the ledger administrator principal.
func (n *Node) Administrator() string {
	if n.revenue == nil {
		return ""
	}
	return n.revenue.Administrator()
}

// Invoke decodes and runs method on behalf of caller. Every failure is folded
// into the returned Result.
func (n *Node) Invoke(ctx context.Context, caller, method string, params []json.RawMessage) types.Result {
	start := time.Now()
	module, _ := ModuleOf(method)
	ctx, span := n.tracer.Start(ctx, "ledger."+method,
		trace.WithAttributes(
			attribute.String("ledger.module", module),
			attribute.String("ledger.method", method),
		))
	defer span.End()

	value, err := n.invoke(ctx, caller, method, params)
	elapsed := time.Since(start)
	if err != nil {
		result := types.Fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Int("ledger.error_code", int(result.Error)))
		observability.ModuleMetrics().Observe(module, method, result.Error.String(), elapsed)
		level := slog.LevelInfo
		if result.Error == types.CodeInternal {
			level = slog.LevelError
		}
		n.logger.Log(ctx, level, "ledger call failed",
			slog.String("method", method),
			logging.MaskPrincipal("caller", caller),
			slog.String("code", result.Error.String()),
			slog.Any("error", err))
		return result
	}
	span.SetStatus(codes.Ok, "")
	observability.ModuleMetrics().Observe(module, method, "", elapsed)
	n.logger.Debug("ledger call",
		slog.String("method", method),
		logging.MaskPrincipal("caller", caller),
		slog.Duration("elapsed", elapsed))
	return types.Ok(value)
}

func (n *Node) invoke(ctx context.Context, caller, method string, params []json.RawMessage) (interface{}, error) {
	call, err := DecodeCall(method, params)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("core: call abandoned: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	// The context may have ended while the call waited for the lock.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("core: call abandoned: %w", err)
	}

	switch c := call.(type) {
	case asset.Call:
		if n.assets == nil {
			return nil, errNilEngine
		}
		return n.assets.Execute(caller, c)
	case revenue.Call:
		if n.revenue == nil {
			return nil, errNilEngine
		}
		return n.revenue.Execute(caller, c)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownMethod, method)
	}
}

// Asset returns a copy of the asset record, if present.
func (n *Node) Asset(id uint64) (*asset.Asset, bool, error) {
	if n.assets == nil {
		return nil, false, errNilEngine
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.assets.Asset(id)
}

// Share returns a copy of the revenue share configured for assetID, if any.
func (n *Node) Share(assetID uint64) (*revenue.Share, bool, error) {
	if n.revenue == nil {
		return nil, false, errNilEngine
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.revenue.Share(assetID)
}
