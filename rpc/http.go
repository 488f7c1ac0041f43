package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"assetledger/core"
	"assetledger/core/types"
	"assetledger/rpc/middleware"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeServerError    = -32000
)

// Config wires the transport concerns around the node.
type Config struct {
	ServiceName string
	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimit
	LogRequests bool
}

type Server struct {
	node    *core.Node
	cfg     Config
	logger  *slog.Logger
	obs     *middleware.Observability
	handler http.Handler
}

func NewServer(node *core.Node, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ledgerd"
	}
	s := &Server{
		node:   node,
		cfg:    cfg,
		logger: logger,
		obs: middleware.NewObservability(middleware.ObservabilityConfig{
			ServiceName: cfg.ServiceName,
			LogRequests: cfg.LogRequests,
		}, logger),
	}
	s.handler = otelhttp.NewHandler(s.routes(), cfg.ServiceName)
	return s
}

func (s *Server) routes() http.Handler {
	auth := middleware.NewAuthenticator(s.cfg.Auth, s.logger)
	limiter := middleware.NewRateLimiter(s.cfg.RateLimit, s.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.obs.MetricsHandler())

	r.Group(func(gr chi.Router) {
		gr.Use(s.obs.Middleware("rpc"))
		gr.Use(auth.Middleware)
		gr.Use(limiter.Middleware)
		gr.Post("/rpc", s.handle)
	})

	r.Route("/v1", func(vr chi.Router) {
		vr.Use(s.obs.Middleware("v1"))
		vr.Use(limiter.Middleware)
		vr.Get("/assets/{assetID}", s.handleGetAsset)
		vr.Get("/shares/{assetID}", s.handleGetShare)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusForCode maps a ledger result code onto the HTTP status of the reply.
func statusForCode(code types.Code) int {
	switch code {
	case types.CodeInvalidArgument:
		return http.StatusBadRequest
	case types.CodeForbidden:
		return http.StatusForbidden
	case types.CodeNotFound, types.CodeUnknownMethod:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handle decodes a JSON-RPC envelope and dispatches it through the node.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, nil)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, req.ID, codeServerError, "caller not authenticated", nil)
		return
	}

	result := s.node.Invoke(r.Context(), caller, req.Method, req.Params)
	if !result.Success {
		writeError(w, statusForCode(result.Error), req.ID, int(result.Error), result.Message, nil)
		return
	}
	writeResult(w, req.ID, result.Value)
}

func parseAssetID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "assetID"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid asset id")
	}
	return id, nil
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseAssetID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	record, ok, err := s.node.Asset(id)
	if err != nil {
		s.logger.Error("asset lookup failed", slog.Uint64("assetId", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "asset not found"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGetShare(w http.ResponseWriter, r *http.Request) {
	id, err := parseAssetID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	share, ok, err := s.node.Share(id)
	if err != nil {
		s.logger.Error("share lookup failed", slog.Uint64("assetId", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "revenue share not found"})
		return
	}
	writeJSON(w, http.StatusOK, share)
}
