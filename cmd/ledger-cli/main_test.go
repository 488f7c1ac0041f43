package main

import (
	"bytes"
	"encoding/hex"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"

	"assetledger/config"
	"assetledger/core"
	"assetledger/core/events"
	"assetledger/rpc"
	"assetledger/rpc/middleware"
	"assetledger/storage"
)

const contractOwner = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

func startDaemon(t *testing.T, cfg rpc.Config) string {
	t.Helper()
	node := core.NewNodeWithDatabase(storage.NewMemDB(), contractOwner, events.NoopEmitter{})
	srv := httptest.NewServer(rpc.NewServer(node, cfg, nil))
	t.Cleanup(srv.Close)
	return srv.URL
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String())
}

func TestCLIAssetAndRevenueFlow(t *testing.T) {
	url := startDaemon(t, rpc.Config{})

	code, out, errOut := runCLI(t, "--rpc", url, "--caller", "user1", "create-asset", "0x1234567890", "https://example.com/metadata")
	require.Equal(t, 0, code, errOut)
	require.Equal(t, "1", out)

	code, out, _ = runCLI(t, "--rpc", url, "--caller", "user1", "transfer", "1", "user2")
	require.Equal(t, 0, code)
	require.Equal(t, "null", out)

	code, _, errOut = runCLI(t, "--rpc", url, "--caller", "user1", "transfer", "1", "user3")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "rpc error 403")

	code, out, _ = runCLI(t, "--rpc", url, "--caller", "user1", "asset", "1")
	require.Equal(t, 0, code)
	require.JSONEq(t, `{"id":1,"owner":"user2","content-hash":"0x1234567890","metadata":"https://example.com/metadata"}`, out)

	code, _, _ = runCLI(t, "--rpc", url, "--caller", contractOwner, "set-share", "1", "creator1", "70", "30")
	require.Equal(t, 0, code)

	code, out, _ = runCLI(t, "--rpc", url, "share", "1")
	require.Equal(t, 0, code)
	require.JSONEq(t, `{"assetId":1,"creator":"creator1","creator-share":70,"host-share":30}`, out)

	code, _, _ = runCLI(t, "--rpc", url, "--caller", "host1", "distribute", "1", "1000")
	require.Equal(t, 0, code)

	_, out, _ = runCLI(t, "--rpc", url, "--caller", "anyone", "balance", "creator1")
	require.Equal(t, "700", out)
	_, out, _ = runCLI(t, "--rpc", url, "--caller", "anyone", "balance", "host1")
	require.Equal(t, "300", out)
}

func TestCLIUsageErrors(t *testing.T) {
	code, _, _ := runCLI(t)
	require.Equal(t, 2, code)

	code, _, errOut := runCLI(t, "transfer", "1")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "transfer <asset-id> <recipient>")

	code, _, errOut = runCLI(t, "asset", "one")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "invalid asset-id")

	code, _, errOut = runCLI(t, "launch")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, `unknown command "launch"`)
}

func TestCLIShareNotFound(t *testing.T) {
	url := startDaemon(t, rpc.Config{})
	code, _, errOut := runCLI(t, "--rpc", url, "share", "9")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "revenue share not found")
}

func TestCLIHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.bin")
	data := []byte("asset payload")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	code, out, _ := runCLI(t, "hash", path)
	require.Equal(t, 0, code)
	sum := blake3.Sum256(data)
	require.Equal(t, "0x"+hex.EncodeToString(sum[:]), out)

	code, _, _ = runCLI(t, "hash", filepath.Join(t.TempDir(), "missing"))
	require.Equal(t, 1, code)
}

func TestCLITokenAuthenticatesAgainstDaemon(t *testing.T) {
	const secret = "cli-test-secret"
	t.Setenv(config.EnvJWTSecret, secret)
	url := startDaemon(t, rpc.Config{Auth: middleware.AuthConfig{Enabled: true, HMACSecret: secret}})

	code, token, errOut := runCLI(t, "token", "--ttl", "1h", "user1")
	require.Equal(t, 0, code, errOut)
	require.NotEmpty(t, token)

	code, out, errOut := runCLI(t, "--rpc", url, "--token", token, "create-asset", "0x01", "meta")
	require.Equal(t, 0, code, errOut)
	require.Equal(t, "1", out)

	code, _, _ = runCLI(t, "--rpc", url, "--caller", "user1", "create-asset", "0x01", "meta")
	require.Equal(t, 1, code, "header callers are refused when authentication is on")
}

func TestCLITokenRequiresSecret(t *testing.T) {
	t.Setenv(config.EnvJWTSecret, "")
	code, _, errOut := runCLI(t, "token", "user1")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, config.EnvJWTSecret)
}
