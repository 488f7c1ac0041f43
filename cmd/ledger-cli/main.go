package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
	"lukechampine.com/blake3"

	"assetledger/config"
	"assetledger/rpc"
	"assetledger/rpc/middleware"
)

const (
	envRPCURL = "LEDGER_RPC_URL"
	envToken  = "LEDGER_TOKEN"
	envCaller = "LEDGER_CALLER"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cli struct {
	endpoint string
	token    string
	caller   string
	stdout   io.Writer
	stderr   io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	fs := flag.NewFlagSet("ledger-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.endpoint, "rpc", envOr(envRPCURL, "http://localhost:8080"), "ledger daemon base URL")
	fs.StringVar(&c.token, "token", os.Getenv(envToken), "bearer token naming the caller")
	fs.StringVar(&c.caller, "caller", os.Getenv(envCaller), "caller principal when the daemon runs without authentication")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}
	if err := c.dispatch(rest[0], rest[1:]); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			return 2
		}
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return "usage: ledger-cli " + string(e) }

func (c *cli) dispatch(command string, args []string) error {
	switch command {
	case "create-asset":
		if len(args) != 2 {
			return usageError("create-asset <content-hash> <metadata>")
		}
		return c.callAndPrint("create-asset", args[0], args[1])
	case "transfer":
		if len(args) != 2 {
			return usageError("transfer <asset-id> <recipient>")
		}
		id, err := parseUint("asset-id", args[0])
		if err != nil {
			return err
		}
		return c.callAndPrint("transfer", id, args[1])
	case "asset":
		if len(args) != 1 {
			return usageError("asset <asset-id>")
		}
		id, err := parseUint("asset-id", args[0])
		if err != nil {
			return err
		}
		return c.callAndPrint("get-asset-data", id)
	case "share":
		if len(args) != 1 {
			return usageError("share <asset-id>")
		}
		id, err := parseUint("asset-id", args[0])
		if err != nil {
			return err
		}
		return c.getAndPrint(fmt.Sprintf("/v1/shares/%d", id))
	case "set-share":
		if len(args) != 4 {
			return usageError("set-share <asset-id> <creator> <creator-share> <host-share>")
		}
		id, err := parseUint("asset-id", args[0])
		if err != nil {
			return err
		}
		creatorShare, err := parseUint("creator-share", args[2])
		if err != nil {
			return err
		}
		hostShare, err := parseUint("host-share", args[3])
		if err != nil {
			return err
		}
		return c.callAndPrint("set-revenue-share", id, args[1], creatorShare, hostShare)
	case "distribute":
		if len(args) != 2 {
			return usageError("distribute <asset-id> <amount>")
		}
		id, err := parseUint("asset-id", args[0])
		if err != nil {
			return err
		}
		// Amounts travel as decimal strings so values beyond 2^53 survive.
		return c.callAndPrint("distribute-revenue", id, strings.TrimSpace(args[1]))
	case "balance":
		if len(args) != 1 {
			return usageError("balance <principal>")
		}
		return c.callAndPrint("get-balance", args[0])
	case "hash":
		if len(args) != 1 {
			return usageError("hash <file>")
		}
		sum, err := hashFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, sum)
		return nil
	case "token":
		return c.mintToken(args)
	case "help", "-h", "--help":
		printUsage(c.stdout)
		return nil
	default:
		return usageError(fmt.Sprintf("<command> [arguments] (unknown command %q)", command))
	}
}

func (c *cli) callAndPrint(method string, params ...interface{}) error {
	result, err := c.call(method, params...)
	if err != nil {
		return err
	}
	return c.printJSON(result)
}

func (c *cli) getAndPrint(path string) error {
	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(c.endpoint, "/")+path, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &failure) == nil && failure.Error != "" {
			return fmt.Errorf("%s (status %d)", failure.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return c.printJSON(body)
}

func (c *cli) call(method string, params ...interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	payload, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(c.endpoint, "/")+"/rpc", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := strings.TrimSpace(c.token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.caller != "" {
		req.Header.Set(middleware.HeaderCaller, c.caller)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var reply struct {
		Result json.RawMessage `json:"result"`
		Error  *rpc.RPCError   `json:"error"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if reply.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", reply.Error.Code, reply.Error.Message)
	}
	return reply.Result, nil
}

// printJSON indents output for terminals and keeps it compact for pipes.
func (c *cli) printJSON(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	var out bytes.Buffer
	if isTerminal(c.stdout) {
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return err
		}
	} else if err := json.Compact(&out, raw); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := c.stdout.Write(out.Bytes())
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *cli) mintToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime (0 for no expiry)")
	issuer := fs.String("issuer", "", "issuer claim")
	audience := fs.String("audience", "", "audience claim")
	if err := fs.Parse(args); err != nil {
		return usageError("token [--ttl 24h] [--issuer iss] [--audience aud] <principal>")
	}
	if fs.NArg() != 1 {
		return usageError("token [--ttl 24h] [--issuer iss] [--audience aud] <principal>")
	}
	secret := os.Getenv(config.EnvJWTSecret)
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("%s must be set to mint tokens", config.EnvJWTSecret)
	}
	token, err := middleware.SignCallerToken(secret, middleware.TokenRequest{
		Subject:  fs.Arg(0),
		Issuer:   *issuer,
		Audience: *audience,
		TTL:      *ttl,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, token)
	return nil
}

// hashFile returns the blake3 digest of the file as 0x-prefixed hex.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	hasher := blake3.New(32, nil)
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return "0x" + hex.EncodeToString(hasher.Sum(nil)), nil
}

func parseUint(field, raw string) (uint64, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, raw)
	}
	return value, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ledger-cli [--rpc url] [--token jwt] [--caller principal] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  create-asset <content-hash> <metadata>                  - Registers an asset owned by the caller")
	fmt.Fprintln(w, "  transfer <asset-id> <recipient>                         - Transfers an owned asset")
	fmt.Fprintln(w, "  asset <asset-id>                                        - Shows an asset record")
	fmt.Fprintln(w, "  share <asset-id>                                        - Shows the revenue share of an asset")
	fmt.Fprintln(w, "  set-share <asset-id> <creator> <creator-%> <host-%>     - Configures a revenue share (administrator)")
	fmt.Fprintln(w, "  distribute <asset-id> <amount>                          - Distributes revenue with the caller as host")
	fmt.Fprintln(w, "  balance <principal>                                     - Shows an accumulated balance")
	fmt.Fprintln(w, "  hash <file>                                             - Prints the blake3 content hash of a file")
	fmt.Fprintln(w, "  token [--ttl d] <principal>                             - Mints a caller token from "+config.EnvJWTSecret)
}
