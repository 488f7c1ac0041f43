package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

const testAdmin = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvEnvironment, "")
	t.Setenv(EnvJWTSecret, "")
	t.Setenv(EnvOTLPEndpoint, "")
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "ledger.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddress)
	require.Equal(t, StorageLevelDB, cfg.Storage)
	require.Equal(t, "ledgerd", cfg.Telemetry.ServiceName)

	_, err = os.Stat(path)
	require.NoError(t, err)

	var persisted Config
	_, err = toml.DecodeFile(path, &persisted)
	require.NoError(t, err)
	require.Equal(t, cfg.RPC, persisted.RPC)
}

func TestLoadParsesTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ledger.toml")
	contents := `ListenAddress = "127.0.0.1:9000"
DataDir = "/var/lib/ledger"
Storage = "Memory"
Administrator = "` + testAdmin + `"

[RPC]
AuthEnabled = true
HMACSecret = "file-secret"
Issuer = "ledger"
Audience = "clients"
ClockSkewSeconds = 5
RatePerSecond = 2.5
Burst = 4
ReadTimeout = 3
WriteTimeout = 6
IdleTimeout = 9

[Telemetry]
ServiceName = "ledger-test"
Endpoint = "collector:4318"
Traces = true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.ListenAddress)
	require.Equal(t, StorageMemory, cfg.Storage)
	require.Equal(t, testAdmin, cfg.Administrator)
	require.True(t, cfg.RPC.AuthEnabled)
	require.Equal(t, "file-secret", cfg.RPC.HMACSecret)
	require.Equal(t, 2.5, cfg.RPC.RatePerSecond)
	require.Equal(t, 4, cfg.RPC.Burst)
	require.Equal(t, "5s", cfg.RPC.ClockSkew().String())
	read, write, idle := cfg.RPC.Timeouts()
	require.Equal(t, "3s", read.String())
	require.Equal(t, "6s", write.String())
	require.Equal(t, "9s", idle.String())
	require.Equal(t, "ledger-test", cfg.Telemetry.ServiceName)
	require.True(t, cfg.Telemetry.Traces)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsUnknownTOMLField(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ledger.toml")
	require.NoError(t, os.WriteFile(path, []byte("GenesisFile = \"genesis.json\"\n"), 0o644))

	_, err := Load(path)
	require.ErrorContains(t, err, "GenesisFile")
}

func TestLoadParsesYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	contents := `listen: ":7000"
storage: memory
administrator: admin
rpc:
  authEnabled: false
  ratePerSecond: 10
  burst: 20
telemetry:
  environment: staging
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.ListenAddress)
	require.Equal(t, StorageMemory, cfg.Storage)
	require.Equal(t, "admin", cfg.Administrator)
	require.Equal(t, float64(10), cfg.RPC.RatePerSecond)
	require.Equal(t, 20, cfg.RPC.Burst)
	require.Equal(t, "staging", cfg.Telemetry.Environment)
	require.Equal(t, 15, cfg.RPC.ReadTimeout, "unset fields keep defaults")
}

func TestLoadMissingYAMLFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEnvironment, "prod")
	t.Setenv(EnvJWTSecret, "env-secret")
	t.Setenv(EnvOTLPEndpoint, "otel:4318")

	path := filepath.Join(t.TempDir(), "ledger.toml")
	require.NoError(t, os.WriteFile(path, []byte("Administrator = \"admin\"\n[RPC]\nHMACSecret = \"file\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Telemetry.Environment)
	require.Equal(t, "env-secret", cfg.RPC.HMACSecret)
	require.Equal(t, "otel:4318", cfg.Telemetry.Endpoint)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Administrator = testAdmin
		return cfg
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"empty administrator": func(c *Config) { c.Administrator = "  " },
		"unknown storage":     func(c *Config) { c.Storage = "postgres" },
		"leveldb without dir": func(c *Config) { c.DataDir = "" },
		"missing listener":    func(c *Config) { c.ListenAddress = "" },
		"auth without secret": func(c *Config) { c.RPC.AuthEnabled = true },
		"negative burst":      func(c *Config) { c.RPC.Burst = -1 },
		"negative timeout":    func(c *Config) { c.RPC.ReadTimeout = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}

	var nilCfg *Config
	require.Error(t, nilCfg.Validate())
}
