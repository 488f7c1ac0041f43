package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Storage backends understood by the daemon.
const (
	StorageMemory  = "memory"
	StorageLevelDB = "leveldb"
)

// Environment variables that override file settings.
const (
	EnvEnvironment  = "LEDGER_ENV"
	EnvJWTSecret    = "LEDGER_JWT_SECRET"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type Config struct {
	ListenAddress string          `toml:"ListenAddress" yaml:"listen"`
	DataDir       string          `toml:"DataDir" yaml:"dataDir"`
	Storage       string          `toml:"Storage" yaml:"storage"`
	Administrator string          `toml:"Administrator" yaml:"administrator"`
	RPC           RPCConfig       `toml:"RPC" yaml:"rpc"`
	Telemetry     TelemetryConfig `toml:"Telemetry" yaml:"telemetry"`
}

// RPCConfig controls the JSON-RPC listener. Timeouts are in seconds.
// TrustProxyHeaders keys anonymous rate limits on X-Real-IP and
// X-Forwarded-For; enable it only behind a proxy that sets them.
type RPCConfig struct {
	AuthEnabled       bool    `toml:"AuthEnabled" yaml:"authEnabled"`
	HMACSecret        string  `toml:"HMACSecret" yaml:"hmacSecret"`
	Issuer            string  `toml:"Issuer" yaml:"issuer"`
	Audience          string  `toml:"Audience" yaml:"audience"`
	ClockSkewSeconds  int     `toml:"ClockSkewSeconds" yaml:"clockSkewSeconds"`
	RatePerSecond     float64 `toml:"RatePerSecond" yaml:"ratePerSecond"`
	Burst             int     `toml:"Burst" yaml:"burst"`
	ReadTimeout       int     `toml:"ReadTimeout" yaml:"readTimeout"`
	WriteTimeout      int     `toml:"WriteTimeout" yaml:"writeTimeout"`
	IdleTimeout       int     `toml:"IdleTimeout" yaml:"idleTimeout"`
	TrustProxyHeaders bool    `toml:"TrustProxyHeaders" yaml:"trustProxyHeaders"`
}

type TelemetryConfig struct {
	ServiceName string `toml:"ServiceName" yaml:"serviceName"`
	Environment string `toml:"Environment" yaml:"environment"`
	Endpoint    string `toml:"Endpoint" yaml:"endpoint"`
	Insecure    bool   `toml:"Insecure" yaml:"insecure"`
	Traces      bool   `toml:"Traces" yaml:"traces"`
	Metrics     bool   `toml:"Metrics" yaml:"metrics"`
}

// ClockSkew returns the tolerated token clock skew.
func (r RPCConfig) ClockSkew() time.Duration {
	return time.Duration(r.ClockSkewSeconds) * time.Second
}

// Timeouts returns the HTTP server read, write and idle timeouts.
func (r RPCConfig) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(r.ReadTimeout) * time.Second,
		time.Duration(r.WriteTimeout) * time.Second,
		time.Duration(r.IdleTimeout) * time.Second
}

// Default returns the development configuration.
func Default() *Config {
	return &Config{
		ListenAddress: ":8080",
		DataDir:       "./ledger-data",
		Storage:       StorageLevelDB,
		Administrator: "",
		RPC: RPCConfig{
			AuthEnabled:      false,
			ClockSkewSeconds: 30,
			RatePerSecond:    50,
			Burst:            100,
			ReadTimeout:      15,
			WriteTimeout:     15,
			IdleTimeout:      60,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "ledgerd",
			Environment: "dev",
			Insecure:    true,
		},
	}
}

// Load loads the configuration from the given path. A missing TOML file is
// created with defaults. YAML files are read when the extension is .yaml or
// .yml.
func Load(path string) (*Config, error) {
	cfg := Default()
	if isYAML(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	} else {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			created, err := createDefault(path)
			if err != nil {
				return nil, err
			}
			cfg = created
		} else {
			meta, err := toml.DecodeFile(path, cfg)
			if err != nil {
				return nil, fmt.Errorf("decode config %s: %w", path, err)
			}
			if undecoded := meta.Undecoded(); len(undecoded) > 0 {
				return nil, fmt.Errorf("config file %s has unknown field %s", path, undecoded[0].String())
			}
		}
	}

	applyEnv(cfg)
	cfg.normalise()
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv(EnvEnvironment)); env != "" {
		cfg.Telemetry.Environment = env
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.RPC.HMACSecret = secret
	}
	if endpoint := strings.TrimSpace(os.Getenv(EnvOTLPEndpoint)); endpoint != "" {
		cfg.Telemetry.Endpoint = endpoint
	}
}

func (c *Config) normalise() {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	if c.Storage == "" {
		c.Storage = StorageLevelDB
	}
	c.Administrator = strings.TrimSpace(c.Administrator)
	if strings.TrimSpace(c.Telemetry.ServiceName) == "" {
		c.Telemetry.ServiceName = "ledgerd"
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
