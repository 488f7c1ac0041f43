package config

import (
	"fmt"
	"strings"
)

// Validate reports the first configuration problem that prevents the daemon
// from starting.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil configuration")
	}
	if strings.TrimSpace(c.Administrator) == "" {
		return fmt.Errorf("config: Administrator must be set")
	}
	switch c.Storage {
	case StorageMemory, StorageLevelDB:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage)
	}
	if c.Storage == StorageLevelDB && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir required for leveldb storage")
	}
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress must be set")
	}
	if c.RPC.AuthEnabled && strings.TrimSpace(c.RPC.HMACSecret) == "" {
		return fmt.Errorf("rpc: HMACSecret required when AuthEnabled is true")
	}
	if c.RPC.RatePerSecond < 0 || c.RPC.Burst < 0 {
		return fmt.Errorf("rpc: rate limit values must not be negative")
	}
	if c.RPC.ReadTimeout < 0 || c.RPC.WriteTimeout < 0 || c.RPC.IdleTimeout < 0 {
		return fmt.Errorf("rpc: timeouts must not be negative")
	}
	return nil
}
