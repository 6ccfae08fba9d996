package types

import (
	"errors"
	"time"
)

// StoreConfig selects and parameterizes the storage backend of the
// reference API server.
type StoreConfig struct {
	Backend  string        `json:"backend" yaml:"backend"`
	DataDir  string        `json:"data_dir" yaml:"data_dir"`
	TokenTTL time.Duration `json:"token_ttl" yaml:"token_ttl"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// DefaultTokenTTL is used when StoreConfig.TokenTTL is zero.
const DefaultTokenTTL = 8 * time.Hour

// StoreConfig validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrTokenTTLNegative = errors.New("token ttl must not be negative")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the StoreConfig is well-formed.
func (c StoreConfig) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.TokenTTL < 0 {
		return ErrTokenTTLNegative
	}
	return nil
}

// EffectiveTokenTTL returns TokenTTL or the default when unset.
func (c StoreConfig) EffectiveTokenTTL() time.Duration {
	if c.TokenTTL == 0 {
		return DefaultTokenTTL
	}
	return c.TokenTTL
}

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
