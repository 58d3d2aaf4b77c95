// Package config loads and validates the server's TOML configuration file
// (spec §6 "Configuration"). Grounded on straga-Mimir_lite's pkg/config
// (github.com/orneryd/nornicdb/pkg/config) for the section-per-concern
// struct layout, Validate(), and safe String() shape, but replaces its
// environment-variable loader with a TOML file per spec §6's explicit
// requirement ("A TOML file ... the config file is canonical").
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/kkkqkx123/graphdb/internal/txn"
)

// EnvOverride is the environment variable that, when set, overrides the
// config path passed on the command line (spec §6 "A GRAPHDB_CONFIG
// override may be honored if implemented").
const EnvOverride = "GRAPHDB_CONFIG"

type StorageConfig struct {
	Path string `toml:"path"`
}

type HTTPConfig struct {
	BindAddress string `toml:"bind_address"`
	Port        int    `toml:"port"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

type TransactionConfig struct {
	DefaultTimeout  time.Duration `toml:"default_timeout"`
	Durability      string        `toml:"durability"` // "immediate" or "none"
	TwoPhaseCommit  bool          `toml:"two_phase_commit"`
	MaxTransactions int           `toml:"max_transactions"`
	SingleWriter    bool          `toml:"single_writer"`
	CleanupInterval time.Duration `toml:"cleanup_interval"`
}

type CacheConfig struct {
	Preset             string `toml:"preset"` // default/development/production/testing
	KeywordCapacity    int    `toml:"keyword_capacity"`
	IdentifierCapacity int    `toml:"identifier_capacity"`
	ASTCapacity        int    `toml:"ast_capacity"`
	PlanCapacity       int    `toml:"plan_capacity"`
	IndexLookupCapacity int   `toml:"index_lookup_capacity"`
}

type OptimizerConfig struct {
	MaxRounds     int      `toml:"max_rounds"`
	DisabledRules []string `toml:"disabled_rules"`
	CostProfile   string   `toml:"cost_profile"`
}

type AuthConfig struct {
	Enabled           bool          `toml:"enabled"`
	MinPasswordLength int           `toml:"min_password_length"`
	MaxFailedLogins   int           `toml:"max_failed_logins"`
	LockoutDuration   time.Duration `toml:"lockout_duration"`
	SessionTTL        time.Duration `toml:"session_ttl"`
	SeedDefaultUsers  bool          `toml:"seed_default_users"`
}

// Config is the root configuration, one section per concern (spec §6).
type Config struct {
	Storage     StorageConfig     `toml:"storage"`
	HTTP        HTTPConfig        `toml:"http"`
	Logging     LoggingConfig     `toml:"logging"`
	Transaction TransactionConfig `toml:"transaction"`
	Cache       CacheConfig       `toml:"cache"`
	Optimizer   OptimizerConfig   `toml:"optimizer"`
	Auth        AuthConfig        `toml:"auth"`
}

// Default returns a Config with every field set to its documented default
// (spec §6 "All fields have defaults").
func Default() Config {
	return Config{
		Storage: StorageConfig{Path: "./data"},
		HTTP:    HTTPConfig{BindAddress: "0.0.0.0", Port: 8080},
		Logging: LoggingConfig{Level: "info", Format: "text", Output: "stdout"},
		Transaction: TransactionConfig{
			DefaultTimeout:  30 * time.Second,
			Durability:      "immediate",
			TwoPhaseCommit:  false,
			MaxTransactions: 1000,
			SingleWriter:    false,
			CleanupInterval: 10 * time.Second,
		},
		Cache: CacheConfig{
			Preset:              "default",
			KeywordCapacity:     256,
			IdentifierCapacity:  1024,
			ASTCapacity:         512,
			PlanCapacity:        512,
			IndexLookupCapacity: 1024,
		},
		Optimizer: OptimizerConfig{
			MaxRounds:     10,
			DisabledRules: nil,
			CostProfile:   "default",
		},
		Auth: AuthConfig{
			Enabled:           false,
			MinPasswordLength: 8,
			MaxFailedLogins:   5,
			LockoutDuration:   15 * time.Minute,
			SessionTTL:        0,
			SeedDefaultUsers:  false,
		},
	}
}

// Load reads and parses the TOML file at path, filling any unset fields
// with Default()'s values before validation. Unknown keys are left for the
// TOML library's own strictness (decoder default: tolerant of unknowns).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolvePath returns the config path to use: the explicit flag value if
// non-empty, otherwise GRAPHDB_CONFIG, otherwise the flag value as-is
// (possibly empty, which the caller should treat as "no config given").
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvOverride); env != "" {
		return env
	}
	return flagValue
}

// Validate rejects zero sizes and conflicting options (spec §6
// "validation at load rejects zero sizes and conflicting options").
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("config: storage.path must not be empty")
	}
	if c.HTTP.Port <= 0 {
		return fmt.Errorf("config: http.port must be positive, got %d", c.HTTP.Port)
	}

	switch c.Transaction.Durability {
	case "immediate", "none":
	default:
		return fmt.Errorf("config: transaction.durability must be \"immediate\" or \"none\", got %q", c.Transaction.Durability)
	}
	if c.Transaction.MaxTransactions <= 0 {
		return fmt.Errorf("config: transaction.max_transactions must be positive, got %d", c.Transaction.MaxTransactions)
	}
	if c.Transaction.DefaultTimeout <= 0 {
		return fmt.Errorf("config: transaction.default_timeout must be positive")
	}
	if c.Transaction.TwoPhaseCommit && c.Transaction.Durability == "none" {
		return fmt.Errorf("config: transaction.two_phase_commit conflicts with durability \"none\"")
	}

	if c.Cache.KeywordCapacity <= 0 || c.Cache.IdentifierCapacity <= 0 ||
		c.Cache.ASTCapacity <= 0 || c.Cache.PlanCapacity <= 0 || c.Cache.IndexLookupCapacity <= 0 {
		return fmt.Errorf("config: cache capacities must all be positive")
	}

	if c.Optimizer.MaxRounds <= 0 {
		return fmt.Errorf("config: optimizer.max_rounds must be positive, got %d", c.Optimizer.MaxRounds)
	}

	if c.Auth.Enabled && c.Auth.MinPasswordLength <= 0 {
		return fmt.Errorf("config: auth.min_password_length must be positive when auth is enabled")
	}

	return nil
}

// Durability maps the config's string durability setting to the
// internal/txn enum.
func (c *Config) Durability() txn.Durability {
	if c.Transaction.Durability == "none" {
		return txn.DurabilityNone
	}
	return txn.DurabilityImmediate
}

// String returns a safe representation with no secrets to print (there are
// none in this config; password hashes live only in internal/auth's
// in-memory user store, never in the TOML file).
func (c *Config) String() string {
	return fmt.Sprintf("Config{storage=%s http=%s:%d auth_enabled=%v}",
		c.Storage.Path, c.HTTP.BindAddress, c.HTTP.Port, c.Auth.Enabled)
}
