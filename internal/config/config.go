// Package config loads and validates ratreed's TOML server
// configuration, grounded on the teacher's internal/config/config.go
// (loadToml helper, Load*/Validate* pair with baked-in defaults),
// switched to the go-toml/v2 API the teacher's own code actually calls.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/ratree/internal/wire"
)

// RebasePolicy controls how the edit layer resolves an out-of-date
// operation (spec §4.3.3).
type RebasePolicy string

const (
	RebaseStrict     RebasePolicy = "strict"
	RebasePermissive RebasePolicy = "permissive"
)

// Config is ratreed's top-level server configuration.
type Config struct {
	Name              string       `toml:"name"`
	Addr              string       `toml:"addr"`
	Wire              WireConfig   `toml:"wire"`
	Edit              EditConfig   `toml:"edit"`
	RebasePolicy      RebasePolicy `toml:"rebase_policy"`
	PassThroughErrors bool         `toml:"pass_through_errors"`
}

// WireConfig bounds the item/tuple parser (internal/wire.Limits).
type WireConfig struct {
	MaxStringLen uint64 `toml:"max_string_len"`
	MaxListDepth int    `toml:"max_list_depth"`
}

// ToLimits converts to wire.Limits, filling zero fields from
// wire.DefaultLimits().
func (w WireConfig) ToLimits() wire.Limits {
	defaults := wire.DefaultLimits()
	limits := wire.Limits{MaxStringLen: w.MaxStringLen, MaxListDepth: w.MaxListDepth}
	if limits.MaxStringLen == 0 {
		limits.MaxStringLen = defaults.MaxStringLen
	}
	if limits.MaxListDepth == 0 {
		limits.MaxListDepth = defaults.MaxListDepth
	}
	return limits
}

// EditConfig toggles the optional txn-sourced-copy capability the
// tree-edit layer advertises (spec §9 open question ii, SPEC_FULL §4.3's
// edit.Capabilities). The addressing styles are not configurable here:
// the server always enables both.
type EditConfig struct {
	TxnSourcedCopy bool `toml:"txn_sourced_copy"`
}

// Load reads and validates a Config from path, filling defaults for
// anything left unset.
func Load(path string) (Config, error) {
	var cfg Config
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Name == "" {
		cfg.Name = "ratreed"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":3960"
	}
	if cfg.RebasePolicy == "" {
		cfg.RebasePolicy = RebaseStrict
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// Validate checks cfg for the invariants Load relies on defaults to
// satisfy; useful on its own when a Config is built programmatically.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("config missing addr")
	}
	switch cfg.RebasePolicy {
	case RebaseStrict, RebasePermissive:
	default:
		return fmt.Errorf("config rebase_policy must be %q or %q, got %q",
			RebaseStrict, RebasePermissive, cfg.RebasePolicy)
	}
	return nil
}
