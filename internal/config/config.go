// Package config loads the startup configuration: per-subgraph dispatch mode
// and URL override, plus the global retry policy. Configuration is read once
// before serving and immutable afterwards; every validation failure here is
// fatal by design, unlike subgraph-level failures which stay non-fatal.
package config

import (
	"fmt"
	"os"
	"time"

	retry "github.com/hanpama/subrouter/internal/retry"
	"gopkg.in/yaml.v3"
)

// Mode selects how a subgraph is dispatched.
type Mode string

const (
	// ModeLocal executes the subgraph in process.
	ModeLocal Mode = "local"
	// ModeRemote fetches the subgraph over HTTP.
	ModeRemote Mode = "remote"
)

// Duration is a time.Duration that unmarshals from YAML strings like "100ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Subgraph is the per-subgraph dispatch configuration.
type Subgraph struct {
	Mode Mode `yaml:"mode"`
	// URL overrides the routing URL the supergraph schema embeds. Remote
	// subgraphs without an override fall back to the schema-declared URL.
	URL string `yaml:"url,omitempty"`
}

// Retry configures the global retry policy for remote fetches.
type Retry struct {
	MaxAttempts    int      `yaml:"max_attempts"`
	BaseDelay      Duration `yaml:"base_delay"`
	Multiplier     float64  `yaml:"multiplier"`
	OverallTimeout Duration `yaml:"overall_timeout"`
}

// Config is the full startup configuration.
type Config struct {
	Subgraphs map[string]Subgraph `yaml:"subgraphs"`
	Retry     Retry               `yaml:"retry"`
}

// Parse decodes and validates a YAML configuration document. Unset retry
// fields take the package defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

func (c *Config) applyDefaults() {
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = retry.Default.MaxAttempts
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = Duration(retry.Default.BaseDelay)
	}
	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = retry.Default.Multiplier
	}
	if c.Retry.OverallTimeout == 0 {
		c.Retry.OverallTimeout = Duration(retry.Default.OverallTimeout)
	}
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	if len(c.Subgraphs) == 0 {
		return fmt.Errorf("config: no subgraphs configured")
	}
	for name, sc := range c.Subgraphs {
		switch sc.Mode {
		case ModeLocal, ModeRemote:
		case "":
			return fmt.Errorf("config: subgraph %s: mode is required", name)
		default:
			return fmt.Errorf("config: subgraph %s: unknown mode %q", name, sc.Mode)
		}
		if sc.Mode == ModeLocal && sc.URL != "" {
			return fmt.Errorf("config: subgraph %s: local subgraphs take no url", name)
		}
	}
	if err := c.RetryPolicy().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// RetryPolicy converts the retry section into the policy the fetchers use.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:    c.Retry.MaxAttempts,
		BaseDelay:      time.Duration(c.Retry.BaseDelay),
		Multiplier:     c.Retry.Multiplier,
		OverallTimeout: time.Duration(c.Retry.OverallTimeout),
	}
}
