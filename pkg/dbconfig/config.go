// Package dbconfig loads the connection profiles and session defaults that
// populate pkg/session's isolation/lock-wait/async-workspace knobs and
// pkg/transport's dial target, from a YAML file.
package dbconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Isolation mirrors the transaction session's isolation level enum.
type Isolation string

const (
	IsolationRR           Isolation = "RR"
	IsolationRC           Isolation = "RC"
	IsolationRCSnapshot   Isolation = "RC_SNAPSHOT"
	IsolationRU           Isolation = "RU"
	IsolationSerializable Isolation = "SERIALIZABLE"
)

func (i Isolation) Valid() bool {
	switch i {
	case IsolationRR, IsolationRC, IsolationRCSnapshot, IsolationRU, IsolationSerializable:
		return true
	default:
		return false
	}
}

// Profile is one named connection's settings.
type Profile struct {
	Name        string    `yaml:"name"`
	Address     string    `yaml:"address"`
	DatabaseName string   `yaml:"database_name"`
	Isolation   Isolation `yaml:"isolation"`
	// LockWaitSeconds: negative = infinite, zero = no-wait.
	LockWaitSeconds int  `yaml:"lock_wait_seconds"`
	AsyncWorkspace  bool `yaml:"async_workspace"`

	LogWriter LogWriterProfile `yaml:"log_writer"`
}

// LogWriterProfile configures a log-writer follower attached to this
// connection.
type LogWriterProfile struct {
	Enabled   bool   `yaml:"enabled"`
	Mode      string `yaml:"mode"` // "sync" | "async" | "semi_sync"
	LocalDir  string `yaml:"local_dir"`
}

// Config is the top-level YAML document: a default profile name plus the
// named profiles available to select from.
type Config struct {
	Default  string             `yaml:"default"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dbconfig: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("dbconfig: parsing %s: %w", path, err)
	}
	for name, p := range cfg.Profiles {
		if p.Isolation == "" {
			p.Isolation = IsolationRC
			cfg.Profiles[name] = p
		}
		if !p.Isolation.Valid() {
			return nil, fmt.Errorf("dbconfig: profile %q: invalid isolation %q", name, p.Isolation)
		}
	}
	return &cfg, nil
}

// Resolve returns the named profile, or the default profile if name is
// empty.
func (c *Config) Resolve(name string) (Profile, error) {
	if name == "" {
		name = c.Default
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("dbconfig: no such profile %q", name)
	}
	return p, nil
}
