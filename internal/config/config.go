// Package config loads the HCL session configuration shared by the CLI
// commands: the table setup, the gateway listener and where hands are
// persisted and recorded.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete session configuration.
type Config struct {
	Table   TableConfig    `hcl:"table,block"`
	Server  *ServerConfig  `hcl:"server,block"`
	History *HistoryConfig `hcl:"history,block"`
}

// TableConfig defines the table: who sits where and for how much.
type TableConfig struct {
	Players     []string `hcl:"players"`
	Stacks      []int    `hcl:"stacks,optional"`
	Stack       int      `hcl:"stack,optional"`
	SmallBlind  int      `hcl:"small_blind"`
	BigBlind    int      `hcl:"big_blind"`
	Seed        int64    `hcl:"seed,optional"`
	EvalTimeout int      `hcl:"eval_timeout_seconds,optional"`
}

// ServerConfig configures the WebSocket gateway.
type ServerConfig struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// HistoryConfig configures snapshotting and hand history recording.
type HistoryConfig struct {
	SnapshotDir string `hcl:"snapshot_dir,optional"`
	HistoryDir  string `hcl:"history_dir,optional"`
	Archive     bool   `hcl:"archive,optional"`
}

// Default returns the configuration used when no file is present: a
// three-handed 10/20 table with 1000-chip stacks.
func Default() *Config {
	return &Config{
		Table: TableConfig{
			Players:     []string{"hero", "villain", "third"},
			Stack:       1000,
			SmallBlind:  10,
			BigBlind:    20,
			EvalTimeout: 5,
		},
		Server: &ServerConfig{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		History: &HistoryConfig{
			SnapshotDir: ".ploscope/snapshots",
			HistoryDir:  ".ploscope/hands",
		},
	}
}

// Load reads and validates an HCL config file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Table.Stack == 0 && c.Table.Stacks == nil {
		c.Table.Stack = 1000
	}
	if c.Table.EvalTimeout == 0 {
		c.Table.EvalTimeout = 5
	}
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.History == nil {
		c.History = &HistoryConfig{}
	}
	if c.History.SnapshotDir == "" {
		c.History.SnapshotDir = ".ploscope/snapshots"
	}
	if c.History.HistoryDir == "" {
		c.History.HistoryDir = ".ploscope/hands"
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	t := &c.Table
	if len(t.Players) < 2 {
		return fmt.Errorf("table: at least two players required")
	}
	if t.Stacks != nil && len(t.Stacks) != len(t.Players) {
		return fmt.Errorf("table: %d stacks for %d players", len(t.Stacks), len(t.Players))
	}
	seen := make(map[string]bool, len(t.Players))
	for _, name := range t.Players {
		if name == "" {
			return fmt.Errorf("table: player names must not be empty")
		}
		if seen[name] {
			return fmt.Errorf("table: duplicate player %q", name)
		}
		seen[name] = true
	}
	if t.SmallBlind <= 0 {
		return fmt.Errorf("table: small blind must be positive")
	}
	if t.BigBlind < t.SmallBlind {
		return fmt.Errorf("table: big blind must be at least the small blind")
	}
	if t.EvalTimeout < 0 {
		return fmt.Errorf("table: eval timeout must not be negative")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	return nil
}

// StackFor returns the starting stack for the player at seat i.
func (t *TableConfig) StackFor(i int) int {
	if t.Stacks != nil {
		return t.Stacks[i]
	}
	return t.Stack
}

// AllStacks expands the per-seat stacks.
func (t *TableConfig) AllStacks() []int {
	stacks := make([]int, len(t.Players))
	for i := range stacks {
		stacks[i] = t.StackFor(i)
	}
	return stacks
}

// ListenAddress returns the gateway bind address.
func (c *ServerConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}
