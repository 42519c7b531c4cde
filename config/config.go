// Package config loads arena settings from the environment and command line.
package config

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/lab1702/shiparena/game"
)

// Config holds the settings for one arena process
type Config struct {
	Width          int      `env:"ARENA_WIDTH"          envDefault:"1000"`
	Height         int      `env:"ARENA_HEIGHT"         envDefault:"1000"`
	TicksPerSecond int      `env:"ARENA_TPS"            envDefault:"10"`
	Seed           int64    `env:"ARENA_SEED"           envDefault:"0"`
	StrategyDir    string   `env:"ARENA_STRATEGY_DIR"   envDefault:"strategies"`
	Builtins       []string `env:"ARENA_BUILTINS"       envSeparator:","`
	LogFile        string   `env:"ARENA_LOG_FILE"       envDefault:"arena.log"`
	JournalPath    string   `env:"ARENA_JOURNAL_PATH"`
	Port           string   `env:"ARENA_PORT"           envDefault:"8080"`
	Headless       bool     `env:"ARENA_HEADLESS"       envDefault:"false"`
	MaxTicks       int64    `env:"ARENA_MAX_TICKS"      envDefault:"0"`
	OTelEndpoint   string   `env:"ARENA_OTEL_ENDPOINT"`

	// SkipDecisionAfterRespawn withholds a respawned ship's decision for that tick
	SkipDecisionAfterRespawn bool `env:"ARENA_SKIP_DECISION_AFTER_RESPAWN" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RegisterFlags binds command-line flags to cfg. Flag defaults are the
// values already loaded from the environment, so flags override env.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "Arena width")
	fs.IntVar(&c.Height, "height", c.Height, "Arena height")
	fs.IntVar(&c.TicksPerSecond, "tps", c.TicksPerSecond, "Ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "Random seed (0 picks a fresh one)")
	fs.StringVar(&c.StrategyDir, "strategies", c.StrategyDir, "Directory of Lua strategy scripts (empty to skip)")
	fs.Func("builtins", "Comma-separated built-in strategies to add", func(v string) error {
		c.Builtins = splitList(v)
		return nil
	})
	fs.StringVar(&c.LogFile, "log", c.LogFile, "Event log file (empty for stdout only)")
	fs.StringVar(&c.JournalPath, "journal", c.JournalPath, "SQLite event journal path (empty to disable)")
	fs.StringVar(&c.Port, "port", c.Port, "Server port")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "Run without the terminal view")
	fs.Int64Var(&c.MaxTicks, "max-ticks", c.MaxTicks, "Stop after this many ticks (0 runs forever)")
	fs.StringVar(&c.OTelEndpoint, "otel-endpoint", c.OTelEndpoint, "OTLP/HTTP trace endpoint (empty to disable)")
	fs.BoolVar(&c.SkipDecisionAfterRespawn, "skip-respawn-decision", c.SkipDecisionAfterRespawn, "Respawned ships do not act on the tick they respawn")
}

// Validate rejects settings the arena cannot run with
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Arena(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("max ticks %d must not be negative", c.MaxTicks))
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}
	return errors.Join(errs...)
}

// Arena returns the configured arena
func (c Config) Arena() (game.Arena, error) {
	return game.NewArena(c.Width, c.Height, c.TicksPerSecond)
}

// Rules returns the default rules adjusted by the configuration
func (c Config) Rules() game.Rules {
	rules := game.DefaultRules()
	rules.SkipDecisionAfterRespawn = c.SkipDecisionAfterRespawn
	return rules
}

// ResolveSeed returns the configured seed, or a fresh one when it is zero
func (c Config) ResolveSeed() (int64, error) {
	if c.Seed != 0 {
		return c.Seed, nil
	}
	return NewSeed()
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
