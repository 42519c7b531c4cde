package config

import (
	"errors"
	"flag"
	"testing"

	"github.com/lab1702/shiparena/game"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Width != 1000 || cfg.Height != 1000 || cfg.TicksPerSecond != 10 {
		t.Errorf("arena = %dx%d@%d, expected 1000x1000@10", cfg.Width, cfg.Height, cfg.TicksPerSecond)
	}
	if cfg.StrategyDir != "strategies" || cfg.Port != "8080" || cfg.LogFile != "arena.log" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.JournalPath != "" || cfg.OTelEndpoint != "" || cfg.Headless {
		t.Errorf("optional features should default off: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ARENA_WIDTH", "800")
	t.Setenv("ARENA_HEIGHT", "600")
	t.Setenv("ARENA_TPS", "30")
	t.Setenv("ARENA_SEED", "99")
	t.Setenv("ARENA_BUILTINS", "hunter,wanderer")
	t.Setenv("ARENA_HEADLESS", "true")
	t.Setenv("ARENA_MAX_TICKS", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 600 || cfg.TicksPerSecond != 30 {
		t.Errorf("arena = %dx%d@%d", cfg.Width, cfg.Height, cfg.TicksPerSecond)
	}
	if cfg.Seed != 99 || cfg.MaxTicks != 500 || !cfg.Headless {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Builtins) != 2 || cfg.Builtins[0] != "hunter" || cfg.Builtins[1] != "wanderer" {
		t.Errorf("builtins = %v", cfg.Builtins)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("ARENA_WIDTH", "wide")
	if _, err := Load(); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("ARENA_WIDTH", "800")
	t.Setenv("ARENA_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fs := flag.NewFlagSet("arena", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse([]string{"-width", "1200", "-builtins", "hunter, ,wanderer", "-headless"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Width != 1200 {
		t.Errorf("width = %d, expected flag value 1200", cfg.Width)
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %s, expected env value 9000", cfg.Port)
	}
	if !cfg.Headless {
		t.Error("expected headless from flag")
	}
	if len(cfg.Builtins) != 2 {
		t.Errorf("builtins = %v, expected blanks dropped", cfg.Builtins)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Width: 100, Height: 100, TicksPerSecond: 10, Port: "8080"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		isArena bool
	}{
		{"valid", func(*Config) {}, false, false},
		{"zero width", func(c *Config) { c.Width = 0 }, true, true},
		{"negative height", func(c *Config) { c.Height = -5 }, true, true},
		{"zero tick rate", func(c *Config) { c.TicksPerSecond = 0 }, true, true},
		{"negative max ticks", func(c *Config) { c.MaxTicks = -1 }, true, false},
		{"bad port", func(c *Config) { c.Port = "http" }, true, false},
		{"port out of range", func(c *Config) { c.Port = "70000" }, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.isArena && !errors.Is(err, game.ErrInvalidArena) {
				t.Errorf("error %v does not wrap ErrInvalidArena", err)
			}
		})
	}
}

func TestResolveSeed(t *testing.T) {
	fixed := Config{Seed: 7}
	if seed, err := fixed.ResolveSeed(); err != nil || seed != 7 {
		t.Errorf("ResolveSeed() = %d, %v, expected 7", seed, err)
	}

	var fresh Config
	a, err := fresh.ResolveSeed()
	if err != nil {
		t.Fatalf("ResolveSeed: %v", err)
	}
	b, _ := fresh.ResolveSeed()
	if a == b {
		t.Errorf("two fresh seeds are equal: %d", a)
	}
}

func TestRules(t *testing.T) {
	cfg := Config{SkipDecisionAfterRespawn: true}
	rules := cfg.Rules()
	if !rules.SkipDecisionAfterRespawn {
		t.Error("expected SkipDecisionAfterRespawn to carry over")
	}
	if rules.SensorRange != game.SensorRange {
		t.Errorf("sensor range = %v, expected default", rules.SensorRange)
	}
}
